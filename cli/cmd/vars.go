package cmd

import (
	"fmt"
	"log/slog"
	"maps"
	"math/big"
	"reflect"
	"slices"
	"unicode"

	"github.com/expr-lang/expr"

	"github.com/ardnew/quill/lang"
)

// parseVars evaluates each expression in defs and converts the result to a
// Quill value. Expressions use expr-lang syntax, so numbers, quoted strings,
// booleans, nil, arrays and arithmetic are all accepted:
//
//	--var gold=10 --var hero='"Ada"' --var bag='["lamp", 2 * 3]'
func parseVars(defs map[string]string) (map[string]lang.Value, error) {
	vars := make(map[string]lang.Value, len(defs))

	for _, name := range slices.Sorted(maps.Keys(defs)) {
		src := defs[name]

		if lang.LookupKeyword(name) != lang.IDENT || !isIdent(name) {
			return nil, ErrInvalidVar.
				With(slog.String("name", name)).
				Wrap(fmt.Errorf("'%s' is not a valid variable name", name))
		}

		out, err := expr.Eval(src, nil)
		if err != nil {
			return nil, ErrInvalidVar.
				With(slog.String("name", name), slog.String("expr", src)).
				Wrap(err)
		}

		v, err := toValue(out)
		if err != nil {
			return nil, ErrInvalidVar.
				With(slog.String("name", name), slog.String("expr", src)).
				Wrap(err)
		}

		vars[name] = v
	}

	return vars, nil
}

// toValue converts the result of an expr-lang evaluation to a Quill value.
func toValue(v any) (lang.Value, error) {
	if v == nil {
		return lang.Nil, nil
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Bool:
		return lang.Bool(rv.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lang.NewInt(rv.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lang.IntFromBig(new(big.Int).SetUint64(rv.Uint())), nil

	case reflect.Float32, reflect.Float64:
		return lang.Float(rv.Float()), nil

	case reflect.String:
		return lang.Str(rv.String()), nil

	case reflect.Slice, reflect.Array:
		elems := make([]lang.Value, rv.Len())

		for i := range elems {
			e, err := toValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}

			elems[i] = e
		}

		return lang.NewList(elems...), nil
	}

	return nil, fmt.Errorf("unsupported value of type %T", v)
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}

	return s != ""
}
