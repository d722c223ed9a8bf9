package lang

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// stdlib returns the utility built-ins: math, random, string, list and
// type predicates.
func stdlib() map[string]*Builtin {
	avg := &Builtin{Name: "average", MinArgs: 0, MaxArgs: -1, Fn: stdAverage}

	return builtinTable(
		&Builtin{Name: "clamp", MinArgs: 3, MaxArgs: 3, Fn: stdClamp},
		&Builtin{Name: "min", MinArgs: 1, MaxArgs: -1, Fn: extremum("min", -1)},
		&Builtin{Name: "max", MinArgs: 1, MaxArgs: -1, Fn: extremum("max", 1)},
		&Builtin{Name: "sum", MinArgs: 0, MaxArgs: -1, Fn: stdSum},
		avg,
		&Builtin{Name: "avg", MinArgs: avg.MinArgs, MaxArgs: avg.MaxArgs, Fn: avg.Fn},
		&Builtin{Name: "round", MinArgs: 1, MaxArgs: 2, Fn: stdRound},
		&Builtin{Name: "floor", MinArgs: 1, MaxArgs: 1, Fn: rounder(math.Floor)},
		&Builtin{Name: "ceil", MinArgs: 1, MaxArgs: 1, Fn: rounder(math.Ceil)},
		&Builtin{Name: "sqrt", MinArgs: 1, MaxArgs: 1, Fn: stdSqrt},
		&Builtin{Name: "pow", MinArgs: 2, MaxArgs: 2, Fn: stdPow},

		&Builtin{Name: "random_choice", MinArgs: 0, MaxArgs: -1, Fn: stdRandomChoice},
		&Builtin{Name: "random_int", MinArgs: 2, MaxArgs: 2, Fn: stdRandomInt},
		&Builtin{Name: "random_float", MinArgs: 0, MaxArgs: 0, Fn: stdRandomFloat},

		&Builtin{Name: "trim", MinArgs: 1, MaxArgs: 1, Fn: stringFunc(strings.TrimSpace)},
		&Builtin{Name: "lower", MinArgs: 1, MaxArgs: 1, Fn: stringFunc(strings.ToLower)},
		&Builtin{Name: "upper", MinArgs: 1, MaxArgs: 1, Fn: stringFunc(strings.ToUpper)},
		&Builtin{Name: "capitalize", MinArgs: 1, MaxArgs: 1, Fn: stringFunc(capitalize)},
		&Builtin{Name: "title", MinArgs: 1, MaxArgs: 1, Fn: stringFunc(titleCase)},
		&Builtin{Name: "split", MinArgs: 1, MaxArgs: 2, Fn: stdSplit},
		&Builtin{Name: "join", MinArgs: 1, MaxArgs: 2, Fn: stdJoin},
		&Builtin{Name: "replace", MinArgs: 3, MaxArgs: 3, Fn: stdReplace},
		&Builtin{Name: "starts_with", MinArgs: 2, MaxArgs: 2, Fn: stringTest(strings.HasPrefix)},
		&Builtin{Name: "ends_with", MinArgs: 2, MaxArgs: 2, Fn: stringTest(strings.HasSuffix)},
		&Builtin{Name: "contains", MinArgs: 2, MaxArgs: 2, Fn: stdContains},

		&Builtin{Name: "reverse", MinArgs: 1, MaxArgs: 1, Fn: stdReverse},
		&Builtin{Name: "sort", MinArgs: 1, MaxArgs: 2, Fn: stdSort},

		&Builtin{Name: "is_number", MinArgs: 1, MaxArgs: 1, Fn: predicate(isNumber)},
		&Builtin{Name: "is_string", MinArgs: 1, MaxArgs: 1, Fn: predicate(func(v Value) bool {
			_, ok := v.(Str)

			return ok
		})},
		&Builtin{Name: "is_list", MinArgs: 1, MaxArgs: 1, Fn: predicate(func(v Value) bool {
			_, ok := v.(*List)

			return ok
		})},
		&Builtin{Name: "is_empty", MinArgs: 1, MaxArgs: 1, Fn: predicate(isEmpty)},
	)
}

// spread returns the elements of a single list argument, or the arguments
// themselves.
func spread(args []Value) []Value {
	if len(args) == 1 {
		if l, ok := args[0].(*List); ok {
			return l.Elems
		}
	}

	return args
}

func errNotOrderable(a, b Value) error {
	return fmt.Errorf("'<' not supported between instances of '%s' and '%s'",
		a.TypeName(), b.TypeName())
}

func stdClamp(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	v, lo, hi := args[0], args[1], args[2]

	// max(lo, min(hi, v))
	c, ok := Compare(v, hi)
	if !ok {
		return nil, errNotOrderable(v, hi)
	}

	if c > 0 {
		v = hi
	}

	c, ok = Compare(v, lo)
	if !ok {
		return nil, errNotOrderable(v, lo)
	}

	if c < 0 {
		v = lo
	}

	return v, nil
}

// extremum returns min (want -1) or max (want 1). The first of several
// equal extremes wins.
func extremum(name string, want int) func(context.Context, *Interpreter, []Value) (Value, error) {
	return func(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
		items := spread(args)
		if len(items) == 0 {
			return nil, fmt.Errorf("%s() arg is an empty sequence", name)
		}

		best := items[0]

		for _, v := range items[1:] {
			c, ok := Compare(v, best)
			if !ok {
				return nil, errNotOrderable(v, best)
			}

			if c == want {
				best = v
			}
		}

		return best, nil
	}
}

func sumOf(items []Value) (Value, error) {
	var total Value = NewInt(0)

	for _, v := range items {
		if !isNumber(v) {
			return nil, fmt.Errorf("unsupported operand type(s) for +: '%s' and '%s'",
				total.TypeName(), v.TypeName())
		}

		r, err := binaryArith(PLUS, total, v)
		if err != nil {
			return nil, err
		}

		total = r
	}

	return total, nil
}

func stdSum(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	return sumOf(spread(args))
}

func stdAverage(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	items := spread(args)
	if len(items) == 0 {
		return NewInt(0), nil
	}

	total, err := sumOf(items)
	if err != nil {
		return nil, err
	}

	r, e := binaryArith(SLASH, total, NewInt(int64(len(items))))
	if e != nil {
		return nil, e
	}

	return r, nil
}

// stdRound rounds half to even. With a digits argument the result keeps the
// type of the number; floats are rounded at the given decimal place.
func stdRound(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	digits := int64(0)

	if len(args) > 1 {
		d, ok := args[1].(Int)
		if !ok {
			return nil, fmt.Errorf(
				"'%s' object cannot be interpreted as an integer", args[1].TypeName())
		}

		if digits, ok = d.Int64(); !ok {
			return nil, fmt.Errorf("round() digits %s out of range", Display(d))
		}
	}

	switch v := args[0].(type) {
	case Int:
		if digits >= 0 {
			return v, nil
		}

		return Int{roundBig(v.Big(), -digits)}, nil

	case Float:
		f := float64(v)
		if len(args) == 1 {
			return floatToInt(f, math.RoundToEven)
		}

		if math.IsNaN(f) || math.IsInf(f, 0) {
			return v, nil
		}

		if digits >= 0 {
			r, _ := strconv.ParseFloat(strconv.FormatFloat(f, 'f', int(min(digits, 400)), 64), 64)

			return Float(r), nil
		}

		p := math.Pow(10, float64(-digits))

		return Float(math.RoundToEven(f/p) * p), nil
	}

	return nil, fmt.Errorf("type %s doesn't define __round__ method", args[0].TypeName())
}

// roundBig rounds n to a multiple of 10**k, half to even.
func roundBig(n *big.Int, k int64) *big.Int {
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(k), nil)
	q, r := new(big.Int).DivMod(n, unit, new(big.Int))

	twice := new(big.Int).Lsh(r, 1)
	if c := twice.Cmp(unit); c > 0 || (c == 0 && q.Bit(0) == 1) {
		q.Add(q, big.NewInt(1))
	}

	return q.Mul(q, unit)
}

func rounder(round func(float64) float64) func(context.Context, *Interpreter, []Value) (Value, error) {
	return func(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
		switch v := args[0].(type) {
		case Int:
			return v, nil
		case Float:
			return floatToInt(float64(v), round)
		}

		return nil, fmt.Errorf("must be real number, not %s", args[0].TypeName())
	}
}

func stdSqrt(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	if !isNumber(args[0]) {
		return nil, fmt.Errorf("must be real number, not %s", args[0].TypeName())
	}

	f := toFloat(args[0])
	if f < 0 {
		return nil, errors.New("math domain error")
	}

	return Float(math.Sqrt(f)), nil
}

func stdPow(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	r, err := binaryArith(POWER, args[0], args[1])
	if err != nil {
		return nil, err
	}

	return r, nil
}

// stdRandomChoice picks one of its arguments, or one element of a single
// list argument.
func stdRandomChoice(_ context.Context, in *Interpreter, args []Value) (Value, error) {
	items := spread(args)
	if len(items) == 0 {
		return Nil, nil
	}

	return items[in.rand.IntN(len(items))], nil
}

func stdRandomInt(_ context.Context, in *Interpreter, args []Value) (Value, error) {
	bounds := [2]int64{}

	for i, a := range args {
		n, err := toInt(a)
		if err != nil {
			return nil, err
		}

		v, ok := n.(Int).Int64()
		if !ok {
			return nil, fmt.Errorf("random_int() bound %s is too large", Display(n))
		}

		bounds[i] = v
	}

	lo, hi := bounds[0], bounds[1]
	if lo > hi {
		return nil, fmt.Errorf("empty range for random_int(%d, %d)", lo, hi)
	}

	return NewInt(lo + in.rand.Int64N(hi-lo+1)), nil
}

func stdRandomFloat(_ context.Context, in *Interpreter, _ []Value) (Value, error) {
	return Float(in.rand.Float64()), nil
}

func stringFunc(fn func(string) string) func(context.Context, *Interpreter, []Value) (Value, error) {
	return func(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
		return Str(fn(Display(args[0]))), nil
	}
}

func stringTest(fn func(s, t string) bool) func(context.Context, *Interpreter, []Value) (Value, error) {
	return func(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
		return Bool(fn(Display(args[0]), Display(args[1]))), nil
	}
}

func predicate(fn func(Value) bool) func(context.Context, *Interpreter, []Value) (Value, error) {
	return func(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
		return Bool(fn(args[0])), nil
	}
}

// capitalize upper-cases the first character and lower-cases the rest.
func capitalize(s string) string {
	r := []rune(strings.ToLower(s))
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
	}

	return string(r)
}

// titleCase upper-cases each letter that follows a non-letter and
// lower-cases the others.
func titleCase(s string) string {
	var b strings.Builder

	prev := false

	for _, r := range s {
		if prev {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToUpper(r))
		}

		prev = unicode.IsLetter(r)
	}

	return b.String()
}

func stdSplit(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	sep := " "
	if len(args) > 1 {
		sep = Display(args[1])
	}

	if sep == "" {
		return nil, errors.New("empty separator")
	}

	parts := strings.Split(Display(args[0]), sep)
	elems := make([]Value, len(parts))

	for i, p := range parts {
		elems[i] = Str(p)
	}

	return NewList(elems...), nil
}

func stdJoin(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	sep := ""
	if len(args) > 1 {
		sep = Display(args[1])
	}

	var parts []string

	switch v := args[0].(type) {
	case *List:
		for _, e := range v.Elems {
			parts = append(parts, Display(e))
		}
	case Str:
		for _, r := range string(v) {
			parts = append(parts, string(r))
		}
	default:
		return nil, fmt.Errorf("can only join an iterable, not %s", v.TypeName())
	}

	return Str(strings.Join(parts, sep)), nil
}

func stdReplace(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	return Str(strings.ReplaceAll(Display(args[0]), Display(args[1]), Display(args[2]))), nil
}

// stdContains tests for a substring, or for an equal element of a list.
func stdContains(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	if l, ok := args[0].(*List); ok {
		return Bool(slices.ContainsFunc(l.Elems, func(v Value) bool {
			return Equal(v, args[1])
		})), nil
	}

	return Bool(strings.Contains(Display(args[0]), Display(args[1]))), nil
}

func stdReverse(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case Str:
		r := []rune(string(v))
		slices.Reverse(r)

		return Str(r), nil
	case *List:
		elems := slices.Clone(v.Elems)
		slices.Reverse(elems)

		return NewList(elems...), nil
	}

	return nil, fmt.Errorf("'%s' object is not reversible", args[0].TypeName())
}

// stdSort returns a sorted copy of a list, or the sorted characters of a
// string.
func stdSort(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	var elems []Value

	switch v := args[0].(type) {
	case *List:
		elems = slices.Clone(v.Elems)
	case Str:
		for _, r := range string(v) {
			elems = append(elems, Str(r))
		}
	default:
		return nil, fmt.Errorf("'%s' object is not iterable", args[0].TypeName())
	}

	var err error

	order := 1
	if len(args) > 1 && Truthy(args[1]) {
		order = -1
	}

	slices.SortStableFunc(elems, func(a, b Value) int {
		c, ok := Compare(a, b)
		if !ok && err == nil {
			err = errNotOrderable(a, b)
		}

		return c * order
	})

	if err != nil {
		return nil, err
	}

	return NewList(elems...), nil
}

// isEmpty reports whether v is None, an empty string or list, or zero.
func isEmpty(v Value) bool {
	switch v := v.(type) {
	case Null:
		return true
	case Str:
		return v == ""
	case *List:
		return len(v.Elems) == 0
	case Int, Float:
		return !Truthy(v)
	}

	return false
}
