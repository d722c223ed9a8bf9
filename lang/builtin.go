package lang

import (
	"context"
	"fmt"
	"maps"
	"math"
	"math/big"
	"strconv"
	"strings"
	"sync"
)

// Builtin is a function implemented in Go. MaxArgs < 0 accepts any number
// of arguments from MinArgs up.
type Builtin struct {
	Name    string
	MinArgs int
	MaxArgs int
	Fn      func(ctx context.Context, in *Interpreter, args []Value) (Value, error)
}

func (b *Builtin) checkArity(n int) error {
	switch {
	case n < b.MinArgs && b.MinArgs == b.MaxArgs:
		return fmt.Errorf("takes %d arguments but %d were given", b.MinArgs, n)
	case n < b.MinArgs:
		return fmt.Errorf("takes at least %d arguments but %d were given", b.MinArgs, n)
	case b.MaxArgs >= 0 && n > b.MaxArgs && b.MinArgs == b.MaxArgs:
		return fmt.Errorf("takes %d arguments but %d were given", b.MaxArgs, n)
	case b.MaxArgs >= 0 && n > b.MaxArgs:
		return fmt.Errorf("takes at most %d arguments but %d were given", b.MaxArgs, n)
	}

	return nil
}

// builtinTable indexes fns by name.
func builtinTable(fns ...*Builtin) map[string]*Builtin {
	m := make(map[string]*Builtin, len(fns))
	for _, fn := range fns {
		m[fn.Name] = fn
	}

	return m
}

// coreBuiltins returns the functions available to every program without an
// import. Callers must clone the map before modifying it.
var coreBuiltins = sync.OnceValue(func() map[string]*Builtin {
	m := builtinTable(
		&Builtin{Name: "len", MinArgs: 1, MaxArgs: 1, Fn: builtinLen},
		&Builtin{Name: "str", MinArgs: 1, MaxArgs: 1, Fn: builtinStr},
		&Builtin{Name: "int", MinArgs: 1, MaxArgs: 1, Fn: builtinInt},
		&Builtin{Name: "float", MinArgs: 1, MaxArgs: 1, Fn: builtinFloat},
		&Builtin{Name: "type", MinArgs: 1, MaxArgs: 1, Fn: builtinType},
		&Builtin{Name: "range", MinArgs: 1, MaxArgs: 3, Fn: builtinRange},
		&Builtin{Name: "abs", MinArgs: 1, MaxArgs: 1, Fn: builtinAbs},
	)

	maps.Copy(m, stdlib())

	return m
})

// Builtins returns the names of the functions every program can call
// without an import, sorted.
func Builtins() []string { return mapKeys(coreBuiltins()) }

// LookupBuiltin returns the function called name. A qualified name such as
// "io.read_text" refers to a module function.
func LookupBuiltin(name string) (*Builtin, bool) {
	if mod, fn, ok := strings.Cut(name, "."); ok {
		m, ok := modules()[mod]
		if !ok {
			return nil, false
		}

		b, ok := m.Funcs[fn]

		return b, ok
	}

	b, ok := coreBuiltins()[name]

	return b, ok
}

// Arity describes the number of arguments b accepts: "1", "1-3" or "0+".
func (b *Builtin) Arity() string {
	switch {
	case b.MaxArgs < 0:
		return strconv.Itoa(b.MinArgs) + "+"
	case b.MinArgs == b.MaxArgs:
		return strconv.Itoa(b.MinArgs)
	default:
		return strconv.Itoa(b.MinArgs) + "-" + strconv.Itoa(b.MaxArgs)
	}
}

func builtinLen(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case Str:
		return NewInt(int64(len([]rune(string(v))))), nil
	case *List:
		return NewInt(int64(len(v.Elems))), nil
	}

	return nil, fmt.Errorf("object of type '%s' has no len()", args[0].TypeName())
}

func builtinStr(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	return Str(Display(args[0])), nil
}

func builtinType(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	return Str(args[0].TypeName()), nil
}

func builtinInt(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	return toInt(args[0])
}

func toInt(v Value) (Value, error) {
	switch v := v.(type) {
	case Int:
		return v, nil
	case Float:
		return floatToInt(float64(v), math.Trunc)
	case Bool:
		if v {
			return NewInt(1), nil
		}

		return NewInt(0), nil
	case Str:
		s := strings.TrimSpace(string(v))

		n, ok := new(big.Int).SetString(strings.TrimPrefix(s, "+"), 10)
		if !ok || s == "" || strings.HasPrefix(s, "+-") {
			return nil, fmt.Errorf("invalid literal for int() with base 10: %s", Repr(v))
		}

		return Int{n}, nil
	}

	return nil, fmt.Errorf(
		"int() argument must be a string or a number, not '%s'", v.TypeName())
}

// floatToInt converts f after applying round, which is one of math.Trunc,
// math.Floor or math.Ceil.
func floatToInt(f float64, round func(float64) float64) (Value, error) {
	switch {
	case math.IsNaN(f):
		return nil, fmt.Errorf("cannot convert float NaN to integer")
	case math.IsInf(f, 0):
		return nil, fmt.Errorf("cannot convert float infinity to integer")
	}

	n, _ := big.NewFloat(round(f)).Int(nil)

	return Int{n}, nil
}

func builtinFloat(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case Int:
		return Float(v.Float64()), nil
	case Float:
		return v, nil
	case Bool:
		if v {
			return Float(1), nil
		}

		return Float(0), nil
	case Str:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil && !isRangeError(err) {
			return nil, fmt.Errorf("could not convert string to float: %s", Repr(v))
		}

		return Float(f), nil
	}

	return nil, fmt.Errorf(
		"float() argument must be a string or a number, not '%s'", args[0].TypeName())
}

func isRangeError(err error) bool {
	ne, ok := err.(*strconv.NumError)

	return ok && ne.Err == strconv.ErrRange
}

// builtinRange follows range(stop), range(start, stop) and
// range(start, stop, step).
func builtinRange(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	bounds := make([]int64, len(args))

	for i, a := range args {
		n, ok := a.(Int)
		if !ok {
			return nil, fmt.Errorf(
				"'%s' object cannot be interpreted as an integer", a.TypeName())
		}

		v, fits := n.Int64()
		if !fits {
			return nil, fmt.Errorf("range() argument %s is too large", Display(n))
		}

		bounds[i] = v
	}

	start, stop, step := int64(0), bounds[0], int64(1)

	if len(bounds) > 1 {
		start, stop = bounds[0], bounds[1]
	}

	if len(bounds) > 2 {
		step = bounds[2]
	}

	if step == 0 {
		return nil, fmt.Errorf("range() arg 3 must not be zero")
	}

	n, err := rangeLen(start, stop, step)
	if err != nil {
		return nil, err
	}

	elems := make([]Value, n)

	for k, i := 0, start; k < n; k++ {
		elems[k] = NewInt(i)

		// the last element may be within step of the int64 limits
		if k < n-1 {
			i += step
		}
	}

	return NewList(elems...), nil
}

// maxRangeLen bounds the length of the list built by range.
const maxRangeLen = 1 << 24

// rangeLen returns the number of elements of range(start, stop, step),
// computed without overflowing int64.
func rangeLen(start, stop, step int64) (int, error) {
	diff := new(big.Int).Sub(big.NewInt(stop), big.NewInt(start))
	st := big.NewInt(step)

	if diff.Sign() == 0 || diff.Sign() != st.Sign() {
		return 0, nil
	}

	// ceil(diff / step) for same-signed operands
	adj := big.NewInt(1)
	if step < 0 {
		adj.Neg(adj)
	}

	n := diff.Add(diff, st).Sub(diff, adj).Quo(diff, st)

	if !n.IsInt64() || n.Int64() > maxRangeLen {
		return 0, fmt.Errorf("range() result is too large (%s elements)", n)
	}

	return int(n.Int64()), nil
}

func builtinAbs(_ context.Context, _ *Interpreter, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case Int:
		return Int{new(big.Int).Abs(v.Big())}, nil
	case Float:
		return Float(math.Abs(float64(v))), nil
	}

	return nil, fmt.Errorf("bad operand type for abs(): '%s'", args[0].TypeName())
}
