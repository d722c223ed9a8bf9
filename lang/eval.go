package lang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
)

func (in *Interpreter) eval(ctx context.Context, x Expr) (Value, error) {
	switch x := x.(type) {
	case *Literal:
		return x.Value, nil

	case *Ident:
		if v, ok := in.vars[x.Name]; ok {
			return v, nil
		}

		e := in.fail(ErrUndefinedVariable, x, "Variable '%s' is not defined", x.Name)
		if hint := suggest(x.Name, mapKeys(in.vars)); hint != "" {
			e = e.WithHint(hint)
		}

		return nil, e

	case *ListExpr:
		elems := make([]Value, len(x.Elems))

		for i, el := range x.Elems {
			v, err := in.eval(ctx, el)
			if err != nil {
				return nil, err
			}

			elems[i] = v
		}

		return NewList(elems...), nil

	case *IndexExpr:
		return in.evalIndex(ctx, x)

	case *CallExpr:
		return in.call(ctx, x)

	case *BinaryExpr:
		return in.evalBinary(ctx, x)

	case *UnaryExpr:
		v, err := in.eval(ctx, x.X)
		if err != nil {
			return nil, err
		}

		if x.Op == NOT {
			return Bool(!Truthy(v)), nil
		}

		r, e := negate(v)
		if e != nil {
			return nil, in.locate(e, x)
		}

		return r, nil
	}

	panic(fmt.Sprintf("lang: unhandled expression %T", x))
}

// evalBinary evaluates both operands before applying the operator,
// including for and/or.
func (in *Interpreter) evalBinary(ctx context.Context, x *BinaryExpr) (Value, error) {
	a, err := in.eval(ctx, x.X)
	if err != nil {
		return nil, err
	}

	b, err := in.eval(ctx, x.Y)
	if err != nil {
		return nil, err
	}

	var (
		r Value
		e *Error
	)

	switch x.Op {
	case AND:
		return Bool(Truthy(a) && Truthy(b)), nil
	case OR:
		return Bool(Truthy(a) || Truthy(b)), nil
	case EQ, NE, GT, GE, LT, LE:
		r, e = compareOp(x.Op, a, b)
	default:
		r, e = binaryArith(x.Op, a, b)
	}

	if e != nil {
		return nil, in.locate(e, x)
	}

	return r, nil
}

func (in *Interpreter) evalIndex(ctx context.Context, x *IndexExpr) (Value, error) {
	v, err := in.eval(ctx, x.X)
	if err != nil {
		return nil, err
	}

	i, err := in.eval(ctx, x.Index)
	if err != nil {
		return nil, err
	}

	switch v := v.(type) {
	case *List:
		n, err := in.index(x, i, len(v.Elems), v)
		if err != nil {
			return nil, err
		}

		return v.Elems[n], nil

	case Str:
		chars := []rune(string(v))

		n, err := in.index(x, i, len(chars), v)
		if err != nil {
			return nil, err
		}

		return Str(chars[n]), nil
	}

	return nil, in.fail(ErrNotIndexable, x, "Cannot index %s", v.TypeName())
}

// index converts i to a position within a container of the given length.
// Negative positions are out of range.
func (in *Interpreter) index(x *IndexExpr, i Value, length int, of Value) (int, error) {
	var n int64

	switch i := i.(type) {
	case Int:
		var ok bool
		if n, ok = i.Int64(); !ok {
			n = -1
		}

	case Float:
		f := math.Trunc(float64(i))
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, in.fail(ErrTypeMismatch, x,
				"Cannot use %s as an index", Display(i))
		}

		n = int64(f)

	default:
		return 0, in.fail(ErrTypeMismatch, x,
			"%s indices must be integers, not %s", of.TypeName(), i.TypeName())
	}

	if n < 0 || n >= int64(length) {
		return 0, in.fail(ErrIndexOutOfRange, x,
			"Index %s out of range for %s of length %d", Display(i), of.TypeName(), length)
	}

	return int(n), nil
}

// call resolves and invokes a call. Built-ins take priority over user
// functions of the same name.
func (in *Interpreter) call(ctx context.Context, c *CallExpr) (Value, error) {
	if c.Module != "" {
		m, ok := in.namespaces[c.Module]
		if !ok {
			return nil, in.fail(ErrModuleNotImported, c,
				"Module '%s' is not imported", c.Module)
		}

		fn, ok := m.Funcs[c.Name]
		if !ok {
			e := in.fail(ErrModuleFunction, c,
				"Function '%s' not found in module '%s'", c.Name, c.Module)
			if hint := suggest(c.Name, mapKeys(m.Funcs)); hint != "" {
				e = e.WithHint(hint)
			}

			return nil, e
		}

		return in.callBuiltin(ctx, c, fn)
	}

	if fn, ok := in.builtins[c.Name]; ok {
		return in.callBuiltin(ctx, c, fn)
	}

	if fn, ok := in.funcs[c.Name]; ok {
		return in.callFunction(ctx, c, fn)
	}

	e := in.fail(ErrUndefinedFunction, c, "Function '%s' is not defined", c.Name)

	names := mapKeys(in.funcs)
	names = append(names, mapKeys(in.builtins)...)

	if hint := suggest(c.Name, names); hint != "" {
		e = e.WithHint(hint)
	}

	return nil, e
}

func (in *Interpreter) args(ctx context.Context, c *CallExpr) ([]Value, error) {
	args := make([]Value, len(c.Args))

	for i, a := range c.Args {
		v, err := in.eval(ctx, a)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	return args, nil
}

func (in *Interpreter) callBuiltin(ctx context.Context, c *CallExpr, fn *Builtin) (Value, error) {
	args, err := in.args(ctx, c)
	if err != nil {
		return nil, err
	}

	if err := fn.checkArity(len(args)); err != nil {
		return nil, in.fail(ErrBuiltin, c,
			"Error calling built-in function '%s': %v", c.QualifiedName(), err)
	}

	v, err := fn.Fn(ctx, in, args)
	if err == nil {
		if v == nil {
			v = Nil
		}

		return v, nil
	}

	var (
		exit *ExitError
		qe   *Error
	)

	switch {
	case errors.As(err, &exit):
		return nil, exit
	case errors.As(err, &qe):
		return nil, in.locate(qe, c)
	}

	return nil, in.locate(
		ErrBuiltin.Describe("Error calling built-in function '%s'", c.QualifiedName()).Wrap(err),
		c)
}

// callFunction runs a user function in a fresh environment made from its
// closure snapshot and parameters. The caller's environment is restored
// afterwards whatever the outcome.
func (in *Interpreter) callFunction(ctx context.Context, c *CallExpr, fn *function) (Value, error) {
	if len(c.Args) != len(fn.params) {
		return nil, in.fail(ErrArgumentCount, c,
			"Function '%s' expects %d arguments, got %d", fn.name, len(fn.params), len(c.Args))
	}

	if in.depth >= in.maxDepth {
		return nil, in.fail(ErrRecursionDepth, c,
			"Maximum recursion depth exceeded in function '%s'", fn.name)
	}

	args, err := in.args(ctx, c)
	if err != nil {
		return nil, err
	}

	env := maps.Clone(fn.closure)
	if env == nil {
		env = map[string]Value{}
	}

	for i, p := range fn.params {
		env[p] = args[i]
	}

	saved := in.vars
	in.vars = env
	in.depth++

	defer func() {
		in.vars = saved
		in.depth--
	}()

	in.logger.TraceContext(ctx, "call",
		slog.String("function", fn.name), slog.Int("depth", in.depth))

	out, err := in.execBlock(ctx, fn.body)
	if err != nil {
		return nil, err
	}

	if out.sig == sigReturn {
		return out.value, nil
	}

	return Nil, nil
}
