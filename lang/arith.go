package lang

import (
	"math"
	"math/big"
)

// binaryArith applies an arithmetic operator. The returned error has no
// position; callers attach the operator's location.
func binaryArith(op Kind, a, b Value) (Value, *Error) {
	if op == PLUS && !(isNumber(a) && isNumber(b)) {
		return Str(Display(a) + Display(b)), nil
	}

	if !isNumber(a) || !isNumber(b) {
		return nil, ErrTypeMismatch.Describe(
			"Unsupported operand types for %s: '%s' and '%s'",
			operatorText[op], a.TypeName(), b.TypeName())
	}

	x, xInt := a.(Int)
	y, yInt := b.(Int)

	if xInt && yInt {
		return intArith(op, x.Big(), y.Big())
	}

	return floatArith(op, toFloat(a), toFloat(b))
}

func intArith(op Kind, x, y *big.Int) (Value, *Error) {
	r := new(big.Int)

	switch op {
	case PLUS:
		return Int{r.Add(x, y)}, nil

	case MINUS:
		return Int{r.Sub(x, y)}, nil

	case STAR:
		return Int{r.Mul(x, y)}, nil

	case SLASH:
		if y.Sign() == 0 {
			return nil, ErrDivisionByZero.Describe("Division by zero")
		}

		f, _ := new(big.Rat).SetFrac(x, y).Float64()

		return Float(f), nil

	case PERCENT:
		if y.Sign() == 0 {
			return nil, ErrDivisionByZero.Describe("Modulo by zero")
		}

		// floored: the result takes the sign of the divisor
		r.Rem(x, y)
		if r.Sign() != 0 && r.Sign() != y.Sign() {
			r.Add(r, y)
		}

		return Int{r}, nil

	case POWER:
		if y.Sign() < 0 {
			return floatArith(op, Int{x}.Float64(), Int{y}.Float64())
		}

		return Int{r.Exp(x, y, nil)}, nil
	}

	return nil, ErrTypeMismatch.Describe("Unsupported operator %s", op)
}

func floatArith(op Kind, x, y float64) (Value, *Error) {
	switch op {
	case PLUS:
		return Float(x + y), nil

	case MINUS:
		return Float(x - y), nil

	case STAR:
		return Float(x * y), nil

	case SLASH:
		if y == 0 {
			return nil, ErrDivisionByZero.Describe("Division by zero")
		}

		return Float(x / y), nil

	case PERCENT:
		if y == 0 {
			return nil, ErrDivisionByZero.Describe("Modulo by zero")
		}

		r := math.Mod(x, y)
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}

		return Float(r), nil

	case POWER:
		if x == 0 && y < 0 {
			return nil, ErrDivisionByZero.Describe("Zero cannot be raised to a negative power")
		}

		return Float(math.Pow(x, y)), nil
	}

	return nil, ErrTypeMismatch.Describe("Unsupported operator %s", op)
}

// negate applies unary minus.
func negate(v Value) (Value, *Error) {
	switch v := v.(type) {
	case Int:
		return Int{new(big.Int).Neg(v.Big())}, nil
	case Float:
		return -v, nil
	default:
		return nil, ErrTypeMismatch.Describe("Bad operand type for unary -: '%s'", v.TypeName())
	}
}

// compareOp evaluates a comparison operator.
func compareOp(op Kind, a, b Value) (Value, *Error) {
	switch op {
	case EQ, IS:
		return Bool(Equal(a, b)), nil
	case NE:
		return Bool(!Equal(a, b)), nil
	}

	c, ok := Compare(a, b)
	if !ok && isNumber(a) && isNumber(b) {
		return Bool(false), nil // NaN is unordered
	}

	if !ok {
		return nil, ErrTypeMismatch.Describe(
			"'%s' not supported between '%s' and '%s'",
			operatorText[op], a.TypeName(), b.TypeName())
	}

	switch op {
	case GT:
		return Bool(c > 0), nil
	case GE:
		return Bool(c >= 0), nil
	case LT:
		return Bool(c < 0), nil
	case LE:
		return Bool(c <= 0), nil
	}

	return nil, ErrTypeMismatch.Describe("Unsupported comparison %s", op)
}
