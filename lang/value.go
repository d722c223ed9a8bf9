package lang

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// Value is a runtime value. The set of implementations is closed: [Int],
// [Float], [Str], [Bool], [Null], and *[List].
type Value interface {
	// TypeName returns the name reported by the type() built-in.
	TypeName() string
	value()
}

// Int is an arbitrary-precision integer.
type Int struct{ n *big.Int }

// Float is a double-precision floating-point number.
type Float float64

// Str is an immutable string.
type Str string

// Bool is a boolean.
type Bool bool

// Null is the absence of a value.
type Null struct{}

// List is a mutable, ordered sequence shared by reference.
type List struct{ Elems []Value }

// Nil is the only value of type Null.
var Nil = Null{}

func (Int) TypeName() string   { return "int" }
func (Float) TypeName() string { return "float" }
func (Str) TypeName() string   { return "str" }
func (Bool) TypeName() string  { return "bool" }
func (Null) TypeName() string  { return "NoneType" }
func (*List) TypeName() string { return "list" }

func (Int) value()   {}
func (Float) value() {}
func (Str) value()   {}
func (Bool) value()  {}
func (Null) value()  {}
func (*List) value() {}

// NewInt returns i as an Int.
func NewInt(i int64) Int { return Int{big.NewInt(i)} }

// IntFromBig returns an Int holding a copy of n.
func IntFromBig(n *big.Int) Int { return Int{new(big.Int).Set(n)} }

// Big returns the integer's value. The result must not be modified.
func (i Int) Big() *big.Int {
	if i.n == nil {
		return new(big.Int)
	}

	return i.n
}

// Int64 returns the integer as an int64 and whether it fits.
func (i Int) Int64() (int64, bool) {
	n := i.Big()

	return n.Int64(), n.IsInt64()
}

// Float64 returns the nearest float64 to the integer.
func (i Int) Float64() float64 {
	f, _ := new(big.Float).SetInt(i.Big()).Float64()

	return f
}

// NewList returns a list holding elems.
func NewList(elems ...Value) *List { return &List{Elems: elems} }

// Truthy converts v to a boolean for conditions. Booleans are themselves,
// numbers are true when non-zero, and strings when non-empty. Every other
// value, including lists, is false.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case Bool:
		return bool(v)
	case Int:
		return v.Big().Sign() != 0
	case Float:
		return v != 0
	case Str:
		return v != ""
	default:
		return false
	}
}

// Display returns the text shown by say and produced by str().
func Display(v Value) string {
	switch v := v.(type) {
	case Str:
		return string(v)
	case nil:
		return "None"
	default:
		return Repr(v)
	}
}

// Repr returns the literal-like text of v, as used inside displayed lists.
func Repr(v Value) string {
	switch v := v.(type) {
	case Int:
		return v.Big().String()
	case Float:
		return formatFloat(float64(v))
	case Str:
		return quote(string(v))
	case Bool:
		if v {
			return "True"
		}

		return "False"
	case *List:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = Repr(e)
		}

		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "None"
	}
}

// formatFloat renders f in its shortest round-trip form, keeping a ".0"
// suffix on integral values and switching to exponent form outside
// [1e-4, 1e16).
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])

	if f != 0 && (exp < -4 || exp >= 16) {
		return sci
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}

	return s
}

// quote renders s between single quotes, or double quotes when s contains
// a single quote and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var b strings.Builder

	b.WriteByte(q)

	for _, r := range s {
		switch {
		case r == rune(q) || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\r':
			b.WriteString(`\r`)
		case !unicode.IsPrint(r):
			b.WriteString(strconv.QuoteRuneToASCII(r)[1 : len(strconv.QuoteRuneToASCII(r))-1])
		default:
			b.WriteRune(r)
		}
	}

	b.WriteByte(q)

	return b.String()
}

func isNumber(v Value) bool {
	switch v.(type) {
	case Int, Float:
		return true
	default:
		return false
	}
}

func toFloat(v Value) float64 {
	switch v := v.(type) {
	case Int:
		return v.Float64()
	case Float:
		return float64(v)
	default:
		return math.NaN()
	}
}

// Equal reports value equality. Numbers compare by value across Int and
// Float, lists compare element-wise, and values of different types are
// never equal.
func Equal(a, b Value) bool {
	if isNumber(a) && isNumber(b) {
		c, ok := Compare(a, b)

		return ok && c == 0
	}

	switch a := a.(type) {
	case Str:
		b, ok := b.(Str)

		return ok && a == b
	case Bool:
		b, ok := b.(Bool)

		return ok && a == b
	case Null:
		_, ok := b.(Null)

		return ok
	case *List:
		b, ok := b.(*List)
		if !ok || len(a.Elems) != len(b.Elems) {
			return false
		}

		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// Compare orders a and b. Numbers are ordered by value, strings by code
// point, and lists lexicographically. ok is false when the two values
// cannot be ordered.
func Compare(a, b Value) (c int, ok bool) {
	if x, isInt := a.(Int); isInt {
		if y, isInt := b.(Int); isInt {
			return x.Big().Cmp(y.Big()), true
		}
	}

	if isNumber(a) && isNumber(b) {
		x, y := toFloat(a), toFloat(b)

		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		case x == y:
			return 0, true
		default: // NaN
			return 0, false
		}
	}

	switch a := a.(type) {
	case Str:
		if b, isStr := b.(Str); isStr {
			return strings.Compare(string(a), string(b)), true
		}
	case *List:
		if b, isList := b.(*List); isList {
			for i := 0; i < len(a.Elems) && i < len(b.Elems); i++ {
				if Equal(a.Elems[i], b.Elems[i]) {
					continue
				}

				return Compare(a.Elems[i], b.Elems[i])
			}

			return cmpInt(len(a.Elems), len(b.Elems)), true
		}
	}

	return 0, false
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
