package lang

import (
	"math"
	"testing"
)

func TestDisplay(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"int", NewInt(-3), "-3"},
		{"integral float", Float(2), "2.0"},
		{"small float", Float(0.00001), "1e-05"},
		{"large float", Float(1e16), "1e+16"},
		{"infinity", Float(math.Inf(1)), "inf"},
		{"string", Str("it's"), "it's"},
		{"bool", Bool(false), "False"},
		{"null", Nil, "None"},
		{"nested list", NewList(Str("it's"), NewList(Float(1.5))), `["it's", [1.5]]`},
		{"escaped string in list", NewList(Str("a\nb")), `['a\nb']`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Display(tt.value); got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		value Value
		want  bool
	}{
		{NewInt(0), false},
		{NewInt(2), true},
		{Float(0), false},
		{Float(-0.5), true},
		{Str(""), false},
		{Str("0"), true},
		{Nil, false},
		{NewList(NewInt(1)), false},
		{Bool(true), true},
	}

	for _, tt := range tests {
		if got := Truthy(tt.value); got != tt.want {
			t.Errorf("Truthy(%s) = %v, want %v", Repr(tt.value), got, tt.want)
		}
	}
}

func TestEqualCompare(t *testing.T) {
	nan := Float(math.NaN())

	if Equal(nan, nan) {
		t.Error("NaN must not equal itself")
	}

	if !Equal(NewInt(3), Float(3)) {
		t.Error("3 must equal 3.0")
	}

	if Equal(Str("1"), NewInt(1)) {
		t.Error("values of different types must not be equal")
	}

	if !Equal(NewList(NewInt(1), Str("a")), NewList(Float(1), Str("a"))) {
		t.Error("lists must compare element-wise")
	}

	tests := []struct {
		a, b Value
		want int
		ok   bool
	}{
		{NewInt(1), NewInt(2), -1, true},
		{Float(2.5), NewInt(2), 1, true},
		{Str("b"), Str("a"), 1, true},
		{NewList(NewInt(1), NewInt(2)), NewList(NewInt(1), NewInt(3)), -1, true},
		{NewList(NewInt(1)), NewList(NewInt(1), NewInt(0)), -1, true},
		{Str("a"), NewInt(1), 0, false},
		{nan, Float(1), 0, false},
	}

	for _, tt := range tests {
		c, ok := Compare(tt.a, tt.b)
		if c != tt.want || ok != tt.ok {
			t.Errorf("Compare(%s, %s) = %d, %v; want %d, %v",
				Repr(tt.a), Repr(tt.b), c, ok, tt.want, tt.ok)
		}
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		candidates []string
		want       string
	}{
		{"missing letter", "scre", []string{"score", "level"}, "Did you mean 'score'?"},
		{"extra letter", "lenn", []string{"len", "title"}, "Did you mean 'len'?"},
		{"exact match ignored", "x", []string{"x"}, ""},
		{"no candidates", "x", nil, ""},
		{"nothing close", "zzz", []string{"alpha", "beta"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := suggest(tt.input, tt.candidates); got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}
