package cmd

import (
	"errors"
	"testing"

	"github.com/ardnew/quill/lang"
)

func TestParseVars(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"10", "10"},
		{"-3", "-3"},
		{"2 * 5 + 1", "11"},
		{"1 / 2", "0.5"},
		{"2.0", "2.0"},
		{`"Ada"`, "Ada"},
		{`'single'`, "single"},
		{"true", "True"},
		{"nil", "None"},
		{`[1, "a", [false]]`, "[1, 'a', [False]]"},
		{"[]", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			vars, err := parseVars(map[string]string{"v": tt.expr})
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if got := lang.Display(vars["v"]); got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseVars_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"if", "1"},
		{"9lives", "1"},
		{"a-b", "1"},
		{"ok", "1 +"},
		{"ok", "{a: 1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"="+tt.expr, func(t *testing.T) {
			_, err := parseVars(map[string]string{tt.name: tt.expr})
			if !errors.Is(err, ErrInvalidVar) {
				t.Errorf("want %v, got %v", ErrInvalidVar, err)
			}
		})
	}
}

func TestParseVars_Empty(t *testing.T) {
	vars, err := parseVars(nil)
	if err != nil || len(vars) != 0 {
		t.Errorf("unexpected result %v, %v", vars, err)
	}
}
