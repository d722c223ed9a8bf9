package cmd

import (
	"os"
	"strings"
	"testing"
)

func TestRepl_Piped(t *testing.T) {
	ctx, ts := withStreams(t, "set x to 4\nsay x * x\n")

	r := &Repl{Session: Session{SaveDir: "saves", MaxDepth: 1000}}
	if err := r.Run(ctx); err != nil {
		t.Fatalf("repl error: %v", err)
	}

	if got := ts.out.String(); got != "16\n" {
		t.Errorf("want %q, got %q", "16\n", got)
	}
}

func TestRepl_PipedErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code int
	}{
		{"syntax", "say (\n", 1},
		{"runtime", "say 1 / 0\n", 1},
		{"input ended", "ask \"?\" into a\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, ts := withStreams(t, tt.src)

			r := &Repl{Session: Session{SaveDir: "saves", MaxDepth: 1000}}
			if err := r.Run(ctx); exitCode(err) != tt.code {
				t.Fatalf("want exit status %d, got %v", tt.code, err)
			}

			if tt.code != 0 && !strings.Contains(ts.err.String(), "Error") {
				t.Errorf("expected a diagnostic, got %q", ts.err.String())
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(strings.NewReader("")) {
		t.Error("a string reader is not a terminal")
	}

	f, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if isTerminal(f) {
		t.Error(os.DevNull + " is not a terminal")
	}
}
