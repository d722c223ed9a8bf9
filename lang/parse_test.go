package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string) *Program {
	t.Helper()

	prog, err := ParseString(context.Background(), src, Named(t.Name()))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return prog
}

func TestParseString_Statements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int // number of top-level statements
	}{
		{
			name:  "single say",
			input: `say "Hello, World!"`,
			want:  1,
		},
		{
			name:  "blank lines and comments",
			input: "\n\n# intro\nsay 1\n\n\nsay 2 # trailing\n",
			want:  2,
		},
		{
			name:  "if with elsif chain counts once",
			input: "if x then\nsay 1\nelsif y then\nsay 2\nelse\nsay 3\nend",
			want:  1,
		},
		{
			name:  "function and call",
			input: "function f(a, b)\nreturn a + b\nend\nsay f(1, 2)",
			want:  2,
		},
		{
			name:  "labels and goto",
			input: "label: start\nsay 1\ngoto start",
			want:  3,
		},
		{
			name:  "imports",
			input: "import io\nfrom game import *\nfrom io import read_text, write_text",
			want:  3,
		},
		{
			name:  "list spanning lines",
			input: "set xs to [\n  1,\n  2,\n]\nsay xs",
			want:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := mustParse(t, tt.input)

			if len(prog.Stmts) != tt.want {
				t.Errorf("expected %d statements, got %d", tt.want, len(prog.Stmts))
			}
		})
	}
}

func TestParseString_Assignments(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		bare   bool
		target string
	}{
		{"set to", "set x to 1", false, "x"},
		{"set equals sign", "set x = 1", false, "x"},
		{"make is", "make x is 1", false, "x"},
		{"let equals", "let x equals 1", false, "x"},
		{"bare", "x = 1", true, "x"},
		{"bare index", "xs[0] = 1", true, "xs[0]"},
		{"nested index", "set grid[1][2] to 0", false, "grid[1][2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := mustParse(t, tt.input)

			s, ok := prog.Stmts[0].(*SetStmt)
			if !ok {
				t.Fatalf("expected *SetStmt, got %T", prog.Stmts[0])
			}

			if s.Bare != tt.bare {
				t.Errorf("bare: want %v, got %v", tt.bare, s.Bare)
			}

			if got := formatExpr(s.Target); got != tt.target {
				t.Errorf("target: want %q, got %q", tt.target, got)
			}
		})
	}
}

func TestParseString_Precedence(t *testing.T) {
	tests := []struct {
		input string
		want  string // fully parenthesized shape
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"2 ** 3 ** 2", "(2 ** (3 ** 2))"},
		{"-2 ** 2", "((-2) ** 2)"},
		{"not a == b", "((not a) == b)"},
		{"a or b and c", "(a or (b and c))"},
		{"a is 1", "(a == 1)"},
		{"x < 1 + 2", "(x < (1 + 2))"},
		{"xs[1] * 2", "(xs[1] * 2)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"io.read_text(\"f\")[0]", `io.read_text("f")[0]`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := mustParse(t, "say "+tt.input)

			got := shape(prog.Stmts[0].(*SayStmt).Value)
			if got != tt.want {
				t.Errorf("want %s, got %s", tt.want, got)
			}
		})
	}
}

// shape writes e with every operator application parenthesized.
func shape(e Expr) string {
	switch e := e.(type) {
	case *BinaryExpr:
		return "(" + shape(e.X) + " " + operatorWord(e.Op) + " " + shape(e.Y) + ")"
	case *UnaryExpr:
		op := "-"
		if e.Op == NOT {
			op = "not "
		}

		return "(" + op + shape(e.X) + ")"
	case *IndexExpr:
		return shape(e.X) + "[" + shape(e.Index) + "]"
	default:
		return formatExpr(e)
	}
}

func TestParseString_ElsifChain(t *testing.T) {
	prog := mustParse(t, "if a then\nsay 1\nelif b then\nsay 2\notherwise\nsay 3\ndone")

	outer := prog.Stmts[0].(*IfStmt)
	if outer.Chained {
		t.Error("outer if must not be chained")
	}

	if len(outer.Else) != 1 {
		t.Fatalf("expected one chained if in else, got %d statements", len(outer.Else))
	}

	inner, ok := outer.Else[0].(*IfStmt)
	if !ok || !inner.Chained {
		t.Fatalf("expected chained *IfStmt, got %T", outer.Else[0])
	}

	if len(inner.Else) != 1 {
		t.Errorf("expected else block on chained if, got %d statements", len(inner.Else))
	}
}

func TestParseString_Choice(t *testing.T) {
	prog := mustParse(t, `choice "left" or "right" or "back " + str(1)`)

	c := prog.Stmts[0].(*ChoiceStmt)
	if len(c.Options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(c.Options))
	}
}

func TestParseString_Import(t *testing.T) {
	prog := mustParse(t, "from io import read_text, file_exists")

	s := prog.Stmts[0].(*ImportStmt)
	if !s.From || s.All || s.Module != "io" {
		t.Fatalf("unexpected import %+v", s)
	}

	if strings.Join(s.Names, ",") != "read_text,file_exists" {
		t.Errorf("unexpected names %v", s.Names)
	}
}

func TestParseString_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Error
		line  int
	}{
		{
			name:  "return at top level",
			input: "say 1\nreturn 2",
			want:  ErrReturnOutsideFunction,
			line:  2,
		},
		{
			name:  "break outside loop",
			input: "if true then\nbreak\nend",
			want:  ErrLoopControlOutsideLoop,
			line:  2,
		},
		{
			name:  "continue in function inside loop body",
			input: "while true do\nfunction f()\ncontinue\nend\nend",
			want:  ErrLoopControlOutsideLoop,
			line:  3,
		},
		{
			name:  "label inside block",
			input: "while true do\nlabel: inner\nend",
			want:  ErrMisplacedLabel,
			line:  2,
		},
		{
			name:  "goto inside function",
			input: "label: top\nfunction f()\ngoto top\nend",
			want:  ErrMisplacedLabel,
			line:  3,
		},
		{
			name:  "missing end",
			input: "if x then\nsay 1",
			want:  ErrUnexpectedToken,
			line:  2,
		},
		{
			name:  "missing then",
			input: "if x\nsay 1\nend",
			want:  ErrUnexpectedToken,
			line:  1,
		},
		{
			name:  "bare identifier",
			input: "player",
			want:  ErrInvalidStatement,
			line:  1,
		},
		{
			name:  "missing expression",
			input: "say",
			want:  ErrUnexpectedToken,
			line:  1,
		},
		{
			name:  "unclosed call",
			input: "say len(1, 2",
			want:  ErrUnexpectedToken,
			line:  1,
		},
		{
			name:  "duplicate parameter",
			input: "function f(a, a)\nend",
			want:  ErrUnexpectedToken,
			line:  1,
		},
		{
			name:  "call of non-name",
			input: "say (f)(1)",
			want:  ErrUnexpectedToken,
			line:  1,
		},
		{
			name:  "comma without element",
			input: "say [,]",
			want:  ErrUnexpectedToken,
			line:  1,
		},
		{
			name:  "repeated comma",
			input: "say [1,\n,]",
			want:  ErrUnexpectedToken,
			line:  2,
		},
		{
			name:  "lexical error",
			input: "say 'open",
			want:  ErrUnterminatedString,
			line:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *Error, got %T", err)
			}

			if e.Pos().Line != tt.line {
				t.Errorf("want line %d, got %s", tt.line, e.Pos())
			}
		})
	}
}

func TestParseString_ExpectHint(t *testing.T) {
	_, err := ParseString(context.Background(), "while x\nsay 1\nend")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %v", err)
	}

	if !strings.Contains(e.Error(), "Expected DO") {
		t.Errorf("unexpected message %q", e.Error())
	}

	if !strings.Contains(e.Hint(), "'do'") {
		t.Errorf("unexpected hint %q", e.Hint())
	}
}

func TestParseReader(t *testing.T) {
	prog, err := ParseReader(context.Background(), strings.NewReader("say 1\nsay 2"), Named("reader.qw"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if prog.Name != "reader.qw" || len(prog.Stmts) != 2 {
		t.Errorf("unexpected program %q with %d statements", prog.Name, len(prog.Stmts))
	}
}
