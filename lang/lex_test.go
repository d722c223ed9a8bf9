package lang

import (
	"errors"
	"slices"
	"testing"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}

	return out
}

func TestTokenize_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Kind
	}{
		{
			name:  "say string",
			input: `say "hi"`,
			want:  []Kind{SAY, STRING, EOF},
		},
		{
			name:  "synonyms are case-insensitive",
			input: "PRINT 1\nLet x Equals 2",
			want:  []Kind{SAY, NUMBER, NEWLINE, SET, IDENT, IS, NUMBER, EOF},
		},
		{
			name:  "two-rune operators",
			input: "a ** b == c != d >= e <= f",
			want:  []Kind{IDENT, POWER, IDENT, EQ, IDENT, NE, IDENT, GE, IDENT, LE, IDENT, EOF},
		},
		{
			name:  "comment runs to end of line",
			input: "say 1 # say 2\nsay 3",
			want:  []Kind{SAY, NUMBER, NEWLINE, SAY, NUMBER, EOF},
		},
		{
			name:  "dot without digit is an operator",
			input: "io.read_text 1.",
			want:  []Kind{IDENT, DOT, IDENT, NUMBER, DOT, EOF},
		},
		{
			name:  "brackets and punctuation",
			input: "label: [1, 2](x)",
			want: []Kind{
				LABEL, COLON, LBRACKET, NUMBER, COMMA, NUMBER, RBRACKET,
				LPAREN, IDENT, RPAREN, EOF,
			},
		},
		{
			name:  "empty source",
			input: "",
			want:  []Kind{EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("tokenize error: %v", err)
			}

			if got := kinds(toks); !slices.Equal(got, tt.want) {
				t.Errorf("kinds mismatch:\nwant: %v\ngot:  %v", tt.want, got)
			}
		})
	}
}

func TestTokenize_Values(t *testing.T) {
	toks, err := Tokenize(`say "a\tb\n" 'it''s' 42 3.25 12345678901234567890`)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	want := []Value{
		Str("a\tb\n"),
		Str("it"),
		Str("s"),
		NewInt(42),
		Float(3.25),
	}

	for i, w := range want {
		if got := toks[i+1].Value; !Equal(got, w) || got.TypeName() != w.TypeName() {
			t.Errorf("token %d: want %s, got %s", i+1, Repr(w), Repr(got))
		}
	}

	big, ok := toks[6].Value.(Int)
	if !ok || big.Big().String() != "12345678901234567890" {
		t.Errorf("expected arbitrary-precision int, got %s", Repr(toks[6].Value))
	}
}

func TestTokenize_Positions(t *testing.T) {
	toks, err := Tokenize("say 1\n  set x to \"é\" + y")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	tests := []struct {
		index int
		want  Position
	}{
		{0, Position{Line: 1, Column: 1}},
		{1, Position{Line: 1, Column: 5}},
		{3, Position{Line: 2, Column: 3}},
		{6, Position{Line: 2, Column: 12}},
		{7, Position{Line: 2, Column: 16}}, // columns count runes, not bytes
	}

	for _, tt := range tests {
		if got := toks[tt.index].Pos; got != tt.want {
			t.Errorf("token %d (%s): want %s, got %s", tt.index, toks[tt.index], tt.want, got)
		}
	}
}

func TestTokenize_KeywordKeepsSpelling(t *testing.T) {
	toks, err := Tokenize("Done")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	if toks[0].Kind != END || toks[0].Text != "Done" {
		t.Errorf("want END with text %q, got %s %q", "Done", toks[0].Kind, toks[0].Text)
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Error
		pos   Position
	}{
		{
			name:  "unterminated at end of file",
			input: `say "hello`,
			want:  ErrUnterminatedString,
			pos:   Position{Line: 1, Column: 5},
		},
		{
			name:  "unterminated at end of line",
			input: "say 1\nsay 'oops\nsay 2",
			want:  ErrUnterminatedString,
			pos:   Position{Line: 2, Column: 5},
		},
		{
			name:  "unknown character",
			input: "set x to 1 @ 2",
			want:  ErrUnknownCharacter,
			pos:   Position{Line: 1, Column: 12},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *Error, got %T", err)
			}

			if e.Phase() != PhaseSyntax {
				t.Errorf("want syntax phase, got %s", e.Phase())
			}

			if e.Pos() != tt.pos {
				t.Errorf("want position %s, got %s", tt.pos, e.Pos())
			}

			if e.SourceLine() == "" {
				t.Error("expected offending source line")
			}
		})
	}
}

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		word string
		want Kind
	}{
		{"say", SAY},
		{"Speak", SAY},
		{"OTHERWISE", ELSE},
		{"elif", ELSIF},
		{"none", NULL},
		{"give", RETURN},
		{"player", IDENT},
	}

	for _, tt := range tests {
		if got := LookupKeyword(tt.word); got != tt.want {
			t.Errorf("LookupKeyword(%q) = %s, want %s", tt.word, got, tt.want)
		}
	}
}
