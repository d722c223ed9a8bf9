package repl

import (
	"slices"
	"testing"

	"github.com/sahilm/fuzzy"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"after_dot", "io.re", 5, "re", 3, 5},
		{"after_space", "say fo", 6, "fo", 4, 6},
		{"after_paren", "len(fo", 6, "fo", 4, 6},
		{"after_comma", "max(a, fo", 9, "fo", 7, 9},
		{"after_bracket", "xs[fo", 5, "fo", 3, 5},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"underscore", "read_te", 7, "read_te", 0, 7},
		{"unicode", "say héro", 9, "héro", 4, 9},
		{"command", ":ru", 3, "ru", 1, 3},
		{"empty_after_dot", "io.", 3, "", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentName(t *testing.T) {
	tests := []struct {
		input     string
		wordStart int
		want      string
	}{
		{"fo", 0, ""},
		{"io.re", 3, "io"},
		{"say game.", 9, "game"},
		{"say x + io.", 11, "io"},
		{"say re", 4, ""},
		{".re", 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parentName(tt.input, tt.wordStart); got != tt.want {
				t.Errorf("parentName(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestNames(t *testing.T) {
	got := names("set gold to 1\nsay gold + hp\nsay \"unterminated")
	if !slices.Equal(got, []string{"gold", "hp"}) {
		t.Errorf("unexpected names %v", got)
	}
}

func TestCompletions(t *testing.T) {
	m := newTestModel(t)
	m.lines = []string{"set gold to 1"}

	top := m.completions("")
	for _, want := range []string{"say", "len", "clamp", "game", "io", "gold"} {
		if !slices.Contains(top, want) {
			t.Errorf("missing %q in %v", want, top)
		}
	}

	if got := m.completions("io"); !slices.Contains(got, "read_text") {
		t.Errorf("unexpected io candidates %v", got)
	}

	if got := m.completions("nope"); len(got) != 0 {
		t.Errorf("unexpected candidates %v", got)
	}
}

func TestComputeMatches(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		none  bool
	}{
		{name: "empty", input: "", none: true},
		{name: "keyword", input: "wh", want: "while"},
		{name: "builtin", input: "say clam", want: "clamp"},
		{name: "module member", input: "say io.", want: "read_text"},
		{name: "command", input: ":ru", want: "run"},
		{name: "command argument", input: ":run x", none: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			m.input.SetValue(tt.input)
			m.input.SetCursor(len(tt.input))

			matches, _, _, _ := m.computeMatches()

			if tt.none {
				if len(matches) != 0 {
					t.Errorf("unexpected matches %v", matchStrings(matches))
				}

				return
			}

			if !slices.Contains(matchStrings(matches), tt.want) {
				t.Errorf("missing %q in %v", tt.want, matchStrings(matches))
			}
		})
	}
}

func TestRenderCandidateBar(t *testing.T) {
	matches := fuzzy.Matches{{Str: "alpha"}, {Str: "beta"}, {Str: "gamma"}, {Str: "delta"}}

	if got := renderCandidateBar(matches, 0, false, 80); got != "alpha  beta  gamma  delta" {
		t.Errorf("unexpected bar %q", got)
	}

	if got := renderCandidateBar(matches, 0, false, 15); got != "alpha  beta  ..." {
		t.Errorf("unexpected ellipsized bar %q", got)
	}

	if got := renderCandidateBar(nil, 0, false, 80); got != "" {
		t.Errorf("unexpected empty bar %q", got)
	}
}

func matchStrings(matches fuzzy.Matches) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}

	return out
}
