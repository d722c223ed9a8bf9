package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/quill/lang"
)

// commands are the REPL commands, entered with a leading ':'.
var commands = []string{"run", "list", "clear", "reset", "edit", "help", "quit"}

// isWordBoundary reports whether r ends an identifier for completion
// purposes. The member-access dot is a boundary so that module functions
// complete on their own.
func isWordBoundary(r rune) bool {
	return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// wordBounds returns the word under the cursor and its byte boundaries
// within input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentName returns the identifier before the dot that precedes the word
// starting at wordStart, as in "io" for "say io.re". It returns "" when the
// word is not a member access.
func parentName(input string, wordStart int) string {
	prefix, ok := strings.CutSuffix(input[:wordStart], ".")
	if !ok {
		return ""
	}

	word, _, _ := wordBounds(prefix, len(prefix))

	return word
}

// names returns the identifiers the program collected so far introduces or
// refers to. Incomplete programs are scanned as far as they tokenize.
func names(source string) []string {
	tokens, _ := lang.Tokenize(source)

	var out []string

	for _, tok := range tokens {
		if tok.Kind == lang.IDENT && !slices.Contains(out, tok.Text) {
			out = append(out, tok.Text)
		}
	}

	return out
}

// completions returns the candidates for a word whose member-access parent
// is parent. Top-level candidates are the keywords, built-ins and modules,
// followed by the names known to the session.
func (m model) completions(parent string) []string {
	if parent != "" {
		return lang.ModuleFunctions(parent)
	}

	out := slices.Concat(lang.Keywords(), lang.Builtins(), lang.Modules())

	known := names(m.source())
	if m.last != nil {
		known = append(known, m.last.Variables()...)
		known = append(known, m.last.Functions()...)
	}

	for _, name := range known {
		if !strings.Contains(name, ".") && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}

	return out
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor, ranked best-first, with the word boundaries. Nothing matches an
// empty top-level word. An empty word after "module." lists every function
// of the module.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)

	if strings.HasPrefix(input, ":") {
		if word == "" || wordStart != 1 {
			return nil, nil, wordStart, wordEnd
		}

		candidates = commands
	} else {
		parent := parentName(input, wordStart)
		candidates = m.completions(parent)

		if word == "" {
			if parent == "" || len(candidates) == 0 {
				return nil, nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, candidates, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit width. The selected candidate is highlighted while tab-cycling.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters
// highlighted. Callable names are shown with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if isFunction(match.Str) {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}

// isFunction reports whether name is a built-in function.
func isFunction(name string) bool {
	if _, ok := lang.LookupBuiltin(name); ok {
		return true
	}

	return false
}
