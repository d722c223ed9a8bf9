package lang

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of interactive program output. Styles are bound
// to the output writer, so they render as plain text unless it is a
// terminal.
type palette struct {
	say     lipgloss.Style
	prompt  lipgloss.Style
	arrow   lipgloss.Style
	menu    lipgloss.Style
	number  lipgloss.Style
	option  lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	text := r.NewStyle().TabWidth(lipgloss.NoTabConversion)

	return palette{
		say:     text.Foreground(lipgloss.Color("6")),
		prompt:  text.Foreground(lipgloss.Color("11")),
		arrow:   text.Foreground(lipgloss.Color("10")),
		number:  text.Foreground(lipgloss.Color("11")),
		option:  text.Foreground(lipgloss.Color("6")),
		success: text.Foreground(lipgloss.Color("10")),
		warn:    text.Foreground(lipgloss.Color("3")),
		fail:    text.Foreground(lipgloss.Color("9")),
		menu: r.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("12")).
			Foreground(lipgloss.Color("14")).
			Bold(true).
			Padding(0, 1),
	}
}

// paint renders each line of s with st, leaving line structure, tabs and
// trailing spaces exactly as given.
func paint(st lipgloss.Style, s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = st.Inline(true).Render(l)
		}
	}

	return strings.Join(lines, "\n")
}
