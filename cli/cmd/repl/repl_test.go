package repl

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/quill/lang"
	"github.com/ardnew/quill/log"
)

func newTestModel(t *testing.T) model {
	t.Helper()

	return newModel(context.Background(), NewHistory(memfs.New(), "history"), log.Logger{})
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)

	nm, ok := next.(model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}

	return nm, cmd
}

func typeText(t *testing.T, m model, s string) model {
	t.Helper()

	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	return m
}

func press(t *testing.T, m model, k tea.KeyType) (model, tea.Cmd) {
	t.Helper()

	return update(t, m, tea.KeyMsg{Type: k})
}

func TestModel_CollectLines(t *testing.T) {
	m := newTestModel(t)

	if m.prompt() != firstPrompt {
		t.Errorf("unexpected prompt %q", m.prompt())
	}

	m = typeText(t, m, "set x to 2")
	m, _ = press(t, m, tea.KeyEnter)
	m = typeText(t, m, "say x")
	m, cmd := press(t, m, tea.KeyEnter)

	if cmd == nil {
		t.Error("entered lines should be echoed")
	}

	if !slices.Equal(m.lines, []string{"set x to 2", "say x"}) {
		t.Errorf("unexpected lines %q", m.lines)
	}

	if m.source() != "set x to 2\nsay x\n" {
		t.Errorf("unexpected source %q", m.source())
	}

	if m.input.Value() != "" || m.prompt() != contPrompt {
		t.Errorf("input %q, prompt %q", m.input.Value(), m.prompt())
	}

	if m.history.Len() != 2 {
		t.Errorf("want 2 history entries, got %d", m.history.Len())
	}
}

func TestModel_BlankLines(t *testing.T) {
	m := newTestModel(t)

	m, _ = press(t, m, tea.KeyEnter)
	if len(m.lines) != 0 {
		t.Fatalf("a blank first line must be ignored, got %q", m.lines)
	}

	m = typeText(t, m, "say 1")
	m, _ = press(t, m, tea.KeyEnter)
	m, _ = press(t, m, tea.KeyEnter)

	if !slices.Equal(m.lines, []string{"say 1", ""}) {
		t.Errorf("unexpected lines %q", m.lines)
	}

	if m.history.Len() != 1 {
		t.Errorf("blank lines must not enter history, got %d entries", m.history.Len())
	}
}

func TestModel_Commands(t *testing.T) {
	m := newTestModel(t)
	m.lines = []string{"say 1"}

	m = typeText(t, m, ":list")
	m, cmd := press(t, m, tea.KeyEnter)

	if cmd == nil || len(m.lines) != 1 {
		t.Fatalf("list must keep the program, got %q", m.lines)
	}

	if e, err := m.history.GetEntry(0); err != nil || e.Mode != modeCtrl {
		t.Errorf("commands must be recorded as such, got %v, %v", e, err)
	}

	m = typeText(t, m, ":reset")
	m, _ = press(t, m, tea.KeyEnter)

	if len(m.lines) != 0 || m.prompt() != firstPrompt {
		t.Errorf("reset must discard the program, got %q", m.lines)
	}

	m = typeText(t, m, ":quit")
	m, _ = press(t, m, tea.KeyEnter)

	if !m.quitting {
		t.Error("quit must end the session")
	}
}

func TestModel_Cancel(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		t.Run(key.String(), func(t *testing.T) {
			m := newTestModel(t)
			m.lines = []string{"say 1"}
			m = typeText(t, m, "say")

			m, _ = press(t, m, key)
			if m.input.Value() != "" || len(m.lines) != 1 || m.quitting {
				t.Fatalf("first cancel must clear the line only")
			}

			m, _ = press(t, m, key)
			if len(m.lines) != 0 || m.quitting {
				t.Fatalf("second cancel must discard the program only")
			}

			m, _ = press(t, m, key)
			if !m.quitting {
				t.Error("cancel on an empty program must quit")
			}
		})
	}
}

func TestModel_CtrlD(t *testing.T) {
	m := newTestModel(t)

	m = typeText(t, m, "say 1")
	m, cmd := press(t, m, tea.KeyCtrlD)

	if m.quitting || cmd == nil {
		t.Fatal("Ctrl+D with a program must run it")
	}

	if !slices.Equal(m.lines, []string{"say 1"}) {
		t.Errorf("the pending line must join the program, got %q", m.lines)
	}

	m.lines = nil

	m, _ = press(t, m, tea.KeyCtrlD)
	if !m.quitting {
		t.Error("Ctrl+D on an empty program must quit")
	}
}

func TestModel_RunDone(t *testing.T) {
	m := newTestModel(t)
	m.lines = []string{"say 1"}

	in := lang.New()

	m, cmd := update(t, m, runDoneMsg{interp: in})
	if len(m.lines) != 0 || m.last != in || cmd == nil {
		t.Errorf("run completion must clear the program and keep the interpreter")
	}
}

func TestModel_EditDone(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, editDoneMsg{source: "say 1\nsay 2\n"})
	if !slices.Equal(m.lines, []string{"say 1", "say 2"}) {
		t.Errorf("unexpected lines %q", m.lines)
	}

	m, _ = update(t, m, editDoneMsg{source: ""})
	if len(m.lines) != 0 {
		t.Errorf("unexpected lines %q", m.lines)
	}
}

func TestModel_TabCompletion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{":ru", ":run"},
		{"say io.read_t", "say io.read_text"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m := typeText(t, newTestModel(t), tt.input)

			m, _ = press(t, m, tea.KeyTab)
			if got := m.input.Value(); got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestModel_History(t *testing.T) {
	m := newTestModel(t)

	for _, line := range []string{"say 1", ":list", "say 2"} {
		m = typeText(t, m, line)
		m, _ = press(t, m, tea.KeyEnter)
	}

	m, _ = press(t, m, tea.KeyUp)
	if m.input.Value() != "say 2" {
		t.Fatalf("unexpected input %q", m.input.Value())
	}

	m, _ = press(t, m, tea.KeyShiftUp)
	if m.input.Value() != "say 1" {
		t.Errorf("shift+up must skip commands, got %q", m.input.Value())
	}

	m, _ = press(t, m, tea.KeyDown)
	if m.input.Value() != ":list" {
		t.Errorf("unexpected input %q", m.input.Value())
	}

	m, _ = press(t, m, tea.KeyDown)
	m, _ = press(t, m, tea.KeyDown)

	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("moving past the newest entry must clear the input, got %q", m.input.Value())
	}
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t)
	if !strings.Contains(m.View(), "Type a program line") {
		t.Errorf("unexpected view:\n%s", m.View())
	}

	m.lines = []string{"say 1"}
	if !strings.Contains(m.View(), "1 line(s) collected") {
		t.Errorf("unexpected view:\n%s", m.View())
	}

	m = typeText(t, m, "say range(1, ")
	if !strings.Contains(m.View(), "range(arg, [arg], [arg])") {
		t.Errorf("expected a signature hint:\n%s", m.View())
	}
}

func TestListing(t *testing.T) {
	m := newTestModel(t)
	if m.listing() != "(empty)" {
		t.Errorf("unexpected listing %q", m.listing())
	}

	m.lines = make([]string, 10)
	m.lines[0], m.lines[9] = "say 1", "say 10"

	got := strings.Split(m.listing(), "\n")
	if got[0] != " 1 say 1" || got[9] != "10 say 10" {
		t.Errorf("unexpected listing %q", got)
	}
}

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		opts    []lang.Option
		stdin   string
		wantOut string
		wantErr bool
		stderr  string
	}{
		{name: "output", source: "say 1 + 1\n", wantOut: "2\n"},
		{name: "stdin", source: "ask \"\" into n\nsay n\n", stdin: "Ada\n", wantOut: "Ada\n"},
		{
			name:    "variables",
			source:  "say x\n",
			opts:    []lang.Option{lang.WithVariables(map[string]lang.Value{"x": lang.NewInt(3)})},
			wantOut: "3\n",
		},
		{name: "input ended", source: "ask \"?\" into n\n"},
		{name: "syntax error", source: "say (\n", wantErr: true, stderr: "SyntaxError"},
		{name: "runtime error", source: "say y\n", wantErr: true, stderr: "RuntimeError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer

			c := &runCommand{
				source:  tt.source,
				ctxFunc: context.Background,
				opts:    tt.opts,
			}
			c.SetStdin(strings.NewReader(tt.stdin))
			c.SetStdout(&out)
			c.SetStderr(&errOut)

			err := c.Run()
			if (err != nil) != tt.wantErr {
				t.Fatalf("run error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantOut != "" && !strings.HasSuffix(out.String(), tt.wantOut) {
				t.Errorf("want output ending %q, got %q", tt.wantOut, out.String())
			}

			if !strings.Contains(errOut.String(), tt.stderr) {
				t.Errorf("missing %q in stderr %q", tt.stderr, errOut.String())
			}
		})
	}
}
