package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/quill/lang"
	"github.com/ardnew/quill/log"
)

// runDoneMsg is sent when a program run completes.
type runDoneMsg struct {
	interp *lang.Interpreter
	err    error
}

// editDoneMsg is sent when the editor returned a program that parses.
type editDoneMsg struct{ source string }

// editDeclinedMsg is sent when the user declined to re-edit after a syntax
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process fails for any other reason.
type editErrorMsg struct{ err error }

const (
	firstPrompt = "➜ "
	contPrompt  = "… "
)

func helpMessage() string {
	return `
Commands:

  :run     Run the collected program (also Ctrl+D)
  :list    Show the collected program
  :edit    Edit the collected program in $EDITOR
  :reset   Discard the collected program and variables
  :clear   Clear screen
  :help    Print this help
  :quit    Exit REPL

Usage:
  Type program lines; each line is added to the program
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Use Up/Down arrows for history navigation
  Use Shift+Up/Shift+Down to navigate only lines of the same kind
  Press Esc or Ctrl+C to clear the line, then the program, then exit
`
}

// inputMode distinguishes program lines from REPL commands in history.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

func modeOf(line string) inputMode {
	if strings.HasPrefix(line, ":") {
		return modeCtrl
	}

	return modeEval
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// formatLine formats the echo of an entered line.
func formatLine(prompt, input string) string {
	if modeOf(input) == modeCtrl {
		return ctrlPromptStyle.Render(prompt) + inputStyle.Render(input)
	}

	return promptStyle.Render(prompt) + inputStyle.Render(input)
}

// Config configures a REPL session.
type Config struct {
	// History is the path of the history file. An empty path keeps history
	// in memory only.
	History string
	Logger  log.Logger
	// Options configure the interpreter of every run.
	Options []lang.Option
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	lines        []string
	opts         []lang.Option
	last         *lang.Interpreter
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
}

// Run starts an interactive session.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg.Logger.TraceContext(
		ctx,
		"repl start",
		slog.String("history", cfg.History),
	)

	history := NewHistory(memfs.New(), "history")
	if cfg.History != "" {
		history = NewHistory(
			osfs.New(filepath.Dir(cfg.History)),
			filepath.Base(cfg.History),
		)
	}

	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history",
			slog.String("path", cfg.History),
			slog.Any("error", err))
	}

	cfg.Logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, history, cfg.Logger, cfg.Options...)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return context.Cause(ctx)
	}

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	history *History,
	logger log.Logger,
	opts ...lang.Option,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(firstPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		opts:       opts,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
	}
}

// source returns the collected program text.
func (m model) source() string {
	if len(m.lines) == 0 {
		return ""
	}

	return strings.Join(m.lines, "\n") + "\n"
}

// prompt returns the prompt for the next line.
func (m model) prompt() string {
	if len(m.lines) == 0 {
		return firstPrompt
	}

	return contPrompt
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(firstPrompt) - 2

		return m, nil

	case runDoneMsg:
		if msg.interp != nil {
			m.last = msg.interp
		}

		m.lines = nil
		m.setPrompt()

		if msg.err != nil {
			return m, tea.Println(errorStyle.Render("✗ Program stopped"))
		}

		return m, tea.Println(resultStyle.Render("✓ Program finished"))

	case editDoneMsg:
		m.lines = strings.Split(strings.TrimRight(msg.source, "\n"), "\n")
		if msg.source == "" {
			m.lines = nil
		}

		m.setPrompt()
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("line_count", len(m.lines)),
		)

		return m, tea.Println(resultStyle.Render("✓ Program updated"))

	case editDeclinedMsg:
		return m, tea.Println(hintStyle.Render("Edit discarded"))

	case editErrorMsg:
		return m, tea.Println(
			errorStyle.Render("✗ Edit failed: " + msg.err.Error()),
		)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	viewingHistory := m.historyIdx < m.history.Len()
	funcCall := detectFunctionCall(input, m.input.Position())

	switch {
	case viewingHistory:
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		hint := "Type a program line, or :help for commands"
		if n := len(m.lines); n > 0 {
			hint = fmt.Sprintf("%d line(s) collected; :run or Ctrl+D to run", n)
		}

		b.WriteString(hintStyle.Render(hint))

	case funcCall.inCall && modeOf(input) == modeEval:
		signature, params := getSignature(m.source()+input, funcCall.name)
		if signature != "" {
			b.WriteString(renderSignatureHint(signature, params, funcCall.argIndex))
		} else if len(m.matches) > 0 {
			b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
		}

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m *model) setPrompt() {
	m.input.Prompt = promptStyle.Render(m.prompt())
}

// resetInput clears the input line and completion state.
func (m *model) resetInput() {
	m.input.SetValue("")
	m.tabActive = false
	m.historyIdx = m.history.Len()
	refreshMatches(m, false)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		return m.cancel()

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		return m.cancel()

	case tea.KeyCtrlD:
		if line := m.input.Value(); strings.TrimSpace(line) != "" && modeOf(line) == modeEval {
			m.lines = append(m.lines, line)
			_, _ = m.history.Write(line)
			m.resetInput()
		}

		if len(m.lines) == 0 {
			m.quitting = true

			return m, tea.Quit
		}

		return m.run()

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.submit()
		}

		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.handleTab()

	case tea.KeyShiftTab:
		return m.handleShiftTab()

	case tea.KeyUp:
		return m.historyPrev()

	case tea.KeyDown:
		return m.historyNext()

	case tea.KeyShiftUp:
		return m.historyPrevInMode()

	case tea.KeyShiftDown:
		return m.historyNextInMode()

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cancel clears the input line, or the collected program when the line is
// empty, or quits when both are empty.
func (m model) cancel() (model, tea.Cmd) {
	switch {
	case m.input.Value() != "":
		m.resetInput()

		return m, nil

	case len(m.lines) > 0:
		m.lines = nil
		m.setPrompt()

		return m, tea.Println(hintStyle.Render("Program discarded"))
	}

	m.quitting = true

	return m, tea.Quit
}

func (m model) handleTab() (model, tea.Cmd) {
	if len(m.matches) == 0 {
		return m, nil
	}

	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m, nil
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + 1) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m, nil
}

func (m model) handleShiftTab() (model, tea.Cmd) {
	if len(m.matches) == 0 {
		return m, nil
	}

	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m, nil
	}

	if m.tabActive {
		m.suggIdx--
		if m.suggIdx < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = len(m.matches) - 1
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m, nil
}

// replaceCurrentWord replaces the current word in the input with
// replacement and moves the cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input. When
// autoConfirm is set and the typed word already equals the only candidate,
// the completion is accepted.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	candidate := m.matches[0].Str
	if m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

// submit adds the input line to the program, or executes it when it is a
// command.
func (m model) submit() (model, tea.Cmd) {
	line := m.input.Value()
	prompt := m.prompt()

	if strings.TrimSpace(line) == "" {
		if len(m.lines) == 0 {
			return m, nil
		}

		line = ""
	}

	mode := modeOf(strings.TrimSpace(line))

	if line != "" {
		_, _ = m.history.WriteWithMode(line, mode)
	}

	m.resetInput()

	echo := tea.Println(formatLine(prompt, line))

	if mode == modeCtrl {
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl command",
			slog.String("input", line),
		)

		next, cmd := m.executeCommand(strings.TrimSpace(line))

		return next, tea.Sequence(echo, cmd)
	}

	m.lines = append(m.lines, line)
	m.setPrompt()

	return m, echo
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(strings.TrimPrefix(input, ":"))
	if len(parts) == 0 {
		return m, nil
	}

	cmd := parts[0]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", cmd),
		slog.Any("args", parts[1:]),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Quit

	case "h", "help":
		return m, tea.Println(helpMessage())

	case "l", "list":
		return m, tea.Println(m.listing())

	case "c", "clear":
		return m, tea.ClearScreen

	case "reset":
		m.lines = nil
		m.last = nil
		m.setPrompt()

		return m, tea.Println(hintStyle.Render("Program and variables discarded"))

	case "r", "run":
		if len(m.lines) == 0 {
			return m, tea.Println(hintStyle.Render("Nothing to run"))
		}

		return m.run()

	case "e", "edit":
		return m.edit()

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: :" + cmd + " (try :help)"),
		)
	}
}

// run executes the collected program with the terminal released. Variables
// of the previous run are carried into the next.
func (m model) run() (model, tea.Cmd) {
	opts := m.opts
	if m.last != nil {
		vars := map[string]lang.Value{}

		for _, name := range m.last.Variables() {
			if v, ok := m.last.Lookup(name); ok {
				vars[name] = v
			}
		}

		opts = append(opts[:len(opts):len(opts)], lang.WithVariables(vars))
	}

	cmd := &runCommand{
		source:  m.source(),
		ctxFunc: m.ctxFunc,
		opts:    opts,
		logger:  m.logger,
	}

	return m, tea.Exec(cmd, func(err error) tea.Msg {
		return runDoneMsg{interp: cmd.interp, err: err}
	})
}

func (m model) edit() (model, tea.Cmd) {
	cmd := &editCommand{
		source:  m.source(),
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return m, tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		return editDoneMsg{source: cmd.newSource}
	})
}

// listing returns the collected program with line numbers.
func (m model) listing() string {
	if len(m.lines) == 0 {
		return hintStyle.Render("(empty)")
	}

	width := len(strconv.Itoa(len(m.lines)))

	var b strings.Builder

	for i, line := range m.lines {
		if i > 0 {
			b.WriteByte('\n')
		}

		b.WriteString(hintStyle.Render(fmt.Sprintf("%*d ", width, i+1)))
		b.WriteString(line)
	}

	return b.String()
}

func (m model) showEntry(i int) model {
	if entry, err := m.history.GetEntry(i); err == nil {
		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)
	}

	return m
}

func (m model) historyPrev() (model, tea.Cmd) {
	if m.historyIdx > 0 {
		m = m.showEntry(m.historyIdx - 1)
	}

	return m, nil
}

func (m model) historyNext() (model, tea.Cmd) {
	if m.historyIdx < m.history.Len()-1 {
		return m.showEntry(m.historyIdx + 1), nil
	}

	m.resetInput()

	return m, nil
}

func (m model) historyPrevInMode() (model, tea.Cmd) {
	mode := modeOf(m.input.Value())

	for i := m.historyIdx - 1; i >= 0; i-- {
		if entry, err := m.history.GetEntry(i); err == nil && entry.Mode == mode {
			return m.showEntry(i), nil
		}
	}

	return m, nil
}

func (m model) historyNextInMode() (model, tea.Cmd) {
	mode := modeOf(m.input.Value())

	for i := m.historyIdx + 1; i < m.history.Len(); i++ {
		if entry, err := m.history.GetEntry(i); err == nil && entry.Mode == mode {
			return m.showEntry(i), nil
		}
	}

	if m.historyIdx < m.history.Len() {
		m.resetInput()
	}

	return m, nil
}
