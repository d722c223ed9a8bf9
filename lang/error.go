package lang

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Phase distinguishes errors found before a program runs from errors raised
// while it runs.
type Phase int

const (
	PhaseSyntax Phase = iota
	PhaseRuntime
)

func (p Phase) String() string {
	if p == PhaseSyntax {
		return "SyntaxError"
	}

	return "RuntimeError"
}

// Sentinel errors. Every diagnostic produced by this package derives from
// one of these, so callers can test the kind with [errors.Is].
var (
	ErrUnterminatedString = newSentinel(PhaseSyntax, "unterminated string",
		`Strings must end with a closing quote mark (") on the same line`)
	ErrUnknownCharacter = newSentinel(PhaseSyntax, "unknown character",
		"Check for typos or unsupported characters")
	ErrUnexpectedToken = newSentinel(PhaseSyntax, "unexpected token", "")
	ErrInvalidStatement = newSentinel(PhaseSyntax, "invalid statement",
		"A line starting with a name must be a call, an assignment, or an indexed assignment")
	ErrReturnOutsideFunction = newSentinel(PhaseSyntax, "return outside function",
		"'return' can only be used inside a function body")
	ErrLoopControlOutsideLoop = newSentinel(PhaseSyntax, "loop control outside loop",
		"'break' and 'continue' can only be used inside a while or for loop")
	ErrMisplacedLabel = newSentinel(PhaseSyntax, "misplaced label",
		"Labels must appear at the top level of the program, and goto cannot be used inside a function")

	ErrUndefinedVariable = newSentinel(PhaseRuntime, "undefined variable",
		"Make sure the variable is declared with 'set' before using it")
	ErrUndefinedFunction = newSentinel(PhaseRuntime, "undefined function",
		"Define the function with 'function' before calling it, or import the module that provides it")
	ErrArgumentCount = newSentinel(PhaseRuntime, "wrong number of arguments",
		"Pass exactly one argument for each parameter in the function definition")
	ErrDivisionByZero = newSentinel(PhaseRuntime, "division by zero",
		"Check that the divisor is not zero before dividing")
	ErrIndexOutOfRange = newSentinel(PhaseRuntime, "index out of range",
		"Array/string indices must be within bounds (0 to length-1)")
	ErrNotIndexable = newSentinel(PhaseRuntime, "value is not indexable",
		"Only lists and strings can be indexed")
	ErrNotIterable = newSentinel(PhaseRuntime, "value is not iterable",
		"A for loop can only iterate over a list or a string")
	ErrInvalidAssignment = newSentinel(PhaseRuntime, "invalid assignment target",
		"Only list elements can be assigned by index; strings cannot be changed in place")
	ErrTypeMismatch = newSentinel(PhaseRuntime, "type mismatch",
		"Use str(), int() or float() to convert values before combining them")
	ErrUnknownModule = newSentinel(PhaseRuntime, "unknown module",
		"Available modules are 'io' and 'game'")
	ErrModuleFunction = newSentinel(PhaseRuntime, "function not found in module", "")
	ErrModuleNotImported = newSentinel(PhaseRuntime, "module not imported",
		"Add 'import <module>' before calling module functions by name")
	ErrRecursionDepth = newSentinel(PhaseRuntime, "maximum recursion depth exceeded",
		"Make sure every recursive function has a case that returns without calling itself")
	ErrLabelNotFound = newSentinel(PhaseRuntime, "label not found",
		"Declare the target with 'label: name' at the top level of the program")
	ErrBuiltin = newSentinel(PhaseRuntime, "built-in function failed", "")
)

// expectHint returns the remediation tip for a missing token of kind k.
func expectHint(k Kind) string {
	switch k {
	case THEN:
		return "An 'if' statement requires 'then' before the body"
	case END:
		return "Control structures (if/while/for/function) must end with 'end'"
	case DO:
		return "A 'while' or 'for' loop requires 'do' before the body"
	case RPAREN, RBRACKET:
		return "Check that every opening bracket has a matching closing bracket"
	default:
		return ""
	}
}

// Error is a diagnostic with a source location, an optional hint, and
// structured logging attributes. It implements both error and
// [slog.LogValuer].
type Error struct {
	base   *Error // sentinel this error derives from; nil for sentinels
	phase  Phase
	msg    string // description of the kind
	detail string // human-readable message for this occurrence
	hint   string
	pos    Position
	source string // text of the offending line
	err    error
	attrs  []slog.Attr
}

func newSentinel(phase Phase, msg, hint string) *Error {
	return &Error{phase: phase, msg: msg, hint: hint}
}

// WrapError returns err as an *Error, wrapping it in a runtime error if it
// is not one already.
func WrapError(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{phase: PhaseRuntime, err: err}
}

func (e *Error) derive() *Error {
	c := *e
	if e.base == nil {
		c.base = e
	}

	c.attrs = append([]slog.Attr(nil), e.attrs...)

	return &c
}

// Error returns the message without location or hint; see [Error.Format].
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	switch {
	case e.detail != "":
		part = append(part, e.detail)
	case e.msg != "":
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is e or the sentinel e derives from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && (t == e || (e.base != nil && t == e.base))
}

// Phase reports whether e was raised while parsing or while running.
func (e *Error) Phase() Phase { return e.phase }

// Pos returns the source location of e, if known.
func (e *Error) Pos() Position { return e.pos }

// Hint returns the remediation tip attached to e.
func (e *Error) Hint() string { return e.hint }

// SourceLine returns the text of the line e refers to.
func (e *Error) SourceLine() string { return e.source }

// Describe returns a copy of e carrying a formatted message.
func (e *Error) Describe(format string, args ...any) *Error {
	c := e.derive()
	c.detail = fmt.Sprintf(format, args...)

	return c
}

// At returns a copy of e located at pos.
func (e *Error) At(pos Position) *Error {
	c := e.derive()
	c.pos = pos

	return c
}

// WithHint returns a copy of e with its hint replaced.
func (e *Error) WithHint(hint string) *Error {
	c := e.derive()
	c.hint = hint

	return c
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	c := e.derive()
	c.err = err

	return c
}

// With returns a copy of e with attrs appended for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.derive()
	c.attrs = append(c.attrs, attrs...)

	return c
}

// inSource records the offending line from src if e has a location and no
// line was recorded yet.
func (e *Error) inSource(src string) *Error {
	if e.source != "" || !e.pos.IsValid() {
		return e
	}

	lines := strings.Split(src, "\n")
	if e.pos.Line > len(lines) {
		return e
	}

	e.source = strings.TrimRight(lines[e.pos.Line-1], "\r")

	return e
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	attrs = append(attrs,
		slog.String("kind", e.phase.String()),
		slog.String("error", e.Error()),
	)

	if e.pos.IsValid() {
		attrs = append(attrs, slog.Int("line", e.pos.Line), slog.Int("column", e.pos.Column))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Format writes the full diagnostic to w: a header with the error kind and
// location, the message, the offending source line with a caret under the
// column, and the hint. Styling is applied only when w is a terminal.
func (e *Error) Format(w io.Writer) error {
	_, err := io.WriteString(w, e.render(lipgloss.NewRenderer(w)))

	return err
}

func (e *Error) render(r *lipgloss.Renderer) string {
	alert := r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dim := r.NewStyle().Foreground(lipgloss.Color("8"))
	tip := r.NewStyle().Foreground(lipgloss.Color("3"))

	var b strings.Builder

	b.WriteString(alert.Render(e.phase.String()))

	if e.pos.IsValid() {
		fmt.Fprintf(&b, " at line %d, column %d", e.pos.Line, e.pos.Column)
	}

	b.WriteString(":\n  ")
	b.WriteString(e.Error())
	b.WriteByte('\n')

	if strings.TrimSpace(e.source) != "" {
		gutter := fmt.Sprintf("  %4d | ", e.pos.Line)

		b.WriteByte('\n')
		b.WriteString(dim.Render(gutter))
		b.WriteString(e.source)
		b.WriteByte('\n')

		if e.pos.Column > 0 {
			b.WriteString(strings.Repeat(" ", len(gutter)+e.pos.Column-1))
			b.WriteString(alert.Render("^"))
			b.WriteByte('\n')
		}
	}

	if e.hint != "" {
		b.WriteString("\n  💡 Hint: ")
		b.WriteString(tip.Render(e.hint))
		b.WriteByte('\n')
	}

	return b.String()
}
