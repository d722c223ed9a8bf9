package lang

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math/rand/v2"
	"os"
	"slices"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/ardnew/quill/log"
)

// DefaultMaxDepth is the default limit on nested user function calls.
const DefaultMaxDepth = 1000

// DefaultSaveDir is the directory, relative to the filesystem root, that
// holds save files.
const DefaultSaveDir = "saves"

// AnswerVariable is the variable that receives the text of the option
// selected in a choice statement.
const AnswerVariable = "answer"

// ExitError ends a run early without a diagnostic, as when input ends while
// a program is waiting for it.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// function is a user-defined function with the snapshot of the variables
// that were visible when it was defined.
type function struct {
	name    string
	params  []string
	body    []Stmt
	closure map[string]Value
}

// Interpreter executes programs. It holds all mutable run state; nothing is
// shared between interpreters.
type Interpreter struct {
	vars       map[string]Value
	funcs      map[string]*function
	labels     map[string]int
	builtins   map[string]*Builtin
	loaded     map[string]*Module
	namespaces map[string]*Module
	inventory  []string

	prog  *Program
	pc    int
	depth int

	stdout   io.Writer
	stdin    *bufio.Reader
	logger   log.Logger
	fs       billy.Filesystem
	saveDir  string
	sleep    func(context.Context, time.Duration) error
	rand     *rand.Rand
	preload  []string
	maxDepth int
	palette  palette
}

// Option configures an [Interpreter].
type Option func(*Interpreter)

// WithStdout sets the writer for program output.
func WithStdout(w io.Writer) Option {
	return func(in *Interpreter) { in.stdout = w }
}

// WithStdin sets the reader that ask and choice read lines from.
func WithStdin(r io.Reader) Option {
	return func(in *Interpreter) { in.stdin = bufio.NewReader(r) }
}

// WithLogger sets the logger for run diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(in *Interpreter) { in.logger = logger }
}

// WithFilesystem sets the filesystem used by the io module and save files.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(in *Interpreter) { in.fs = fs }
}

// WithSaveDir sets the directory holding save files.
func WithSaveDir(dir string) Option {
	return func(in *Interpreter) { in.saveDir = dir }
}

// WithSleep replaces the function that wait() blocks with.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(in *Interpreter) { in.sleep = sleep }
}

// WithRandSource seeds the random built-ins from src.
func WithRandSource(src rand.Source) Option {
	return func(in *Interpreter) { in.rand = rand.New(src) }
}

// WithPreload imports every function of the named modules into the
// built-ins before the program starts.
func WithPreload(modules ...string) Option {
	return func(in *Interpreter) { in.preload = append(in.preload, modules...) }
}

// WithVariables defines variables before the program starts.
func WithVariables(vars map[string]Value) Option {
	return func(in *Interpreter) { maps.Copy(in.vars, vars) }
}

// WithMaxDepth limits nested user function calls.
func WithMaxDepth(n int) Option {
	return func(in *Interpreter) { in.maxDepth = n }
}

// New returns an interpreter reading from os.Stdin, writing to os.Stdout,
// and using the working directory for files.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		vars:       map[string]Value{},
		funcs:      map[string]*function{},
		labels:     map[string]int{},
		builtins:   maps.Clone(coreBuiltins()),
		loaded:     map[string]*Module{},
		namespaces: map[string]*Module{},
		inventory:  []string{},
		stdout:     os.Stdout,
		stdin:      bufio.NewReader(os.Stdin),
		fs:         osfs.New(""),
		saveDir:    DefaultSaveDir,
		sleep:      sleepContext,
		rand:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		maxDepth:   DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(in)
	}

	in.palette = newPalette(in.stdout)

	return in
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-t.C:
		return nil
	}
}

// Lookup returns the value of a variable in the current environment.
func (in *Interpreter) Lookup(name string) (Value, bool) {
	v, ok := in.vars[name]

	return v, ok
}

// Variables returns the names of the variables in the current environment,
// sorted.
func (in *Interpreter) Variables() []string {
	return slices.Sorted(maps.Keys(in.vars))
}

// Functions returns the names of every callable: built-ins, imported module
// functions, and user functions, sorted.
func (in *Interpreter) Functions() []string {
	names := slices.Collect(maps.Keys(in.builtins))
	names = slices.AppendSeq(names, maps.Keys(in.funcs))

	for mod, m := range in.namespaces {
		for fn := range m.Funcs {
			names = append(names, mod+"."+fn)
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// Inventory returns a copy of the item list maintained by the game module.
func (in *Interpreter) Inventory() []string { return slices.Clone(in.inventory) }

// Run executes prog from its first statement. Labels are collected before
// execution; goto moves the program counter to the statement after the
// label. Run returns the first error raised, which is an [*Error] for
// program faults or an [*ExitError] when input ended.
func (in *Interpreter) Run(ctx context.Context, prog *Program) error {
	in.prog = prog
	in.labels = map[string]int{}

	for i, s := range prog.Stmts {
		if l, ok := s.(*LabelStmt); ok {
			in.labels[l.Name] = i
		}
	}

	for _, mod := range in.preload {
		if err := in.importAll(ctx, mod); err != nil {
			return err
		}
	}

	in.logger.DebugContext(ctx, "run start",
		slog.String("program", prog.Name),
		slog.Int("statements", len(prog.Stmts)),
		slog.Int("labels", len(in.labels)))

	start := time.Now()

	for in.pc = 0; in.pc < len(prog.Stmts); in.pc++ {
		if err := ctx.Err(); err != nil {
			return context.Cause(ctx)
		}

		out, err := in.exec(ctx, prog.Stmts[in.pc])
		if err != nil {
			return in.finish(ctx, err)
		}

		if out.sig == sigJump {
			in.logger.TraceContext(ctx, "jump",
				slog.Int("from", in.pc), slog.Int("to", out.target))

			in.pc = out.target - 1
		}
	}

	in.logger.DebugContext(ctx, "run complete",
		slog.String("program", prog.Name),
		slog.Duration("elapsed", time.Since(start)))

	return nil
}

func (in *Interpreter) finish(ctx context.Context, err error) error {
	var exit *ExitError
	if errors.As(err, &exit) {
		in.logger.DebugContext(ctx, "run exited", slog.Int("code", exit.Code))

		return exit
	}

	e := WrapError(err)
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		in.logger.DebugContext(ctx, "run failed", slog.Any("error", e))
	}

	return e
}

// fail builds a diagnostic located at n.
func (in *Interpreter) fail(base *Error, n Node, format string, args ...any) *Error {
	return in.locate(base.Describe(format, args...), n)
}

// locate attaches the position of n to e unless e already has one.
func (in *Interpreter) locate(e *Error, n Node) *Error {
	if !e.pos.IsValid() {
		e = e.At(n.Pos())
	}

	if in.prog != nil {
		e = e.inSource(in.prog.Source)
	}

	return e
}

func (in *Interpreter) println(s string) {
	_, _ = io.WriteString(in.stdout, s+"\n")
}

func (in *Interpreter) print(s string) {
	_, _ = io.WriteString(in.stdout, s)
}

// readLine returns one line of input without its line terminator. A final
// line without a terminator is returned normally; io.EOF is returned only
// when no input remains.
func (in *Interpreter) readLine() (string, error) {
	line, err := in.stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}

	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}

	return line, nil
}

// inputEnded reports end of input and returns the error that stops the run.
func (in *Interpreter) inputEnded(err error) error {
	if !errors.Is(err, io.EOF) {
		return WrapError(err)
	}

	in.println("\n" + paint(in.palette.warn, "⚠ Input ended unexpectedly. Exiting program."))

	return &ExitError{Code: 0}
}
