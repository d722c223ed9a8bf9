package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/quill/lang"
	"github.com/ardnew/quill/log"
)

// bannerWidth is the width of the rules drawn around program output.
const bannerWidth = 60

// Session holds the interpreter settings shared by the commands that run
// programs.
type Session struct {
	Vars     map[string]string `help:"Define a variable before the program starts."  mapsep:"none" name:"var" placeholder:"NAME=EXPR" short:"D"`
	SaveDir  string            `default:"${saveDir}" help:"Directory holding save files."`
	Preload  []string          `enum:"${modules}"    help:"Import every function of a module before the program starts." placeholder:"MODULE"`
	MaxDepth int               `default:"1000"       help:"Maximum nesting of function calls."`
}

// options returns the interpreter options for a session on streams.
func (s *Session) options(streams Streams) ([]lang.Option, error) {
	vars, err := parseVars(s.Vars)
	if err != nil {
		return nil, err
	}

	return []lang.Option{
		lang.WithStdout(streams.Out),
		lang.WithStdin(streams.In),
		lang.WithLogger(log.Default()),
		lang.WithSaveDir(s.SaveDir),
		lang.WithPreload(s.Preload...),
		lang.WithVariables(vars),
		lang.WithMaxDepth(s.MaxDepth),
	}, nil
}

// Run executes a Quill program.
type Run struct {
	Session `embed:""`

	Banner bool `default:"true" help:"Frame the program output with a banner." negatable:""`

	File string `arg:"" help:"Program source file." optional:""`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if r.File == "" {
		return printUsage(ctx)
	}

	streams := streamsFrom(ctx)

	opts, err := r.options(streams)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(r.File)
	if err != nil {
		log.DebugContext(ctx, "source unavailable",
			slog.String("file", r.File),
			slog.Any("error", err))

		if errors.Is(err, fs.ErrNotExist) {
			return fail(streams.Err, "File '%s' not found", r.File)
		}

		return fail(streams.Err, "Cannot read '%s': %v", r.File, err)
	}

	prog, err := lang.ParseString(ctx, string(src),
		lang.Named(r.File),
		lang.ParseLogger(log.Default()),
	)
	if err != nil {
		return report(streams.Err, err)
	}

	banner := newBanner(streams.Out, r.Banner)
	banner.header(r.File)

	in := lang.New(opts...)

	err = in.Run(ctx, prog)
	if err == nil {
		banner.footer()

		return nil
	}

	return status(ctx, streams.Err, r.File, err)
}

// status turns the error that ended a run of the named program into the
// command's result.
func status(ctx context.Context, w io.Writer, name string, err error) error {
	var exit *lang.ExitError

	switch {
	case errors.As(err, &exit):
		return exit

	case errors.Is(err, context.Canceled):
		log.DebugContext(ctx, "run interrupted", slog.String("file", name))

		return &lang.ExitError{Code: 130}
	}

	return report(w, err)
}

// banner frames program output between two horizontal rules.
type banner struct {
	w       io.Writer
	enabled bool
	rule    string
	title   lipgloss.Style
	done    lipgloss.Style
}

func newBanner(w io.Writer, enabled bool) banner {
	r := lipgloss.NewRenderer(w)

	return banner{
		w:       w,
		enabled: enabled,
		rule:    r.NewStyle().Foreground(lipgloss.Color("13")).Render(strings.Repeat("═", bannerWidth)),
		title:   r.NewStyle().Foreground(lipgloss.Color("14")),
		done:    r.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

func (b banner) header(file string) {
	if !b.enabled {
		return
	}

	fmt.Fprintf(b.w, "%s\n%s\n%s\n\n", b.rule, b.title.Render("  📖 Running: "+file), b.rule)
}

func (b banner) footer() {
	if !b.enabled {
		return
	}

	fmt.Fprintf(b.w, "\n%s\n%s\n%s\n", b.rule, b.done.Render("✓ Story completed successfully!"), b.rule)
}
