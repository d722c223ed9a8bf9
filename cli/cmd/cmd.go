package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/quill/lang"
	"github.com/ardnew/quill/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Streams are the standard streams a command reads and writes.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type streamsKey struct{}

// WithStreams returns a new context.Context carrying s. Nil members fall
// back to the process's standard streams.
func WithStreams(ctx context.Context, s Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, s)
}

func streamsFrom(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	if s.Err == nil {
		s.Err = os.Stderr
	}

	return s
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// readSource returns the text of the named source file, or of stdin when
// path is "-".
func readSource(ctx context.Context, path string) (string, error) {
	var (
		data []byte
		err  error
	)

	if path == stdinSource {
		data, err = io.ReadAll(streamsFrom(ctx).In)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return "", ErrReadSource.File(path).
			Wrap(err)
	}

	log.TraceContext(ctx, "source read",
		slog.String("file", path),
		slog.Int("bytes", len(data)))

	return string(data), nil
}

// parseSource reads and parses the named source. A syntax error is
// reported on the error stream and returned as exit status 1.
func parseSource(ctx context.Context, path string) (*lang.Program, error) {
	src, err := readSource(ctx, path)
	if err != nil {
		return nil, err
	}

	prog, err := lang.ParseString(ctx, src,
		lang.Named(path),
		lang.ParseLogger(log.Default()),
	)
	if err != nil {
		return nil, report(streamsFrom(ctx).Err, err)
	}

	return prog, nil
}

// report prints the diagnostic of a failed program to w and returns exit
// status 1. Errors that are not diagnostics are returned unchanged.
func report(w io.Writer, err error) error {
	var e *lang.Error
	if !errors.As(err, &e) {
		return err
	}

	if ferr := e.Format(w); ferr != nil {
		return ErrWriteOutput.Wrap(ferr)
	}

	return &lang.ExitError{Code: 1}
}

// fail prints a one-line failure message to w and returns exit status 1.
func fail(w io.Writer, format string, args ...any) error {
	style := lipgloss.NewRenderer(w).NewStyle().Foreground(lipgloss.Color("9"))

	fmt.Fprintln(w, style.Render("❌ "+fmt.Sprintf(format, args...)))

	return &lang.ExitError{Code: 1}
}

// printUsage prints the usage of the selected command.
func printUsage(ctx context.Context) error {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrNoUsage
	}

	return ktx.PrintUsage(false)
}
