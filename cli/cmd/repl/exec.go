package repl

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"

	"github.com/ardnew/quill/lang"
	"github.com/ardnew/quill/log"
)

// runCommand implements [tea.ExecCommand] to run the collected program with
// the terminal released, so that ask and choice can read from it directly.
type runCommand struct {
	source  string
	ctxFunc func() context.Context
	opts    []lang.Option
	logger  log.Logger
	interp  *lang.Interpreter
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *runCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *runCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *runCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run parses and runs the program. Diagnostics are written to stderr and
// the error is returned so the REPL can report the outcome.
func (c *runCommand) Run() error {
	ctx := c.ctxFunc()

	prog, err := lang.ParseString(ctx, c.source,
		lang.Named("repl"), lang.ParseLogger(c.logger))
	if err != nil {
		_ = lang.WrapError(err).Format(c.stderr)

		return err
	}

	opts := slices.Concat(c.opts, []lang.Option{
		lang.WithStdin(c.stdin),
		lang.WithStdout(c.stdout),
		lang.WithLogger(c.logger),
	})

	c.interp = lang.New(opts...)

	err = c.interp.Run(ctx, prog)

	c.logger.DebugContext(ctx, "repl run complete",
		slog.Int("statements", len(prog.Stmts)),
		slog.Bool("success", err == nil))

	var exit *lang.ExitError
	if errors.As(err, &exit) {
		if exit.Code == 0 {
			return nil
		}

		return err
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		_ = lang.WrapError(err).Format(c.stderr)
	}

	return err
}
