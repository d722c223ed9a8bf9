package cmd

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/ardnew/quill/cli/cmd/repl"
	"github.com/ardnew/quill/lang"
	"github.com/ardnew/quill/log"
)

// Repl starts an interactive session.
type Repl struct {
	Session `embed:""`

	History string `default:"${history}" help:"File holding the line history." type:"path"`
}

// Run executes the repl command. When stdin is not a terminal the program
// is read from it to the end and run once.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	streams := streamsFrom(ctx)

	opts, err := r.options(streams)
	if err != nil {
		return err
	}

	if !isTerminal(streams.In) {
		log.DebugContext(ctx, "stdin is not a terminal, running piped program")

		return r.runPiped(ctx, streams, opts)
	}

	return repl.Run(ctx, repl.Config{
		History: r.History,
		Logger:  log.Default(),
		Options: opts,
	})
}

// runPiped runs the program read from stdin. The program's own ask and
// choice statements see end-of-input.
func (r *Repl) runPiped(ctx context.Context, streams Streams, opts []lang.Option) error {
	src, err := io.ReadAll(streams.In)
	if err != nil {
		return ErrReadSource.File(stdinSource).Wrap(err)
	}

	prog, err := lang.ParseString(ctx, string(src),
		lang.Named(stdinSource),
		lang.ParseLogger(log.Default()),
	)
	if err != nil {
		return report(streams.Err, err)
	}

	if err := lang.New(opts...).Run(ctx, prog); err != nil {
		return status(ctx, streams.Err, stdinSource, err)
	}

	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}
