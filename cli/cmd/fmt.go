package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/quill/log"
)

// Fmt re-prints a program in canonical syntax: primary keyword spellings,
// one statement per line, nested blocks indented.
type Fmt struct {
	Indent int  `default:"2"            help:"Indent width for nested blocks." short:"i"`
	Write  bool `help:"Write the result back to the source file." short:"w"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseSource(ctx, f.Source)
	if err != nil {
		return err
	}

	var buf bytes.Buffer

	if err := prog.Format(ctx, &buf, f.Indent); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	if !f.Write || f.Source == stdinSource {
		if _, err := buf.WriteTo(streamsFrom(ctx).Out); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	info, err := os.Stat(f.Source)
	if err != nil {
		return ErrWriteOutput.File(f.Source).Wrap(err)
	}

	if err := os.WriteFile(f.Source, buf.Bytes(), info.Mode().Perm()); err != nil {
		return ErrWriteOutput.File(f.Source).Wrap(err)
	}

	log.DebugContext(ctx, "formatted in place",
		slog.String("file", f.Source),
		slog.Int("statements", len(prog.Stmts)))

	return nil
}
