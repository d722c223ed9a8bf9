package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/ardnew/quill/lang"
)

// Dump prints the intermediate forms of a program.
type Dump struct {
	Tokens Tokens `cmd:""                    help:"Print the token stream."`
	Tree   Tree   `cmd:"" default:"withargs" help:"Print the syntax tree as an indented outline (default)."`
	JSON   JSON   `cmd:""                    help:"Print the syntax tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Print the syntax tree as YAML."`
}

// Tokens prints one token per line with its position.
type Tokens struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := readSource(ctx, t.Source)
	if err != nil {
		return err
	}

	streams := streamsFrom(ctx)

	toks, err := lang.Tokenize(src)
	if err != nil {
		return report(streams.Err, err)
	}

	w := tabwriter.NewWriter(streams.Out, 0, 0, 2, ' ', 0)

	for _, tok := range toks {
		fmt.Fprintf(w, "%s\t%s\n", tok.Pos, tok)
	}

	if err := w.Flush(); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// Tree prints the syntax tree as an indented outline.
type Tree struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseSource(ctx, t.Source)
	if err != nil {
		return err
	}

	if err := prog.Print(streamsFrom(ctx).Out); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// JSON prints the syntax tree as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output (0 for compact)." short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseSource(ctx, j.Source)
	if err != nil {
		return err
	}

	if err := prog.FormatJSON(ctx, streamsFrom(ctx).Out, j.Indent); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// YAML prints the syntax tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output (0 for flow style)." short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseSource(ctx, y.Source)
	if err != nil {
		return err
	}

	if err := prog.FormatYAML(ctx, streamsFrom(ctx).Out, y.Indent); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
