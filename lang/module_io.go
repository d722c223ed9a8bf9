package lang

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5/util"
)

// ioFuncs returns the functions of the io module. Every filesystem failure
// is reported as "Error in io.<name>: cause".
func ioFuncs() map[string]*Builtin {
	return builtinTable(
		ioFunc("read_text", 1, 1, ioReadText),
		ioFunc("write_text", 2, 2, ioWriteText),
		ioFunc("append_text", 2, 2, ioAppendText),
		ioFunc("read_lines", 1, 1, ioReadLines),
		ioFunc("write_lines", 2, 2, ioWriteLines),
		ioFunc("file_exists", 1, 1, ioFileExists),
		ioFunc("delete_file", 1, 1, ioDeleteFile),
		ioFunc("list_files", 0, 1, ioListFiles),
		ioFunc("create_directory", 1, 1, ioCreateDirectory),
	)
}

func ioFunc(
	name string,
	minArgs, maxArgs int,
	fn func(in *Interpreter, args []Value) (Value, error),
) *Builtin {
	return &Builtin{
		Name:    name,
		MinArgs: minArgs,
		MaxArgs: maxArgs,
		Fn: func(_ context.Context, in *Interpreter, args []Value) (Value, error) {
			v, err := fn(in, args)
			if err != nil {
				return nil, ErrBuiltin.Describe("Error in io.%s", name).Wrap(err)
			}

			return v, nil
		},
	}
}

func readFile(in *Interpreter, name string) (string, error) {
	f, err := in.fs.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	b, err := io.ReadAll(f)

	return string(b), err
}

// ensureParent creates the directory that will hold name.
func ensureParent(in *Interpreter, name string) error {
	if dir := path.Dir(name); dir != "." && dir != "/" {
		return in.fs.MkdirAll(dir, 0o755)
	}

	return nil
}

func ioReadText(in *Interpreter, args []Value) (Value, error) {
	s, err := readFile(in, Display(args[0]))
	if err != nil {
		return nil, err
	}

	return Str(s), nil
}

func ioWriteText(in *Interpreter, args []Value) (Value, error) {
	name := Display(args[0])
	if err := ensureParent(in, name); err != nil {
		return nil, err
	}

	if err := util.WriteFile(in.fs, name, []byte(Display(args[1])), 0o644); err != nil {
		return nil, err
	}

	return Bool(true), nil
}

func ioAppendText(in *Interpreter, args []Value) (Value, error) {
	name := Display(args[0])
	if err := ensureParent(in, name); err != nil {
		return nil, err
	}

	f, err := in.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	_, err = io.WriteString(f, Display(args[1]))
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return nil, err
	}

	return Bool(true), nil
}

func ioReadLines(in *Interpreter, args []Value) (Value, error) {
	s, err := readFile(in, Display(args[0]))
	if err != nil {
		return nil, err
	}

	var elems []Value

	for line := range strings.Lines(s) {
		elems = append(elems, Str(strings.TrimSuffix(line, "\n")))
	}

	return NewList(elems...), nil
}

func ioWriteLines(in *Interpreter, args []Value) (Value, error) {
	var lines []Value

	switch v := args[1].(type) {
	case *List:
		lines = v.Elems
	case Str:
		for _, r := range string(v) {
			lines = append(lines, Str(r))
		}
	default:
		return nil, fmt.Errorf("'%s' object is not iterable", v.TypeName())
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(Display(l))
		b.WriteByte('\n')
	}

	name := Display(args[0])
	if err := ensureParent(in, name); err != nil {
		return nil, err
	}

	if err := util.WriteFile(in.fs, name, []byte(b.String()), 0o644); err != nil {
		return nil, err
	}

	return Bool(true), nil
}

func ioFileExists(in *Interpreter, args []Value) (Value, error) {
	_, err := in.fs.Stat(Display(args[0]))

	switch {
	case err == nil:
		return Bool(true), nil
	case errors.Is(err, os.ErrNotExist):
		return Bool(false), nil
	}

	return nil, err
}

func ioDeleteFile(in *Interpreter, args []Value) (Value, error) {
	err := in.fs.Remove(Display(args[0]))

	switch {
	case err == nil:
		return Bool(true), nil
	case errors.Is(err, os.ErrNotExist):
		return Bool(false), nil
	}

	return nil, err
}

// ioListFiles lists the regular files of a directory, which defaults to
// the working directory.
func ioListFiles(in *Interpreter, args []Value) (Value, error) {
	dir := "."
	if len(args) > 0 {
		dir = Display(args[0])
	}

	entries, err := in.fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []Value

	for _, e := range entries {
		if e.Mode().IsRegular() {
			names = append(names, Str(e.Name()))
		}
	}

	return NewList(names...), nil
}

func ioCreateDirectory(in *Interpreter, args []Value) (Value, error) {
	if err := in.fs.MkdirAll(Display(args[0]), 0o755); err != nil {
		return nil, err
	}

	return Bool(true), nil
}
