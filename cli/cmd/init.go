package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/quill/log"
	"github.com/ardnew/quill/pkg"
	"github.com/ardnew/quill/profile"
)

// configHeader opens the generated configuration file.
const configHeader = `# %s configuration
#
# Each key sets the default of the command-line flag with the same name.
# Flags given on the command line take precedence.
`

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.File(confPath).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := i.render(ktx)
	if err != nil {
		return ErrWriteConfig.File(confPath).
			Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(confPath), pkg.DirMode); err != nil {
		return ErrWriteConfig.File(confPath).
			Wrap(err)
	}

	if err := os.WriteFile(confPath, data, 0o600); err != nil {
		return ErrWriteConfig.File(confPath).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// render writes every configurable flag with its current value, preceded
// by its help text as a comment.
func (i *Init) render(ktx *kong.Context) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(strings.Replace(configHeader, "%s", pkg.Name, 1))

	for _, flag := range configurable(ktx.Model.Node) {
		val := plain(reflect.ValueOf(ktx.FlagValue(flag)))
		if val == nil {
			continue
		}

		data, err := yaml.Marshal(yaml.MapSlice{{Key: flag.Name, Value: val}})
		if err != nil {
			return nil, err
		}

		buf.WriteString("\n# ")
		buf.WriteString(strings.TrimSpace(flag.Help))
		buf.WriteByte('\n')
		buf.Write(data)
	}

	return buf.Bytes(), nil
}

// configurable returns the flags of node and its subcommands that make
// sense as persistent defaults, without duplicates.
func configurable(node *kong.Node) []*kong.Flag {
	ignore := []string{"help", "version", "force", "write", "var", profile.Tag}

	var (
		flags []*kong.Flag
		seen  = map[string]bool{}
		walk  func(*kong.Node)
	)

	walk = func(n *kong.Node) {
		for _, flag := range n.Flags {
			if flag.Hidden || seen[flag.Name] ||
				slices.ContainsFunc(ignore, func(s string) bool {
					return strings.HasPrefix(flag.Name, s)
				}) {
				continue
			}

			seen[flag.Name] = true
			flags = append(flags, flag)
		}

		for _, child := range n.Children {
			walk(child)
		}
	}

	walk(node)

	return flags
}

// plain converts a flag value to a YAML-friendly value, or nil when the
// value is empty.
func plain(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()

	case reflect.Float32, reflect.Float64:
		return v.Float()

	case reflect.String:
		if v.Len() == 0 {
			return nil
		}

		return v.String()

	case reflect.Slice:
		if v.Len() == 0 {
			return nil
		}

		out := make([]any, v.Len())
		for i := range out {
			out[i] = plain(v.Index(i))
		}

		return out

	case reflect.Map:
		if v.Len() == 0 {
			return nil
		}

		out := make(map[string]any, v.Len())
		for iter := v.MapRange(); iter.Next(); {
			out[iter.Key().String()] = plain(iter.Value())
		}

		return out

	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}

		return plain(v.Elem())
	}

	return nil
}
