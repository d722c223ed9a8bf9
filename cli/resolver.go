package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve is a [kong.ConfigurationLoader] that reads flag defaults from a
// YAML document.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve, "/path/to/config.yaml")
//
// A flag is looked up by its full name, with hyphens or underscores, and
// then by nesting at each hyphen. All of these set --log-level:
//
//	log-level: debug
//	log_level: debug
//	log:
//	  level: debug
//
// Map flags such as --var take a nested mapping:
//
//	var:
//	  gold: 10
//	  hero: '"Ada"'
//
// Command-line flags override config file values. An empty document
// resolves nothing.
func resolve(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	err := yaml.NewDecoder(r).Decode(&doc)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return config(doc), nil
}

// config implements [kong.Resolver] for YAML configuration documents.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	value, ok := r.lookup(flag.Name)
	if !ok {
		// Not found - return nil to let Kong use defaults
		return nil, nil
	}

	return normalize(value), nil
}

func (r config) lookup(name string) (any, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		if value, ok := r[key]; ok {
			return value, true
		}
	}

	for i, c := range name {
		if c != '-' {
			continue
		}

		for _, key := range []string{name[:i], strings.ReplaceAll(name[:i], "-", "_")} {
			if sub, ok := r[key].(map[string]any); ok {
				if value, ok := config(sub).lookup(name[i+1:]); ok {
					return value, true
				}
			}
		}
	}

	return nil, false
}

// normalize converts decoded YAML scalars into the forms kong decodes:
// numbers become strings, and map values become strings so they can be
// transcoded into map flags.
func normalize(value any) any {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalize(e)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			if s, ok := normalize(e).(string); ok {
				out[k] = s
			} else {
				out[k] = fmt.Sprint(e)
			}
		}

		return out
	default:
		return v
	}
}
