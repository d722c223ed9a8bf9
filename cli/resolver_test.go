package cli

import (
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestResolve_Lookup(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		flag string
		want any
	}{
		{"flat", "log-level: debug\n", "log-level", "debug"},
		{"underscore", "log_level: info\n", "log-level", "info"},
		{"nested", "log:\n  level: trace\n", "log-level", "trace"},
		{"deeply nested", "log:\n  time:\n    layout: Kitchen\n", "log-time-layout", "Kitchen"},
		{"nested underscore", "log:\n  time_layout: none\n", "log-time-layout", "none"},
		{"int", "max-depth: 50\n", "max-depth", "50"},
		{"float", "ratio: 0.25\n", "ratio", "0.25"},
		{"bool", "banner: false\n", "banner", false},
		{"list", "preload: [game, io]\n", "preload", []any{"game", "io"}},
		{"map", "var:\n  gold: 10\n  hero: '\"Ada\"'\n", "var", map[string]any{"gold": "10", "hero": `"Ada"`}},
		{"missing", "log-level: debug\n", "save-dir", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := resolve(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatalf("resolve error: %v", err)
			}

			got, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: tt.flag}})
			if err != nil {
				t.Fatalf("Resolve error: %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("want %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestResolve_Empty(t *testing.T) {
	r, err := resolve(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}

	if err := r.Validate(nil); err != nil {
		t.Errorf("Validate error: %v", err)
	}

	got, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "log-level"}})
	if got != nil || err != nil {
		t.Errorf("unexpected result %v, %v", got, err)
	}
}

func TestResolve_Invalid(t *testing.T) {
	if _, err := resolve(strings.NewReader("log-level: [unclosed\n")); err == nil {
		t.Error("expected a decode error")
	}
}

func TestResolve_Configuration(t *testing.T) {
	var cli struct {
		Level string            `default:"warn"`
		Depth int               `default:"1"`
		Vars  map[string]string `mapsep:"none" name:"var"`
	}

	parser, err := kong.New(&cli, kong.Resolvers(mustResolve(t,
		"level: error\ndepth: 7\nvar:\n  gold: 10\n")))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--depth=9"}); err != nil {
		t.Fatal(err)
	}

	if cli.Level != "error" || cli.Depth != 9 || cli.Vars["gold"] != "10" {
		t.Errorf("unexpected values %+v", cli)
	}
}

func mustResolve(t *testing.T, doc string) kong.Resolver {
	t.Helper()

	r, err := resolve(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	return r
}
