package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

type initCLI struct {
	Level  string   `default:"warn" help:"Set log level."`
	Pretty bool     `help:"Pretty print."`
	Count  int      `help:"Number of items."`
	Names  []string `help:"Names to greet."`
	Empty  string   `help:"Left unset."`
	Hidden string   `default:"x" hidden:""`

	Init Init `cmd:""`
}

func newInitContext(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(append([]string{"init"}, args...))
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), ktx)
}

func TestInit_Run(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr bool
	}{
		{name: "create new config"},
		{name: "overwrite existing with force", force: true, exists: true},
		{name: "fail without force", exists: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

			if tt.exists {
				if err := os.MkdirAll(filepath.Dir(confPath), 0o700); err != nil {
					t.Fatal(err)
				}

				if err := os.WriteFile(confPath, []byte("existing"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			ctx := newInitContext(t, confPath, "--count=5")

			err := (&Init{Force: tt.force}).Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init.Run() error = %v, wantErr %v", err, tt.wantErr)
			}

			content, rerr := os.ReadFile(confPath)
			if rerr != nil {
				t.Fatal(rerr)
			}

			if tt.wantErr {
				if !errors.Is(err, ErrWriteConfig) || !errors.Is(err, ErrFileExists) {
					t.Errorf("unexpected error %v", err)
				}

				if string(content) != "existing" {
					t.Error("existing config was modified")
				}

				return
			}

			var m map[string]any
			if err := yaml.Unmarshal(content, &m); err != nil {
				t.Fatalf("generated config is not valid YAML: %v\n%s", err, content)
			}

			if fmt.Sprint(m["count"]) != "5" {
				t.Errorf("want count 5, got %v", m["count"])
			}
		})
	}
}

func TestInit_Render(t *testing.T) {
	ctx := newInitContext(t, "unused", "--names=ann,bo", "--pretty")
	ktx := kongContextFrom(ctx)

	data, err := (&Init{}).render(ktx)
	if err != nil {
		t.Fatal(err)
	}

	out := string(data)

	for _, want := range []string{
		"# quill configuration\n",
		"\n# Set log level.\nlevel: warn\n",
		"\n# Pretty print.\npretty: true\n",
		"\n# Number of items.\ncount: 0\n",
		"\n# Names to greet.\nnames:\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	for _, unwanted := range []string{"empty:", "hidden:", "help:", "force:"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("unexpected %q in:\n%s", unwanted, out)
		}
	}

	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}

	if fmt.Sprint(m["names"]) != "[ann bo]" {
		t.Errorf("unexpected names %v", m["names"])
	}
}
