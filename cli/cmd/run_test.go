package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func newRun(file string) *Run {
	return &Run{
		Session: Session{SaveDir: "saves", MaxDepth: 1000},
		Banner:  true,
		File:    file,
	}
}

func TestRun_Banner(t *testing.T) {
	path := writeSource(t, "say \"Hello, \" + \"world\"\n")
	ctx, ts := withStreams(t, "")

	if err := newRun(path).Run(ctx); err != nil {
		t.Fatalf("run error: %v", err)
	}

	out := ts.out.String()
	for _, want := range []string{
		strings.Repeat("═", bannerWidth),
		"📖 Running: " + path,
		"\nHello, world\n",
		"✓ Story completed successfully!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestRun_NoBanner(t *testing.T) {
	path := writeSource(t, "say 1 + 2\n")
	ctx, ts := withStreams(t, "")

	r := newRun(path)
	r.Banner = false

	if err := r.Run(ctx); err != nil {
		t.Fatalf("run error: %v", err)
	}

	if got := ts.out.String(); got != "3\n" {
		t.Errorf("want %q, got %q", "3\n", got)
	}
}

func TestRun_Vars(t *testing.T) {
	path := writeSource(t, "say hero + \" has \" + str(gold)\nsay bag\n")
	ctx, ts := withStreams(t, "")

	r := newRun(path)
	r.Banner = false
	r.Vars = map[string]string{"gold": "2 * 5", "hero": `"Ada"`, "bag": `["lamp", 1.5]`}

	if err := r.Run(ctx); err != nil {
		t.Fatalf("run error: %v", err)
	}

	if got := ts.out.String(); got != "Ada has 10\n['lamp', 1.5]\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		missing bool
		stderr  string
	}{
		{name: "missing file", missing: true, stderr: "not found"},
		{name: "syntax error", src: "say (1 +\n", stderr: "1"},
		{name: "runtime error", src: "say nowhere\n", stderr: "nowhere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.quill")
			if !tt.missing {
				path = writeSource(t, tt.src)
			}

			ctx, ts := withStreams(t, "")

			err := newRun(path).Run(ctx)
			if exitCode(err) != 1 {
				t.Fatalf("want exit status 1, got %v", err)
			}

			if !strings.Contains(ts.err.String(), tt.stderr) {
				t.Errorf("missing %q in stderr:\n%s", tt.stderr, ts.err.String())
			}

			if strings.Contains(ts.out.String(), "completed successfully") {
				t.Error("failed run must not print the success footer")
			}
		})
	}
}

func TestRun_InputEnded(t *testing.T) {
	path := writeSource(t, "ask \"Name?\" into name\nsay name\n")
	ctx, _ := withStreams(t, "")

	if err := newRun(path).Run(ctx); exitCode(err) != 0 {
		t.Errorf("want exit status 0, got %v", err)
	}
}

func TestRun_InvalidVar(t *testing.T) {
	path := writeSource(t, "say 1\n")
	ctx, _ := withStreams(t, "")

	r := newRun(path)
	r.Vars = map[string]string{"if": "1"}

	if err := r.Run(ctx); !errors.Is(err, ErrInvalidVar) {
		t.Errorf("want %v, got %v", ErrInvalidVar, err)
	}
}

func TestRun_Canceled(t *testing.T) {
	path := writeSource(t, "while true do\nend\n")
	ctx, _ := withStreams(t, "")

	ctx, cancel := context.WithCancel(ctx)
	cancel()

	if err := newRun(path).Run(ctx); exitCode(err) != 130 {
		t.Errorf("want exit status 130, got %v", err)
	}
}

func TestRun_Usage(t *testing.T) {
	var cli struct {
		Run Run `cmd:"" default:"withargs"`
	}

	ctx, ts := withStreams(t, "")

	parser, err := kong.New(&cli,
		kong.Writers(&ts.out, &ts.err),
		kong.Vars{"saveDir": "saves", "modules": "game,io"},
	)
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := cli.Run.Run(WithContext(ctx, ktx)); err != nil {
		t.Fatalf("usage error: %v", err)
	}

	if !strings.Contains(ts.out.String(), "Usage:") {
		t.Errorf("expected usage, got:\n%s", ts.out.String())
	}
}
