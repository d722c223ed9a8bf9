package repl

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// editWith runs an edit of source using an editor that leaves the file
// unchanged, answering the re-edit prompt with answer.
func editWith(t *testing.T, source, answer string) (*editCommand, string, string, error) {
	t.Helper()

	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("no 'true' command available")
	}

	t.Setenv("EDITOR", "true")

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}

	defer r.Close()

	if _, err := w.WriteString(answer); err != nil {
		t.Fatal(err)
	}

	w.Close()

	var out, errs bytes.Buffer

	cmd := &editCommand{source: source, ctxFunc: context.Background}
	cmd.SetStdin(r)
	cmd.SetStdout(&out)
	cmd.SetStderr(&errs)

	err = cmd.Run()

	return cmd, out.String(), errs.String(), err
}

func TestEditCommand(t *testing.T) {
	cmd, out, _, err := editWith(t, "say 1\n", "")
	if err != nil {
		t.Fatalf("edit error: %v", err)
	}

	if cmd.newSource != "say 1\n" || out != "" {
		t.Errorf("unexpected result %q, output %q", cmd.newSource, out)
	}
}

func TestEditCommand_Declined(t *testing.T) {
	tests := []struct {
		name   string
		answer string
	}{
		{"no", "n\n"},
		{"input ended", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, out, errs, err := editWith(t, "say (\n", tt.answer)
			if !errors.Is(err, ErrEditDeclined) {
				t.Fatalf("want %v, got %v", ErrEditDeclined, err)
			}

			if cmd.newSource != "" {
				t.Errorf("declined edit kept %q", cmd.newSource)
			}

			if !strings.Contains(out, "Re-edit? [Y/n]") || !strings.Contains(errs, "SyntaxError") {
				t.Errorf("unexpected prompt %q or diagnostic %q", out, errs)
			}
		})
	}
}
