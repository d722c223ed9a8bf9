package repl

import (
	"errors"
	"slices"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

func TestHistory_Persist(t *testing.T) {
	fs := memfs.New()

	h := NewHistory(fs, "cache/history")
	if err := h.Load(); err != nil {
		t.Fatalf("load of missing file: %v", err)
	}

	for _, line := range []string{"say 1", ":list", "say 2", "say 2"} {
		if _, err := h.WriteWithMode(line, modeOf(line)); err != nil {
			t.Fatalf("write %q: %v", line, err)
		}
	}

	data, err := util.ReadFile(fs, "cache/history")
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != "E:say 1\nC::list\nE:say 2\n" {
		t.Errorf("unexpected file content %q", data)
	}

	reloaded := NewHistory(fs, "cache/history")
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(reloaded.Entries(), h.Entries()) {
		t.Errorf("reloaded %v, want %v", reloaded.Entries(), h.Entries())
	}
}

func TestHistory_DuplicateMovesToEnd(t *testing.T) {
	fs := memfs.New()
	h := NewHistory(fs, "history")

	for _, line := range []string{"a", "b", "a"} {
		if _, err := h.Write(line); err != nil {
			t.Fatal(err)
		}
	}

	want := []HistoryEntry{{"b", modeEval}, {"a", modeEval}}
	if !slices.Equal(h.Entries(), want) {
		t.Errorf("entries %v, want %v", h.Entries(), want)
	}

	data, err := util.ReadFile(fs, "history")
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != "E:b\nE:a\n" {
		t.Errorf("unexpected file content %q", data)
	}
}

func TestHistory_Load(t *testing.T) {
	fs := memfs.New()
	if err := util.WriteFile(fs, "history", []byte("E:say 1\n\nplain line\nC::quit\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(fs, "history")
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{{"say 1", modeEval}, {"plain line", modeEval}, {":quit", modeCtrl}}
	if !slices.Equal(h.Entries(), want) {
		t.Errorf("entries %v, want %v", h.Entries(), want)
	}

	if line, err := h.GetLine(2); err != nil || line != ":quit" {
		t.Errorf("GetLine(2) = %q, %v", line, err)
	}

	if _, err := h.GetEntry(3); !errors.Is(err, ErrNoEntry) {
		t.Errorf("want %v, got %v", ErrNoEntry, err)
	}

	if n, err := h.Write("   "); n != 0 || err != nil || h.Len() != 3 {
		t.Errorf("blank lines must be ignored, got %d, %v, len %d", n, err, h.Len())
	}
}
