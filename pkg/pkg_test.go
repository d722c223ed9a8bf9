package pkg

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "quill" {
		t.Errorf("Expected Name to be %q, got %q", "quill", Name)
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version)
	}

	if strings.ContainsAny(Version, " \n") {
		t.Errorf("Version contains whitespace: %q", Version)
	}
}

func TestAuthor(t *testing.T) {
	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "ardnew" && a.Email == "andrew@ardnew.com"
	}) {
		t.Errorf("Expected Author to contain ardnew, got %v", Author)
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestUserDir(t *testing.T) {
	base := func() (string, error) { return "/base", nil }
	if got, want := userDir(base, ".x"), filepath.Join("/base", Prefix()); got != want {
		t.Errorf("want %q, got %q", want, got)
	}

	fail := func() (string, error) { return "", os.ErrNotExist }

	t.Setenv("HOME", "/home/tester")

	if got, want := userDir(fail, ".cache"), filepath.Join("/home/tester", ".cache", Prefix()); got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestPaths(t *testing.T) {
	if got := ConfigPath("config.yaml"); got != filepath.Join(ConfigDir(), "config.yaml") {
		t.Errorf("unexpected config path %q", got)
	}

	if got := CachePath(); got != CacheDir() {
		t.Errorf("unexpected cache path %q", got)
	}
}
