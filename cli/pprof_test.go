//go:build pprof

package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestPprofConfig_Profiler(t *testing.T) {
	dir := t.TempDir()

	p := pprofConfig{Mode: "cpu", Dir: dir}.profiler()
	if p.Mode != "cpu" || p.Path != filepath.Join(dir, "cpu") || !p.Quiet {
		t.Errorf("unexpected profiler %+v", p)
	}
}

func TestPprofConfig_Start(t *testing.T) {
	dir := t.TempDir()

	stop := pprofConfig{Mode: "mem", Dir: dir}.start(context.Background())
	stop()

	if _, err := os.Stat(filepath.Join(dir, "mem", "mem.pprof")); err != nil {
		t.Errorf("profile not written: %v", err)
	}

	pprofConfig{}.start(context.Background())()
}
