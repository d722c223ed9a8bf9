//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/quill/log"
	"github.com/ardnew/quill/pkg"
	"github.com/ardnew/quill/profile"
)

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Profile the command while it runs." placeholder:"${enum}" short:"p"`
	Dir  string `default:"${pprofDir}"                          help:"Directory receiving one subdirectory per profiling mode." type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      pkg.CachePath(profile.Tag),
	}
}

// profiler returns the session selected by the flags. Profiles of each mode
// go to their own subdirectory so that runs in different modes do not
// overwrite each other.
func (f pprofConfig) profiler() profile.Profiler {
	return profile.Profiler{
		Mode:  f.Mode,
		Path:  filepath.Join(f.Dir, f.Mode),
		Quiet: true,
	}
}

func (f pprofConfig) start(ctx context.Context) (stop func()) {
	if f.Mode == "" {
		return func() {}
	}

	p := f.profiler()
	attrs := []slog.Attr{slog.String("mode", p.Mode), slog.String("path", p.Path)}

	log.DebugContext(ctx, "profiling started", attrs...)

	s := p.Start()

	return func() {
		s.Stop()
		log.DebugContext(ctx, "profile written", attrs...)
	}
}
