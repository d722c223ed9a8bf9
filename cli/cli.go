package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/quill/cli/cmd"
	"github.com/ardnew/quill/lang"
	"github.com/ardnew/quill/log"
	"github.com/ardnew/quill/pkg"
)

// pprofGroup heads the profiling flags in help output. It is empty unless
// built with the pprof tag.
var pprofGroup = kong.Group{Key: "pprof", Title: "Profiling (pprof)"}

const (
	// baseConfig is the base name of the configuration files.
	baseConfig = "config"
	// baseHistory is the base name of the REPL history file.
	baseHistory = "history.utf8"
)

// CLI is the top-level command-line interface for quill.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Run  cmd.Run  `cmd:"" default:"withargs" help:"Run a Quill program (default)."`
	Fmt  cmd.Fmt  `cmd:""                    help:"Re-print a program in canonical syntax."`
	Dump cmd.Dump `cmd:""                    help:"Print the tokens or syntax tree of a program."`
	Repl cmd.Repl `cmd:""                    help:"Write and run programs interactively."`
	Init cmd.Init `cmd:""                    help:"Write the default configuration file."`
}

// Run executes the quill CLI with the given context and arguments using the
// process's standard streams. The exit function is called with the
// appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	return run(ctx, exit, cmd.Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}, args...)
}

func run(
	ctx context.Context,
	exit func(code int),
	streams cmd.Streams,
	args ...string,
) error {
	var cli CLI

	err := pkg.MkdirAll()
	if err != nil {
		return err
	}

	yamlPath := pkg.ConfigPath(baseConfig + ".yaml")

	vars := kong.Vars{
		"version":             pkg.Version,
		"modules":             strings.Join(lang.Modules(), ","),
		cmd.ConfigIdentifier:  yamlPath,
		cmd.HistoryIdentifier: pkg.CachePath(baseHistory),
		cmd.SaveDirIdentifier: lang.DefaultSaveDir,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Config(log.WithOutput(streams.Err))

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position. TextUnmarshaler on logFormat/logLevel handles those flags
	// during normal parsing, but this early scan also catches boolean flags
	// like --log-pretty.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(streams.Out, streams.Err),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), pprofGroup},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, pkg.ConfigPath(baseConfig+".json")),
		kong.Configuration(resolve, yamlPath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithStreams(ctx, streams)

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// no-op unless built with the pprof tag and --pprof-mode is set
	defer cli.Pprof.start(ctx)()

	return exitStatus(ktx.Run(ctx), exit)
}

// exitStatus reports a program's requested exit status through exit. The
// diagnostic of a failed program has already been printed, so only errors
// of the command line itself are returned.
func exitStatus(err error, exit func(code int)) error {
	var status *lang.ExitError
	if !errors.As(err, &status) {
		return err
	}

	if status.Code != 0 {
		exit(status.Code)
	}

	return nil
}
