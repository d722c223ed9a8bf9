// Package cmd implements the quill subcommands: run, fmt, dump, repl and
// init.
//
// Each command is a kong command struct with a Run(context.Context) error
// method. Values the commands share, such as the [kong.Context] and the
// process's standard streams, travel in the context ([WithContext],
// [WithStreams]).
//
// A program that fails prints its own diagnostic and returns a
// [lang.ExitError] carrying the exit status; other errors are returned to
// the caller for logging.
package cmd

var (
	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"

	// HistoryIdentifier is the kong variable identifier containing the path
	// to the REPL history file.
	HistoryIdentifier = "history"

	// SaveDirIdentifier is the kong variable identifier containing the
	// default directory for save files.
	SaveDirIdentifier = "saveDir"
)
