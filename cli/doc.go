// Package cli contains the command line interface for quill.
//
// # Usage
//
// Running a program is the default command:
//
//	quill story.quill
//	quill run --var gold=10 --preload game story.quill
//
// The other commands format, inspect and edit programs:
//
//	quill fmt -w story.quill
//	quill dump tokens story.quill
//	quill repl
//	quill init
//
// # Configuration
//
// Flag defaults are read from config.json and config.yaml in the user
// configuration directory. The YAML loader ([resolve]) accepts a flag by its
// full name or nested at each hyphen, so these are equivalent:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Flags given on the command line take precedence. quill init writes a
// config.yaml holding the current value of every flag.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o quill .
//
// With it, --pprof-mode enables a profile (allocs, block, clock, cpu,
// goroutine, heap, mem, mutex, thread, trace) and --pprof-dir sets the
// output directory, which defaults to ~/.cache/quill/pprof. Each mode
// writes to its own subdirectory, for example ~/.cache/quill/pprof/cpu.
package cli
