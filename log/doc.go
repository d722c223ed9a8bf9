// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// A [Logger] is a value. Configuration is applied with functional options
// when the logger is made ([Make]) or derived from another ([Logger.Wrap]):
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("kitchen"))
//
// Every level has a context-aware variant. The context-unaware variants use
// [DefaultContextProvider]:
//
//	logger.TraceContext(ctx, "statement", slog.Int("pc", pc))
//	logger.Warn("save directory missing")
//
// Attributes are passed as [slog.Attr] values only; there is no key/value
// pair shorthand.
//
// # Levels
//
// In addition to the four slog levels, [LevelTrace] sits below
// [LevelDebug] and is used for per-statement interpreter tracing.
//
// # Pretty output
//
// With [WithPretty] enabled (the default), records are styled with
// lipgloss. Styling is bound to the output writer, so redirecting logs to a
// file or pipe yields plain text.
//
// # Package-level logger
//
// [Config] adjusts a package-level logger writing to stderr, and the
// package-level functions ([Info], [Error], ...) log through it.
package log
