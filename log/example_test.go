package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/quill/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelInfo),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Info("script loaded", slog.String("file", "adventure.quill"))
	// Output: level=INFO msg="script loaded" file=adventure.quill
}

func Example_context() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelTrace),
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger = logger.With(slog.String("phase", "run"))
	logger.TraceContext(context.Background(), "jump", slog.String("label", "start"))
	// Output: {"level":"TRACE","msg":"jump","phase":"run","label":"start"}
}
