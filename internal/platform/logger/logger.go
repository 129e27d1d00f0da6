package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. JSON output so log
// aggregation can index the attribute keys services attach.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Discard returns a logger that drops everything; the default for services
// constructed without WithLogger.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
