package logger

import (
	"log/slog"
	"os"
)

// New builds the process-wide slog.Logger: JSON at info level in prod,
// human-readable text at debug level everywhere else.
func New(env string) *slog.Logger {
	if env == "prod" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
