// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the default slog logger. Pretty mode writes colorized
// human-readable lines for local development; otherwise output is JSON for
// log aggregation.
func Setup(out io.Writer, level slog.Level, pretty bool) *slog.Logger {
	var handler slog.Handler
	if pretty {
		handler = tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
	} else {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
