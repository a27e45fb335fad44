// Package log configures the process-wide structured logger for the
// catalog services.
package log

import (
	"log/slog"
	"os"
)

// Setup installs a text handler on the default slog logger at the given
// level. Unknown level names fall back to info.
func Setup(logLevel string) {
	level := slog.LevelInfo

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule returns the default logger tagged with a module attribute,
// so every record carries which part of the catalog emitted it.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
