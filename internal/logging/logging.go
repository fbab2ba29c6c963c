// Package logging configures the process-wide slog logger.
//
// Level names: debug, info, warn, error (default: info).
// Formats: text (colored, default) or json.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs a stderr logger at level in format as the default and returns it.
func Setup(level, format string) *slog.Logger {
	logger := New(os.Stderr, LevelFromString(level), format)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w. format "json" selects slog's JSON handler;
// anything else selects tint's colored text handler.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: true}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	}))
}

// LevelFromString maps a level name to a slog.Level, defaulting to info.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
