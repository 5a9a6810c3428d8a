// Package logger builds the slog loggers used by the node and the collector.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/carverauto/sensorsync/pkg/config"
	"github.com/lmittmann/tint"
)

// ParseLevel maps a config level name to a slog level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// New returns a logger writing to w. Format "json" produces JSON lines,
// anything else the colored console output.
func New(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level := ParseLevel(cfg.Level)

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
	}))
}

// Setup builds a stdout logger and installs it as the slog default.
func Setup(cfg config.LogConfig) *slog.Logger {
	log := New(os.Stdout, cfg)
	slog.SetDefault(log)

	return log
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
