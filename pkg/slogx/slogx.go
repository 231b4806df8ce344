// Package slogx builds structured loggers and carries them through contexts.
package slogx

import (
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Name   string // logical component name, e.g. "iam-client"
	Env    string // e.g. "dev", "prod"
	Level  string // e.g. "debug", "info", "warn", "error"
	Format string // e.g. "json", "text"
}

// New returns a configured slog.Logger instance. Source locations are added
// in dev environments.
func New(cfg Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		AddSource: cfg.Env == "dev",
		Level:     parseLevel(cfg.Level),
	}

	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	if cfg.Name != "" {
		logger = logger.With("component", cfg.Name)
	}
	if cfg.Env != "" {
		logger = logger.With("env", cfg.Env)
	}
	return logger
}

// parseLevel maps a string to slog.Level.
func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
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
