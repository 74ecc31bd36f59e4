// Package logging provides structured logging for sfview.
//
// It wraps log/slog so every package logs through the same handler and
// tags its records with a component name:
//
//	logging.Init(slog.LevelInfo, false)
//	log := logging.Component("systemmatrix")
//	log.Info("opened", "path", path, "channels", n)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.Mutex
	logger *slog.Logger
)

// Init initializes the global logger with the specified level and format.
// If jsonFormat is true, records are written as JSON; otherwise as text.
// Output goes to stderr so it never mixes with command output.
func Init(level slog.Level, jsonFormat bool) {
	InitWriter(os.Stderr, level, jsonFormat)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, level slog.Level, jsonFormat bool) {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if jsonFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	InitWithHandler(handler)
}

// InitWithHandler installs a custom handler, mostly useful in tests.
func InitWithHandler(handler slog.Handler) {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(handler)
}

// Discard silences all logging.
func Discard() {
	InitWithHandler(slog.NewTextHandler(io.Discard, nil))
}

// Logger returns the global logger, initializing it at info level on first use.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return logger
}

// Component returns a logger whose records carry component=name.
func Component(name string) *slog.Logger {
	return Logger().With("component", name)
}

// ParseLevel maps "debug", "info", "warn" and "error" onto slog levels.
// Unknown strings fall back to info.
func ParseLevel(s string) slog.Level {
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
