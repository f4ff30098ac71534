// Package obs centralizes structured logging for the organism.
package obs

import (
	"log/slog"
	"os"
	"sync"
)

var (
	once   sync.Once
	logger *slog.Logger
)

// L returns the process-wide structured logger, initializing it on first use.
func L() *slog.Logger {
	once.Do(func() {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	})
	return logger
}

// SetLevel adjusts the minimum level of the process-wide logger. Intended
// for CLI --verbose flags and tests.
func SetLevel(level slog.Level) {
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
