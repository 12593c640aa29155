// Package logger centralizes slog construction so every binary logs the same
// way.
package logger

import (
	"log/slog"
	"os"
)

// New returns a text slog logger on stderr. Verbose switches the level to
// debug for troubleshooting sessions.
func New(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
