// Package logging provides centralized logger creation for the snpeprep application.
package logging

import (
	"io"
	"log/slog"
)

// NewTestLogger creates a silent logger for tests.
func NewTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError + 1, // Higher than any real level = silent
	}
	return slog.New(slog.NewTextHandler(io.Discard, opts))
}
