package logging

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Format selects the handler used for log records.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	// FormatAuto writes text to terminals and JSON everywhere else.
	FormatAuto Format = "auto"
)

// Config holds logger configuration
type Config struct {
	Level  LogLevel
	Format Format
	Output io.Writer
}

// DefaultConfig returns a default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Format: FormatAuto,
		Output: os.Stderr,
	}
}

// NewLogger creates a new structured logger
func NewLogger(config Config) *slog.Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level: config.Level.slogLevel(),
	}

	var handler slog.Handler
	if resolveFormat(config) == FormatJSON {
		handler = slog.NewJSONHandler(config.Output, opts)
	} else {
		handler = slog.NewTextHandler(config.Output, opts)
	}

	return slog.New(handler)
}

// WithStep adds the setup step to every record of the returned logger.
func WithStep(logger *slog.Logger, step string) *slog.Logger {
	return logger.With("step", step)
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func resolveFormat(config Config) Format {
	switch config.Format {
	case FormatJSON, FormatText:
		return config.Format
	case FormatAuto:
		if isTerminal(config.Output) {
			return FormatText
		}
		return FormatJSON
	default:
		return FormatText
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
