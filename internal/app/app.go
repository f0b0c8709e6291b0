package app

import (
	"context"
	"io"
	"log/slog"
	"os"

	"snpeprep/internal/config"
	"snpeprep/internal/domain"
	"snpeprep/internal/logging"
	"snpeprep/internal/services/setup"
)

// App contains all application dependencies.
type App struct {
	// File operations shared by every step
	FileSystem domain.FileSystemAdapter

	// Runner executes or, in dry-run mode, records external tools
	Runner domain.CommandRunner

	// Orchestrator sequences the setup steps
	Orchestrator *setup.Orchestrator

	// Logging
	Logger *slog.Logger

	// Configuration
	Config *Config
}

// Config holds application configuration.
type Config struct {
	Settings  config.Settings
	LogLevel  logging.LogLevel
	LogFormat logging.Format
	Verbose   bool
	Stdout    io.Writer
	Stderr    io.Writer
}

// Option is a functional option for configuring the App.
type Option func(*Config)

// WithVerbose enables verbose logging.
func WithVerbose(verbose bool) Option {
	return func(cfg *Config) {
		cfg.Verbose = verbose
		if verbose {
			cfg.LogLevel = logging.LevelDebug
		}
	}
}

// WithOutput redirects tool output and log records.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(cfg *Config) {
		cfg.Stdout = stdout
		cfg.Stderr = stderr
	}
}

// NewApp creates a new App for settings with the given options.
func NewApp(ctx context.Context, settings config.Settings, opts ...Option) (*App, error) {
	cfg := &Config{
		Settings:  settings,
		LogLevel:  logging.LevelInfo,
		LogFormat: settings.LogFormat,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}

	if settings.Verbose {
		WithVerbose(true)(cfg)
	}

	// Apply options.
	for _, opt := range opts {
		opt(cfg)
	}

	return NewAppWithConfig(ctx, cfg)
}
