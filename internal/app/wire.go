package app

import (
	"context"

	"snpeprep/internal/adapters/filesystem"
	"snpeprep/internal/adapters/process"
	"snpeprep/internal/domain"
	"snpeprep/internal/logging"
	"snpeprep/internal/services/convert"
	"snpeprep/internal/services/dataprep"
	"snpeprep/internal/services/environment"
	"snpeprep/internal/services/setup"
)

// NewAppWithConfig creates a new App with the given configuration, wiring all dependencies.
func NewAppWithConfig(ctx context.Context, cfg *Config) (*App, error) {
	// Create logger.
	logCfg := logging.DefaultConfig()
	if cfg.LogLevel != "" {
		logCfg.Level = cfg.LogLevel
	}
	if cfg.LogFormat != "" {
		logCfg.Format = cfg.LogFormat
	}
	if cfg.Stderr != nil {
		logCfg.Output = cfg.Stderr
	}
	logger := logging.NewLogger(logCfg)

	// Create filesystem adapter.
	fs := filesystem.New()

	// Dry runs record invocations instead of spawning processes.
	var runner domain.CommandRunner
	if cfg.Settings.DryRun {
		runner = process.NewPlanRecorder()
	} else {
		runner = process.NewRunner(cfg.Stdout, cfg.Stderr, logger)
	}

	tools := cfg.Settings.Tools
	orchestrator := setup.NewOrchestrator(
		environment.NewValidator(fs, logging.WithStep(logger, "environment")),
		dataprep.NewPreparer(fs, runner, tools, logging.WithStep(logger, string(domain.StepDataPrep))),
		convert.NewConverter(fs, runner, tools, logging.WithStep(logger, string(domain.StepConvert))),
		logger,
	)

	// Log configuration details.
	logger.DebugContext(ctx, "Initializing snpeprep with configuration",
		"logLevel", cfg.LogLevel,
		"verbose", cfg.Verbose,
		"dryRun", cfg.Settings.DryRun,
		"python", tools.Python,
		"converter", tools.Converter,
		"quantizer", tools.Quantizer)

	return &App{
		FileSystem:   fs,
		Runner:       runner,
		Orchestrator: orchestrator,
		Logger:       logger,
		Config:       cfg,
	}, nil
}
