package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"snpeprep/internal/adapters/process"
	"snpeprep/internal/domain"
	apperrors "snpeprep/internal/errors"
	"snpeprep/internal/services/setup"
)

// SetupRunner runs the setup steps.
type SetupRunner interface {
	Run(ctx context.Context, req setup.Request) (setup.Result, error)
}

// InvocationRecorder exposes the invocations captured during a dry run.
type InvocationRecorder interface {
	Invocations() []domain.Invocation
}

// SetupCommand prepares the tutorial assets.
type SetupCommand struct {
	runner   SetupRunner
	recorder InvocationRecorder
	stdout   io.Writer
	logger   *slog.Logger
}

// NewSetupCommand creates a new setup command. recorder may be nil when
// dry runs are not used.
func NewSetupCommand(
	runner SetupRunner,
	recorder InvocationRecorder,
	stdout io.Writer,
	logger *slog.Logger,
) *SetupCommand {
	return &SetupCommand{
		runner:   runner,
		recorder: recorder,
		stdout:   stdout,
		logger:   logger,
	}
}

// SetupRequest contains the parameters for the setup command.
type SetupRequest struct {
	SDKRoot          string
	Runtime          string
	RuntimeGiven     bool
	HTPSoC           string
	DryRun           bool
	IgnoreToolErrors bool
}

// Execute runs the setup and, for dry runs, prints the plan as YAML.
func (c *SetupCommand) Execute(ctx context.Context, req SetupRequest) error {
	result, err := c.runner.Run(ctx, setup.Request{
		SDKRoot: req.SDKRoot,
		Runtime:      req.Runtime,
		RuntimeGiven: req.RuntimeGiven,
		HTPSoC:       req.HTPSoC,
		DryRun:       req.DryRun,
	})
	if err != nil {
		if !apperrors.IsToolFailure(err) {
			return err
		}
		if !req.IgnoreToolErrors {
			return fmt.Errorf("%d external tool invocation(s) failed: %w", countFailures(err), err)
		}
		c.logger.WarnContext(ctx, "Ignoring external tool failures", "failures", countFailures(err))
	}

	if !req.DryRun {
		return nil
	}
	if c.recorder == nil {
		return errors.New("dry run requested without an invocation recorder")
	}

	return process.WritePlan(c.stdout, process.Plan{
		SDKRoot:     result.Layout.SDKRoot,
		Runtime:     result.Runtime.String(),
		HTPSoC:      req.HTPSoC,
		Invocations: c.recorder.Invocations(),
	})
}

func countFailures(err error) int {
	var multi *apperrors.MultiError
	if errors.As(err, &multi) {
		return len(multi.Errors)
	}
	return 1
}
