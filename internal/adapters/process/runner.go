// Package process runs the external SDK tools.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"snpeprep/internal/domain"
	apperrors "snpeprep/internal/errors"
)

// Runner executes invocations as child processes that inherit the
// environment and write to the given streams.
type Runner struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// NewRunner creates a runner writing child output to stdout and stderr.
func NewRunner(stdout, stderr io.Writer, logger *slog.Logger) *Runner {
	return &Runner{
		stdout: stdout,
		stderr: stderr,
		logger: logger,
	}
}

// Run blocks until the tool exits. A non-zero exit or a failure to start
// is reported as a ToolError; cancellation is reported as the context error.
func (r *Runner) Run(ctx context.Context, inv domain.Invocation) error {
	r.logger.DebugContext(ctx, "Running external tool",
		"step", inv.Step,
		"command", inv.String())

	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	cmd.Env = os.Environ()

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s interrupted: %w", inv.Name, ctxErr)
	}
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return apperrors.NewToolError(inv.Name, inv.Args, exitErr.ExitCode(), err)
	}
	return apperrors.NewToolError(inv.Name, inv.Args, -1, err)
}

var _ domain.CommandRunner = (*Runner)(nil)
