// Package environment checks the SDK installation before any asset is touched.
package environment

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"snpeprep/internal/domain"
	"snpeprep/internal/errors"
)

const dirPerm = 0o755

// Request carries the raw, unvalidated inputs.
type Request struct {
	// SDKRoot is the value of SNPE_ROOT; empty means unset.
	SDKRoot string
	Runtime string
	// RuntimeGiven marks Runtime as user supplied. An empty supplied
	// runtime is rejected instead of falling back to the default.
	RuntimeGiven bool
	// DryRun skips creating the tensorflowlite directory.
	DryRun bool
}

// Result is a validated environment.
type Result struct {
	Layout  domain.Layout
	Runtime domain.Runtime
}

// Validator validates the SDK root, runtime and model directory.
type Validator struct {
	fs     domain.FileSystemAdapter
	logger *slog.Logger
}

// NewValidator creates a new environment validator.
func NewValidator(fs domain.FileSystemAdapter, logger *slog.Logger) *Validator {
	return &Validator{
		fs:     fs,
		logger: logger,
	}
}

// Validate returns the first problem found, in the order the SDK
// requires: SDK root, runtime, model directory.
func (v *Validator) Validate(ctx context.Context, req Request) (Result, error) {
	if req.SDKRoot == "" {
		return Result{}, errors.NewConfigurationError("SNPE_ROOT", "",
			"SNPE_ROOT not setup.  Please run the SDK env setup script.", nil)
	}

	sdkRoot, err := filepath.Abs(req.SDKRoot)
	if err != nil {
		return Result{}, errors.NewConfigurationError("SNPE_ROOT", req.SDKRoot,
			fmt.Sprintf("SNPE_ROOT (%s) cannot be resolved", req.SDKRoot), err)
	}
	if !domain.DirExists(v.fs, sdkRoot) {
		return Result{}, errors.NewConfigurationError("SNPE_ROOT", sdkRoot,
			fmt.Sprintf("SNPE_ROOT (%s) is not a dir", sdkRoot), nil)
	}

	if req.RuntimeGiven && req.Runtime == "" {
		return Result{}, domain.InvalidRuntimeError(req.Runtime)
	}
	runtime, err := domain.ParseRuntime(req.Runtime)
	if err != nil {
		return Result{}, err
	}

	layout := domain.NewLayout(sdkRoot)
	if !domain.DirExists(v.fs, layout.ModelDir()) {
		return Result{}, errors.NewNotFoundError(layout.ModelDir(),
			fmt.Sprintf("%s does not exist.  Your SDK may be faulty.", layout.ModelDir()), nil)
	}

	if !domain.DirExists(v.fs, layout.TFLiteDir()) {
		if req.DryRun {
			v.logger.InfoContext(ctx, "Would create directory", "path", layout.TFLiteDir())
		} else if err := v.fs.MkdirAll(layout.TFLiteDir(), dirPerm); err != nil {
			return Result{}, fmt.Errorf("failed to create %s: %w", layout.TFLiteDir(), err)
		}
	}

	v.logger.DebugContext(ctx, "Environment validated",
		"sdkRoot", sdkRoot,
		"runtime", runtime)

	return Result{Layout: layout, Runtime: runtime}, nil
}
