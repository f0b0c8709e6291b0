// Package setup sequences environment validation, data preparation and model conversion.
package setup

import (
	"context"
	"log/slog"

	"snpeprep/internal/domain"
	"snpeprep/internal/errors"
	"snpeprep/internal/services/convert"
	"snpeprep/internal/services/dataprep"
	"snpeprep/internal/services/environment"
)

// EnvironmentValidator checks the SDK installation.
type EnvironmentValidator interface {
	Validate(ctx context.Context, req environment.Request) (environment.Result, error)
}

// DataPreparer stages calibration data.
type DataPreparer interface {
	Prepare(ctx context.Context, req dataprep.Request) error
}

// ModelConverter produces the DLC files.
type ModelConverter interface {
	Convert(ctx context.Context, req convert.Request) error
}

// Request contains the parameters for one setup run.
type Request struct {
	SDKRoot      string
	Runtime      string
	RuntimeGiven bool
	HTPSoC       string
	DryRun       bool
}

// Result describes the validated environment a setup ran against.
type Result struct {
	Layout  domain.Layout
	Runtime domain.Runtime
}

// Orchestrator runs the setup steps in order.
type Orchestrator struct {
	validator EnvironmentValidator
	preparer  DataPreparer
	converter ModelConverter
	logger    *slog.Logger
}

// NewOrchestrator creates a new setup orchestrator.
func NewOrchestrator(
	validator EnvironmentValidator,
	preparer DataPreparer,
	converter ModelConverter,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		validator: validator,
		preparer:  preparer,
		converter: converter,
		logger:    logger,
	}
}

// Run executes validation, data preparation and conversion sequentially.
// Any error other than a tool failure is returned at once. Tool failures
// let the remaining steps run and are returned joined at the end.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	env, err := o.validator.Validate(ctx, environment.Request{
		SDKRoot:      req.SDKRoot,
		Runtime:      req.Runtime,
		RuntimeGiven: req.RuntimeGiven,
		DryRun:       req.DryRun,
	})
	if err != nil {
		return Result{}, err
	}
	result := Result{Layout: env.Layout, Runtime: env.Runtime}

	o.logger.InfoContext(ctx, "Setting up mobilenet v3 mini",
		"sdkRoot", env.Layout.SDKRoot,
		"runtime", env.Runtime,
		"htpSoc", req.HTPSoC,
		"dryRun", req.DryRun)

	var toolErrs []error

	err = o.preparer.Prepare(ctx, dataprep.Request{Layout: env.Layout, DryRun: req.DryRun})
	if err != nil {
		if !errors.IsToolFailure(err) {
			return result, err
		}
		toolErrs = append(toolErrs, err)
	}

	err = o.converter.Convert(ctx, convert.Request{
		Layout:  env.Layout,
		Runtime: env.Runtime,
		HTPSoC:  req.HTPSoC,
		DryRun:  req.DryRun,
	})
	if err != nil {
		if !errors.IsToolFailure(err) {
			return result, err
		}
		toolErrs = append(toolErrs, err)
	}

	if len(toolErrs) > 0 {
		return result, errors.Join(flatten(toolErrs)...)
	}

	o.logger.InfoContext(ctx, "Setup mobilenet v3 mini completed")
	return result, nil
}

// flatten unpacks nested MultiErrors so the final report counts every failed tool.
func flatten(errs []error) []error {
	var out []error
	for _, err := range errs {
		if multi, ok := err.(*errors.MultiError); ok {
			out = append(out, multi.Errors...)
			continue
		}
		out = append(out, err)
	}
	return out
}
