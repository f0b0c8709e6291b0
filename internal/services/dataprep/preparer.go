// Package dataprep stages the calibration images and builds the raw tensor manifests.
package dataprep

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"snpeprep/internal/domain"
	"snpeprep/internal/errors"
)

const dirPerm = 0o755

// Request describes one data preparation run.
type Request struct {
	Layout domain.Layout
	// DryRun skips directory creation and copies; tools still go to the runner.
	DryRun bool
}

// Preparer copies sample images and labels, then invokes the SDK scripts.
type Preparer struct {
	fs     domain.FileSystemAdapter
	runner domain.CommandRunner
	tools  domain.Toolchain
	logger *slog.Logger
}

// NewPreparer creates a new data preparer.
func NewPreparer(
	fs domain.FileSystemAdapter,
	runner domain.CommandRunner,
	tools domain.Toolchain,
	logger *slog.Logger,
) *Preparer {
	return &Preparer{
		fs:     fs,
		runner: runner,
		tools:  tools,
		logger: logger,
	}
}

// Prepare stages the data directory. Filesystem problems abort immediately;
// tool failures are logged and returned together once every tool has run.
func (p *Preparer) Prepare(ctx context.Context, req Request) error {
	layout := req.Layout

	if err := p.ensureDataDirs(ctx, layout, req.DryRun); err != nil {
		return err
	}
	if err := p.copySampleImages(ctx, layout, req.DryRun); err != nil {
		return err
	}
	if err := p.copyLabels(ctx, layout, req.DryRun); err != nil {
		return err
	}

	var toolErrs []error
	for _, inv := range Invocations(p.tools, layout) {
		p.logger.InfoContext(ctx, describe(inv), "script", inv.Args[0])
		if err := p.runner.Run(ctx, inv); err != nil {
			if !errors.IsToolFailure(err) {
				return err
			}
			p.logger.WarnContext(ctx, "Data preparation tool failed", "error", err)
			toolErrs = append(toolErrs, err)
		}
	}

	return errors.Join(toolErrs...)
}

// Invocations returns the three script runs in execution order.
func Invocations(tools domain.Toolchain, layout domain.Layout) []domain.Invocation {
	fileList := layout.Script(domain.CreateFileListScript)
	return []domain.Invocation{
		{
			Step: domain.StepDataPrep,
			Name: tools.Python,
			Args: []string{
				layout.Script(domain.CreateRawsScript),
				"-i", layout.DataDir(),
				"-d", layout.CroppedDir(),
			},
		},
		{
			Step: domain.StepDataPrep,
			Name: tools.Python,
			Args: []string{
				fileList,
				"-i", layout.CroppedDir(),
				"-o", layout.RawList(),
				"-e", "*.raw",
			},
		},
		{
			Step: domain.StepDataPrep,
			Name: tools.Python,
			Args: []string{
				fileList,
				"-i", layout.CroppedDir(),
				"-o", layout.TargetRawList(),
				"-e", "*.raw",
				"-r",
			},
		},
	}
}

func describe(inv domain.Invocation) string {
	if inv.HasArg("-d") {
		return "Creating SNPE mobilenetv3_mini raw data"
	}
	return "Creating image list data files"
}

func (p *Preparer) ensureDataDirs(ctx context.Context, layout domain.Layout, dryRun bool) error {
	for _, dir := range []string{layout.DataDir(), layout.CroppedDir()} {
		if domain.DirExists(p.fs, dir) {
			continue
		}
		if dryRun {
			p.logger.InfoContext(ctx, "Would create directory", "path", dir)
			continue
		}
		if err := p.fs.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

func (p *Preparer) copySampleImages(ctx context.Context, layout domain.Layout, dryRun bool) error {
	images, err := p.fs.Glob(layout.SampleImagesGlob())
	if err != nil {
		return fmt.Errorf("failed to list sample images: %w", err)
	}
	if len(images) == 0 {
		p.logger.WarnContext(ctx, "No sample images found", "pattern", layout.SampleImagesGlob())
		return nil
	}

	if dryRun {
		p.logger.InfoContext(ctx, "Would copy sample images", "count", len(images), "dst", layout.DataDir())
		return nil
	}

	for _, image := range images {
		if err := p.fs.CopyFile(image, layout.DataDir()); err != nil {
			return fmt.Errorf("failed to copy %s: %w", image, err)
		}
	}

	p.logger.InfoContext(ctx, "Copied sample images", "count", len(images), "dst", layout.DataDir())
	return nil
}

func (p *Preparer) copyLabels(ctx context.Context, layout domain.Layout, dryRun bool) error {
	src := layout.LabelsSource()

	if dryRun {
		if _, err := p.fs.Stat(src); err != nil {
			return labelsError(src, err)
		}
		p.logger.DebugContext(ctx, "Would copy", "src", src, "dst", layout.DataDir())
		return nil
	}

	if err := p.fs.CopyFile(src, layout.DataDir()); err != nil {
		return labelsError(src, err)
	}
	return nil
}

func labelsError(src string, err error) error {
	if os.IsNotExist(err) {
		return errors.NewNotFoundError(src, fmt.Sprintf("label file %s does not exist", src), err)
	}
	return fmt.Errorf("failed to copy %s: %w", src, err)
}
