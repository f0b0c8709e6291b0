// Package convert turns the TFLite model into DLC files.
package convert

import (
	"context"
	"fmt"
	"log/slog"

	"snpeprep/internal/domain"
	"snpeprep/internal/errors"
)

const (
	dirPerm = 0o755

	// InputDims is the NHWC shape of the model input tensor.
	InputDims = "1,224,224,3"
	// InputName is the name of the model input tensor.
	InputName = "input"
	// OutputNode is the graph node whose output is kept.
	OutputNode = "MobilenetV3/Predictions/Softmax"
)

// Request describes one conversion run.
type Request struct {
	Layout  domain.Layout
	Runtime domain.Runtime
	// HTPSoC is the SoC to compile HTP metadata for; empty disables HTP.
	HTPSoC string
	DryRun bool
}

// Converter runs the TFLite to DLC converter and, for fixed-point
// runtimes, the quantizer.
type Converter struct {
	fs     domain.FileSystemAdapter
	runner domain.CommandRunner
	tools  domain.Toolchain
	logger *slog.Logger
}

// NewConverter creates a new converter.
func NewConverter(
	fs domain.FileSystemAdapter,
	runner domain.CommandRunner,
	tools domain.Toolchain,
	logger *slog.Logger,
) *Converter {
	return &Converter{
		fs:     fs,
		runner: runner,
		tools:  tools,
		logger: logger,
	}
}

// Convert produces the float DLC and, when needed, the quantized DLC.
// A failed conversion does not prevent the quantizer from running.
func (c *Converter) Convert(ctx context.Context, req Request) error {
	layout := req.Layout

	if !domain.DirExists(c.fs, layout.DLCDir()) {
		if req.DryRun {
			c.logger.InfoContext(ctx, "Would create directory", "path", layout.DLCDir())
		} else if err := c.fs.MkdirAll(layout.DLCDir(), dirPerm); err != nil {
			return fmt.Errorf("failed to create %s: %w", layout.DLCDir(), err)
		}
	}

	var toolErrs []error

	c.logger.InfoContext(ctx, "Converting model to SNPE DLC format", "model", domain.TFLiteFilename)
	if err := c.run(ctx, ConversionInvocation(c.tools, layout)); err != nil {
		if !errors.IsToolFailure(err) {
			return err
		}
		toolErrs = append(toolErrs, err)
	}

	if req.Runtime.NeedsQuantization() {
		c.logger.InfoContext(ctx, "Creating quantized model", "model", domain.QuantizedDLCFilename)
		switch {
		case req.Runtime.UsesHTP(req.HTPSoC):
			c.logger.InfoContext(ctx, "Compiling HTP metadata for DSP runtime", "soc", req.HTPSoC)
		case req.Runtime.UsesHTA(req.HTPSoC):
			c.logger.InfoContext(ctx, "Compiling HTA metadata for AIP runtime")
		}
		if err := c.run(ctx, QuantizationInvocation(c.tools, layout, req.Runtime, req.HTPSoC)); err != nil {
			if !errors.IsToolFailure(err) {
				return err
			}
			toolErrs = append(toolErrs, err)
		}
	}

	return errors.Join(toolErrs...)
}

func (c *Converter) run(ctx context.Context, inv domain.Invocation) error {
	err := c.runner.Run(ctx, inv)
	if err != nil && errors.IsToolFailure(err) {
		c.logger.WarnContext(ctx, "Conversion tool failed", "step", inv.Step, "error", err)
	}
	return err
}

// ConversionInvocation builds the float model conversion command.
func ConversionInvocation(tools domain.Toolchain, layout domain.Layout) domain.Invocation {
	return domain.Invocation{
		Step: domain.StepConvert,
		Name: tools.Converter,
		Args: []string{
			"--input_network", layout.TFLiteModel(),
			"--input_dim", InputName, InputDims,
			"--out_node", OutputNode,
			"--output_path", layout.DLCModel(),
		},
	}
}

// QuantizationInvocation builds the quantizer command. HTP metadata is
// requested for dsp/all when a SoC is given, HTA metadata otherwise for aip/all.
func QuantizationInvocation(tools domain.Toolchain, layout domain.Layout, rt domain.Runtime, soc string) domain.Invocation {
	args := []string{
		"--input_dlc", layout.DLCModel(),
		"--input_list", layout.RawList(),
		"--output_dlc", layout.QuantizedDLCModel(),
	}
	switch {
	case rt.UsesHTP(soc):
		args = append(args, "--enable_htp", "--htp_socs", soc)
	case rt.UsesHTA(soc):
		args = append(args, "--enable_hta")
	}

	return domain.Invocation{
		Step: domain.StepQuantize,
		Name: tools.Quantizer,
		Args: args,
	}
}
