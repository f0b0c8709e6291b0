package domain

import (
	"context"
	"strings"
)

// Step names the setup phase an invocation belongs to.
type Step string

const (
	StepDataPrep Step = "data"
	StepConvert  Step = "convert"
	StepQuantize Step = "quantize"
)

// Invocation describes one external tool run.
type Invocation struct {
	Step Step     `yaml:"step"`
	Name string   `yaml:"name"`
	Args []string `yaml:"args"`
}

// String renders the invocation as a shell-like command line.
func (i Invocation) String() string {
	parts := make([]string, 0, len(i.Args)+1)
	parts = append(parts, quoteArg(i.Name))
	for _, arg := range i.Args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

// HasArg reports whether arg appears anywhere in the argument vector.
func (i Invocation) HasArg(arg string) bool {
	for _, a := range i.Args {
		if a == arg {
			return true
		}
	}
	return false
}

func quoteArg(s string) string {
	if s == "" {
		return "''"
	}
	if strings.ContainsAny(s, " \t\n'\"") {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return s
}

// CommandRunner executes external tools.
type CommandRunner interface {
	Run(ctx context.Context, inv Invocation) error
}

// Toolchain names the executables the setup shells out to.
type Toolchain struct {
	Python    string
	Converter string
	Quantizer string
}

// DefaultToolchain returns the executable names shipped with the SDK.
func DefaultToolchain() Toolchain {
	return Toolchain{
		Python:    "python",
		Converter: "snpe-tflite-to-dlc",
		Quantizer: "snpe-dlc-quantize",
	}
}
