package domain

import (
	"strings"

	"snpeprep/internal/errors"
)

// Runtime is the SNPE runtime the tutorial assets are prepared for.
type Runtime string

const (
	RuntimeCPU Runtime = "cpu"
	RuntimeGPU Runtime = "gpu"
	RuntimeDSP Runtime = "dsp"
	RuntimeAIP Runtime = "aip"
	RuntimeAll Runtime = "all"
)

// DefaultRuntime is used when no runtime is requested.
const DefaultRuntime = RuntimeCPU

// DefaultHTPSoC is the SoC used when --htp_soc is given without a value.
const DefaultHTPSoC = "sm8550"

//nolint:gochecknoglobals // Fixed set of runtimes accepted on the command line
var validRuntimes = []Runtime{RuntimeCPU, RuntimeGPU, RuntimeDSP, RuntimeAIP, RuntimeAll}

// ParseRuntime validates a runtime name. An empty name selects DefaultRuntime.
func ParseRuntime(name string) (Runtime, error) {
	if name == "" {
		return DefaultRuntime, nil
	}
	for _, rt := range validRuntimes {
		if string(rt) == name {
			return rt, nil
		}
	}
	return "", InvalidRuntimeError(name)
}

// InvalidRuntimeError reports a runtime name outside the supported set.
func InvalidRuntimeError(name string) error {
	return errors.NewValidationError("runtime", name, "oneof",
		name+" not a valid runtime. See help.")
}

// SupportedRuntimesString returns the accepted runtime names joined for help output.
func SupportedRuntimesString() string {
	names := make([]string, len(validRuntimes))
	for i, rt := range validRuntimes {
		names[i] = string(rt)
	}
	return strings.Join(names, ", ")
}

// NeedsQuantization reports whether the runtime executes fixed-point models.
func (r Runtime) NeedsQuantization() bool {
	return r == RuntimeDSP || r == RuntimeAIP || r == RuntimeAll
}

// UsesHTP reports whether HTP metadata is compiled into the quantized model.
func (r Runtime) UsesHTP(soc string) bool {
	return soc != "" && (r == RuntimeDSP || r == RuntimeAll)
}

// UsesHTA reports whether HTA metadata is compiled into the quantized model.
// HTP takes precedence when both would apply.
func (r Runtime) UsesHTA(soc string) bool {
	if r.UsesHTP(soc) {
		return false
	}
	return r == RuntimeAIP || r == RuntimeAll
}

func (r Runtime) String() string {
	return string(r)
}
