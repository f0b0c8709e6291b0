package process

import (
	"context"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"snpeprep/internal/domain"
)

// Plan is the dry-run report of what a setup would execute.
type Plan struct {
	SDKRoot     string              `yaml:"sdkRoot"`
	Runtime     string              `yaml:"runtime"`
	HTPSoC      string              `yaml:"htpSoc,omitempty"`
	Invocations []domain.Invocation `yaml:"invocations"`
}

// PlanRecorder is a CommandRunner that records invocations instead of running them.
type PlanRecorder struct {
	mu          sync.Mutex
	invocations []domain.Invocation
}

// NewPlanRecorder creates an empty recorder.
func NewPlanRecorder() *PlanRecorder {
	return &PlanRecorder{}
}

// Run records inv and never fails unless ctx is done.
func (p *PlanRecorder) Run(ctx context.Context, inv domain.Invocation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invocations = append(p.invocations, inv)
	return nil
}

// Invocations returns a copy of everything recorded so far.
func (p *PlanRecorder) Invocations() []domain.Invocation {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Invocation, len(p.invocations))
	copy(out, p.invocations)
	return out
}

// WritePlan encodes the plan as YAML.
func WritePlan(w io.Writer, plan Plan) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(plan); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return enc.Close()
}

var _ domain.CommandRunner = (*PlanRecorder)(nil)
