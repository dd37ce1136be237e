package espalier

import (
	"fmt"

	"github.com/espalier-dev/espalier/internal/validator"
	"github.com/espalier-dev/espalier/pkg/adapters/flowfile"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/sim"
)

// New validates a flow definition and builds a simulator for it.
// Structural problems (no start node, dangling edges, unreachable
// nodes) are rejected here, before any run exists.
func New(flow domain.Flow, opts ...sim.Option) (*sim.Simulator, error) {
	if err := validator.ValidateFlow(flow); err != nil {
		return nil, fmt.Errorf("flow is not simulatable: %w", err)
	}
	return sim.New(flow, opts...), nil
}

// Load reads a flow document from a YAML or JSON file and builds a
// simulator for it.
func Load(path string, opts ...sim.Option) (*sim.Simulator, error) {
	flow, err := flowfile.Load(path)
	if err != nil {
		return nil, err
	}
	return New(flow, opts...)
}

// Validate checks a flow definition without building a simulator.
// It reports every problem found, not just the first.
func Validate(flow domain.Flow) error {
	return validator.ValidateFlow(flow)
}
