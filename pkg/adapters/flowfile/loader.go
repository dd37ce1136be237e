package flowfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// Source implements ports.FlowSource backed by a flow document on disk.
// The file is re-read on every Snapshot, so edits between runs are
// picked up without restarting.
type Source struct {
	path string
}

// NewSource creates a file-backed flow source.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Snapshot loads and parses the flow document.
func (s *Source) Snapshot(ctx context.Context) (domain.Flow, error) {
	return Load(s.path)
}

// Load reads a flow document from disk. The format is chosen by
// extension: .json is parsed as JSON, everything else as YAML.
func Load(path string) (domain.Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Flow{}, fmt.Errorf("failed to read flow file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return Parse(data)
}

// Parse decodes a YAML flow document.
func Parse(data []byte) (domain.Flow, error) {
	var flow domain.Flow
	if err := yaml.Unmarshal(data, &flow); err != nil {
		return domain.Flow{}, fmt.Errorf("invalid flow document: %w", err)
	}
	if err := checkShape(flow); err != nil {
		return domain.Flow{}, err
	}
	return flow, nil
}

// ParseJSON decodes a JSON flow document, the shape produced by flow
// builder exports.
func ParseJSON(data []byte) (domain.Flow, error) {
	var flow domain.Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return domain.Flow{}, fmt.Errorf("invalid flow document: %w", err)
	}
	if err := checkShape(flow); err != nil {
		return domain.Flow{}, err
	}
	return flow, nil
}

// checkShape rejects documents the simulator cannot even address:
// missing node IDs, unknown node types, edges without endpoints.
// Graph-level consistency (duplicates, dangling targets, reachability)
// belongs to the validator.
func checkShape(flow domain.Flow) error {
	for i, n := range flow.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d has no id", i)
		}
		if !n.Type.Valid() {
			return fmt.Errorf("node %s has unknown type %q (known types: %s)",
				n.ID, n.Type, joinTypes())
		}
	}
	for i, e := range flow.Edges {
		if e.Source == "" || e.Target == "" {
			return fmt.Errorf("edge %d is missing source or target", i)
		}
	}
	return nil
}

func joinTypes() string {
	names := make([]string, len(domain.NodeTypes))
	for i, t := range domain.NodeTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
