package espalier_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/pkg/domain"
)

func validFlow() domain.Flow {
	return domain.Flow{
		Name: "hello",
		Nodes: []domain.Node{
			{ID: "start-1", Type: domain.NodeTypeStart},
			{ID: "msg-1", Type: domain.NodeTypeMessage, Data: map[string]any{"message": "hi"}},
		},
		Edges: []domain.Edge{
			{Source: "start-1", Target: "msg-1"},
		},
	}
}

func TestNew_ValidFlow(t *testing.T) {
	simulator, err := espalier.New(validFlow())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, simulator.Snapshot().Status)
}

func TestNew_RejectsBrokenFlow(t *testing.T) {
	flow := validFlow()
	flow.Edges = append(flow.Edges, domain.Edge{Source: "msg-1", Target: "ghost"})

	_, err := espalier.New(flow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	flow := validFlow()
	flow.Nodes[0].Type = domain.NodeTypeMessage
	flow.Edges = append(flow.Edges, domain.Edge{Source: "msg-1", Target: "ghost"})

	err := espalier.Validate(flow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no start node")
	assert.Contains(t, err.Error(), "ghost")
}

func TestLoad_FromYAMLFile(t *testing.T) {
	doc := `name: hello
nodes:
  - id: start-1
    type: start
  - id: msg-1
    type: message
    data:
      message: hi
edges:
  - source: start-1
    target: msg-1
`
	path := filepath.Join(t.TempDir(), "flow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	simulator, err := espalier.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", simulator.Flow().Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := espalier.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
