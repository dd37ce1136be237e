package flowfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier/pkg/adapters/flowfile"
	"github.com/espalier-dev/espalier/pkg/domain"
)

const sampleYAML = `
name: support-bot
nodes:
  - id: start-1
    type: start
    data:
      message: "Hi there!"
  - id: ask-email
    type: textInput
    data:
      message: "What's your email?"
      variableName: email
      required: true
edges:
  - source: start-1
    target: ask-email
    label: next
`

func TestParse_YAML(t *testing.T) {
	flow, err := flowfile.Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "support-bot", flow.Name)
	require.Len(t, flow.Nodes, 2)
	require.Len(t, flow.Edges, 1)

	start, ok := flow.StartNode()
	require.True(t, ok)
	assert.Equal(t, "start-1", start.ID)

	input, ok := flow.NodeByID("ask-email")
	require.True(t, ok)
	data, err := input.TextInputData()
	require.NoError(t, err)
	assert.Equal(t, "email", data.VariableName)
	assert.True(t, data.Required)

	assert.Equal(t, "next", flow.Edges[0].Label)
}

func TestParseJSON(t *testing.T) {
	doc := `{
		"name": "exported",
		"nodes": [
			{"id": "start-1", "type": "start"},
			{"id": "msg-1", "type": "message", "data": {"message": "hello", "delay": 250}}
		],
		"edges": [{"source": "start-1", "target": "msg-1"}]
	}`

	flow, err := flowfile.ParseJSON([]byte(doc))
	require.NoError(t, err)

	msg, ok := flow.NodeByID("msg-1")
	require.True(t, ok)
	data, err := msg.MessageData()
	require.NoError(t, err)
	assert.Equal(t, 250, data.DelayMs)
}

func TestParse_RejectsUnknownType(t *testing.T) {
	_, err := flowfile.Parse([]byte(`
nodes:
  - id: n1
    type: teleport
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teleport")
}

func TestParse_RejectsMissingID(t *testing.T) {
	_, err := flowfile.Parse([]byte(`
nodes:
  - type: message
`))
	require.Error(t, err)
}

func TestLoad_ByExtension(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "flow.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sampleYAML), 0o644))

	flow, err := flowfile.Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "support-bot", flow.Name)

	jsonPath := filepath.Join(dir, "flow.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"nodes":[{"id":"s","type":"start"}],"edges":[]}`), 0o644))

	flow, err = flowfile.Load(jsonPath)
	require.NoError(t, err)
	_, ok := flow.StartNode()
	assert.True(t, ok)

	_, err = flowfile.Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestSource_Snapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	source := flowfile.NewSource(path)
	flow, err := source.Snapshot(t.Context())
	require.NoError(t, err)
	assert.Len(t, flow.Nodes, 2)

	var _ domain.Flow = flow
}
