package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier/internal/validator"
	"github.com/espalier-dev/espalier/pkg/domain"
)

func validFlow() domain.Flow {
	return domain.Flow{
		Nodes: []domain.Node{
			{ID: "start-1", Type: domain.NodeTypeStart},
			{ID: "msg-1", Type: domain.NodeTypeMessage},
		},
		Edges: []domain.Edge{
			{Source: "start-1", Target: "msg-1"},
		},
	}
}

func TestValidateFlow_OK(t *testing.T) {
	assert.NoError(t, validator.ValidateFlow(validFlow()))
}

func TestValidateFlow_Problems(t *testing.T) {
	t.Run("No Start Node", func(t *testing.T) {
		flow := validFlow()
		flow.Nodes[0].Type = domain.NodeTypeMessage
		err := validator.ValidateFlow(flow)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no start node")
	})

	t.Run("Multiple Start Nodes", func(t *testing.T) {
		flow := validFlow()
		flow.Nodes = append(flow.Nodes, domain.Node{ID: "start-2", Type: domain.NodeTypeStart})
		err := validator.ValidateFlow(flow)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 start nodes")
	})

	t.Run("Duplicate IDs", func(t *testing.T) {
		flow := validFlow()
		flow.Nodes = append(flow.Nodes, domain.Node{ID: "msg-1", Type: domain.NodeTypeMessage})
		err := validator.ValidateFlow(flow)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `duplicate node id "msg-1"`)
	})

	t.Run("Dangling Edge", func(t *testing.T) {
		flow := validFlow()
		flow.Edges = append(flow.Edges, domain.Edge{Source: "msg-1", Target: "ghost"})
		err := validator.ValidateFlow(flow)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown target "ghost"`)
	})

	t.Run("Unreachable Node", func(t *testing.T) {
		flow := validFlow()
		flow.Nodes = append(flow.Nodes, domain.Node{ID: "island", Type: domain.NodeTypeMessage})
		err := validator.ValidateFlow(flow)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"island" is unreachable`)
	})
}
