package graph_test

import (
	"strings"
	"testing"

	"github.com/espalier-dev/espalier/internal/presentation/graph"
	"github.com/espalier-dev/espalier/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		flow     domain.Flow
		contains []string
	}{
		{
			name: "Node Shapes",
			flow: domain.Flow{
				Nodes: []domain.Node{
					{ID: "begin", Type: domain.NodeTypeStart},
					{ID: "ask", Type: domain.NodeTypeTextInput},
					{ID: "branch", Type: domain.NodeTypeCondition},
					{ID: "notify", Type: domain.NodeTypeNotification},
					{ID: "say", Type: domain.NodeTypeMessage},
				},
			},
			contains: []string{
				`begin(("begin"))`,
				`ask[/"ask"/]`,
				`branch{"branch"}`,
				`notify[["notify"]]`,
				`say["say"]`,
			},
		},
		{
			name: "ID Sanitization",
			flow: domain.Flow{
				Nodes: []domain.Node{
					{ID: "hyphen-ated", Type: domain.NodeTypeMessage},
				},
			},
			contains: []string{
				`hyphen_ated["hyphen-ated"]`,
			},
		},
		{
			name: "Edge Label Escaping",
			flow: domain.Flow{
				Nodes: []domain.Node{
					{ID: "a", Type: domain.NodeTypeMessage},
					{ID: "b", Type: domain.NodeTypeMessage},
				},
				Edges: []domain.Edge{
					{Source: "a", Target: "b", Label: `answer == "yes"`},
				},
			},
			contains: []string{
				`a -- "answer == 'yes'" --> b`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.flow, nil)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	flow := domain.Flow{
		Nodes: []domain.Node{
			{ID: "start-1", Type: domain.NodeTypeStart},
			{ID: "input-1", Type: domain.NodeTypeTextInput},
		},
		Edges: []domain.Edge{{Source: "start-1", Target: "input-1"}},
	}

	snap := domain.NewSnapshot()
	snap.CurrentNodeID = "input-1"
	snap.Debug = []domain.DebugMessage{
		{NodeID: "start-1", Level: domain.LevelInfo},
		{NodeID: "start-1", Level: domain.LevelInfo},
		{NodeID: "input-1", Level: domain.LevelInfo},
	}

	got := graph.GenerateMermaid(flow, graph.OverlayFromSnapshot(snap))

	for _, want := range []string{
		"class start_1 visited;",
		"class input_1 current;",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing overlay class: %v\nfull output:\n%v", want, got)
		}
	}

	if strings.Count(got, "class start_1 visited;") != 1 {
		t.Error("visited nodes should be deduplicated")
	}
}
