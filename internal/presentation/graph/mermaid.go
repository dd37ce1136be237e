package graph

import (
	"fmt"
	"strings"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// Overlay contains dynamic run state to visualize on the graph.
type Overlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces a Mermaid flowchart from a flow snapshot.
// Node shapes follow type semantics:
//   - start: ((Circle))
//   - textInput: [/Parallelogram/]
//   - condition: {Diamond}
//   - action / notification / email: [[Subroutine]]
//   - default: [Rectangle]
//
// When an overlay is given, visited and current nodes are styled so a
// paused simulation can be inspected at a glance.
func GenerateMermaid(flow domain.Flow, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range flow.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Type {
		case domain.NodeTypeStart:
			opener, closer = "((", "))"
		case domain.NodeTypeTextInput:
			opener, closer = "[/", "/]"
		case domain.NodeTypeCondition:
			opener, closer = "{", "}"
		case domain.NodeTypeAction, domain.NodeTypeNotification, domain.NodeTypeEmail:
			opener, closer = "[[", "]]"
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, node.ID, closer))
	}

	for _, edge := range flow.Edges {
		safeFrom := sanitizeMermaidID(edge.Source)
		safeTo := sanitizeMermaidID(edge.Target)

		arrow := "-->"
		if edge.Label != "" {
			safeLabel := strings.ReplaceAll(edge.Label, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", safeLabel)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !visitedSet[safeID] {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

// OverlayFromSnapshot derives the visited set and cursor from a run
// snapshot, using the node stamps on the debug log.
func OverlayFromSnapshot(snap domain.Snapshot) *Overlay {
	overlay := &Overlay{CurrentNode: snap.CurrentNodeID}
	seen := make(map[string]bool)
	for _, d := range snap.Debug {
		if d.NodeID != "" && !seen[d.NodeID] {
			seen[d.NodeID] = true
			overlay.VisitedNodes = append(overlay.VisitedNodes, d.NodeID)
		}
	}
	return overlay
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
