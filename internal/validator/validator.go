package validator

import (
	"fmt"
	"strings"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// ValidateFlow checks a flow for the consistency problems that would
// surface as runtime errors during simulation: duplicate node IDs,
// a missing (or ambiguous) start node, dangling edge endpoints, and
// nodes unreachable from the start.
func ValidateFlow(flow domain.Flow) error {
	var problems []string

	ids := make(map[string]bool, len(flow.Nodes))
	startCount := 0
	for _, n := range flow.Nodes {
		if ids[n.ID] {
			problems = append(problems, fmt.Sprintf("duplicate node id %q", n.ID))
		}
		ids[n.ID] = true
		if n.Type == domain.NodeTypeStart {
			startCount++
		}
	}

	switch {
	case startCount == 0:
		problems = append(problems, "no start node")
	case startCount > 1:
		problems = append(problems, fmt.Sprintf("%d start nodes, want exactly 1", startCount))
	}

	for _, e := range flow.Edges {
		if !ids[e.Source] {
			problems = append(problems, fmt.Sprintf("edge references unknown source %q", e.Source))
		}
		if !ids[e.Target] {
			problems = append(problems, fmt.Sprintf("edge references unknown target %q", e.Target))
		}
	}

	for _, id := range unreachable(flow) {
		problems = append(problems, fmt.Sprintf("node %q is unreachable from the start node", id))
	}

	if len(problems) > 0 {
		return fmt.Errorf("found %d problem(s):\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}

// unreachable returns the IDs of nodes a BFS from the start node never
// visits, in definition order. Without a start node nothing is
// reachable, but that is already reported separately, so we skip.
func unreachable(flow domain.Flow) []string {
	start, ok := flow.StartNode()
	if !ok {
		return nil
	}

	visited := map[string]bool{start.ID: true}
	queue := []string{start.ID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, e := range flow.EdgesFrom(current) {
			if !visited[e.Target] {
				visited[e.Target] = true
				queue = append(queue, e.Target)
			}
		}
	}

	var out []string
	for _, n := range flow.Nodes {
		if !visited[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}
