package domain

// Edge is a directed connection between two nodes.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	// Label is optional display text, used by builders for branching edges.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Flow is a read-only snapshot of a flow graph.
// The simulator treats it as immutable for the duration of a run;
// list order of Nodes and Edges is significant (deterministic tie-break).
type Flow struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// NodeByID returns the node with the given id.
func (f Flow) NodeByID(id string) (Node, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// EdgesFrom returns all edges whose source is the given node id,
// preserving definition order.
func (f Flow) EdgesFrom(id string) []Edge {
	var out []Edge
	for _, e := range f.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// StartNode returns the first node of type start in definition order.
func (f Flow) StartNode() (Node, bool) {
	for _, n := range f.Nodes {
		if n.Type == NodeTypeStart {
			return n, true
		}
	}
	return Node{}, false
}
