package domain

import (
	"errors"
	"fmt"
)

// ErrNoStartNode is reported when a simulation is started on a flow
// that contains no node of type start.
var ErrNoStartNode = errors.New("flow has no start node")

// ErrNotAwaitingInput is returned by input submission when the simulation
// is not paused on a textInput node. The run state is left untouched.
var ErrNotAwaitingInput = errors.New("simulation is not waiting for input")

// ErrRunNotFound is returned when a run ID cannot be found in a store.
var ErrRunNotFound = errors.New("run not found")

// DanglingEdgeError reports an edge whose target does not resolve to a node.
type DanglingEdgeError struct {
	Source string
	Target string
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("edge from %s points to unknown node %s", e.Source, e.Target)
}

// UnhandledNodeTypeError reports traversal landing on a node type with no
// simulation behavior (condition, triggers, notification, email, action,
// redirect).
type UnhandledNodeTypeError struct {
	NodeID string
	Type   NodeType
}

func (e *UnhandledNodeTypeError) Error() string {
	return fmt.Sprintf("no simulation handler for node %s of type %s", e.NodeID, e.Type)
}

// InputError reports input rejected by a textInput node's declared
// constraints. The simulation stays in waiting-for-input.
type InputError struct {
	NodeID string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input rejected at node %s: %s", e.NodeID, e.Reason)
}
