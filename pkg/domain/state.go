package domain

// RunStatus is the state of the simulation state machine.
type RunStatus string

const (
	StatusIdle            RunStatus = "idle"
	StatusRunning         RunStatus = "running"
	StatusWaitingForInput RunStatus = "waiting-for-input"
	StatusCompleted       RunStatus = "completed"
	StatusError           RunStatus = "error"
)

// Terminal reports whether the status ends a run. Terminal states only
// leave via an explicit stop or restart.
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Snapshot is the externally observable state of a simulation run.
// Consumers receive copies; only the simulator mutates the live state.
type Snapshot struct {
	Status        RunStatus      `json:"status"`
	CurrentNodeID string         `json:"current_node_id,omitempty"`
	Chat          []ChatMessage  `json:"chat"`
	Debug         []DebugMessage `json:"debug"`
	Variables     map[string]string `json:"variables"`
	// Error describes the last fatal condition when Status is error.
	Error string `json:"error,omitempty"`
}

// NewSnapshot returns the idle baseline state.
func NewSnapshot() Snapshot {
	return Snapshot{
		Status:    StatusIdle,
		Variables: make(map[string]string),
	}
}

// Clone returns a deep copy safe to hand to consumers.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Chat = append([]ChatMessage(nil), s.Chat...)
	out.Debug = append([]DebugMessage(nil), s.Debug...)
	out.Variables = make(map[string]string, len(s.Variables))
	for k, v := range s.Variables {
		out.Variables[k] = v
	}
	return out
}
