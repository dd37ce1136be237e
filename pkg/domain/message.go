package domain

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser   Role = "user"
	RoleBot    Role = "bot"
	RoleSystem Role = "system"
)

// DebugLevel classifies debug log entries.
type DebugLevel string

const (
	LevelInfo    DebugLevel = "info"
	LevelWarning DebugLevel = "warning"
	LevelError   DebugLevel = "error"
)

// ChatMessage is one entry in the simulation transcript.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	NodeID    string    `json:"node_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DebugMessage is one entry in the simulation debug log,
// kept separate from the chat transcript.
type DebugMessage struct {
	ID        string     `json:"id"`
	Level     DebugLevel `json:"level"`
	Content   string     `json:"content"`
	NodeID    string     `json:"node_id,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}
