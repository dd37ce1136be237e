package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// NodeType identifies the behavior of a node during simulation.
// The set is closed: the simulator dispatches with an exhaustive switch,
// so adding a type here forces a decision in the traversal code.
type NodeType string

const (
	// NodeTypeStart marks the entry point of a flow. A flow must contain
	// exactly one start node for a simulation to proceed.
	NodeTypeStart NodeType = "start"
	// NodeTypeMessage displays content and continues after its delay (soft step).
	NodeTypeMessage NodeType = "message"
	// NodeTypeTextInput displays a prompt and halts waiting for input (hard step).
	NodeTypeTextInput NodeType = "textInput"

	// Builder-only types. They can appear in flow definitions but carry no
	// simulation behavior; the simulator reports them as unhandled.
	NodeTypeCondition     NodeType = "condition"
	NodeTypeDomainTrigger NodeType = "domainTrigger"
	NodeTypeTimerTrigger  NodeType = "timerTrigger"
	NodeTypeNotification  NodeType = "notification"
	NodeTypeEmail         NodeType = "email"
	NodeTypeAction        NodeType = "action"
	NodeTypeRedirect      NodeType = "redirect"
)

// NodeTypes lists every known node type, in a stable order.
var NodeTypes = []NodeType{
	NodeTypeStart,
	NodeTypeMessage,
	NodeTypeTextInput,
	NodeTypeCondition,
	NodeTypeDomainTrigger,
	NodeTypeTimerTrigger,
	NodeTypeNotification,
	NodeTypeEmail,
	NodeTypeAction,
	NodeTypeRedirect,
}

// Valid reports whether t is a member of the closed node type set.
func (t NodeType) Valid() bool {
	for _, known := range NodeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Node represents a typed unit of work in a flow.
// Data holds the type-specific payload as loaded from the flow definition;
// use the typed accessors (MessageData, TextInputData) to decode it.
type Node struct {
	ID   string         `json:"id" yaml:"id"`
	Type NodeType       `json:"type" yaml:"type"`
	Data map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// MessageData is the payload of start and message nodes.
type MessageData struct {
	// Message is the text shown as a bot chat bubble. Empty means the
	// simulator substitutes a default.
	Message string `mapstructure:"message"`
	// DelayMs paces the hop to the next node, in milliseconds.
	// Zero means the simulator default applies.
	DelayMs int `mapstructure:"delay"`
}

// TextInputData is the payload of textInput nodes.
type TextInputData struct {
	Message string `mapstructure:"message"`
	// VariableName is the key under which the submitted text is captured.
	// Empty defaults to "input".
	VariableName string `mapstructure:"variableName"`

	// Input constraints, enforced when input is submitted.
	Required  bool `mapstructure:"required"`
	MinLength int  `mapstructure:"minLength"`
	MaxLength int  `mapstructure:"maxLength"`
}

// MessageData decodes the node payload as a message/start payload.
func (n Node) MessageData() (MessageData, error) {
	var data MessageData
	if err := decodePayload(n, &data); err != nil {
		return MessageData{}, err
	}
	return data, nil
}

// TextInputData decodes the node payload as a textInput payload.
func (n Node) TextInputData() (TextInputData, error) {
	var data TextInputData
	if err := decodePayload(n, &data); err != nil {
		return TextInputData{}, err
	}
	return data, nil
}

func decodePayload(n Node, out any) error {
	if n.Data == nil {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(n.Data); err != nil {
		return fmt.Errorf("invalid payload for node %s: %w", n.ID, err)
	}
	return nil
}
