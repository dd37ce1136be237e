package sim

import (
	"fmt"
	"time"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// continueFromLocked performs one traversal step: it resolves the next
// hop out of nodeID and dispatches on the target's type.
//
// Edge selection is deterministic: when multiple edges leave the same
// node, the first in definition order wins. There is no weighting or
// randomization.
func (s *Simulator) continueFromLocked(nodeID string) {
	edges := s.flow.EdgesFrom(nodeID)
	s.appendDebugLocked(domain.LevelInfo,
		fmt.Sprintf("%d outgoing edge(s) from node %s", len(edges), nodeID), nodeID)

	if len(edges) == 0 {
		s.appendChatLocked(domain.RoleSystem, completionMessage, nodeID)
		s.appendDebugLocked(domain.LevelInfo, "simulation completed", nodeID)
		s.snap.CurrentNodeID = ""
		s.setStatusLocked(domain.StatusCompleted)
		s.logger.Debug("simulation completed", "node", nodeID)
		return
	}

	edge := edges[0]
	node, ok := s.flow.NodeByID(edge.Target)
	if !ok {
		derr := &domain.DanglingEdgeError{Source: edge.Source, Target: edge.Target}
		s.failLocked(nodeID, derr.Error())
		return
	}

	s.snap.CurrentNodeID = node.ID
	s.appendDebugLocked(domain.LevelInfo,
		fmt.Sprintf("entered node %s (%s)", node.ID, node.Type), node.ID)

	// Exhaustive over the closed node type set. Types without simulation
	// behavior are an explicit error, never a silent stall.
	switch node.Type {
	case domain.NodeTypeTextInput:
		s.enterTextInputLocked(node)
	case domain.NodeTypeMessage:
		s.enterMessageLocked(node)
	case domain.NodeTypeStart:
		// Defensive: a start node reached mid-flow behaves like a message.
		s.enterStartLocked(node)
	case domain.NodeTypeCondition,
		domain.NodeTypeDomainTrigger,
		domain.NodeTypeTimerTrigger,
		domain.NodeTypeNotification,
		domain.NodeTypeEmail,
		domain.NodeTypeAction,
		domain.NodeTypeRedirect:
		s.unhandledLocked(node)
	default:
		// Unknown type tag, e.g. a hand-edited flow document.
		s.unhandledLocked(node)
	}
}

func (s *Simulator) enterTextInputLocked(node domain.Node) {
	data, err := node.TextInputData()
	if err != nil {
		s.appendDebugLocked(domain.LevelWarning, err.Error(), node.ID)
	}
	text := data.Message
	if text == "" {
		text = defaultPrompt
	}
	s.appendChatLocked(domain.RoleBot, text, node.ID)
	s.setStatusLocked(domain.StatusWaitingForInput)
}

func (s *Simulator) enterMessageLocked(node domain.Node) {
	data, err := node.MessageData()
	if err != nil {
		s.appendDebugLocked(domain.LevelWarning, err.Error(), node.ID)
	}
	text := data.Message
	if text == "" {
		text = defaultMessage
	}
	s.appendChatLocked(domain.RoleBot, text, node.ID)

	delay := DefaultMessageDelay
	if data.DelayMs > 0 {
		delay = time.Duration(data.DelayMs) * time.Millisecond
	}
	s.scheduleLocked(delay, node.ID)
}

func (s *Simulator) enterStartLocked(node domain.Node) {
	data, err := node.MessageData()
	if err != nil {
		s.appendDebugLocked(domain.LevelWarning, err.Error(), node.ID)
	}
	text := data.Message
	if text == "" {
		text = defaultWelcome
	}
	s.appendChatLocked(domain.RoleBot, text, node.ID)
	s.scheduleLocked(s.stepDelay, node.ID)
}

func (s *Simulator) unhandledLocked(node domain.Node) {
	uerr := &domain.UnhandledNodeTypeError{NodeID: node.ID, Type: node.Type}
	s.appendDebugLocked(domain.LevelWarning,
		fmt.Sprintf("node type %s has no simulation behavior", node.Type), node.ID)
	s.failLocked(node.ID, uerr.Error())
}
