package domain

// Hooks defines callbacks for observing a simulation run.
// All hooks are optional and are invoked synchronously, outside the
// simulator's internal lock, in the order the events occurred.
// Hook implementations must not block for long; they run on whichever
// goroutine triggered the transition (caller or pacing timer).
type Hooks struct {
	// OnStatus fires whenever the run status changes.
	OnStatus func(RunStatus)
	// OnChat fires for every message appended to the transcript.
	OnChat func(ChatMessage)
	// OnDebug fires for every entry appended to the debug log.
	OnDebug func(DebugMessage)
}

// Merge combines two hook sets. When both define a callback, the
// merged callback invokes h's first, then other's, so several
// observers (presentation, persistence) can watch the same run.
func (h Hooks) Merge(other Hooks) Hooks {
	out := h
	if other.OnStatus != nil {
		if prev := out.OnStatus; prev != nil {
			out.OnStatus = func(s RunStatus) { prev(s); other.OnStatus(s) }
		} else {
			out.OnStatus = other.OnStatus
		}
	}
	if other.OnChat != nil {
		if prev := out.OnChat; prev != nil {
			out.OnChat = func(m ChatMessage) { prev(m); other.OnChat(m) }
		} else {
			out.OnChat = other.OnChat
		}
	}
	if other.OnDebug != nil {
		if prev := out.OnDebug; prev != nil {
			out.OnDebug = func(m DebugMessage) { prev(m); other.OnDebug(m) }
		} else {
			out.OnDebug = other.OnDebug
		}
	}
	return out
}
