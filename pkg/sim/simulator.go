package sim

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/pkg/domain"
)

// Pacing defaults. Message nodes honor their declared delay; everything
// else (the hop out of the start node, resumption after input) uses the
// fixed step delay.
const (
	DefaultStepDelay    = 600 * time.Millisecond
	DefaultMessageDelay = time.Second
)

// Default texts substituted when a node carries no message of its own.
const (
	defaultWelcome    = "Hi! Let's walk through this flow together."
	defaultPrompt     = "Please type your answer."
	defaultMessage    = "..."
	completionMessage = "The conversation has ended."
)

// Simulator drives an interactive, in-memory walk of a flow graph.
//
// It owns the full simulation state (status, cursor, transcript, debug
// log, captured variables) and mutates it only through its public
// operations and its own pacing timers. Failures never propagate as
// panics; they are recorded in the snapshot and surfaced through a
// terminal error status, in addition to the typed error returns.
type Simulator struct {
	mu   sync.Mutex
	flow domain.Flow
	snap domain.Snapshot

	// gen identifies the current run. Every deferred continuation
	// captures it at scheduling time and re-checks it under the lock
	// when it fires, so continuations from a stopped or restarted run
	// can never touch the new run's state.
	gen      uint64
	timers   map[uint64]CancelFunc
	timerSeq uint64

	sched     Scheduler
	scale     float64
	stepDelay time.Duration

	logger *slog.Logger
	hooks  domain.Hooks
	now    func() time.Time
	newID  func() string

	pending []event
}

// event is a buffered hook notification, flushed after the lock is released.
type event struct {
	status *domain.RunStatus
	chat   *domain.ChatMessage
	debug  *domain.DebugMessage
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the structured logger used for engine diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) { s.logger = logger }
}

// WithHooks registers lifecycle callbacks for presentation layers.
func WithHooks(hooks domain.Hooks) Option {
	return func(s *Simulator) { s.hooks = s.hooks.Merge(hooks) }
}

// WithScheduler injects a custom pacing scheduler.
func WithScheduler(sched Scheduler) Option {
	return func(s *Simulator) { s.sched = sched }
}

// WithDelayScale multiplies every pacing delay. Zero runs the
// simulation as fast as the scheduler allows.
func WithDelayScale(scale float64) Option {
	return func(s *Simulator) { s.scale = scale }
}

// WithStepDelay overrides the fixed short delay used between steps.
func WithStepDelay(d time.Duration) Option {
	return func(s *Simulator) { s.stepDelay = d }
}

// New creates a Simulator over an immutable flow snapshot.
// Editing the flow while a run is active is not supported.
func New(flow domain.Flow, opts ...Option) *Simulator {
	s := &Simulator{
		flow:      flow,
		snap:      domain.NewSnapshot(),
		timers:    make(map[uint64]CancelFunc),
		sched:     wallScheduler{},
		scale:     1,
		stepDelay: DefaultStepDelay,
		logger:    logging.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Flow returns the flow snapshot the simulator was built over.
func (s *Simulator) Flow() domain.Flow {
	return s.flow
}

// Snapshot returns a deep copy of the current simulation state.
func (s *Simulator) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Start resets all run state and begins a fresh walk from the start
// node. It is callable from any state; a running simulation is torn
// down first, including its pending pacing timers.
//
// If the flow has no start node the run transitions straight to the
// error status and domain.ErrNoStartNode is returned.
func (s *Simulator) Start() error {
	s.mu.Lock()
	s.invalidateLocked()
	s.snap = domain.NewSnapshot()
	s.setStatusLocked(domain.StatusRunning)

	start, ok := s.flow.StartNode()
	if !ok {
		s.failLocked("", domain.ErrNoStartNode.Error())
		s.unlockAndFlush()
		return domain.ErrNoStartNode
	}

	s.snap.CurrentNodeID = start.ID
	data, err := start.MessageData()
	if err != nil {
		s.appendDebugLocked(domain.LevelWarning, err.Error(), start.ID)
	}
	text := data.Message
	if text == "" {
		text = defaultWelcome
	}
	s.appendChatLocked(domain.RoleBot, text, start.ID)
	s.appendDebugLocked(domain.LevelInfo, "simulation started at node "+start.ID, start.ID)
	s.logger.Debug("simulation started", "node", start.ID, "flow", s.flow.Name)

	s.scheduleLocked(s.stepDelay, start.ID)
	s.unlockAndFlush()
	return nil
}

// Stop unconditionally resets the simulator to the idle baseline and
// cancels every pending continuation. Stopping an idle simulator is a
// no-op.
func (s *Simulator) Stop() {
	s.mu.Lock()
	s.invalidateLocked()
	wasIdle := s.snap.Status == domain.StatusIdle
	s.snap = domain.NewSnapshot()
	if !wasIdle {
		st := s.snap.Status
		s.pending = append(s.pending, event{status: &st})
		s.logger.Debug("simulation stopped")
	}
	s.unlockAndFlush()
}

// SubmitInput feeds user input into a simulation paused on a textInput
// node. Outside the waiting-for-input status the call leaves all state
// untouched, logs a warning to the debug log and returns
// domain.ErrNotAwaitingInput.
//
// The node's declared constraints (required, minLength, maxLength) are
// enforced here: rejected input yields a *domain.InputError and the run
// stays in waiting-for-input.
func (s *Simulator) SubmitInput(text string) error {
	s.mu.Lock()

	if s.snap.Status != domain.StatusWaitingForInput {
		s.appendDebugLocked(domain.LevelWarning,
			fmt.Sprintf("ignored input while status is %s", s.snap.Status), s.snap.CurrentNodeID)
		s.unlockAndFlush()
		return domain.ErrNotAwaitingInput
	}

	node, ok := s.flow.NodeByID(s.snap.CurrentNodeID)
	if !ok || node.Type != domain.NodeTypeTextInput {
		s.appendDebugLocked(domain.LevelWarning,
			"ignored input: current node is not a text input", s.snap.CurrentNodeID)
		s.unlockAndFlush()
		return domain.ErrNotAwaitingInput
	}

	data, err := node.TextInputData()
	if err != nil {
		s.appendDebugLocked(domain.LevelWarning, err.Error(), node.ID)
	}
	if verr := validateInput(node.ID, data, text); verr != nil {
		s.appendDebugLocked(domain.LevelWarning, verr.Error(), node.ID)
		s.unlockAndFlush()
		return verr
	}

	s.appendChatLocked(domain.RoleUser, text, node.ID)

	name := data.VariableName
	if name == "" {
		name = "input"
	}
	s.snap.Variables[name] = text
	s.appendDebugLocked(domain.LevelInfo,
		fmt.Sprintf("captured variable %s = %q", name, text), node.ID)
	s.logger.Debug("input captured", "node", node.ID, "variable", name)

	s.setStatusLocked(domain.StatusRunning)
	s.scheduleLocked(s.stepDelay, node.ID)
	s.unlockAndFlush()
	return nil
}

// ClearError clears the error message without altering the status or
// cursor. It does not resume traversal; only Start begins a new walk.
func (s *Simulator) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Error = ""
}

func validateInput(nodeID string, data domain.TextInputData, text string) error {
	if data.Required && strings.TrimSpace(text) == "" {
		return &domain.InputError{NodeID: nodeID, Reason: "a value is required"}
	}
	length := utf8.RuneCountInString(text)
	if data.MinLength > 0 && length < data.MinLength {
		return &domain.InputError{
			NodeID: nodeID,
			Reason: fmt.Sprintf("must be at least %d characters", data.MinLength),
		}
	}
	if data.MaxLength > 0 && length > data.MaxLength {
		return &domain.InputError{
			NodeID: nodeID,
			Reason: fmt.Sprintf("must be at most %d characters", data.MaxLength),
		}
	}
	return nil
}

// invalidateLocked bumps the run generation and cancels all pending
// continuations. Timers that already fired and are blocked on the lock
// will observe the generation mismatch and bail out.
func (s *Simulator) invalidateLocked() {
	s.gen++
	for seq, cancel := range s.timers {
		cancel()
		delete(s.timers, seq)
	}
}

func (s *Simulator) scheduleLocked(d time.Duration, nodeID string) {
	gen := s.gen
	seq := s.timerSeq
	s.timerSeq++
	s.timers[seq] = s.sched.AfterFunc(s.scaled(d), func() {
		s.resume(gen, seq, nodeID)
	})
}

// resume is the deferred-continuation entry point, invoked by the scheduler.
func (s *Simulator) resume(gen, seq uint64, nodeID string) {
	s.mu.Lock()
	delete(s.timers, seq)
	if gen != s.gen {
		// Continuation from a run that was stopped or restarted.
		s.mu.Unlock()
		return
	}
	s.continueFromLocked(nodeID)
	s.unlockAndFlush()
}

func (s *Simulator) scaled(d time.Duration) time.Duration {
	return time.Duration(float64(d) * s.scale)
}

func (s *Simulator) setStatusLocked(status domain.RunStatus) {
	if s.snap.Status == status {
		return
	}
	s.snap.Status = status
	st := status
	s.pending = append(s.pending, event{status: &st})
}

// failLocked funnels every traversal failure into the terminal error
// status. The cursor is cleared so consumers never observe a cursor
// pointing at an unresolvable node.
func (s *Simulator) failLocked(nodeID, msg string) {
	s.appendDebugLocked(domain.LevelError, msg, nodeID)
	s.logger.Warn("simulation failed", "node", nodeID, "reason", msg)
	s.snap.Error = msg
	s.snap.CurrentNodeID = ""
	s.setStatusLocked(domain.StatusError)
}

func (s *Simulator) appendChatLocked(role domain.Role, content, nodeID string) {
	msg := domain.ChatMessage{
		ID:        s.newID(),
		Role:      role,
		Content:   content,
		NodeID:    nodeID,
		Timestamp: s.now(),
	}
	s.snap.Chat = append(s.snap.Chat, msg)
	s.pending = append(s.pending, event{chat: &msg})
}

func (s *Simulator) appendDebugLocked(level domain.DebugLevel, content, nodeID string) {
	msg := domain.DebugMessage{
		ID:        s.newID(),
		Level:     level,
		Content:   content,
		NodeID:    nodeID,
		Timestamp: s.now(),
	}
	s.snap.Debug = append(s.snap.Debug, msg)
	s.pending = append(s.pending, event{debug: &msg})
}

// unlockAndFlush releases the lock and delivers buffered hook events in
// order. Hooks run outside the lock so they may call back into the
// simulator without deadlocking.
func (s *Simulator) unlockAndFlush() {
	events := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, ev := range events {
		switch {
		case ev.status != nil && s.hooks.OnStatus != nil:
			s.hooks.OnStatus(*ev.status)
		case ev.chat != nil && s.hooks.OnChat != nil:
			s.hooks.OnChat(*ev.chat)
		case ev.debug != nil && s.hooks.OnDebug != nil:
			s.hooks.OnDebug(*ev.debug)
		}
	}
}
