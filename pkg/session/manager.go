package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/internal/validator"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
	"github.com/espalier-dev/espalier/pkg/sim"
)

// lockTTL bounds distributed lock ownership so a crashed replica
// cannot wedge a session forever.
const lockTTL = 10 * time.Second

// lockEntry holds a session mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns one Simulator per session ID on behalf of the gateway
// adapters. It serializes access per session with reference-counted
// locks (optionally backed by a distributed locker for multi-replica
// deployments) and persists run snapshots through a RunStore, so
// transcripts survive the process.
type Manager struct {
	source  ports.FlowSource
	store   ports.RunStore
	locker  ports.DistributedLocker
	logger  *slog.Logger
	simOpts []sim.Option

	mu    sync.Mutex
	sims  map[string]*sim.Simulator
	locks map[string]*lockEntry
}

// Option configures the Manager.
type Option func(*Manager)

// WithStore enables run snapshot persistence.
func WithStore(store ports.RunStore) Option {
	return func(m *Manager) { m.store = store }
}

// WithLocker enables distributed locking around the persistence path.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) { m.locker = locker }
}

// WithLogger configures a logger for internal events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithSimulatorOptions passes extra options to every simulator the
// manager creates (pacing overrides, extra hooks).
func WithSimulatorOptions(opts ...sim.Option) Option {
	return func(m *Manager) { m.simOpts = append(m.simOpts, opts...) }
}

// NewManager creates a session manager over a flow source.
func NewManager(source ports.FlowSource, opts ...Option) *Manager {
	m := &Manager{
		source: source,
		logger: logging.NewNop(),
		sims:   make(map[string]*sim.Simulator),
		locks:  make(map[string]*lockEntry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its refcount.
// The caller must Lock entry.mu and call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[id]
	if !ok {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// withLock serializes fn per session, both locally and (when a
// distributed locker is configured) across replicas.
func (m *Manager) withLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire session lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release session lock", "session", id, "error", err)
			}
		}()
	}

	return fn(ctx)
}

// Create builds a new session around a fresh flow snapshot and returns
// its ID. The flow is validated first; an inconsistent graph is
// rejected before any simulator exists.
func (m *Manager) Create(ctx context.Context) (string, error) {
	flow, err := m.source.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load flow: %w", err)
	}
	if err := validator.ValidateFlow(flow); err != nil {
		return "", fmt.Errorf("flow is not simulatable: %w", err)
	}

	id := uuid.NewString()

	opts := append([]sim.Option{sim.WithLogger(m.logger)}, m.simOpts...)
	if m.store != nil {
		// Status transitions include timer-driven ones (message pacing,
		// completion), so persisting here keeps the store current even
		// when no API call triggered the change.
		opts = append(opts, sim.WithHooks(domain.Hooks{
			OnStatus: func(domain.RunStatus) { m.persist(context.Background(), id) },
		}))
	}

	simulator := sim.New(flow, opts...)

	m.mu.Lock()
	m.sims[id] = simulator
	m.mu.Unlock()

	m.persist(ctx, id)
	m.logger.Info("session created", "session", id, "flow", flow.Name)
	return id, nil
}

func (m *Manager) simulator(id string) (*sim.Simulator, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sims[id]
	return s, ok
}

// persist saves the live snapshot, best effort.
func (m *Manager) persist(ctx context.Context, id string) {
	if m.store == nil {
		return
	}
	s, ok := m.simulator(id)
	if !ok {
		return
	}
	snap := s.Snapshot()
	err := m.withLock(ctx, id, func(ctx context.Context) error {
		return m.store.Save(ctx, id, &snap)
	})
	if err != nil {
		m.logger.Warn("failed to persist run snapshot", "session", id, "error", err)
	}
}

// Start begins (or restarts) the session's simulation run.
func (m *Manager) Start(ctx context.Context, id string) error {
	s, ok := m.simulator(id)
	if !ok {
		return domain.ErrRunNotFound
	}
	err := s.Start()
	m.persist(ctx, id)
	return err
}

// Stop resets the session's simulation to idle.
func (m *Manager) Stop(ctx context.Context, id string) error {
	s, ok := m.simulator(id)
	if !ok {
		return domain.ErrRunNotFound
	}
	s.Stop()
	m.persist(ctx, id)
	return nil
}

// Input submits user input to the session's simulation.
func (m *Manager) Input(ctx context.Context, id, text string) error {
	s, ok := m.simulator(id)
	if !ok {
		return domain.ErrRunNotFound
	}
	err := s.SubmitInput(text)
	m.persist(ctx, id)
	return err
}

// Snapshot returns the session's current run state. Sessions owned by
// another replica (or a previous process) are served read-only from
// the store.
func (m *Manager) Snapshot(ctx context.Context, id string) (domain.Snapshot, error) {
	if s, ok := m.simulator(id); ok {
		return s.Snapshot(), nil
	}
	if m.store != nil {
		snap, err := m.store.Load(ctx, id)
		if err != nil {
			return domain.Snapshot{}, err
		}
		return *snap, nil
	}
	return domain.Snapshot{}, domain.ErrRunNotFound
}

// Flow returns the flow snapshot a live session runs over.
func (m *Manager) Flow(ctx context.Context, id string) (domain.Flow, error) {
	s, ok := m.simulator(id)
	if !ok {
		return domain.Flow{}, domain.ErrRunNotFound
	}
	return s.Flow(), nil
}

// List returns all known session IDs: live ones plus stored runs.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	m.mu.Lock()
	for id := range m.sims {
		seen[id] = true
		out = append(out, id)
	}
	m.mu.Unlock()

	if m.store != nil {
		stored, err := m.store.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range stored {
			if !seen[id] {
				out = append(out, id)
			}
		}
	}
	return out, nil
}

// Delete stops a live session and removes its stored run.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sims[id]
	delete(m.sims, id)
	m.mu.Unlock()

	if ok {
		s.Stop()
	}
	if m.store != nil {
		return m.withLock(ctx, id, func(ctx context.Context) error {
			return m.store.Delete(ctx, id)
		})
	}
	if !ok {
		return domain.ErrRunNotFound
	}
	return nil
}
