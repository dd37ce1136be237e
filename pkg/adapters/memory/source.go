package memory

import (
	"context"
	"sync"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// Source implements ports.FlowSource over an in-memory flow value.
// Safe for concurrent use; Replace swaps the flow and signals watchers.
type Source struct {
	mu       sync.RWMutex
	flow     domain.Flow
	watchers []chan struct{}
}

// NewSource creates a Source serving the given flow.
func NewSource(flow domain.Flow) *Source {
	return &Source{flow: flow}
}

// Snapshot returns the current flow.
func (s *Source) Snapshot(ctx context.Context) (domain.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flow, nil
}

// Replace swaps the flow served to future snapshots. Running
// simulations keep the snapshot they started with.
func (s *Source) Replace(flow domain.Flow) {
	s.mu.Lock()
	s.flow = flow
	watchers := append([]chan struct{}(nil), s.watchers...)
	s.mu.Unlock()

	for _, ch := range watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Watch implements ports.Watchable.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()
	return ch, nil
}
