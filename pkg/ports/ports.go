package ports

import (
	"context"
	"time"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// FlowSource supplies the read-only flow snapshot a simulation runs over.
// Implementations may load from memory, files, or a remote flow API; the
// simulator only sees the snapshot taken at run start.
type FlowSource interface {
	Snapshot(ctx context.Context) (domain.Flow, error)
}

// Watchable is implemented by flow sources that can notify about backend
// changes, typically for hot-reload in dev mode.
type Watchable interface {
	// Watch returns a channel signaled when the underlying flow changes.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// RunStore persists simulation run snapshots keyed by run ID, enabling
// transcripts to outlive the process that produced them.
type RunStore interface {
	// Save persists the snapshot for a given run ID.
	Save(ctx context.Context, runID string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a given run ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given run ID.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of all stored runs.
	List(ctx context.Context) ([]string, error)
}

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates session access across replicas of the
// gateway. It blocks until the lock is acquired or the context is
// canceled; the returned UnlockFunc MUST be called to release the lock.
type DistributedLocker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
