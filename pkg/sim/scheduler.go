package sim

import "time"

// CancelFunc cancels a pending continuation. Calling it after the
// continuation has fired is a no-op.
type CancelFunc func()

// Scheduler abstracts the delayed-continuation mechanism used to pace
// bot messages. The delay is a UX concern with no correctness
// significance, so tests inject a manual implementation and drive
// continuations synchronously.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) CancelFunc
}

type wallScheduler struct{}

func (wallScheduler) AfterFunc(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
