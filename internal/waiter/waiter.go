// Package waiter implements a binary waiter primitive: a signal a
// completion path can post while still holding the lock guarding the
// work that preceded it, without the posting side needing to acquire a
// mutex itself — a condition variable would require exactly that. It
// generalizes a sync.WaitGroup-based inflight-tracking pattern, which
// only supports "wait for N", not "post once, exactly one waiter
// wakes".
package waiter

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Waiter is a single-use, single-waiter binary signal backed by a
// weighted semaphore with weight 1, giving binary-semaphore semantics
// without a bespoke futex wrapper.
type Waiter struct {
	sem *semaphore.Weighted
}

// New returns a Waiter with no pending post.
func New() *Waiter {
	w := &Waiter{sem: semaphore.NewWeighted(1)}
	_ = w.sem.Acquire(context.Background(), 1) // start "empty"
	return w
}

// Post signals the waiter. Safe to call from inside a locked section;
// never blocks.
func (w *Waiter) Post() {
	w.sem.Release(1)
}

// Wait blocks until Post is called, or ctx is done.
func (w *Waiter) Wait(ctx context.Context) error {
	if err := w.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	// Leave the semaphore drained: a Waiter is single-use.
	return nil
}
