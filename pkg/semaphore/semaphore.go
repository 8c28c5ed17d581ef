// Package semaphore provides a bounded concurrency gate for download tasks.
//
// It wraps golang.org/x/sync/semaphore, whose waiter queue is first-in
// first-out: tasks enter the critical section in the order they called
// Acquire, so early queue items cannot be starved by later ones.
package semaphore

import (
	"context"
	"sync/atomic"

	xsemaphore "golang.org/x/sync/semaphore"
)

// Semaphore bounds how many tasks may run at once.
type Semaphore struct {
	sem      *xsemaphore.Weighted
	capacity int
	active   atomic.Int64
}

// New creates a semaphore admitting up to maxConcurrent holders. A value
// below one is raised to one.
func New(maxConcurrent int) *Semaphore {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Semaphore{
		sem:      xsemaphore.NewWeighted(int64(maxConcurrent)),
		capacity: maxConcurrent,
	}
}

// Acquire blocks until a slot is free or ctx is done. On success the caller
// owns one slot and must call Release exactly once.
func (s *Semaphore) Acquire(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	s.active.Add(1)
	return nil
}

// TryAcquire claims a slot without blocking and reports whether it succeeded.
func (s *Semaphore) TryAcquire() bool {
	if s.sem.TryAcquire(1) {
		s.active.Add(1)
		return true
	}
	return false
}

// Release returns a slot. Calling Release without a matching Acquire panics,
// same as the underlying weighted semaphore.
func (s *Semaphore) Release() {
	s.active.Add(-1)
	s.sem.Release(1)
}

// Do runs fn while holding a slot. The slot is returned on every exit path,
// including panics inside fn.
func (s *Semaphore) Do(ctx context.Context, fn func() error) error {
	if err := s.Acquire(ctx); err != nil {
		return err
	}
	defer s.Release()
	return fn()
}

// Active returns how many slots are currently held.
func (s *Semaphore) Active() int {
	return int(s.active.Load())
}

// Capacity returns the maximum number of concurrent holders.
func (s *Semaphore) Capacity() int {
	return s.capacity
}
