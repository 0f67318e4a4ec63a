// Package userlock serializes plan regeneration per user.
package userlock

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Locker hands out one mutual-exclusion slot per user id so that two
// concurrent regenerations for the same user cannot interleave their writes.
// Different users never block each other.
type Locker struct {
	mu    sync.Mutex
	locks map[int]*semaphore.Weighted
}

// New creates a Locker.
func New() *Locker {
	return &Locker{
		locks: make(map[int]*semaphore.Weighted),
	}
}

// lockFor returns the semaphore guarding the user, creating it on first use.
func (l *Locker) lockFor(userID int) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[userID]
	if !ok {
		lock = semaphore.NewWeighted(1)
		l.locks[userID] = lock
	}
	return lock
}

// Acquire blocks until the user's slot is free or the context is done.
// Every successful Acquire must be paired with a Release on all exit paths.
func (l *Locker) Acquire(ctx context.Context, userID int) error {
	if err := l.lockFor(userID).Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire user lock: %w", err)
	}
	return nil
}

// Release frees the user's slot.
func (l *Locker) Release(userID int) {
	l.lockFor(userID).Release(1)
}
