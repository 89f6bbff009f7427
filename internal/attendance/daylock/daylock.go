// Package daylock serializes attendance writes per (user, calendar day).
// The recorder's read-then-append sequence is only correct when no second
// writer races it for the same key; this package is the host-side guard
// the state machine requires. The memory implementation covers a single
// process, the Redis one a fleet.
package daylock

import (
	"context"
	"sync"
	"time"
)

// DayLock serializes critical sections keyed by user and day. Acquire
// blocks until the key is free or ctx is done; the returned release
// function must be called exactly once.
type DayLock interface {
	Acquire(ctx context.Context, userID string, day time.Time) (release func(), err error)
}

// Key renders the canonical lock key for a user and UTC day.
func Key(userID string, day time.Time) string {
	return userID + ":" + day.UTC().Format("2006-01-02")
}

// Memory is a process-local DayLock backed by per-key semaphores.
type Memory struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	sem  chan struct{}
	refs int
}

// NewMemory returns an empty in-process lock table.
func NewMemory() *Memory {
	return &Memory{locks: make(map[string]*entry)}
}

func (m *Memory) Acquire(ctx context.Context, userID string, day time.Time) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := Key(userID, day)

	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	// A semaphore channel instead of a mutex so a cancelled ctx can
	// abandon the wait.
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		m.drop(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			<-e.sem
			m.drop(key, e)
		})
	}
	return release, nil
}

func (m *Memory) drop(key string, e *entry) {
	m.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
	m.mu.Unlock()
}
