package dispatch

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// userLocks hands out one context-aware mutex per user. Entries are dropped
// once no event holds or waits for them.
type userLocks struct {
	mu      sync.Mutex
	entries map[int64]*userLock
}

type userLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{entries: make(map[int64]*userLock)}
}

// Lock blocks until userID is free or ctx is done. The returned func releases the lock.
func (l *userLocks) Lock(ctx context.Context, userID int64) (func(), error) {
	l.mu.Lock()
	entry, ok := l.entries[userID]
	if !ok {
		entry = &userLock{sem: semaphore.NewWeighted(1)}
		l.entries[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	if err := entry.sem.Acquire(ctx, 1); err != nil {
		l.release(userID, entry, false)
		return nil, err
	}
	var once sync.Once
	return func() {
		once.Do(func() { l.release(userID, entry, true) })
	}, nil
}

func (l *userLocks) release(userID int64, entry *userLock, held bool) {
	if held {
		entry.sem.Release(1)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, userID)
	}
}

func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
