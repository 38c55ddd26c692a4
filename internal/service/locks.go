package service

import (
	"sync"
)

type pairKey struct {
	userID int64
	bookID int64
}

type pairLock struct {
	mu   sync.Mutex
	refs int
}

// PairLocks serializes writers of the same (user, book) pair within one
// process. Entries are dropped once no goroutine holds or waits on them.
type PairLocks struct {
	mu    sync.Mutex
	locks map[pairKey]*pairLock
}

func NewPairLocks() *PairLocks {
	return &PairLocks{locks: make(map[pairKey]*pairLock)}
}

// Lock blocks until the pair is free and returns its unlock function.
func (l *PairLocks) Lock(userID, bookID int64) func() {
	key := pairKey{userID: userID, bookID: bookID}

	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &pairLock{}
		l.locks[key] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *PairLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
