package services

import (
	"sync"

	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

// keyedLocker hands out one mutex per session key.
// Entries are dropped once no goroutine holds or waits for them.
type keyedLocker struct {
	mu    sync.Mutex
	locks map[domain.SessionKey]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: make(map[domain.SessionKey]*keyedLock)}
}

// Lock blocks until key is free and returns the matching unlock function.
func (k *keyedLocker) Lock(key domain.SessionKey) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// size returns the number of live entries.
func (k *keyedLocker) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
