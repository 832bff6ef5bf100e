package ledger

import "sync"

// keyedMutex serialises mutations per session id.  Every ledger
// operation is a read-modify-write against the store, so two
// concurrent updates to the same session would lose increments
// without it.  Entries are reference-counted and removed once the
// last holder unlocks, so the map does not grow with session churn.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uint64]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uint64]*lockEntry)}
}

// Lock acquires the mutex for id and returns the matching unlock
// function.
func (k *keyedMutex) Lock(id uint64) func() {
	k.mu.Lock()
	e, ok := k.locks[id]
	if !ok {
		e = &lockEntry{}
		k.locks[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}
