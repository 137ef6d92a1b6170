package tracker

import "sync"

// lockArena hands out one mutex per key so overlapping updates to the same
// trip serialize while different trips never block each other. Entries live
// for the process lifetime.
type lockArena struct {
	mu      sync.Mutex
	entries map[string]*sync.Mutex
}

func newLockArena() *lockArena {
	return &lockArena{
		entries: map[string]*sync.Mutex{},
	}
}

// Lock acquires the mutex for key and returns its unlock function
func (a *lockArena) Lock(key string) func() {
	a.mu.Lock()
	entry := a.entries[key]
	if entry == nil {
		entry = &sync.Mutex{}
		a.entries[key] = entry
	}
	a.mu.Unlock()

	entry.Lock()

	return entry.Unlock
}
