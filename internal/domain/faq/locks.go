package faq

import "sync"

// entryLocks serializes writes per entry so concurrent matches against
// different entries stay independent. Locks are created lazily and never
// reclaimed; the entry set is small and administrator-curated.
type entryLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newEntryLocks() *entryLocks {
	return &entryLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *entryLocks) lock(id string) func() {
	l.mu.Lock()
	entryMu, ok := l.locks[id]
	if !ok {
		entryMu = &sync.Mutex{}
		l.locks[id] = entryMu
	}
	l.mu.Unlock()
	entryMu.Lock()
	return entryMu.Unlock
}
