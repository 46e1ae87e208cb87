package faqrepo

import (
	"context"
	"sync"

	"github.com/yanqian/smart-faq/internal/domain/faq"
)

// MemoryRepository is an in-memory EntryRepository used for tests/dev.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]faq.Entry
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string]faq.Entry)}
}

// LoadAll implements faq.EntryRepository.
func (r *MemoryRepository) LoadAll(_ context.Context) ([]faq.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]faq.Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, cloneEntry(entry))
	}
	return out, nil
}

// Find implements faq.EntryRepository.
func (r *MemoryRepository) Find(_ context.Context, id string) (faq.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok {
		return faq.Entry{}, false, nil
	}
	return cloneEntry(entry), true, nil
}

// Save implements faq.EntryRepository as a full-entry upsert.
func (r *MemoryRepository) Save(_ context.Context, entry faq.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = cloneEntry(entry)
	return nil
}

// cloneEntry detaches the feedback slice so callers never alias stored state.
func cloneEntry(entry faq.Entry) faq.Entry {
	clone := entry
	clone.Feedback = append([]faq.FeedbackRecord(nil), entry.Feedback...)
	return clone
}

var _ faq.EntryRepository = (*MemoryRepository)(nil)
