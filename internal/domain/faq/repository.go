package faq

import "context"

// EntryRepository is the narrow persistence contract the core consumes.
// Save is an idempotent full-entry upsert; implementations must not apply
// partial updates.
type EntryRepository interface {
	LoadAll(ctx context.Context) ([]Entry, error)
	Find(ctx context.Context, id string) (Entry, bool, error)
	Save(ctx context.Context, entry Entry) error
}
