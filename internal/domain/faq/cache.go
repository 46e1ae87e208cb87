package faq

import (
	"context"
	"time"
)

// CachedAnswer is the payload stored per normalized query.
type CachedAnswer struct {
	EntryID   string    `json:"entryId"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// AnswerCache keeps recent match results keyed by normalized query so repeat
// questions skip the scan. The cache is best effort: failures are logged and
// the matcher falls back to a fresh search.
type AnswerCache interface {
	Get(ctx context.Context, normalized string) (CachedAnswer, bool, error)
	Set(ctx context.Context, normalized string, answer CachedAnswer, ttl time.Duration) error
}
