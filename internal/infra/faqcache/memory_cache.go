package faqcache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/smart-faq/internal/domain/faq"
)

type cachedAnswer struct {
	payload   faq.CachedAnswer
	expiresAt time.Time
}

// MemoryCache is an in-process implementation of the answer cache for
// tests/dev.
type MemoryCache struct {
	mu      sync.RWMutex
	answers map[string]cachedAnswer
}

// NewMemoryCache constructs a cache backed by process memory.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{answers: make(map[string]cachedAnswer)}
}

// Get implements faq.AnswerCache.
func (c *MemoryCache) Get(_ context.Context, normalized string) (faq.CachedAnswer, bool, error) {
	if normalized == "" {
		return faq.CachedAnswer{}, false, nil
	}
	c.mu.RLock()
	record, ok := c.answers[normalized]
	c.mu.RUnlock()
	if !ok {
		return faq.CachedAnswer{}, false, nil
	}
	if hasExpired(record.expiresAt) {
		c.mu.Lock()
		delete(c.answers, normalized)
		c.mu.Unlock()
		return faq.CachedAnswer{}, false, nil
	}
	return record.payload, true, nil
}

// Set implements faq.AnswerCache with an optional TTL.
func (c *MemoryCache) Set(_ context.Context, normalized string, answer faq.CachedAnswer, ttl time.Duration) error {
	if normalized == "" {
		return nil
	}
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.answers[normalized] = cachedAnswer{payload: answer, expiresAt: exp}
	c.mu.Unlock()
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ faq.AnswerCache = (*MemoryCache)(nil)
