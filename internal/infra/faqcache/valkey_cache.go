package faqcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/smart-faq/internal/domain/faq"
)

// ValkeyCache keeps match results in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "faq"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

// Get implements faq.AnswerCache.
func (c *ValkeyCache) Get(ctx context.Context, normalized string) (faq.CachedAnswer, bool, error) {
	if normalized == "" {
		return faq.CachedAnswer{}, false, nil
	}
	cmd := c.client.B().Get().Key(c.answerKey(normalized)).Build()
	payload, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return faq.CachedAnswer{}, false, nil
		}
		return faq.CachedAnswer{}, false, err
	}
	var answer faq.CachedAnswer
	if err := json.Unmarshal([]byte(payload), &answer); err != nil {
		return faq.CachedAnswer{}, false, err
	}
	return answer, true, nil
}

// Set implements faq.AnswerCache.
func (c *ValkeyCache) Set(ctx context.Context, normalized string, answer faq.CachedAnswer, ttl time.Duration) error {
	if normalized == "" {
		return nil
	}
	payload, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	builder := c.client.B().Set().Key(c.answerKey(normalized)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) answerKey(normalized string) string {
	return c.prefix + ":answer:" + normalized
}

var _ faq.AnswerCache = (*ValkeyCache)(nil)
