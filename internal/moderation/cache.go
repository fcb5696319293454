package moderation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrVerdictNotCached = errors.New("verdict not cached")

// VerdictCache stores AI verdicts in Redis keyed by a content digest, so a
// resubmission of the same text doesn't spend classifier quota. Keyword
// verdicts are never cached; the keyword stage is cheaper than the lookup.
type VerdictCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewVerdictCache(client *redis.Client, ttl time.Duration) *VerdictCache {
	return &VerdictCache{
		client: client,
		ttl:    ttl,
	}
}

// verdictKey generates the Redis key for a piece of content
func verdictKey(content string) string {
	digest := sha256.Sum256([]byte(content))
	return fmt.Sprintf("moderation:verdict:%s", hex.EncodeToString(digest[:]))
}

// Get retrieves a cached verdict for the content
func (c *VerdictCache) Get(ctx context.Context, content string) (*Verdict, error) {
	data, err := c.client.Get(ctx, verdictKey(content)).Bytes()
	if err == redis.Nil {
		return nil, ErrVerdictNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached verdict: %w", err)
	}

	var verdict Verdict
	if err := json.Unmarshal(data, &verdict); err != nil {
		return nil, fmt.Errorf("failed to decode cached verdict: %w", err)
	}

	return &verdict, nil
}

// Set stores a verdict for the content with the configured TTL
func (c *VerdictCache) Set(ctx context.Context, content string, verdict *Verdict) error {
	data, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("failed to encode verdict: %w", err)
	}

	if err := c.client.Set(ctx, verdictKey(content), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache verdict: %w", err)
	}

	return nil
}
