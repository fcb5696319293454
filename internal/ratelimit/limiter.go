package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window per-IP request counter backed by Redis.
// Limiter errors are reported to the caller, which is expected to fail
// open; abuse control must not take the API down with Redis.
type Limiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
}

func NewLimiter(client *redis.Client, requests int, window time.Duration) *Limiter {
	return &Limiter{
		client:   client,
		requests: requests,
		window:   window,
	}
}

// ipKey generates the Redis key for an IP and purpose
func ipKey(ip, purpose string) string {
	return fmt.Sprintf("ratelimit:%s:%s", purpose, ip)
}

// CheckIPRateLimitWithPurpose reports whether the IP has exhausted its
// window for the given purpose.
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	count, err := l.client.Get(ctx, ipKey(ip, purpose)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read rate limit counter: %w", err)
	}

	return count >= l.requests, nil
}

// RecordIPRequestWithPurpose counts a request against the IP's window.
// The window starts at the first request and expires as a whole.
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	key := ipKey(ip, purpose)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return nil
}
