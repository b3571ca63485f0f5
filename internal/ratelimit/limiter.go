// Package ratelimit throttles unauthenticated endpoints per client IP
// with fixed-window counters kept in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts requests per (purpose, ip) in windows of a fixed length
type Limiter struct {
	client      redis.Cmdable
	maxRequests int64
	window      time.Duration
}

func NewLimiter(client redis.Cmdable, maxRequests int64, window time.Duration) *Limiter {
	return &Limiter{
		client:      client,
		maxRequests: maxRequests,
		window:      window,
	}
}

// getIPKey generates the Redis key for an IP counter scoped to a purpose
func getIPKey(purpose, ip string) string {
	return fmt.Sprintf("rate_limit:%s:ip:%s", purpose, ip)
}

// AllowIPWithPurpose records one request and reports whether it is within the limit
func (l *Limiter) AllowIPWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	key := getIPKey(purpose, ip)

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to record request: %w", err)
	}

	// First hit of a window (or a key that lost its TTL) starts the clock
	if ttl.Val() < 0 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count.Val() <= l.maxRequests, nil
}

// Unlimited allows every request; used when rate limiting is disabled
type Unlimited struct{}

func (Unlimited) AllowIPWithPurpose(context.Context, string, string) (bool, error) {
	return true, nil
}
