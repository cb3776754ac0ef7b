package ratelimit

import (
	"context"
	"fmt"
	"time"

	"FinAdvise/pkg/cache"
)

// RedisLimiter is a fixed-window counter shared by every replica.
type RedisLimiter struct {
	store  cache.Counter
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter allows limit requests per key in each window.
func NewRedisLimiter(store cache.Counter, limit int, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{store: store, limit: int64(limit), window: window, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	slot := l.now().UnixNano() / int64(l.window)
	k := cache.GenerateKeyWithParams("ratelimit", key, slot)

	n, err := l.store.Increment(ctx, k)
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		// first hit in the window owns the TTL
		if _, err := l.store.Expire(ctx, k, l.window); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return n <= l.limit, nil
}
