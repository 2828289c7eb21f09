package ratelimit

import (
	"context"
	"time"

	redisadapter "github.com/showtix/showtix/internal/adapters/redis"
)

// RateLimiter is a fixed-window counter in Redis, keyed per user and per IP.
type RateLimiter struct {
	redis *redisadapter.Cache
}

func NewRateLimiter(redis *redisadapter.Cache) *RateLimiter {
	return &RateLimiter{redis: redis}
}

// Allow reports whether the key is under rate for the current window. The
// limiter fails open on Redis errors so an outage never blocks bookings.
func (rl *RateLimiter) Allow(ctx context.Context, key string, rate int, period time.Duration) bool {
	fullKey := "rl:" + key

	pipe := rl.redis.Client().Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, period)

	if _, err := pipe.Exec(ctx); err != nil {
		return true
	}

	return incr.Val() <= int64(rate)
}
