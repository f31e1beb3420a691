package redis

import (
	"context"
	"fmt"
	"time"

	"travel-ai-planner/internal/domain/ports/adapter"
)

var _ adapter.RateLimiter = (*RateLimiter)(nil)

// RateLimiter admits at most limit calls per caller per window using an
// INCR + EXPIRE counter.
type RateLimiter struct {
	client RedisClient
	limit  int
	window time.Duration
}

func NewRateLimiter(client RedisClient, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

func callerKey(callerID string) string {
	return "rate_limit:chat:" + callerID
}

func (r *RateLimiter) CheckRateLimit(ctx context.Context, callerID string) (adapter.RateLimitVerdict, error) {
	count, err := r.client.Incr(ctx, callerKey(callerID))
	if err != nil {
		return adapter.RateLimitVerdict{}, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, callerKey(callerID), r.window); err != nil {
			return adapter.RateLimitVerdict{}, err
		}
	}

	if count > int64(r.limit) {
		return adapter.RateLimitVerdict{
			Allowed: false,
			Message: fmt.Sprintf("rate limit exceeded: at most %d requests per %s", r.limit, r.window),
		}, nil
	}

	return adapter.RateLimitVerdict{Allowed: true}, nil
}
