package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter paces outbound LLM calls. Calls are strictly spaced at
// 60/requestsPerMinute seconds apart with no burst allowance, shared by
// every provider behind one balancer.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a pacing limiter. A requestsPerMinute of zero or
// less disables pacing entirely.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		return &RateLimiter{}
	}
	// Burst of 1 forces even spacing instead of bucket refill behavior
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
	}
}

// Wait blocks until the next call is permitted or the context is cancelled
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil || r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}
