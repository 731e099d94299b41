// Package ratelimit meters API traffic with sliding-window quotas. Keys
// identify the caller (an authenticated user id or a client address) and
// live in Redis so every budgetd replica counts against the same window;
// an in-memory backend covers Redis outages.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Result reports one quota decision.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter answers whether a caller key is still inside its quota for the
// given window.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// ErrLimitExceeded signals a rejected check. The accompanying Result still
// carries the reset time for the Retry-After header.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Caller keys share one Redis namespace so the cleaner can sweep them.
const redisKeyPrefix = "budgetd:rl:"
