// Package ratelimit implements fixed-window request counters keyed by client.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of a single Allow call
type Result struct {
	Allowed bool
	// Count is the number of requests seen in the current window, including this one
	Count   int
	Limit   int
	ResetAt time.Time
}

// RetryAfter returns how long the caller should wait before the window resets
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.ResetAt.Before(now) {
		return 0
	}
	return r.ResetAt.Sub(now)
}

// Limiter counts requests per key in fixed windows
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}
