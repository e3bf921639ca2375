package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps counters in process memory. Counters are lost on
// restart and not shared between instances.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		period:  period,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow opens a new window on the first request or after the previous one
// ended. Rejected requests do not extend or count toward the window.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(l.period)}
		l.windows[key] = w
		return Result{Allowed: true, Count: 1, Limit: l.limit, ResetAt: w.resetAt}, nil
	}

	if w.count >= l.limit {
		return Result{Allowed: false, Count: w.count, Limit: l.limit, ResetAt: w.resetAt}, nil
	}

	w.count++
	return Result{Allowed: true, Count: w.count, Limit: l.limit, ResetAt: w.resetAt}, nil
}

// Sweep drops expired windows and returns how many were removed
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// StartSweeper periodically removes expired windows until ctx is done
func (l *MemoryLimiter) StartSweeper(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = l.period
	}
	ticker := time.NewTicker(every)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := l.Sweep(); n > 0 {
					slog.Debug("Rate limiter sweep", "removed", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
