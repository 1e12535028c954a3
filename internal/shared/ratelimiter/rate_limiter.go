package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter paces an operation such as an outbound SMTP send.
type Limiter interface {
	Wait(ctx context.Context) error
}

// RateLimiter allows at most limit operations per fixed interval window.
// Callers that overflow a window are scheduled into the next one.
// It is safe for concurrent use.
type RateLimiter struct {
	mu          sync.Mutex
	limit       int
	interval    time.Duration
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a fixed-window limiter. A limit <= 0 disables pacing.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:       limit,
		interval:    interval,
		windowStart: time.Now(),
	}
}

// Wait blocks until the caller's slot opens, or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limit <= 0 {
		return ctx.Err()
	}

	rl.mu.Lock()
	now := time.Now()
	if now.Sub(rl.windowStart) >= rl.interval {
		rl.count = 0
		rl.windowStart = now
	}
	if rl.count >= rl.limit {
		rl.count = 0
		rl.windowStart = rl.windowStart.Add(rl.interval)
	}
	rl.count++
	sleep := rl.windowStart.Sub(now)
	rl.mu.Unlock()

	if sleep <= 0 {
		return nil
	}
	slog.Debug("rate limit reached, waiting", "limit", rl.limit, "sleep", sleep)

	timer := time.NewTimer(sleep)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
