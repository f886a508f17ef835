package ratelimit

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// FixedWindow admits up to RequestsPerSec requests per one-second window.
// Unlike TokenBucket it never carries unused capacity across windows.
type FixedWindow struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	count       int
	windowStart time.Time
	now         func() time.Time
	config      Config
}

// NewFixedWindow creates a fixed window limiter. Fractional rates round
// down, with a floor of one request per window.
func NewFixedWindow(cfg Config) *FixedWindow {
	cfg = applyDefaults(cfg)

	return &FixedWindow{
		limit:       max(int(cfg.RequestsPerSec), 1),
		window:      time.Second,
		windowStart: time.Now(),
		now:         time.Now,
		config:      cfg,
	}
}

// Wait blocks until the current window has room or ctx is done. Callers
// released by the same window rollover are spread by up to a quarter of
// the wait.
func (fw *FixedWindow) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		wait, ok := fw.take(true)
		if ok {
			return nil
		}
		if quarter := int64(wait) / 4; quarter > 0 {
			wait += time.Duration(rand.Int64N(quarter))
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Reserve returns the time until the next slot frees up without taking it.
func (fw *FixedWindow) Reserve() time.Duration {
	wait, _ := fw.take(false)
	return wait
}

// RetryAfter returns exponential backoff duration.
func (fw *FixedWindow) RetryAfter(attempt int) time.Duration {
	return CalculateBackoff(attempt, fw.config)
}

// take reports whether a slot is free, consuming it when consume is set.
// When no slot is free it returns the time left in the window.
func (fw *FixedWindow) take(consume bool) (time.Duration, bool) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := fw.now()
	if now.Sub(fw.windowStart) >= fw.window {
		fw.count = 0
		fw.windowStart = now
	}
	if fw.count < fw.limit {
		if consume {
			fw.count++
		}
		return 0, true
	}
	return fw.window - now.Sub(fw.windowStart), false
}
