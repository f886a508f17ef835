package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Limiter paces outbound requests. Reserve reports the wait the next
// call to Wait would incur without consuming capacity.
type Limiter interface {
	Wait(ctx context.Context) error
	Reserve() time.Duration
	RetryAfter(attempt int) time.Duration
}

// Strategy defines the rate limiting strategy.
type Strategy string

const (
	StrategyTokenBucket Strategy = "token_bucket"
	StrategyFixedWindow Strategy = "fixed_window"
	StrategyFixedDelay  Strategy = "fixed_delay"
)

func (s Strategy) validate() error {
	switch s {
	case "", StrategyTokenBucket, StrategyFixedWindow, StrategyFixedDelay:
		return nil
	}
	return fmt.Errorf("unknown strategy %q", s)
}

// NewLimiter creates a rate limiter based on config.
func NewLimiter(cfg Config) Limiter {
	cfg = applyDefaults(cfg)
	switch cfg.Strategy {
	case StrategyFixedWindow:
		return NewFixedWindow(cfg)
	case StrategyFixedDelay:
		return NewFixedDelay(cfg)
	default:
		return NewTokenBucket(cfg)
	}
}

// Unlimited never blocks. Useful for tests and local fixtures.
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }
func (Unlimited) Reserve() time.Duration         { return 0 }
func (Unlimited) RetryAfter(int) time.Duration   { return 0 }
