package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucket is a Limiter backed by golang.org/x/time/rate. It serves
// both the token_bucket and the fixed_delay strategies.
type TokenBucket struct {
	limiter *rate.Limiter
	config  Config
}

// NewTokenBucket creates a limiter that starts with a full bucket of
// cfg.Burst tokens refilled at cfg.RequestsPerSec.
func NewTokenBucket(cfg Config) *TokenBucket {
	cfg = applyDefaults(cfg)
	return newTokenBucket(rate.Limit(cfg.RequestsPerSec), cfg.Burst, cfg)
}

// NewFixedDelay creates a limiter that spaces requests cfg.FixedDelay
// apart. The first request passes immediately.
func NewFixedDelay(cfg Config) *TokenBucket {
	cfg = applyDefaults(cfg)
	return newTokenBucket(rate.Every(cfg.FixedDelay), 1, cfg)
}

func newTokenBucket(limit rate.Limit, burst int, cfg Config) *TokenBucket {
	return &TokenBucket{
		limiter: rate.NewLimiter(limit, burst),
		config:  cfg,
	}
}

// Wait blocks until a token is available or context is canceled.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	return tb.limiter.Wait(ctx)
}

// Reserve returns the duration to wait for the next token without taking it.
func (tb *TokenBucket) Reserve() time.Duration {
	r := tb.limiter.Reserve()
	if !r.OK() {
		return tb.config.MaxBackoff
	}
	delay := r.Delay()
	r.Cancel()
	return delay
}

// RetryAfter returns exponential backoff duration.
func (tb *TokenBucket) RetryAfter(attempt int) time.Duration {
	return CalculateBackoff(attempt, tb.config)
}
