package ratelimit

import (
	"math"
	"math/rand/v2"
	"time"
)

// CalculateBackoff returns the wait before retry attempt (1-based). The
// initial backoff grows by the multiplier per attempt and is capped at
// MaxBackoff, then jittered by up to 25% either way. Attempts past
// MaxRetries wait MaxBackoff.
func CalculateBackoff(attempt int, cfg Config) time.Duration {
	switch {
	case attempt <= 0:
		return 0
	case attempt > cfg.MaxRetries:
		return cfg.MaxBackoff
	}

	maxWait := float64(cfg.MaxBackoff)
	base := min(float64(cfg.InitialBackoff)*math.Pow(cfg.BackoffMultiplier, float64(attempt-1)), maxWait)
	jittered := base * (0.75 + 0.5*rand.Float64())
	return time.Duration(min(jittered, maxWait))
}
