// Package pacing computes the randomized pre-request delay and the exponential
// retry backoff, and performs the context-aware suspension between attempts.
package pacing

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

const maxShift = 62

// Config holds the delay range and backoff shape.
type Config struct {
	DelayMin time.Duration
	DelayMax time.Duration
	// BackoffUnit is the time unit scaled by 2^attempt.
	BackoffUnit time.Duration
	// BackoffMax caps the backoff; zero leaves it uncapped.
	BackoffMax time.Duration
}

// Policy implements pre-request jitter and exponential backoff.
type Policy struct {
	cfg    Config
	int64n func(n int64) int64
}

// NewPolicy validates cfg and builds a Policy.
func NewPolicy(cfg Config) (*Policy, error) {
	if cfg.DelayMin < 0 {
		return nil, fmt.Errorf("delay min must be >= 0, got %s", cfg.DelayMin)
	}
	if cfg.DelayMax < cfg.DelayMin {
		return nil, fmt.Errorf("delay max %s must be >= delay min %s", cfg.DelayMax, cfg.DelayMin)
	}
	if cfg.BackoffUnit <= 0 {
		return nil, fmt.Errorf("backoff unit must be > 0, got %s", cfg.BackoffUnit)
	}
	if cfg.BackoffMax < 0 {
		return nil, fmt.Errorf("backoff max must be >= 0, got %s", cfg.BackoffMax)
	}
	return &Policy{cfg: cfg, int64n: rand.Int64N}, nil
}

// PreRequestDelay returns a duration drawn uniformly from [DelayMin, DelayMax].
func (p *Policy) PreRequestDelay() time.Duration {
	span := int64(p.cfg.DelayMax - p.cfg.DelayMin)
	if span <= 0 {
		return p.cfg.DelayMin
	}
	return p.cfg.DelayMin + time.Duration(p.int64n(span+1))
}

// BackoffDelay returns BackoffUnit * 2^attempt, attempt 0 being the first retry.
func (p *Policy) BackoffDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxShift {
		attempt = maxShift
	}
	delay := time.Duration(math.MaxInt64)
	if p.cfg.BackoffUnit <= time.Duration(math.MaxInt64>>attempt) {
		delay = p.cfg.BackoffUnit << attempt
	}
	if p.cfg.BackoffMax > 0 && delay > p.cfg.BackoffMax {
		return p.cfg.BackoffMax
	}
	return delay
}
