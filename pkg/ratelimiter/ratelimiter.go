// Package ratelimiter implements a token bucket limiter used to throttle
// login attempts and reset-code requests. State lives in a pluggable store
// so a single instance can use memory while a fleet shares Redis.
package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// Config defines the token bucket shape.
type Config struct {
	Capacity       int           // burst limit
	RefillRate     int           // tokens added per interval
	RefillInterval time.Duration // how often tokens are added
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Result reports the outcome of one rate-limit check.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Allowed reports whether the request may proceed. A negative remaining
// count means the bucket was already empty.
func (r *Result) Allowed() bool { return r.Remaining >= 0 }

// RetryAfter returns how long to wait before retrying, zero when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Store persists bucket state per key.
type Store interface {
	// ConsumeTokens takes tokens from the bucket for key, refilling first
	// according to config. A negative remaining count means denial.
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (remaining int, resetAt time.Time, err error)

	// Reset clears the state for key.
	Reset(ctx context.Context, key string) error
}

// Bucket is a token bucket limiter over a Store.
type Bucket struct {
	store Store
	cfg   Config
}

func NewBucket(store Store, cfg Config) (*Bucket, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Bucket{store: store, cfg: cfg}, nil
}

// Allow consumes one token for key.
func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, 1, b.cfg)
	if err != nil {
		return nil, err
	}
	return &Result{Limit: b.cfg.Capacity, Remaining: remaining, ResetAt: resetAt}, nil
}

// Reset clears the bucket for key, used after a successful login so earlier
// failures stop counting.
func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}
