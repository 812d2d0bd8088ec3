package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type memBucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// MemoryStore keeps bucket state in process memory. Stale buckets are swept
// periodically so abandoned keys do not accumulate.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*memBucket

	stopCleanup chan struct{}
	closeOnce   sync.Once

	now func() time.Time // swapped in tests
}

// NewMemoryStore creates a memory store with a background sweep every five
// minutes. Call Close to stop the sweeper.
func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		buckets:     make(map[string]*memBucket),
		stopCleanup: make(chan struct{}),
		now:         time.Now,
	}
	go ms.sweep(5 * time.Minute)
	return ms
}

func (ms *MemoryStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	b, ok := ms.buckets[key]
	if !ok {
		b = &memBucket{tokens: cfg.Capacity, lastRefill: now}
		ms.buckets[key] = b
	}

	// Refill whole intervals since the last refill, capped at capacity.
	elapsed := now.Sub(b.lastRefill)
	maxIntervals := int64(cfg.Capacity/cfg.RefillRate + 1)
	intervals := int(min(int64(elapsed/cfg.RefillInterval), maxIntervals))
	if intervals > 0 {
		b.tokens = min(b.tokens+intervals*cfg.RefillRate, cfg.Capacity)
		b.lastRefill = now
	}

	b.lastAccess = now

	// A denied attempt leaves the stored count unchanged.
	if b.tokens < tokens {
		return b.tokens - tokens, b.lastRefill.Add(cfg.RefillInterval), nil
	}
	b.tokens -= tokens

	return b.tokens, b.lastRefill.Add(cfg.RefillInterval), nil
}

func (ms *MemoryStore) Reset(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.buckets, key)
	return nil
}

func (ms *MemoryStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ms.removeStale()
		case <-ms.stopCleanup:
			return
		}
	}
}

func (ms *MemoryStore) removeStale() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	cutoff := ms.now().Add(-time.Hour)
	for key, b := range ms.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(ms.buckets, key)
		}
	}
}

// Close stops the background sweeper. Safe to call more than once.
func (ms *MemoryStore) Close() {
	ms.closeOnce.Do(func() { close(ms.stopCleanup) })
}
