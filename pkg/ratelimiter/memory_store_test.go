package ratelimiter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *MemoryStore {
	return &MemoryStore{
		buckets:     make(map[string]*memBucket),
		stopCleanup: make(chan struct{}),
		now:         time.Now,
	}
}

func TestBucket_Allow(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	bucket, err := NewBucket(store, Config{
		Capacity:       3,
		RefillRate:     1,
		RefillInterval: time.Minute,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		res, err := bucket.Allow(ctx, "user@example.com")
		require.NoError(t, err)
		assert.True(t, res.Allowed(), "attempt %d", i+1)
	}

	res, err := bucket.Allow(ctx, "user@example.com")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Positive(t, res.RetryAfter())

	// Other keys have their own buckets.
	res, err = bucket.Allow(ctx, "other@example.com")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestBucket_Refill(t *testing.T) {
	ctx := context.Background()
	current := time.Now()
	store := newTestStore()
	store.now = func() time.Time { return current }

	bucket, err := NewBucket(store, Config{
		Capacity:       2,
		RefillRate:     1,
		RefillInterval: time.Minute,
	})
	require.NoError(t, err)

	for n := 0; n < 2; n++ {
		_, err := bucket.Allow(ctx, "k")
		require.NoError(t, err)
	}
	res, err := bucket.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed())

	// One interval later a single token is back.
	current = current.Add(61 * time.Second)
	res, err = bucket.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	res, err = bucket.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
}

func TestBucket_DeniedAttemptsDoNotConsume(t *testing.T) {
	ctx := context.Background()
	current := time.Now()
	store := newTestStore()
	store.now = func() time.Time { return current }

	bucket, err := NewBucket(store, Config{
		Capacity:       1,
		RefillRate:     1,
		RefillInterval: time.Minute,
	})
	require.NoError(t, err)

	res, err := bucket.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, res.Allowed())

	// Hammering an empty bucket must not push the lockout further out.
	for n := 0; n < 5; n++ {
		res, err = bucket.Allow(ctx, "k")
		require.NoError(t, err)
		assert.False(t, res.Allowed())
	}

	current = current.Add(61 * time.Second)
	res, err = bucket.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestBucket_Reset(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	bucket, err := NewBucket(store, Config{
		Capacity:       1,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	require.NoError(t, err)

	_, err = bucket.Allow(ctx, "k")
	require.NoError(t, err)
	res, err := bucket.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed())

	require.NoError(t, bucket.Reset(ctx, "k"))

	res, err = bucket.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestNewBucket_InvalidConfig(t *testing.T) {
	store := newTestStore()

	for _, cfg := range []Config{
		{Capacity: 0, RefillRate: 1, RefillInterval: time.Minute},
		{Capacity: 1, RefillRate: 0, RefillInterval: time.Minute},
		{Capacity: 1, RefillRate: 1, RefillInterval: 0},
	} {
		_, err := NewBucket(store, cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	cfg := Config{Capacity: 1000, RefillRate: 1, RefillInterval: time.Hour}

	var wg sync.WaitGroup
	for n := 0; n < 10; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				_, _, err := store.ConsumeTokens(ctx, "shared", 1, cfg)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	remaining, _, err := store.ConsumeTokens(ctx, "shared", 0, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}
