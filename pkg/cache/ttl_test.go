package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCache_Expiry(t *testing.T) {
	current := time.Now()
	c := NewTTLCache[string, []string](10, time.Hour)
	c.now = func() time.Time { return current }

	c.Put("admin", []string{"read_x", "write_x"})

	got, ok := c.Get("admin")
	assert.True(t, ok)
	assert.Equal(t, []string{"read_x", "write_x"}, got)

	// Just before expiry the entry is still served.
	current = current.Add(time.Hour - time.Second)
	_, ok = c.Get("admin")
	assert.True(t, ok)

	// Past expiry the entry is dropped.
	current = current.Add(2 * time.Second)
	_, ok = c.Get("admin")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCache_Bound(t *testing.T) {
	c := NewTTLCache[int, int](3, time.Hour)

	for i := 0; i < 4; i++ {
		c.Put(i, i)
	}

	assert.Equal(t, 3, c.Len())
	_, ok := c.Get(0) // oldest entry was evicted
	assert.False(t, ok)
	_, ok = c.Get(3)
	assert.True(t, ok)
}

func TestTTLCache_PutResetsExpiry(t *testing.T) {
	current := time.Now()
	c := NewTTLCache[string, int](10, time.Minute)
	c.now = func() time.Time { return current }

	c.Put("k", 1)
	current = current.Add(50 * time.Second)
	c.Put("k", 2)
	current = current.Add(30 * time.Second)

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestTTLCache_Concurrent(t *testing.T) {
	c := NewTTLCache[string, int](100, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("key-%d", j%20)
				c.Put(key, n)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 100)
}
