package cache

import (
	"container/list"
	"sync"
	"time"
)

type ttlEntry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// TTLCache is a thread-safe bounded cache with per-entry expiry.
// When the cache reaches its capacity, the least recently used item is
// evicted; expired entries are dropped lazily on read.
type TTLCache[K comparable, V any] struct {
	capacity int
	ttl      time.Duration
	items    map[K]*list.Element
	eviction *list.List
	mu       sync.Mutex

	now func() time.Time // swapped in tests
}

// NewTTLCache creates a cache holding at most capacity entries, each valid
// for ttl after insertion. Capacity and ttl must be positive, otherwise it
// panics.
func NewTTLCache[K comparable, V any](capacity int, ttl time.Duration) *TTLCache[K, V] {
	if capacity <= 0 {
		panic("cache capacity must be positive")
	}
	if ttl <= 0 {
		panic("cache ttl must be positive")
	}
	return &TTLCache[K, V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[K]*list.Element),
		eviction: list.New(),
		now:      time.Now,
	}
}

// Get retrieves a value and marks it as recently used. Expired entries are
// removed and reported as absent.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}

	entry := elem.Value.(*ttlEntry[K, V])
	if c.now().After(entry.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.eviction.MoveToFront(elem)
	return entry.value, true
}

// Put adds or replaces a value, resetting its expiry. The least recently
// used entry is evicted when the cache is full.
func (c *TTLCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)

	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		entry := elem.Value.(*ttlEntry[K, V])
		entry.value = value
		entry.expiresAt = expiresAt
		return
	}

	elem := c.eviction.PushFront(&ttlEntry[K, V]{key: key, value: value, expiresAt: expiresAt})
	c.items[key] = elem

	if c.eviction.Len() > c.capacity {
		if oldest := c.eviction.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Remove deletes an entry, reporting whether it existed.
func (c *TTLCache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeElement(elem)
	return true
}

func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}

// Must be called with lock held.
func (c *TTLCache[K, V]) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	entry := elem.Value.(*ttlEntry[K, V])
	delete(c.items, entry.key)
}
