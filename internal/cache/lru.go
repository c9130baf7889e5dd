package cache

import (
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUWithTTL is a size-bounded, thread-safe LRU whose entries also expire
// after ttl. A zero ttl disables expiry.
type LRUWithTTL[K comparable, V any] struct {
	cache   *lru.Cache[K, *ttlEntry[V]]
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	hits    atomic.Uint64
	misses  atomic.Uint64
	evicted atomic.Uint64
}

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewLRUWithTTL creates a cache holding at most size entries
func NewLRUWithTTL[K comparable, V any](size int, ttl time.Duration) (*LRUWithTTL[K, V], error) {
	inner, err := lru.New[K, *ttlEntry[V]](size)
	if err != nil {
		return nil, err
	}
	return &LRUWithTTL[K, V]{cache: inner, ttl: ttl, now: time.Now}, nil
}

// Get returns the value for key. Expired entries are removed and count as a
// miss.
func (c *LRUWithTTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, ok := c.cache.Get(key)
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	if c.expired(entry) {
		c.cache.Remove(key)
		c.misses.Add(1)
		return zero, false
	}

	c.hits.Add(1)
	return entry.value, true
}

// Set stores value, evicting the least recently used entry when full
func (c *LRUWithTTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}
	if c.cache.Add(key, &ttlEntry[V]{value: value, expiresAt: expiresAt}) {
		c.evicted.Add(1)
	}
}

// Delete removes a key from the cache
func (c *LRUWithTTL[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Remove(key)
}

// Len returns the number of entries, expired ones included
func (c *LRUWithTTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

// Clear removes all entries
func (c *LRUWithTTL[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
}

// CleanupExpired removes all expired entries and returns how many it removed
func (c *LRUWithTTL[K, V]) CleanupExpired() int {
	if c.ttl <= 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.cache.Keys() {
		if entry, ok := c.cache.Peek(key); ok && c.expired(entry) {
			c.cache.Remove(key)
			removed++
		}
	}
	return removed
}

func (c *LRUWithTTL[K, V]) expired(entry *ttlEntry[V]) bool {
	return c.ttl > 0 && c.now().After(entry.expiresAt)
}

// Stats is a snapshot of cache counters
type Stats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Evicted uint64  `json:"evicted"`
	Size    int     `json:"size"`
	HitRate float64 `json:"hit_rate"`
}

// Stats returns current cache statistics
func (c *LRUWithTTL[K, V]) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	s := Stats{
		Hits:    hits,
		Misses:  misses,
		Evicted: c.evicted.Load(),
		Size:    c.Len(),
	}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	return s
}
