// Package cache provides a small generic in-memory cache with LRU
// eviction, optional TTL expiry, and built-in singleflight for concurrent
// loads. It backs the compiled-pattern memo in the routing resolver and
// the content-hash memo shared by the invalidation engine and the
// precache builder.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a generic LRU cache. A TTL of zero or less means entries never
// expire; they only leave through eviction or explicit invalidation.
type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	items      map[K]*list.Element
	evictList  *list.List
	maxEntries int
	defaultTTL time.Duration
	stats      Stats

	// singleflight: in-progress loads keyed by cache key
	inflight map[K]*call[V]
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time // zero means no expiry
}

type call[V any] struct {
	wg  sync.WaitGroup
	val V
	err error
}

// New creates a cache with the given max entries and default TTL.
func New[K comparable, V any](maxEntries int, defaultTTL time.Duration) *Cache[K, V] {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &Cache[K, V]{
		items:      make(map[K]*list.Element),
		evictList:  list.New(),
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
		inflight:   make(map[K]*call[V]),
	}
}

// Get retrieves a value. Returns the value and true if present and not
// expired, or the zero value and false otherwise.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}

	e := el.Value.(*entry[K, V])
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.removeLocked(el)
		c.stats.Misses++
		var zero V
		return zero, false
	}

	c.evictList.MoveToFront(el)
	c.stats.Hits++
	return e.value, true
}

// Set stores a value with the default TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores a value with a custom TTL. A non-positive TTL means
// the entry never expires.
func (c *Cache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if el, ok := c.items[key]; ok {
		c.evictList.MoveToFront(el)
		e := el.Value.(*entry[K, V])
		e.value = value
		e.expiresAt = expiresAt
		return
	}

	el := c.evictList.PushFront(&entry[K, V]{key: key, value: value, expiresAt: expiresAt})
	c.items[key] = el

	for c.evictList.Len() > c.maxEntries {
		c.evictOldestLocked()
	}
}

// GetOrLoad returns the cached value for key, or calls loadFn to populate
// it. Concurrent calls for the same key share a single load.
func (c *Cache[K, V]) GetOrLoad(key K, loadFn func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	c.mu.Lock()
	if cl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		cl.wg.Wait()
		if cl.err != nil {
			return cl.val, cl.err
		}
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		return cl.val, nil
	}

	cl := &call[V]{}
	cl.wg.Add(1)
	c.inflight[key] = cl
	c.mu.Unlock()

	// Load outside the lock.
	cl.val, cl.err = loadFn()
	if cl.err == nil {
		c.Set(key, cl.val)
	}
	cl.wg.Done()

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()

	return cl.val, cl.err
}

// Invalidate removes a single key.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
}

// Flush removes all entries.
func (c *Cache[K, V]) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*list.Element)
	c.evictList.Init()
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a snapshot of cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.items)
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

func (c *Cache[K, V]) removeLocked(el *list.Element) {
	e := el.Value.(*entry[K, V])
	delete(c.items, e.key)
	c.evictList.Remove(el)
}

func (c *Cache[K, V]) evictOldestLocked() {
	el := c.evictList.Back()
	if el == nil {
		return
	}
	c.removeLocked(el)
	c.stats.Evictions++
}
