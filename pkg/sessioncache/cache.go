package sessioncache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Status reports what a Lookup found.
type Status int

const (
	// Miss means the fingerprint is unknown or its entry went stale;
	// the caller must run full resolution.
	Miss Status = iota

	// Hit means a fresh positive entry was found.
	Hit

	// NegativeHit means "no valid session" was cached for this fingerprint.
	// Anonymous traffic is cached as aggressively as authenticated traffic.
	NegativeHit
)

type entry[V any] struct {
	fingerprint string
	value       V
	negative    bool
	insertedAt  time.Time
}

// Cache memoizes resolved sessions by credential fingerprint so verification
// runs once per freshness window instead of once per request. Entries expire
// by time; the only explicit eviction is logout and refresh rotation. The
// cache is always empty at process start.
type Cache[V any] struct {
	mu       sync.RWMutex
	items    map[string]*list.Element
	order    *list.List
	ttl      time.Duration
	capacity int
	now      func() time.Time
	ticker   *time.Ticker
	done     chan struct{}
}

// New creates a cache whose entries go stale after ttl and whose size is
// bounded by capacity (oldest-first eviction). A positive cleanupInterval
// starts a background sweep of stale entries; zero disables it.
func New[V any](ttl time.Duration, capacity int, cleanupInterval time.Duration) *Cache[V] {
	if capacity <= 0 {
		panic("sessioncache: capacity must be positive")
	}

	c := &Cache[V]{
		items:    make(map[string]*list.Element),
		order:    list.New(),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	if cleanupInterval > 0 {
		c.ticker = time.NewTicker(cleanupInterval)
		go c.sweepLoop()
	}

	return c
}

// WithClock overrides the cache's time source. Intended for tests.
func (c *Cache[V]) WithClock(now func() time.Time) *Cache[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Lookup returns the cached value for a fingerprint. Stale entries are
// removed and reported as Miss.
func (c *Cache[V]) Lookup(fingerprint string) (V, Status) {
	var zero V

	c.mu.RLock()
	elem, ok := c.items[fingerprint]
	var e entry[V]
	if ok {
		e = *elem.Value.(*entry[V])
	}
	fresh := ok && c.now().Sub(e.insertedAt) < c.ttl
	c.mu.RUnlock()

	if !ok {
		return zero, Miss
	}
	if !fresh {
		c.Evict(fingerprint)
		return zero, Miss
	}
	if e.negative {
		return zero, NegativeHit
	}
	return e.value, Hit
}

// Store caches a resolved session. Writes are last-write-wins: storing the
// same fingerprint again replaces the entry and restarts its freshness window.
func (c *Cache[V]) Store(fingerprint string, value V) {
	c.store(fingerprint, value, false)
}

// StoreNegative caches a "no valid session" marker for a fingerprint.
func (c *Cache[V]) StoreNegative(fingerprint string) {
	var zero V
	c.store(fingerprint, zero, true)
}

func (c *Cache[V]) store(fingerprint string, value V, negative bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[V]{
		fingerprint: fingerprint,
		value:       value,
		negative:    negative,
		insertedAt:  c.now(),
	}

	if elem, ok := c.items[fingerprint]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}

	c.items[fingerprint] = c.order.PushFront(e)
	if c.order.Len() > c.capacity {
		c.removeElement(c.order.Back())
	}
}

// Evict removes a fingerprint regardless of freshness. Used on logout and
// on refresh rotation, when the old fingerprint stops naming a valid pair.
func (c *Cache[V]) Evict(fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[fingerprint]; ok {
		c.removeElement(elem)
	}
}

// DeleteExpired removes every stale entry.
func (c *Cache[V]) DeleteExpired(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.Sub(elem.Value.(*entry[V]).insertedAt) >= c.ttl {
			c.removeElement(elem)
		}
		elem = prev
	}
	return nil
}

// Len returns the number of entries, stale ones included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}

// Close stops the background sweeper.
func (c *Cache[V]) Close() error {
	if c.ticker != nil {
		c.ticker.Stop()
	}
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	return nil
}

// Must be called with lock held.
func (c *Cache[V]) removeElement(elem *list.Element) {
	if elem == nil {
		return
	}
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*entry[V]).fingerprint)
}

func (c *Cache[V]) sweepLoop() {
	for {
		select {
		case <-c.ticker.C:
			_ = c.DeleteExpired(context.Background())
		case <-c.done:
			return
		}
	}
}
