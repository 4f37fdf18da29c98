package common

import (
	"sync"
	"time"
)

// cacheEntry is replaced on refresh, never updated in place.
type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// ExpiringCache is a key/value store where every entry expires a fixed TTL
// after it was written. Expired entries are dropped lazily, when an access
// finds them.
//
// One mutex guards the whole map and is held for the full duration of each
// call, including the producer passed to Fetch. Two callers racing on a miss
// for the same key therefore never both run the producer: the second one
// waits and then sees the stored value. The price is that a slow producer
// blocks every other key too.
//
// A producer must not call back into the same cache; doing so deadlocks.
type ExpiringCache[K comparable, V any] struct {
	mu    sync.Mutex
	store map[K]cacheEntry[V]
	ttl   time.Duration
	now   func() time.Time
}

// NewExpiringCache returns an empty cache whose entries live for ttl.
func NewExpiringCache[K comparable, V any](ttl time.Duration) *ExpiringCache[K, V] {
	return &ExpiringCache[K, V]{
		store: make(map[K]cacheEntry[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// SetClockForTest replaces the time source used for expiry.
func (c *ExpiringCache[K, V]) SetClockForTest(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// TTL returns the lifetime given to every entry.
func (c *ExpiringCache[K, V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the live value stored under key.
func (c *ExpiringCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(key)
}

// Set stores value under key with a fresh expiry and returns it.
func (c *ExpiringCache[K, V]) Set(key K, value V) V {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(key, value)
	return value
}

// Fetch returns the live value for key, or runs producer once, stores what it
// returns and returns that. A producer error is returned as is and nothing is
// stored.
func (c *ExpiringCache[K, V]) Fetch(key K, producer func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	v, err := producer()
	if err != nil {
		var zero V
		return zero, err
	}
	c.put(key, v)
	return v, nil
}

// Clear drops every entry.
func (c *ExpiringCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.store)
}

// Len counts stored entries, including expired ones nobody has touched yet.
func (c *ExpiringCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

// lookup and put expect c.mu to be held.
func (c *ExpiringCache[K, V]) lookup(key K) (V, bool) {
	var zero V
	e, ok := c.store[key]
	if !ok {
		return zero, false
	}
	// expired from expiresAt onwards
	if !c.now().Before(e.expiresAt) {
		delete(c.store, key)
		return zero, false
	}
	return e.value, true
}

func (c *ExpiringCache[K, V]) put(key K, value V) {
	c.store[key] = cacheEntry[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}
