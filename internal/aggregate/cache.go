package aggregate

import (
	"context"
	"sync"
	"time"
)

// flightCache is a process-local TTL cache with single-flight semantics: the
// first caller to miss a key becomes the sole fetcher, concurrent callers for
// the same key block on that fetch instead of issuing duplicate provider
// calls. Failed fetches are never cached.
type flightCache struct {
	mu      sync.Mutex
	entries map[string]*flight
	ttl     time.Duration

	hits   int64
	misses int64
}

type flight struct {
	done      chan struct{}
	val       interface{}
	err       error
	expiresAt time.Time
}

func newFlightCache(ttl time.Duration) *flightCache {
	return &flightCache{
		entries: make(map[string]*flight),
		ttl:     ttl,
	}
}

// Do returns the cached value for key, or runs fn exactly once to populate
// it. Waiters honor ctx cancellation without cancelling the in-flight fetch,
// since other callers may still want its result.
func (c *flightCache) Do(ctx context.Context, key string, fn func() (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	if f, ok := c.entries[key]; ok {
		select {
		case <-f.done:
			if f.err == nil && time.Now().Before(f.expiresAt) {
				c.hits++
				c.mu.Unlock()
				return f.val, nil
			}
			// expired: fall through and refetch
		default:
			// fetch in flight: await it
			c.hits++
			c.mu.Unlock()
			select {
			case <-f.done:
				return f.val, f.err
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	f := &flight{done: make(chan struct{})}
	c.entries[key] = f
	c.misses++
	c.mu.Unlock()

	f.val, f.err = fn()
	f.expiresAt = time.Now().Add(c.ttl)
	close(f.done)

	if f.err != nil {
		c.mu.Lock()
		if c.entries[key] == f {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}

	return f.val, f.err
}

// Stats reports cache hit/miss counters
func (c *flightCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Clear drops all cached entries
func (c *flightCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*flight)
}
