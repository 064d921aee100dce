// Package querycache is a keyed read-through cache for collection queries.
// Concurrent reads of the same key share one fetch, and invalidation always
// wins over a fetch that was already in flight when it happened: the stale
// result is returned to its waiters but never stored.
package querycache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchTimeout bounds a shared fetch. The fetch runs detached from any one
// caller's cancellation, so one waiter going away does not fail the rest.
const FetchTimeout = 30 * time.Second

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache stores fetched values per key. A zero ttl keeps entries until they
// are invalidated.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	gens    map[string]uint64
	group   singleflight.Group
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
}

// New returns an empty cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		gens:    make(map[string]uint64),
		ttl:     ttl,
		timeout: FetchTimeout,
		now:     time.Now,
	}
}

// Get returns the cached value for key or runs fetch to obtain it. Fetch
// errors are returned to every waiter and are not cached. A caller whose ctx
// ends stops waiting with ctx.Err() while the fetch carries on for the
// others.
func (c *Cache) Get(ctx context.Context, key string, fetch func(ctx context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && !c.expired(e) {
		c.mu.Unlock()
		return e.value, nil
	}
	gen, ok := c.gens[key]
	if !ok {
		c.gens[key] = 0
	}
	c.mu.Unlock()

	ch := c.group.DoChan(key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		value, err := fetch(fctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gens[key] == gen {
			c.entries[key] = entry{value: value, fetchedAt: c.now()}
		}
		c.mu.Unlock()

		return value, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) expired(e entry) bool {
	return c.ttl > 0 && c.now().Sub(e.fetchedAt) >= c.ttl
}

// Invalidate discards the entry for key so the next Get refetches. It is
// idempotent.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.gens[key]++
}

// InvalidatePrefix discards every key starting with prefix.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	for key := range c.gens {
		if strings.HasPrefix(key, prefix) {
			c.gens[key]++
		}
	}
}

// Cached reports whether a fresh value is held for key.
func (c *Cache) Cached(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && !c.expired(e)
}

// Fetch is the typed form of Cache.Get.
func Fetch[T any](ctx context.Context, c *Cache, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
