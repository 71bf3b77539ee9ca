// Package cache is the key-addressed query cache between the resource
// services and the HTTP client: staleness windows, in-flight deduplication
// and mutation-driven prefix invalidation.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads a fresh value from the network.
type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache holds last-known resource values keyed by Key tuples. Entries never
// expire on their own; staleness only decides whether a read triggers a
// refresh. Invalidation is explicit, driven by mutations.
type Cache struct {
	store *gocache.Cache
	group singleflight.Group
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		store: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

// Key builds a stable ordered cache key from resource-identifying segments,
// e.g. Key("subscriptions", "transactions", 1, 20) -> "subscriptions/transactions/1/20".
// Identical logical requests share one slot regardless of call site.
func Key(parts ...any) string {
	segs := make([]string, len(parts))
	for i, p := range parts {
		segs[i] = fmt.Sprint(p)
	}
	return strings.Join(segs, "/")
}

// Fetch resolves key with the staleness contract:
//   - a value younger than maxAge is returned without a network call;
//   - a stale value is returned immediately while a background refresh runs;
//   - a miss blocks on the fetch.
//
// Concurrent fetches for the same key share one outstanding request. Failed
// fetches are not retried by the cache; the next read tries again.
func (c *Cache) Fetch(ctx context.Context, key string, maxAge time.Duration, fetch Fetcher) (any, error) {
	if cached, found := c.store.Get(key); found {
		ent := cached.(entry)
		if time.Since(ent.fetchedAt) <= maxAge {
			return ent.value, nil
		}
		// Serve stale, revalidate off the caller's critical path. The
		// refresh outlives the caller's context on purpose.
		go c.refresh(context.WithoutCancel(ctx), key, fetch)
		return ent.value, nil
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store.Set(key, entry{value: v, fetchedAt: time.Now()}, gocache.NoExpiration)
		return v, nil
	})
	return value, err
}

func (c *Cache) refresh(ctx context.Context, key string, fetch Fetcher) {
	_, err, _ := c.group.Do(key, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store.Set(key, entry{value: v, fetchedAt: time.Now()}, gocache.NoExpiration)
		return v, nil
	})
	if err != nil {
		// Keep serving the stale value; the next read retriggers.
		slog.Debug("cache: background refresh failed", "key", key, "error", err)
	}
}

// Put stores value under key as if freshly fetched. Used by mutations whose
// response is the new canonical resource state.
func (c *Cache) Put(key string, value any) {
	c.store.Set(key, entry{value: value, fetchedAt: time.Now()}, gocache.NoExpiration)
}

// Get returns the cached value for key regardless of staleness.
func (c *Cache) Get(key string) (any, bool) {
	cached, found := c.store.Get(key)
	if !found {
		return nil, false
	}
	return cached.(entry).value, true
}

// Invalidate drops every entry whose key equals one of the prefixes or
// lives under it. Subsequent reads for those keys re-fetch.
func (c *Cache) Invalidate(prefixes ...string) {
	for key := range c.store.Items() {
		for _, prefix := range prefixes {
			if key == prefix || strings.HasPrefix(key, prefix+"/") {
				c.store.Delete(key)
				break
			}
		}
	}
}

// Clear drops everything. Used on sign-out.
func (c *Cache) Clear() {
	c.store.Flush()
}

// Fetch is the typed wrapper services use; it keeps the cast next to the
// fetch that produced the value.
func Fetch[T any](ctx context.Context, c *Cache, key string, maxAge time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	value, err := c.Fetch(ctx, key, maxAge, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}
