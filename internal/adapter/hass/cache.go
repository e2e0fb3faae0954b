package hass

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	"github.com/couchcryptid/daily-temperature-wave/internal/observability"
)

// CachedSunProvider wraps a SunProvider with an in-memory LRU cache keyed by
// timezone and local calendar date, so the host is asked for sun data at most
// once a day.
type CachedSunProvider struct {
	inner    domain.SunProvider
	location func() *time.Location
	cache   *lruCache[domain.SunState]
	metrics *observability.Metrics
}

// NewCachedSunProvider creates a cache decorator around a sun provider.
// location is consulted on every lookup so a timezone change in the live
// wave config starts a new day key.
func NewCachedSunProvider(inner domain.SunProvider, maxEntries int, location func() *time.Location, metrics *observability.Metrics) *CachedSunProvider {
	return &CachedSunProvider{
		inner:    inner,
		location: location,
		cache:    newLRUCache[domain.SunState](maxEntries),
		metrics:  metrics,
	}
}

func (c *CachedSunProvider) zone() *time.Location {
	if c.location == nil {
		return time.Local
	}
	if loc := c.location(); loc != nil {
		return loc
	}
	return time.Local
}

func (c *CachedSunProvider) SunState(ctx context.Context) (domain.SunState, error) {
	loc := c.zone()
	key := loc.String() + "/" + domain.Now().In(loc).Format(time.DateOnly)
	if state, ok := c.cache.get(key); ok {
		c.metrics.SunCache.WithLabelValues("hit").Inc()
		return state, nil
	}
	c.metrics.SunCache.WithLabelValues("miss").Inc()

	state, err := c.inner.SunState(ctx)
	if err != nil {
		return state, err
	}
	// Only cache usable results so incomplete responses are retried.
	if _, ok := state.SolarNoon(loc); ok {
		c.cache.put(key, state)
	}
	return state, nil
}

// lruCache is a thread-safe LRU cache with a fixed number of entries.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	order      *list.List // front is most recently used
	entries    map[string]*list.Element
}

type lruEntry[V any] struct {
	key   string
	value V
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: max(maxEntries, 1),
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry[V]).value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*lruEntry[V]).value = value
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&lruEntry[V]{key: key, value: value})
	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*lruEntry[V]).key)
	}
}

func (c *lruCache[V]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
