package geocode

import (
	"container/list"
	"context"
	"strings"
	"sync"

	"github.com/i474232898/road-trip-weather/internal/observability"
	"github.com/i474232898/road-trip-weather/internal/weather"
)

// Cached wraps a Geocoder with an in-memory LRU cache keyed by the
// normalized label. Failures are never cached.
type Cached struct {
	inner   weather.Geocoder
	metrics *observability.Metrics

	mu         sync.Mutex
	maxEntries int
	order      *list.List // front = most recently used
	entries    map[string]*list.Element
}

type cacheEntry struct {
	key    string
	coords weather.Coordinates
}

// NewCached creates a cache decorator around a geocoder.
func NewCached(inner weather.Geocoder, maxEntries int, metrics *observability.Metrics) *Cached {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Cached{
		inner:      inner,
		metrics:    metrics,
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *Cached) Geocode(ctx context.Context, label string) (weather.Coordinates, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	if coords, ok := c.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return coords, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	coords, err := c.inner.Geocode(ctx, label)
	if err != nil {
		return coords, err
	}
	c.put(key, coords)
	return coords, nil
}

// Len reports the number of cached labels.
func (c *Cached) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cached) get(key string) (weather.Coordinates, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return weather.Coordinates{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).coords, true
}

func (c *Cached) put(key string, coords weather.Coordinates) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).coords = coords
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, coords: coords})

	if c.order.Len() > c.maxEntries {
		tail := c.order.Back()
		c.order.Remove(tail)
		delete(c.entries, tail.Value.(*cacheEntry).key)
	}
}
