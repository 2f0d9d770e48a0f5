package probe

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the number of sources a Cache remembers.
const DefaultCacheSize = 256

// Cache memoizes a Prober. Concurrent probes of one source share a single
// call to the underlying prober. Failures are not cached.
type Cache struct {
	next  Prober
	lru   *lru.Cache[string, Metadata]
	group singleflight.Group
}

// NewCache wraps next with an LRU of the given size.
func NewCache(next Prober, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, Metadata](size)
	if err != nil {
		return nil, err
	}
	return &Cache{next: next, lru: c}, nil
}

// Probe returns cached metadata or asks the wrapped prober.
func (c *Cache) Probe(ctx context.Context, src string) (Metadata, error) {
	if md, ok := c.lru.Get(src); ok {
		return md, nil
	}
	v, err, _ := c.group.Do(src, func() (any, error) {
		if md, ok := c.lru.Get(src); ok {
			return md, nil
		}
		md, err := c.next.Probe(ctx, src)
		if err != nil {
			return Metadata{}, err
		}
		c.lru.Add(src, md)
		return md, nil
	})
	if err != nil {
		return Metadata{}, err
	}
	return v.(Metadata), nil
}

// Len returns the number of cached sources.
func (c *Cache) Len() int { return c.lru.Len() }

// Purge drops every cached entry.
func (c *Cache) Purge() { c.lru.Purge() }
