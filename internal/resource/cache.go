package resource

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachingResolver wraps a Resolver with a TTL cache on resolution results.
// Watch mode resolves the same locations on every pass; caching keeps
// repeated wildcard expansion off the hot path. Invalidate after filesystem
// changes to pick up new matches.
type CachingResolver struct {
	inner *Resolver
	cache *gocache.Cache
	ttl   time.Duration
}

// NewCachingResolver wraps inner with the given TTL.
func NewCachingResolver(inner *Resolver, ttl time.Duration) *CachingResolver {
	return &CachingResolver{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Resolve returns the cached handle for location, resolving on miss.
func (c *CachingResolver) Resolve(location string) (Resource, error) {
	if v, found := c.cache.Get(location); found {
		return v.(Resource), nil
	}
	res, err := c.inner.Resolve(location)
	if err != nil {
		return nil, err
	}
	c.cache.Set(location, res, c.ttl)
	return res, nil
}

// ResolveAll returns the cached handle set for location, resolving on miss.
func (c *CachingResolver) ResolveAll(location string) ([]Resource, error) {
	key := "all:" + location
	if v, found := c.cache.Get(key); found {
		return v.([]Resource), nil
	}
	resources, err := c.inner.ResolveAll(location)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, resources, c.ttl)
	return resources, nil
}

// Invalidate drops every cached resolution.
func (c *CachingResolver) Invalidate() {
	c.cache.Flush()
}
