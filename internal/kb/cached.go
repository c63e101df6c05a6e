package kb

import (
	"io"
	"time"

	"github.com/ppiankov/websnip/internal/cache"
)

type lookup struct {
	typ   EntityType
	found bool
}

// CachedResolver memoizes another resolver, including misses
type CachedResolver struct {
	base  Resolver
	cache *cache.MemoryCache[lookup]
	ttl   time.Duration
}

// NewCachedResolver wraps base; ttl <= 0 keeps entries for the run
func NewCachedResolver(base Resolver, ttl time.Duration) *CachedResolver {
	if ttl <= 0 {
		ttl = -1 // go-cache: never expire
	}
	return &CachedResolver{
		base:  base,
		cache: cache.NewMemoryCache[lookup](ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

// Resolve consults the cache before the wrapped resolver. Errors are not cached.
func (r *CachedResolver) Resolve(name string) (EntityType, bool, error) {
	key := cache.Key("kb", name)
	if hit, ok := r.cache.Get(key); ok {
		return hit.typ, hit.found, nil
	}
	t, found, err := r.base.Resolve(name)
	if err != nil {
		return "", false, err
	}
	_ = r.cache.Set(key, lookup{typ: t, found: found}, r.ttl)
	return t, found, nil
}

// Close releases the wrapped resolver if it holds resources
func (r *CachedResolver) Close() error {
	if c, ok := r.base.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
