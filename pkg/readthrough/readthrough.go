// Package readthrough caches derived values (student statistics, public
// dashboards) in front of the system of record. Misses compute the value
// and store it for the configured TTL; writes that change the underlying
// data invalidate explicitly. The cache holds strings only - serialization
// and parsing stay with the caller.
package readthrough

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lernwerk/resilient-cache/pkg/cache"
	"github.com/lernwerk/resilient-cache/pkg/logging"
)

// LoadFunc computes the value from the system of record on a cache miss.
type LoadFunc func(ctx context.Context) (string, error)

// Cache is a read-through view over the facade with a fixed TTL.
type Cache struct {
	cache  *cache.Facade
	ttl    time.Duration
	logger zerolog.Logger
}

// New creates a read-through cache storing computed values for ttl.
func New(c *cache.Facade, ttl time.Duration) *Cache {
	return &Cache{
		cache:  c,
		ttl:    ttl,
		logger: logging.NewLogger("readthrough"),
	}
}

// Get returns the cached value under key, computing and storing it on a
// miss. Load errors are returned as-is; nothing is cached for a failed
// load, so the next call retries.
func (c *Cache) Get(ctx context.Context, key string, load LoadFunc) (string, error) {
	if val, ok := c.cache.Get(ctx, key); ok {
		return val, nil
	}

	val, err := load(ctx)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}

	c.cache.SetWithExpiry(ctx, key, c.ttl, val)

	c.logger.Debug().
		Str("key", key).
		Dur("ttl", c.ttl).
		Msg("Computed and cached derived value")

	return val, nil
}

// Invalidate drops the cached value under key. Call it from any write that
// changes the underlying source data.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	c.cache.Delete(ctx, key)
}
