package cache

import (
	"context"
	"time"
)

type compositeCache struct {
	caches []Cache
}

var (
	_ Cache        = (*compositeCache)(nil)
	_ BatchExpirer = (*compositeCache)(nil)
)

// NewComposite returns a Cache that chains multiple caches together.
// Get checks caches in order and returns the first hit.
// Set writes to all caches.
// At least one cache must be provided; panics if empty.
func NewComposite(caches ...Cache) Cache {
	if len(caches) == 0 {
		panic("cache: NewComposite requires at least one cache")
	}
	return &compositeCache{caches: caches}
}

func (c *compositeCache) Get(ctx context.Context, key string) (bool, any, error) {
	for _, cache := range c.caches {
		found, val, err := cache.Get(ctx, key)
		if err != nil {
			return false, nil, err
		}
		if found {
			return true, val, nil
		}
	}
	return false, nil, nil
}

func (c *compositeCache) Set(ctx context.Context, key string, val any, expires time.Duration) error {
	var firstErr error
	for _, cache := range c.caches {
		if err := cache.Set(ctx, key, val, expires); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *compositeCache) Hits(ctx context.Context, key string) (bool, int) {
	for _, cache := range c.caches {
		found, hits := cache.Hits(ctx, key)
		if found {
			return true, hits
		}
	}
	return false, 0
}

func (c *compositeCache) Expire(ctx context.Context, key string) (bool, error) {
	n, err := c.ExpireMany(ctx, key)
	return n > 0, err
}

// ExpireMany removes keys from every cache and returns the total number of
// entries removed across all of them.
func (c *compositeCache) ExpireMany(ctx context.Context, keys ...string) (int, error) {
	var removed int
	for _, cache := range c.caches {
		if be, ok := cache.(BatchExpirer); ok {
			n, err := be.ExpireMany(ctx, keys...)
			removed += n
			if err != nil {
				return removed, err
			}
			continue
		}
		for _, key := range keys {
			found, err := cache.Expire(ctx, key)
			if err != nil {
				return removed, err
			}
			if found {
				removed++
			}
		}
	}
	return removed, nil
}

func (c *compositeCache) Close() error {
	var firstErr error
	for _, cache := range c.caches {
		if err := cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
