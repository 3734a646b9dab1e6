package cache

import (
	"context"
	"sync"
	"time"
)

type inMemoryCache struct {
	ctx       context.Context
	cancel    context.CancelFunc
	cache     map[string]*value
	mutex     sync.Mutex
	waitGroup sync.WaitGroup
	once      sync.Once
	cfg       config
}

var (
	_ Cache        = (*inMemoryCache)(nil)
	_ BatchExpirer = (*inMemoryCache)(nil)
)

func (c *inMemoryCache) Get(_ context.Context, key string) (bool, any, error) {
	k := c.cfg.prefixKey(key)
	c.mutex.Lock()
	defer c.mutex.Unlock()
	val, ok := c.cache[k]
	if !ok {
		return false, nil, nil
	}
	if val.expires.Before(time.Now()) {
		delete(c.cache, k)
		return false, nil, nil
	}
	val.hits++
	return true, val.object, nil
}

func (c *inMemoryCache) Hits(_ context.Context, key string) (bool, int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if v, ok := c.cache[c.cfg.prefixKey(key)]; ok {
		return true, v.hits
	}
	return false, 0
}

func (c *inMemoryCache) Set(_ context.Context, key string, val any, expires time.Duration) error {
	expiresAt := time.Now().Add(c.cfg.expires(expires))
	k := c.cfg.prefixKey(key)
	c.mutex.Lock()
	if v, ok := c.cache[k]; ok {
		v.hits = 0
		v.expires = expiresAt
		v.object = val
	} else {
		c.cache[k] = &value{val, expiresAt, 0}
	}
	c.mutex.Unlock()
	return nil
}

func (c *inMemoryCache) Expire(_ context.Context, key string) (bool, error) {
	k := c.cfg.prefixKey(key)
	c.mutex.Lock()
	_, ok := c.cache[k]
	if ok {
		delete(c.cache, k)
	}
	c.mutex.Unlock()
	return ok, nil
}

func (c *inMemoryCache) ExpireMany(_ context.Context, keys ...string) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	var removed int
	for _, key := range keys {
		k := c.cfg.prefixKey(key)
		if _, ok := c.cache[k]; ok {
			delete(c.cache, k)
			removed++
		}
	}
	return removed, nil
}

// SnapshotKeys returns the stored keys, namespace prefix included, of every
// entry that has not expired.
func (c *inMemoryCache) SnapshotKeys() map[string]struct{} {
	now := time.Now()
	c.mutex.Lock()
	defer c.mutex.Unlock()
	keys := make(map[string]struct{}, len(c.cache))
	for key, val := range c.cache {
		if !val.expires.Before(now) {
			keys[key] = struct{}{}
		}
	}
	return keys
}

func (c *inMemoryCache) Close() error {
	c.once.Do(func() {
		c.cancel()
		c.waitGroup.Wait()
	})
	return nil
}

func (c *inMemoryCache) run() {
	defer c.waitGroup.Done()
	ticker := time.NewTicker(c.cfg.expiryCheck)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			c.mutex.Lock()
			for key, val := range c.cache {
				if val.expires.Before(now) {
					delete(c.cache, key)
				}
			}
			c.mutex.Unlock()
		}
	}
}

// NewInMemory returns a new in-memory Cache implementation.
func NewInMemory(parent context.Context, opts ...Option) Cache {
	cfg := applyOptions(opts)
	ctx, cancel := context.WithCancel(parent)
	c := &inMemoryCache{
		ctx:    ctx,
		cancel: cancel,
		cache:  make(map[string]*value),
		cfg:    cfg,
	}
	c.waitGroup.Add(1)
	go c.run()
	return c
}
