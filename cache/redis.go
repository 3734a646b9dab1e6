package cache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

type redisCache struct {
	client *redis.Client
	cfg    config
}

var (
	_ Cache        = (*redisCache)(nil)
	_ BatchExpirer = (*redisCache)(nil)
)

// NewRedis returns a new Cache backed by Redis.
// The caller owns the redis.Client lifecycle; Close does not close the client.
func NewRedis(client *redis.Client, opts ...Option) Cache {
	return &redisCache{
		client: client,
		cfg:    applyOptions(opts),
	}
}

func (c *redisCache) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.cfg.queryTimeout)
}

func (c *redisCache) Get(ctx context.Context, key string) (bool, any, error) {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	k := c.cfg.prefixKey(key)
	data, err := c.client.HGet(qctx, k, "v").Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	// Increment hits (fire-and-forget, don't fail the Get).
	c.client.HIncrBy(qctx, k, "h", 1)
	return true, data, nil
}

func (c *redisCache) Set(ctx context.Context, key string, val any, expires time.Duration) error {
	data, err := msgpack.Marshal(val)
	if err != nil {
		return errors.Wrap(err, "cache: failed to marshal value")
	}
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	k := c.cfg.prefixKey(key)
	pipe := c.client.Pipeline()
	pipe.HSet(qctx, k, "v", data, "h", 0)
	pipe.Expire(qctx, k, c.cfg.expires(expires))
	_, err = pipe.Exec(qctx)
	return err
}

func (c *redisCache) Hits(ctx context.Context, key string) (bool, int) {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	hits, err := c.client.HGet(qctx, c.cfg.prefixKey(key), "h").Int()
	if err != nil {
		return false, 0
	}
	return true, hits
}

func (c *redisCache) Expire(ctx context.Context, key string) (bool, error) {
	n, err := c.ExpireMany(ctx, key)
	return n > 0, err
}

func (c *redisCache) ExpireMany(ctx context.Context, keys ...string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = c.cfg.prefixKey(key)
	}
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	result, err := c.client.Del(qctx, prefixed...).Result()
	if err != nil {
		return 0, err
	}
	return int(result), nil
}

// Scan pages through the key space with SCAN. match is a Redis glob and
// is not prefixed; returned keys carry the namespace prefix.
func (c *redisCache) Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	return c.client.Scan(qctx, cursor, match, count).Result()
}

// Close is a no-op: the caller owns the redis.Client lifecycle.
func (c *redisCache) Close() error {
	return nil
}
