package cache

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisSetGetCache(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	c := NewRedis(client, WithPrefix("test"))
	defer c.Close()

	found, val, err := c.Get(ctx, "key")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, val)

	assert.NoError(t, c.Set(ctx, "key", "value", time.Minute))
	ok, str, err := Get[string](ctx, c, "key")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", str)
}

func TestRedisCacheExpiry(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewRedis(client, WithPrefix("test"))

	assert.NoError(t, c.Set(ctx, "key", "value", 2*time.Second))
	found, _, err := c.Get(ctx, "key")
	assert.NoError(t, err)
	assert.True(t, found)

	mr.FastForward(3 * time.Second)

	found, val, err := c.Get(ctx, "key")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, val)
}

func TestRedisCacheHits(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	c := NewRedis(client)

	ok, hits := c.Hits(ctx, "key")
	assert.False(t, ok)
	assert.Equal(t, 0, hits)

	assert.NoError(t, c.Set(ctx, "key", "value", time.Minute))
	c.Get(ctx, "key")
	c.Get(ctx, "key")
	c.Get(ctx, "key")
	ok, hits = c.Hits(ctx, "key")
	assert.True(t, ok)
	assert.Equal(t, 3, hits)
}

func TestRedisPrefix(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewRedis(client, WithPrefix("myapp"))

	assert.NoError(t, c.Set(ctx, "key", "value", time.Minute))
	assert.True(t, mr.Exists("myapp:key"))
	assert.False(t, mr.Exists("key"))
}

func TestRedisExpireMany(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewRedis(client, WithPrefix("app"))
	for _, k := range []string{"a", "b", "c"} {
		assert.NoError(t, c.Set(ctx, k, k, time.Minute))
	}

	found, err := c.Expire(ctx, "nonexistent")
	assert.NoError(t, err)
	assert.False(t, found)

	n, err := c.(BatchExpirer).ExpireMany(ctx, "a", "b", "missing")
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, mr.Exists("app:c"))
	assert.False(t, mr.Exists("app:a"))
}

func TestRedisScan(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	c := NewRedis(client, WithPrefix("app"))
	for _, k := range []string{"x", "xx", "m"} {
		assert.NoError(t, c.Set(ctx, k, k, time.Minute))
	}

	type scanner interface {
		Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error)
	}
	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.(scanner).Scan(ctx, cursor, "app:x*", 10)
		require.NoError(t, err)
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}
	sort.Strings(keys)
	assert.Equal(t, []string{"app:x", "app:xx"}, keys)
}
