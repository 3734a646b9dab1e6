package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositePanicOnEmpty(t *testing.T) {
	assert.Panics(t, func() {
		NewComposite()
	})
}

func TestCompositeGetOrder(t *testing.T) {
	ctx := context.Background()
	l1 := NewInMemory(ctx)
	l2 := NewInMemory(ctx)
	c := NewComposite(l1, l2)
	defer c.Close()

	l1.Set(ctx, "key", "from-l1", time.Minute)
	l2.Set(ctx, "key", "from-l2", time.Minute)

	found, val, err := c.Get(ctx, "key")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "from-l1", val)
}

func TestCompositeSetAllAndFallthrough(t *testing.T) {
	ctx := context.Background()
	l1 := NewInMemory(ctx)
	l2 := NewInMemory(ctx)
	c := NewComposite(l1, l2)
	defer c.Close()

	assert.NoError(t, c.Set(ctx, "key", "shared", time.Minute))
	for _, l := range []Cache{l1, l2} {
		found, val, err := l.Get(ctx, "key")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "shared", val)
	}

	l2.Set(ctx, "only", "only-in-l2", time.Minute)
	found, val, err := c.Get(ctx, "only")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "only-in-l2", val)

	found, val, err = c.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, val)
}

func TestCompositeHits(t *testing.T) {
	ctx := context.Background()
	c := NewComposite(NewInMemory(ctx), NewInMemory(ctx))
	defer c.Close()

	assert.NoError(t, c.Set(ctx, "key", "value", time.Minute))
	c.Get(ctx, "key")
	c.Get(ctx, "key")
	ok, hits := c.Hits(ctx, "key")
	assert.True(t, ok)
	assert.Equal(t, 2, hits)
}

// expireOnly hides the BatchExpirer implementation of the wrapped cache.
type expireOnly struct{ Cache }

func TestCompositeExpireMany(t *testing.T) {
	ctx := context.Background()
	l1 := NewInMemory(ctx)
	l2 := NewInMemory(ctx)
	c := NewComposite(l1, expireOnly{l2})
	defer c.Close()

	assert.NoError(t, c.Set(ctx, "a", 1, time.Minute))
	assert.NoError(t, c.Set(ctx, "b", 2, time.Minute))

	n, err := c.(BatchExpirer).ExpireMany(ctx, "a", "b", "missing")
	assert.NoError(t, err)
	assert.Equal(t, 4, n)

	found, err := c.Expire(ctx, "a")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestCompositeMixedCacheTypes(t *testing.T) {
	ctx := context.Background()
	l1 := NewInMemory(ctx)
	l2, err := NewSQLite(ctx, ":memory:")
	require.NoError(t, err)
	c := NewComposite(l1, l2)
	defer c.Close()

	l2.Set(ctx, "key", "sqlite-value", time.Minute)

	ok, val, err := Get[string](ctx, c, "key")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sqlite-value", val)
}
