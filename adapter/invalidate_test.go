package adapter

import (
	"context"
	"testing"

	"github.com/agentuity/go-cacheadapter/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelNoKeys(t *testing.T) {
	c := newMapCache("a")
	a, err := New(c, []*store.Store{mustStore(t, c)})
	require.NoError(t, err)
	require.NoError(t, a.Del(context.Background()))
	assert.Empty(t, c.expired)
}

func TestDelWithoutBatchSupport(t *testing.T) {
	c := newMapCache("a", "b", "c")
	a, err := New(c, []*store.Store{mustStore(t, c)})
	require.NoError(t, err)
	require.NoError(t, a.Del(context.Background(), "a", "b", "missing"))
	assert.ElementsMatch(t, []string{"a", "b", "missing"}, c.expired)
	keys, err := a.Keys(context.Background(), "*")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, keys)
}

func TestDelBatch(t *testing.T) {
	a, mem, db := newScenario(t)
	ctx := context.Background()
	require.NoError(t, a.Del(ctx, "x", "m"))

	found, _, err := mem.Get(ctx, "x")
	require.NoError(t, err)
	assert.False(t, found)
	found, _, err = db.Get(ctx, "m")
	require.NoError(t, err)
	assert.False(t, found)
	found, _, err = db.Get(ctx, "n")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestDelHashRemovesUnion(t *testing.T) {
	a, _, _ := newScenario(t)
	ctx := context.Background()

	require.NoError(t, a.DelHash(ctx, "x*", "m"))

	keys, err := a.Keys(ctx, "*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"y", "n"}, keys)
}

func TestDelHashNoMatches(t *testing.T) {
	a, _, _ := newScenario(t)
	ctx := context.Background()
	require.NoError(t, a.DelHash(ctx, "zzz"))
	keys, err := a.Keys(ctx, "*")
	require.NoError(t, err)
	assert.Len(t, keys, 5)
}

func TestDelHashUnsupportedStore(t *testing.T) {
	c := newMapCache("a")
	a, err := New(c, []*store.Store{mustStore(t, c), mustStore(t, struct{}{})})
	require.NoError(t, err)
	err = a.DelHash(context.Background(), "a")
	assert.ErrorIs(t, err, store.ErrUnsupportedStore)
	assert.Empty(t, c.expired)
}
