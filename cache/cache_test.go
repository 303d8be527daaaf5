package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetMiss(t *testing.T) {
	store := NewMemory(time.Minute)
	_, ok, err := store.Get(context.Background(), "!gAS65000\n")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryPutGet(t *testing.T) {
	store := NewMemory(time.Minute)
	ctx := context.Background()

	items := []string{"192.0.2.0/24", "198.51.100.0/24"}
	require.NoError(t, store.Put(ctx, "!gAS65000\n", items))

	got, ok, err := store.Get(ctx, "!gAS65000\n")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, items, got)
}

func TestMemoryEmptyResponseIsCached(t *testing.T) {
	store := NewMemory(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "!6AS65000\n", nil))
	got, ok, err := store.Get(ctx, "!6AS65000\n")
	require.NoError(t, err)
	assert.True(t, ok, "a cached empty response is still a hit")
	assert.Empty(t, got)
}

func TestMemoryExpiry(t *testing.T) {
	store := NewMemory(time.Minute)
	now := time.Unix(1700000000, 0)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "!iAS-EXAMPLE\n", []string{"AS65001"}))

	now = now.Add(59 * time.Second)
	_, ok, err := store.Get(ctx, "!iAS-EXAMPLE\n")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, err = store.Get(ctx, "!iAS-EXAMPLE\n")
	require.NoError(t, err)
	assert.False(t, ok, "entries expire after the TTL")
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "irrd:response:!gAS65000", redisKey("!gAS65000\n"))
}
