package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return client, mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, TransportKey("Prague"), 550.0))

	var fare float64
	found, err := store.Get(ctx, TransportKey("Prague"), &fare)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 550.0, fare)
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "gas_search_CZ_Prague", 38.5))

	mr.FastForward(time.Hour + time.Minute)

	var price float64
	found, err := store.Get(ctx, "gas_search_CZ_Prague", &price)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_MissingKey(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisStore(client, time.Hour)

	var dest string
	found, err := store.Get(context.Background(), "absent", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}
