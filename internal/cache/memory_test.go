package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	value := map[string]float64{"price": 38.5}
	require.NoError(t, store.Set(ctx, "gas_search_CZ_Prague", value))

	var got map[string]float64
	found, err := store.Get(ctx, "gas_search_CZ_Prague", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, value, got)
}

func TestMemoryStore_ExpiredEntryIsAbsent(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Set(ctx, "transport_prague", 550.0))

	// Just inside the window.
	store.now = func() time.Time { return now.Add(59 * time.Minute) }
	var fare float64
	found, err := store.Get(ctx, "transport_prague", &fare)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 550.0, fare)

	// At and past the window the entry reads as absent.
	store.now = func() time.Time { return now.Add(time.Hour) }
	found, err = store.Get(ctx, "transport_prague", &fare)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_MissingKey(t *testing.T) {
	store := NewMemoryStore(time.Hour)

	var dest string
	found, err := store.Get(context.Background(), "nope", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_ConcurrentPopulationSameKey(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set(ctx, "stores_50.088_14.421", []string{fmt.Sprintf("writer-%d", n)})

			var names []string
			_, _ = store.Get(ctx, "stores_50.088_14.421", &names)
		}(i)
	}
	wg.Wait()

	// Last writer wins; any of the written values is acceptable as long as
	// the entry decodes cleanly.
	var names []string
	found, err := store.Get(ctx, "stores_50.088_14.421", &names)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, names, 1)
	assert.Contains(t, names[0], "writer-")
}

func TestKeys_Deterministic(t *testing.T) {
	assert.Equal(t, "stores_50.088_14.421", StoresKey(50.0884, 14.4212))
	assert.Equal(t, StoresKey(50.0884, 14.4212), StoresKey(50.0881, 14.4214))
	assert.Equal(t, "gas_stations_50.088_14.421", GasStationsKey(50.0884, 14.4212))
	assert.Equal(t, "pet_stores_50.088_14.421", PetStoresKey(50.0884, 14.4212))
	assert.Equal(t, "transport_prague", TransportKey("Prague"))
	assert.Equal(t, "groceries_prague_milk_bread", GroceriesKey("Prague", []string{"milk", "bread"}))
	assert.Equal(t, "gas_search_Czech Republic_general", GasSearchKey("Czech Republic", ""))
}
