package services

import (
	"context"
	"testing"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/catalog"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSelectionStore(t *testing.T) (*AssetSelectionStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewAssetSelectionStore(client), mr
}

func TestAssetSelectionStore_GetDefaults(t *testing.T) {
	store, _ := newSelectionStore(t)

	ids, err := store.Get(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultSelectedIDs(), ids)
}

func TestAssetSelectionStore_SetNormalizes(t *testing.T) {
	store, _ := newSelectionStore(t)
	ctx := context.Background()

	// Out of order, with a duplicate and an unknown id.
	ids, err := store.Set(ctx, "user-1", []string{"gold", "us-10yr", "gold", "bitcoin"})

	require.NoError(t, err)
	assert.Equal(t, []string{"us-10yr", "gold"}, ids)

	loaded, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"us-10yr", "gold"}, loaded)
}

func TestAssetSelectionStore_Toggle(t *testing.T) {
	ctx := context.Background()

	t.Run("adds and removes", func(t *testing.T) {
		store, _ := newSelectionStore(t)
		_, err := store.Set(ctx, "user-1", []string{"us-10yr"})
		require.NoError(t, err)

		ids, err := store.Toggle(ctx, "user-1", "gold")
		require.NoError(t, err)
		assert.Contains(t, ids, "gold")

		ids, err = store.Toggle(ctx, "user-1", "gold")
		require.NoError(t, err)
		assert.NotContains(t, ids, "gold")
		assert.Equal(t, []string{"us-10yr"}, ids)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		store, _ := newSelectionStore(t)
		before, err := store.Set(ctx, "user-1", []string{"us-10yr", "gold"})
		require.NoError(t, err)

		after, err := store.Toggle(ctx, "user-1", "dogecoin")

		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestAssetSelectionStore_Reset(t *testing.T) {
	store, _ := newSelectionStore(t)
	ctx := context.Background()
	_, err := store.Set(ctx, "user-1", []string{"gold"})
	require.NoError(t, err)

	ids, err := store.Reset(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultSelectedIDs(), ids)
}

func TestAssetSelectionStore_CorruptValueFallsBack(t *testing.T) {
	store, mr := newSelectionStore(t)
	require.NoError(t, mr.Set(selectionKeyPrefix+"user-1", "{not json"))

	ids, err := store.Get(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultSelectedIDs(), ids)
}

func TestAssetSelectionStore_IsolatedPerUser(t *testing.T) {
	store, _ := newSelectionStore(t)
	ctx := context.Background()

	_, err := store.Set(ctx, "user-a", []string{"gold"})
	require.NoError(t, err)

	ids, err := store.Get(ctx, "user-b")
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultSelectedIDs(), ids)
}
