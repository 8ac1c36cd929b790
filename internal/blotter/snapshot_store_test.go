package blotter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestSnapshotStore_RoundTrip(t *testing.T) {
	store := NewSnapshotStore(newTestRedis(t), time.Hour)
	ctx := context.Background()

	r := NewRegistry()
	r.AddFile(File{Name: "a.csv", Size: 123})
	r.SetAnalysisResult("a.csv", sampleResult())
	r.MarkCloudHydrated()

	require.NoError(t, store.Save(ctx, "user-1", r.Snapshot()))

	state, found, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, state.Files, 1)
	assert.Equal(t, "a.csv", state.Files[0].Name)
	assert.True(t, state.HasHydratedFromCloud)
	require.NotNil(t, state.SelectedFile)
	assert.Equal(t, "a.csv", state.SelectedFile.Name)
	assert.Contains(t, state.AnalysisResults, "a.csv")
}

func TestSnapshotStore_MissingUser(t *testing.T) {
	store := NewSnapshotStore(newTestRedis(t), time.Hour)

	_, found, err := store.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSnapshotStore_Delete(t *testing.T) {
	store := NewSnapshotStore(newTestRedis(t), time.Hour)
	ctx := context.Background()

	r := NewRegistry()
	r.AddFile(File{Name: "a.csv"})
	require.NoError(t, store.Save(ctx, "user-1", r.Snapshot()))
	require.NoError(t, store.Delete(ctx, "user-1"))

	_, found, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestContentCache_RoundTrip(t *testing.T) {
	cache := NewContentCache(newTestRedis(t), time.Hour)
	ctx := context.Background()

	content := []byte("date,symbol,side,qty\n2024-01-02,US 10YR,BUY,100\n")
	require.NoError(t, cache.Put(ctx, "user-1", "a.csv", content))

	got, found, err := cache.Get(ctx, "user-1", "a.csv")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, content, got)

	// Other users do not see it.
	_, found, err = cache.Get(ctx, "user-2", "a.csv")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestContentCache_Delete(t *testing.T) {
	cache := NewContentCache(newTestRedis(t), time.Hour)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "user-1", "a.csv", []byte("x")))
	require.NoError(t, cache.Delete(ctx, "user-1", "a.csv"))

	_, found, err := cache.Get(ctx, "user-1", "a.csv")
	require.NoError(t, err)
	assert.False(t, found)
}
