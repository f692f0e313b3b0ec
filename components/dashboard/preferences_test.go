package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKVStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryKVStore()

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", "v"))
	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	require.NoError(t, store.Remove(ctx, "k"))
	_, ok, _ = store.Get(ctx, "k")
	assert.False(t, ok)
}

func TestLayoutRepositorySaveLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewLayoutRepository(nil)
	assert.Equal(t, DefaultLayoutKey, repo.Key())

	entries, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, entries)

	layout := []WidgetLayoutEntry{{ID: "a", X: 1, Y: 2, W: 3, H: 4}}
	require.NoError(t, repo.Save(ctx, layout))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, layout, got)

	require.NoError(t, repo.Clear(ctx))
	got, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLayoutRepositoryClearsMalformedSlot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryKVStore()
	require.NoError(t, store.Set(ctx, "custom", "{broken"))
	telemetry := &recordingTelemetry{}
	repo := NewLayoutRepository(store, WithLayoutKey("custom"), WithRepositoryTelemetry(telemetry))

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, ErrMalformedLayout)
	_, ok, _ := store.Get(ctx, "custom")
	assert.False(t, ok)
	assert.Contains(t, telemetry.events(), "dashboard.layout.malformed")
}

type failingStore struct{ MemoryKVStore }

func (*failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("unavailable")
}

func TestLayoutRepositoryWrapsStoreErrors(t *testing.T) {
	repo := NewLayoutRepository(&failingStore{})
	_, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dashboard-layout")
}
