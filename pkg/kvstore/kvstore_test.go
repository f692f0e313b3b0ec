package kvstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store dashboard.KVStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "dashboard-layout")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "dashboard-layout", `[{"id":"a"}]`))
	require.NoError(t, store.Set(ctx, "dashboard-layout", `[{"id":"b"}]`))
	value, ok, err := store.Get(ctx, "dashboard-layout")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"b"}]`, value)

	require.NoError(t, store.Remove(ctx, "dashboard-layout"))
	require.NoError(t, store.Remove(ctx, "dashboard-layout"))
	_, ok, err = store.Get(ctx, "dashboard-layout")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "layout.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	exerciseStore(t, store)

	require.NoError(t, store.Set(context.Background(), "other", "1"))
	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	value, ok, err := reopened.Get(context.Background(), "other")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", value)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, _, err = store.Get(context.Background(), "dashboard-layout")
	assert.Error(t, err)
}

func TestSQLStoreSQLite(t *testing.T) {
	store, err := NewSQLStore(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)
}

func TestSQLStoreBacksLayoutRepository(t *testing.T) {
	store, err := NewSQLStore(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	repo := dashboard.NewLayoutRepository(store)
	entries := []dashboard.WidgetLayoutEntry{{ID: "chart-trend", X: 0, Y: 2, W: 8, H: 4}}
	require.NoError(t, repo.Save(context.Background(), entries))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entries, loaded)
}

func TestSQLStoreRejectsUnknownDriver(t *testing.T) {
	_, err := NewSQLStore(context.Background(), "mysql", "root@/db")
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	fake := newFakeRedis()
	store := newRedisStoreWithClient(fake, "test")

	exerciseStore(t, store)

	require.NoError(t, store.Set(context.Background(), "dashboard-layout", "[]"))
	_, ok := fake.data["test:dashboard-layout"]
	assert.True(t, ok, "expected namespaced key")
	assert.NoError(t, store.Ping(context.Background()))
	assert.NoError(t, store.Close())
}

func TestRedisStorePropagatesErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	store := newRedisStoreWithClient(fake, "")

	_, _, err := store.Get(context.Background(), "dashboard-layout")
	assert.ErrorContains(t, err, "connection refused")
	assert.Error(t, store.Set(context.Background(), "dashboard-layout", "[]"))
	assert.Error(t, store.Remove(context.Background(), "dashboard-layout"))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, "memory", "")
	require.NoError(t, err)
	exerciseStore(t, store)
	assert.NoError(t, store.Close())

	store, err = Open(ctx, "file", filepath.Join(t.TempDir(), "layout.json"))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	assert.NoError(t, store.Close())

	_, err = Open(ctx, "file", "")
	assert.ErrorIs(t, err, dashboard.ErrMissingStore)

	_, err = Open(ctx, "redis", "")
	assert.ErrorIs(t, err, dashboard.ErrMissingStore)

	_, err = Open(ctx, "etcd", "localhost:2379")
	assert.Error(t, err)
}

type fakeRedis struct {
	data map[string]string
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", f.err)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	str, _ := value.(string)
	f.data[key] = str
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var removed int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}
