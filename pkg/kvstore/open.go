// Package kvstore provides persistent backends for the dashboard layout slot.
package kvstore

import (
	"context"
	"fmt"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
)

// Store is a KVStore that owns a connection or file handle.
type Store interface {
	dashboard.KVStore
	Close() error
}

type memoryStore struct {
	*dashboard.MemoryKVStore
}

func (memoryStore) Close() error { return nil }

// Open builds the store for driver: memory, file, redis, sqlite or postgres.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		store Store
		err   error
	)
	switch driver {
	case "", "memory":
		store = memoryStore{dashboard.NewMemoryKVStore()}
	case "file":
		store, err = NewFileStore(dsn)
	case "redis":
		store, err = NewRedisStore(ctx, dsn)
	case "sqlite":
		store, err = NewSQLStore(ctx, DriverSQLite, dsn)
	case "postgres", "pgx":
		store, err = NewSQLStore(ctx, DriverPostgres, dsn)
	default:
		return nil, fmt.Errorf("kvstore: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
