package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// SQL drivers supported by SQLStore.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

type dialect struct {
	get    string
	upsert string
	remove string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		get:    `SELECT value FROM dashboard_kv WHERE key = ?`,
		upsert: `INSERT INTO dashboard_kv(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		remove: `DELETE FROM dashboard_kv WHERE key = ?`,
	},
	DriverPostgres: {
		get:    `SELECT value FROM dashboard_kv WHERE key = $1`,
		upsert: `INSERT INTO dashboard_kv(key, value) VALUES($1, $2) ON CONFLICT(key) DO UPDATE SET value = EXCLUDED.value`,
		remove: `DELETE FROM dashboard_kv WHERE key = $1`,
	},
}

const createTable = `CREATE TABLE IF NOT EXISTS dashboard_kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLStore keeps layout slots in a single key/value table.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

var _ dashboard.KVStore = (*SQLStore)(nil)

// NewSQLStore opens driver ("sqlite" or "pgx") at dsn and ensures the table exists.
func NewSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("sql store: unsupported driver %q", driver)
	}
	if dsn == "" {
		return nil, fmt.Errorf("sql store: %w", dashboard.ErrMissingStore)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// in-memory databases are per connection
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create dashboard_kv table: %w", err)
	}
	return &SQLStore{db: db, dialect: d}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, key, value); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.remove, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
