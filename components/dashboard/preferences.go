package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultLayoutKey is the storage slot the layout persists to.
const DefaultLayoutKey = "dashboard-layout"

// MemoryKVStore provides a concurrency-safe in-process KVStore.
type MemoryKVStore struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ KVStore = (*MemoryKVStore)(nil)

// NewMemoryKVStore creates an empty store.
func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{data: make(map[string]string)}
}

func (s *MemoryKVStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *MemoryKVStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryKVStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// LayoutRepository reads and writes the persisted widget layout in one KVStore slot.
type LayoutRepository struct {
	store     KVStore
	key       string
	logger    zerolog.Logger
	telemetry Telemetry
}

// LayoutRepositoryOption customizes a LayoutRepository.
type LayoutRepositoryOption func(*LayoutRepository)

// WithLayoutKey overrides DefaultLayoutKey.
func WithLayoutKey(key string) LayoutRepositoryOption {
	return func(r *LayoutRepository) {
		if strings.TrimSpace(key) != "" {
			r.key = key
		}
	}
}

// WithRepositoryLogger sets the logger used for sanitization warnings.
func WithRepositoryLogger(logger zerolog.Logger) LayoutRepositoryOption {
	return func(r *LayoutRepository) {
		r.logger = logger
	}
}

// WithRepositoryTelemetry sets the telemetry sink.
func WithRepositoryTelemetry(t Telemetry) LayoutRepositoryOption {
	return func(r *LayoutRepository) {
		r.telemetry = normalizeTelemetry(t)
	}
}

// NewLayoutRepository wraps store. A nil store falls back to a MemoryKVStore.
func NewLayoutRepository(store KVStore, options ...LayoutRepositoryOption) *LayoutRepository {
	if store == nil {
		store = NewMemoryKVStore()
	}
	r := &LayoutRepository{
		store:     store,
		key:       DefaultLayoutKey,
		logger:    zerolog.Nop(),
		telemetry: noopTelemetry{},
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Key returns the storage slot name.
func (r *LayoutRepository) Key() string { return r.key }

// Store returns the backing store.
func (r *LayoutRepository) Store() KVStore { return r.store }

// Load returns the persisted layout, or nil when the slot is empty. A malformed slot
// is cleared and reported as ErrMalformedLayout.
func (r *LayoutRepository) Load(ctx context.Context) ([]WidgetLayoutEntry, error) {
	raw, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("dashboard: read layout %q: %w", r.key, err)
	}
	if !ok {
		return nil, nil
	}
	entries, dropped, err := DecodeLayout(raw)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", r.key).Msg("clearing malformed layout")
		r.telemetry.Record(ctx, "dashboard.layout.malformed", map[string]any{"key": r.key})
		if rmErr := r.store.Remove(ctx, r.key); rmErr != nil {
			return nil, errors.Join(err, fmt.Errorf("dashboard: clear layout %q: %w", r.key, rmErr))
		}
		return nil, err
	}
	if dropped > 0 {
		r.logger.Debug().Int("dropped", dropped).Str("key", r.key).Msg("dropped invalid layout entries")
	}
	return entries, nil
}

// Save encodes entries and writes them to the slot.
func (r *LayoutRepository) Save(ctx context.Context, entries []WidgetLayoutEntry) error {
	encoded, err := EncodeLayout(entries)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.key, encoded); err != nil {
		return fmt.Errorf("dashboard: write layout %q: %w", r.key, err)
	}
	return nil
}

// Clear removes the slot.
func (r *LayoutRepository) Clear(ctx context.Context) error {
	if err := r.store.Remove(ctx, r.key); err != nil {
		return fmt.Errorf("dashboard: clear layout %q: %w", r.key, err)
	}
	return nil
}
