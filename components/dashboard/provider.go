package dashboard

import "context"

// DataProvider supplies dashboard snapshots. Each subscription delivers exactly one
// snapshot and then closes the channel.
type DataProvider interface {
	Subscribe(ctx context.Context) <-chan Snapshot
}

// DataProviderFunc adapts a plain function into a DataProvider.
type DataProviderFunc func(ctx context.Context) (Snapshot, error)

// Subscribe runs the function in the background and emits its result once. Errors
// close the channel without a value.
func (f DataProviderFunc) Subscribe(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot, 1)
	go func() {
		defer close(out)
		snapshot, err := f(ctx)
		if err != nil {
			return
		}
		select {
		case out <- snapshot:
		case <-ctx.Done():
		}
	}()
	return out
}

// StaticDataProvider always serves a copy of the same snapshot.
type StaticDataProvider struct {
	snapshot Snapshot
}

// NewStaticDataProvider wraps the given snapshot. A zero snapshot falls back to
// DefaultSnapshot.
func NewStaticDataProvider(snapshot Snapshot) *StaticDataProvider {
	if snapshot.Empty() {
		snapshot = DefaultSnapshot()
	}
	return &StaticDataProvider{snapshot: snapshot.Clone()}
}

// Subscribe emits the snapshot once.
func (p *StaticDataProvider) Subscribe(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot, 1)
	out <- p.snapshot.Clone()
	close(out)
	return out
}
