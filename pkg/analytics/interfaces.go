package analytics

import (
	"context"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
)

// SnapshotClient fetches the dashboard data bundle from an upstream source.
type SnapshotClient interface {
	FetchSnapshot(ctx context.Context) (dashboard.Snapshot, error)
}
