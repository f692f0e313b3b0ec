package analytics

import (
	"context"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	"github.com/rs/zerolog"
)

// ProviderOption customizes NewProvider.
type ProviderOption func(*providerConfig)

type providerConfig struct {
	logger zerolog.Logger
}

// WithProviderLogger logs failed fetches.
func WithProviderLogger(logger zerolog.Logger) ProviderOption {
	return func(c *providerConfig) { c.logger = logger }
}

// NewProvider adapts a client into a dashboard data provider. A failed fetch
// closes the subscription without a snapshot, leaving the coordinator waiting
// until its init deadline.
func NewProvider(client SnapshotClient, opts ...ProviderOption) dashboard.DataProvider {
	cfg := providerConfig{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return dashboard.DataProviderFunc(func(ctx context.Context) (dashboard.Snapshot, error) {
		snapshot, err := client.FetchSnapshot(ctx)
		if err != nil {
			cfg.logger.Error().Err(err).Msg("fetch dashboard snapshot")
			return dashboard.Snapshot{}, err
		}
		return snapshot, nil
	})
}
