package analytics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlFixture = `
sales:
  - month: Jan
    revenue: 1200.5
    orders: 12
    returns: 1
userActivity:
  - date: "2025-06-01"
    activeUsers: 520
    newUsers: 120
    sessions: 850
engagement:
  - platform: Web
    pageViews: 9000
    avgSessionDuration: 3.5
    bounceRate: 41.2
topProducts:
  - product: Premium Plan
    sales: 1200
    revenue: 36000
`

func writeFixture(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFixtureYAML(t *testing.T) {
	snapshot, err := LoadFixture(writeFixture(t, "data.yaml", yamlFixture))
	require.NoError(t, err)

	require.Len(t, snapshot.UserActivity, 1)
	assert.Equal(t, 520, snapshot.UserActivity[0].ActiveUsers)
	assert.Equal(t, "Premium Plan", snapshot.TopProducts[0].Product)
	assert.InDelta(t, 41.2, snapshot.Engagement[0].BounceRate, 0.001)
}

func TestLoadFixtureJSON(t *testing.T) {
	body := `{"userActivity":[{"date":"2025-06-02","activeUsers":1,"newUsers":1,"sessions":1}]}`
	snapshot, err := LoadFixture(writeFixture(t, "data.json", body))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", snapshot.UserActivity[0].Date)
}

func TestLoadFixtureErrors(t *testing.T) {
	_, err := LoadFixture(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFixture(writeFixture(t, "empty.yaml", "sales: []\n"))
	assert.ErrorIs(t, err, ErrEmptyFixture)

	_, err = LoadFixture(writeFixture(t, "bad.json", "{"))
	assert.Error(t, err)
}

func TestDocsFixtureIsValid(t *testing.T) {
	snapshot, err := LoadFixture(filepath.Join("..", "..", "docs", "fixtures", "analytics.yaml"))
	require.NoError(t, err)
	assert.Len(t, snapshot.UserActivity, 7)
}

func TestFixtureProviderDeliversOneSnapshot(t *testing.T) {
	provider, err := NewFixtureProvider(writeFixture(t, "data.yml", yamlFixture))
	require.NoError(t, err)

	ch := provider.Subscribe(context.Background())
	snapshot, ok := <-ch
	require.True(t, ok)
	assert.Len(t, snapshot.Sales, 1)
	_, ok = <-ch
	assert.False(t, ok, "expected channel to close after one snapshot")
}

func TestNewFixtureProviderRejectsBadFile(t *testing.T) {
	_, err := NewFixtureProvider(writeFixture(t, "empty.yaml", "{}\n"))
	assert.ErrorIs(t, err, ErrEmptyFixture)
}

type failingClient struct{}

func (failingClient) FetchSnapshot(context.Context) (dashboard.Snapshot, error) {
	return dashboard.Snapshot{}, errors.New("upstream unavailable")
}

func TestProviderClosesWithoutValueOnError(t *testing.T) {
	provider := NewProvider(failingClient{})

	_, ok := <-provider.Subscribe(context.Background())
	assert.False(t, ok)
}
