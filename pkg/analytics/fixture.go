package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	"gopkg.in/yaml.v3"
)

// ErrEmptyFixture reports a fixture file without any records.
var ErrEmptyFixture = errors.New("analytics: fixture has no records")

// LoadFixture decodes a snapshot from a .json, .yaml or .yml file.
func LoadFixture(path string) (dashboard.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return dashboard.Snapshot{}, fmt.Errorf("analytics: read fixture: %w", err)
	}
	return DecodeFixture(raw, filepath.Ext(path))
}

// DecodeFixture decodes raw as JSON when ext is ".json" and as YAML otherwise.
func DecodeFixture(raw []byte, ext string) (dashboard.Snapshot, error) {
	var snapshot dashboard.Snapshot
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(raw, &snapshot); err != nil {
			return dashboard.Snapshot{}, fmt.Errorf("analytics: decode json fixture: %w", err)
		}
	default:
		if err := yaml.Unmarshal(raw, &snapshot); err != nil {
			return dashboard.Snapshot{}, fmt.Errorf("analytics: decode yaml fixture: %w", err)
		}
	}
	if snapshot.Empty() {
		return dashboard.Snapshot{}, ErrEmptyFixture
	}
	return snapshot, nil
}

// FixtureClient serves a snapshot decoded from a file on every fetch, so
// edits to the file show up on the next dashboard activation.
type FixtureClient struct {
	path string
}

var _ SnapshotClient = (*FixtureClient)(nil)

// NewFixtureClient validates the file once up front.
func NewFixtureClient(path string) (*FixtureClient, error) {
	if _, err := LoadFixture(path); err != nil {
		return nil, err
	}
	return &FixtureClient{path: path}, nil
}

func (c *FixtureClient) FetchSnapshot(context.Context) (dashboard.Snapshot, error) {
	return LoadFixture(c.path)
}

// NewFixtureProvider builds a data provider backed by a fixture file.
func NewFixtureProvider(path string, opts ...ProviderOption) (dashboard.DataProvider, error) {
	client, err := NewFixtureClient(path)
	if err != nil {
		return nil, err
	}
	return NewProvider(client, opts...), nil
}
