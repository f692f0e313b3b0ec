// Package dashboard re-exports the analytics dashboard component for host
// applications that only need to activate sessions and mount routes.
package dashboard

import (
	core "github.com/goliatone/go-analytics-dashboard/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// ActivateRequest re-export for convenience.
type ActivateRequest = core.ActivateRequest

// KVStore re-export so hosts can plug their own layout storage.
type KVStore = core.KVStore

// DataProvider re-export so hosts can plug their own data source.
type DataProvider = core.DataProvider

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}
