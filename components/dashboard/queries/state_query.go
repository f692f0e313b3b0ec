package queries

import (
	"context"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

type stateService interface {
	State(ctx context.Context, id string) (dashboard.SessionState, error)
}

// DashboardStateQuery reads the session read model.
type DashboardStateQuery struct {
	service stateService
}

// NewDashboardStateQuery builds the query.
func NewDashboardStateQuery(service stateService) *DashboardStateQuery {
	return &DashboardStateQuery{service: service}
}

var _ gocommand.Querier[string, dashboard.SessionState] = (*DashboardStateQuery)(nil)

// Query returns the state of the session with the given id.
func (q *DashboardStateQuery) Query(ctx context.Context, sessionID string) (dashboard.SessionState, error) {
	return q.service.State(ctx, sessionID)
}

type layoutLoader interface {
	Load(ctx context.Context) ([]dashboard.WidgetLayoutEntry, error)
}

// PersistedLayoutQuery reads the stored layout slot without a live session.
type PersistedLayoutQuery struct {
	layout layoutLoader
}

// NewPersistedLayoutQuery builds the query.
func NewPersistedLayoutQuery(layout layoutLoader) *PersistedLayoutQuery {
	return &PersistedLayoutQuery{layout: layout}
}

var _ gocommand.Querier[struct{}, []dashboard.WidgetLayoutEntry] = (*PersistedLayoutQuery)(nil)

// Query loads the persisted layout; nil means nothing was saved.
func (q *PersistedLayoutQuery) Query(ctx context.Context, _ struct{}) ([]dashboard.WidgetLayoutEntry, error) {
	return q.layout.Load(ctx)
}
