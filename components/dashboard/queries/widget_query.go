package queries

import (
	"context"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// WidgetCatalogInput filters catalog definitions. An empty Kind matches every widget.
type WidgetCatalogInput struct {
	Kind dashboard.WidgetKind `json:"kind"`
}

type catalogSource interface {
	Definitions() []dashboard.WidgetDefinition
}

// WidgetCatalogQuery lists the widgets the grid hosts.
type WidgetCatalogQuery struct {
	catalog catalogSource
}

// NewWidgetCatalogQuery builds the query.
func NewWidgetCatalogQuery(catalog catalogSource) *WidgetCatalogQuery {
	return &WidgetCatalogQuery{catalog: catalog}
}

var _ gocommand.Querier[WidgetCatalogInput, []dashboard.WidgetDefinition] = (*WidgetCatalogQuery)(nil)

// Query returns definitions in registration order.
func (q *WidgetCatalogQuery) Query(_ context.Context, input WidgetCatalogInput) ([]dashboard.WidgetDefinition, error) {
	defs := q.catalog.Definitions()
	if input.Kind == "" {
		return defs, nil
	}
	out := make([]dashboard.WidgetDefinition, 0, len(defs))
	for _, def := range defs {
		if def.Kind == input.Kind {
			out = append(out, def)
		}
	}
	return out, nil
}
