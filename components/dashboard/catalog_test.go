package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWidgetCatalogDefaults(t *testing.T) {
	catalog, err := NewWidgetCatalog()
	require.NoError(t, err)

	defs := catalog.Definitions()
	require.Len(t, defs, 10)
	assert.Equal(t, WidgetRevenueCard, defs[0].ID)

	kinds := map[WidgetKind]int{}
	for _, def := range defs {
		kinds[def.Kind]++
		assert.Equal(t, def.ID, def.Default.ID)
	}
	assert.Equal(t, 4, kinds[WidgetKindSummary])
	assert.Equal(t, 3, kinds[WidgetKindChart])
	assert.Equal(t, 3, kinds[WidgetKindTable])

	assert.Equal(t, map[ChartKind]string{
		ChartTrend:        WidgetTrendChart,
		ChartComparison:   WidgetComparisonChart,
		ChartDistribution: WidgetDistribution,
	}, catalog.ChartElements())
}

func TestWidgetCatalogRegisterValidates(t *testing.T) {
	catalog, err := NewWidgetCatalog()
	require.NoError(t, err)

	assert.Error(t, catalog.Register(WidgetDefinition{Kind: WidgetKindTable}))
	assert.Error(t, catalog.Register(WidgetDefinition{ID: "x", Kind: "gauge"}))
	assert.Error(t, catalog.Register(WidgetDefinition{ID: "x", Kind: WidgetKindChart, Chart: "radar"}))

	require.NoError(t, catalog.Register(WidgetDefinition{ID: "table-referrers", Kind: WidgetKindTable}))
	def, ok := catalog.Definition("table-referrers")
	require.True(t, ok)
	assert.Equal(t, "Table Referrers", def.Title)
	assert.Equal(t, 1, def.Default.W)
	assert.Equal(t, 1, def.Default.H)
}

func TestWidgetCatalogReplaceKeepsOrder(t *testing.T) {
	catalog, err := NewWidgetCatalog(
		WidgetDefinition{ID: "a", Kind: WidgetKindTable},
		WidgetDefinition{ID: "b", Kind: WidgetKindSummary},
	)
	require.NoError(t, err)
	require.NoError(t, catalog.Register(WidgetDefinition{ID: "a", Title: "Renamed", Kind: WidgetKindTable}))

	defs := catalog.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "Renamed", defs[0].Title)
	assert.True(t, catalog.NewGrid().Has("b"))
}
