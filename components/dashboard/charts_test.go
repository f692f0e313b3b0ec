package dashboard

import (
	"testing"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountedSurface(ids ...string) *Surface {
	s := NewSurface()
	s.Mount(ids...)
	return s
}

func defaultChartData() ChartData {
	snapshot := DefaultSnapshot()
	return ChartData{
		Activity:   snapshot.UserActivity,
		Engagement: snapshot.Engagement,
		Products:   snapshot.TopProducts,
	}
}

func TestDistributionScenario(t *testing.T) {
	labels, series := ProjectDistribution(DefaultSnapshot().TopProducts)
	require.Len(t, series, 1)

	total := 0.0
	for _, v := range series[0].Values {
		total += v
	}
	assert.Equal(t, 90700.0, total)
	assert.Equal(t, 39.7, SharePercent(36000, total))
	assert.Equal(t, "Premium Plan (39.7%)", labels[0])
	assert.Equal(t, "Standard Plan (32.7%)", labels[1])
	assert.Equal(t, "Basic Plan (27.6%)", labels[2])
}

func TestSharePercentEmptyTotal(t *testing.T) {
	assert.Zero(t, SharePercent(10, 0))
	labels, series := ProjectDistribution(nil)
	assert.Empty(t, labels)
	assert.Empty(t, series[0].Values)
}

func TestProjectTrendPreservesOrder(t *testing.T) {
	activity := DefaultSnapshot().UserActivity[:4]
	labels, series := ProjectTrend(activity)
	require.Len(t, series, 2)
	assert.Equal(t, "Active Users", series[0].Name)
	assert.Equal(t, "Sessions", series[1].Name)
	for i, rec := range activity {
		assert.Equal(t, rec.Date, labels[i])
		assert.Equal(t, float64(rec.ActiveUsers), series[0].Values[i])
		assert.Equal(t, float64(rec.Sessions), series[1].Values[i])
	}
}

func TestProjectComparison(t *testing.T) {
	labels, series := ProjectComparison(DefaultSnapshot().Engagement)
	assert.Equal(t, []string{"Web", "iOS", "Android"}, labels)
	assert.Equal(t, []float64{12000, 9000, 11000}, series[0].Values)
}

func TestEChartsAdapterCreateRequiresMountedSurface(t *testing.T) {
	adapter := NewEChartsAdapter(ChartTrend)
	_, err := adapter.Create(NewSurface(), WidgetTrendChart, defaultChartData())
	assert.ErrorIs(t, err, ErrSurfaceNotMounted)

	_, err = adapter.Create(nil, WidgetTrendChart, defaultChartData())
	assert.ErrorIs(t, err, ErrSurfaceNotMounted)
}

func TestEChartsAdapterCreateEachKind(t *testing.T) {
	surface := mountedSurface(WidgetTrendChart, WidgetComparisonChart, WidgetDistribution)
	elements := map[ChartKind]string{
		ChartTrend:        WidgetTrendChart,
		ChartComparison:   WidgetComparisonChart,
		ChartDistribution: WidgetDistribution,
	}
	for _, adapter := range DefaultChartAdapters(WithChartTheme(types.ThemeWesteros)) {
		handle, err := adapter.Create(surface, elements[adapter.Kind()], defaultChartData())
		require.NoError(t, err, adapter.Kind())
		assert.Equal(t, adapter.Kind(), handle.Kind())
		assert.Zero(t, handle.Revision())

		html, err := handle.HTML()
		require.NoError(t, err)
		assert.Contains(t, html, "echarts")
		assert.Contains(t, html, elements[adapter.Kind()])
	}
}

func TestEChartsAdapterRefreshKeepsHandle(t *testing.T) {
	surface := mountedSurface(WidgetTrendChart)
	adapter := NewEChartsAdapter(ChartTrend, WithChartCache(NewChartCache(time.Minute)))
	data := defaultChartData()

	handle, err := adapter.Create(surface, WidgetTrendChart, data)
	require.NoError(t, err)
	line, ok := handle.chart.(*charts.Line)
	require.True(t, ok)
	require.Len(t, handle.Labels(), 15)
	before, err := handle.HTML()
	require.NoError(t, err)

	data.Activity = data.Activity[:7]
	require.NoError(t, adapter.Refresh(handle, data))

	assert.Same(t, line, handle.chart)
	assert.Equal(t, 1, handle.Revision())
	assert.Len(t, handle.Labels(), 7)
	assert.Len(t, handle.Series()[0].Values, 7)
	assert.Len(t, line.MultiSeries, 2)

	after, err := handle.HTML()
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestChartHandleDestroy(t *testing.T) {
	cache := NewChartCache(time.Minute)
	surface := mountedSurface(WidgetDistribution)
	adapter := NewEChartsAdapter(ChartDistribution, WithChartCache(cache))
	handle, err := adapter.Create(surface, WidgetDistribution, defaultChartData())
	require.NoError(t, err)
	_, err = handle.HTML()
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	handle.Destroy()
	handle.Destroy()
	assert.True(t, handle.Destroyed())
	assert.Zero(t, cache.Len())
	assert.ErrorIs(t, adapter.Refresh(handle, defaultChartData()), ErrChartDestroyed)
	_, err = handle.HTML()
	assert.ErrorIs(t, err, ErrChartDestroyed)
}

func TestAssetsHostFromEnv(t *testing.T) {
	t.Setenv(envEChartsCDN, "https://cdn.example.com/echarts")
	assert.Equal(t, "https://cdn.example.com/echarts/", AssetsHostFromEnv())

	t.Setenv(envEChartsCDN, "")
	assert.Equal(t, DefaultEChartsAssetsHost, AssetsHostFromEnv())
}
