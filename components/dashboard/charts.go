package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/shopspring/decimal"
)

// ChartKind names one of the dashboard chart bindings.
type ChartKind string

const (
	ChartTrend        ChartKind = "trend"
	ChartComparison   ChartKind = "comparison"
	ChartDistribution ChartKind = "distribution"
)

const (
	defaultChartHeight = "360px"
	// envEChartsCDN overrides the default assets host.
	envEChartsCDN = "GO_DASHBOARD_ECHARTS_CDN"
	// DefaultEChartsAssetsHost is the public CDN serving the ECharts runtime.
	DefaultEChartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"
)

// ChartData is the input every adapter projects from. Collections are the current
// filtered view and are never mutated.
type ChartData struct {
	Activity   []ActivityRecord
	Engagement []EngagementRecord
	Products   []ProductRecord
}

// ChartSeries is one named value array aligned with the handle labels.
type ChartSeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// ChartAdapter binds dashboard data to one chart kind.
type ChartAdapter interface {
	Kind() ChartKind
	Create(surface *Surface, elementID string, data ChartData) (*ChartHandle, error)
	Refresh(handle *ChartHandle, data ChartData) error
}

// ChartHandle owns one go-echarts object bound to a surface element. Refreshes
// replace the datasets on the same object and bump the revision.
type ChartHandle struct {
	mu        sync.Mutex
	id        string
	cacheKey  string
	kind      ChartKind
	chart     echartsChart
	labels    []string
	series    []ChartSeries
	revision  int
	destroyed bool
	cache     RenderCache
}

var handleSeq atomic.Uint64

type echartsChart interface {
	Render(w io.Writer) error
}

// ID returns the surface element the chart is bound to.
func (h *ChartHandle) ID() string { return h.id }

// Kind returns the chart kind.
func (h *ChartHandle) Kind() ChartKind { return h.kind }

// Revision counts redraws since creation.
func (h *ChartHandle) Revision() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.revision
}

// Labels returns a copy of the category labels.
func (h *ChartHandle) Labels() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.labels...)
}

// Series returns a copy of the value arrays.
func (h *ChartHandle) Series() []ChartSeries {
	h.mu.Lock()
	defer h.mu.Unlock()
	return cloneSeries(h.series)
}

// Destroyed reports whether Destroy was called.
func (h *ChartHandle) Destroyed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.destroyed
}

// Destroy releases the handle. Further refreshes fail with ErrChartDestroyed.
func (h *ChartHandle) Destroy() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return
	}
	h.destroyed = true
	h.chart = nil
	if purger, ok := h.cache.(interface{ Purge(prefix string) }); ok {
		purger.Purge(h.cacheKey + ":")
	}
}

// HTML renders the current revision of the chart.
func (h *ChartHandle) HTML() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return "", ErrChartDestroyed
	}
	render := func() (string, error) { return renderChart(h.chart) }
	if h.cache == nil {
		return render()
	}
	return h.cache.GetOrRender(fmt.Sprintf("%s:%d", h.cacheKey, h.revision), render)
}

func renderChart(renderable echartsChart) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// EChartsAdapter renders one chart kind with go-echarts.
type EChartsAdapter struct {
	kind       ChartKind
	cache      RenderCache
	theme      string
	assetsHost string
	height     string
}

// EChartsAdapterOption customizes adapter behavior.
type EChartsAdapterOption func(*EChartsAdapter)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) EChartsAdapterOption {
	return func(a *EChartsAdapter) {
		a.cache = cache
	}
}

// WithChartTheme sets the chart theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsAdapterOption {
	return func(a *EChartsAdapter) {
		if theme != "" {
			a.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) EChartsAdapterOption {
	return func(a *EChartsAdapter) {
		a.assetsHost = host
	}
}

// NewEChartsAdapter builds an adapter for the given chart kind.
func NewEChartsAdapter(kind ChartKind, options ...EChartsAdapterOption) *EChartsAdapter {
	a := &EChartsAdapter{
		kind:       kind,
		theme:      types.ThemeWesteros,
		assetsHost: AssetsHostFromEnv(),
		height:     defaultChartHeight,
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// DefaultChartAdapters returns trend, comparison and distribution adapters sharing
// the given options.
func DefaultChartAdapters(options ...EChartsAdapterOption) []ChartAdapter {
	return []ChartAdapter{
		NewEChartsAdapter(ChartTrend, options...),
		NewEChartsAdapter(ChartComparison, options...),
		NewEChartsAdapter(ChartDistribution, options...),
	}
}

// AssetsHostFromEnv returns the assets host, respecting GO_DASHBOARD_ECHARTS_CDN.
func AssetsHostFromEnv() string {
	if host := strings.TrimSpace(os.Getenv(envEChartsCDN)); host != "" {
		return ensureTrailingSlash(host)
	}
	return DefaultEChartsAssetsHost
}

func ensureTrailingSlash(value string) string {
	if value == "" || strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}

// Kind returns the adapter chart kind.
func (a *EChartsAdapter) Kind() ChartKind { return a.kind }

// Create builds the go-echarts object for elementID. The element must be mounted.
func (a *EChartsAdapter) Create(surface *Surface, elementID string, data ChartData) (*ChartHandle, error) {
	if surface == nil || !surface.Mounted(elementID) {
		return nil, fmt.Errorf("%s chart %q: %w", a.kind, elementID, ErrSurfaceNotMounted)
	}
	labels, series, err := a.project(data)
	if err != nil {
		return nil, err
	}

	var chart echartsChart
	switch a.kind {
	case ChartTrend:
		line := charts.NewLine()
		line.SetGlobalOptions(append(a.globalOptions(elementID, "User Activity Trend"),
			charts.WithYAxisOpts(opts.YAxis{Min: 0}))...)
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		chart = line
	case ChartComparison:
		bar := charts.NewBar()
		bar.SetGlobalOptions(append(a.globalOptions(elementID, "Page Views by Platform"),
			charts.WithYAxisOpts(opts.YAxis{Min: 0}))...)
		chart = bar
	case ChartDistribution:
		pie := charts.NewPie()
		pie.SetGlobalOptions(a.globalOptions(elementID, "Revenue by Product")...)
		chart = pie
	}

	handle := &ChartHandle{
		id:       elementID,
		cacheKey: fmt.Sprintf("%s#%d", elementID, handleSeq.Add(1)),
		kind:     a.kind,
		chart:    chart,
		cache:    a.cache,
	}
	handle.replace(labels, series)
	return handle, nil
}

// Refresh swaps the datasets on the existing chart object and triggers a redraw.
func (a *EChartsAdapter) Refresh(handle *ChartHandle, data ChartData) error {
	if handle == nil {
		return ErrChartDestroyed
	}
	labels, series, err := a.project(data)
	if err != nil {
		return err
	}
	handle.mu.Lock()
	defer handle.mu.Unlock()
	if handle.destroyed {
		return ErrChartDestroyed
	}
	handle.replace(labels, series)
	handle.revision++
	return nil
}

func (a *EChartsAdapter) project(data ChartData) ([]string, []ChartSeries, error) {
	switch a.kind {
	case ChartTrend:
		labels, series := ProjectTrend(data.Activity)
		return labels, series, nil
	case ChartComparison:
		labels, series := ProjectComparison(data.Engagement)
		return labels, series, nil
	case ChartDistribution:
		labels, series := ProjectDistribution(data.Products)
		return labels, series, nil
	default:
		return nil, nil, fmt.Errorf("unsupported chart kind: %s", a.kind)
	}
}

func (a *EChartsAdapter) globalOptions(elementID, title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		ChartID: elementID,
		Theme:   a.theme,
		Width:   "100%",
		Height:  a.height,
	}
	if a.assetsHost != "" {
		initOpts.AssetsHost = a.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

// replace copies labels and series into the handle and onto the chart object.
// Callers hold h.mu or own the handle exclusively.
func (h *ChartHandle) replace(labels []string, series []ChartSeries) {
	h.labels = append(h.labels[:0:0], labels...)
	h.series = cloneSeries(series)
	switch chart := h.chart.(type) {
	case *charts.Line:
		chart.MultiSeries = nil
		chart.SetXAxis(h.labels)
		for _, s := range h.series {
			data := make([]opts.LineData, len(s.Values))
			for i, v := range s.Values {
				data[i] = opts.LineData{Value: v}
			}
			chart.AddSeries(s.Name, data)
		}
	case *charts.Bar:
		chart.MultiSeries = nil
		chart.SetXAxis(h.labels)
		for _, s := range h.series {
			data := make([]opts.BarData, len(s.Values))
			for i, v := range s.Values {
				data[i] = opts.BarData{Name: h.labels[i], Value: v}
			}
			chart.AddSeries(s.Name, data)
		}
	case *charts.Pie:
		chart.MultiSeries = nil
		for _, s := range h.series {
			data := make([]opts.PieData, len(s.Values))
			for i, v := range s.Values {
				data[i] = opts.PieData{Name: h.labels[i], Value: v}
			}
			chart.AddSeries(s.Name, data)
		}
	}
}

// ProjectTrend maps activity to date labels with Active Users and Sessions series.
func ProjectTrend(activity []ActivityRecord) ([]string, []ChartSeries) {
	labels := make([]string, len(activity))
	users := make([]float64, len(activity))
	sessions := make([]float64, len(activity))
	for i, rec := range activity {
		labels[i] = rec.Date
		users[i] = float64(rec.ActiveUsers)
		sessions[i] = float64(rec.Sessions)
	}
	return labels, []ChartSeries{
		{Name: "Active Users", Values: users},
		{Name: "Sessions", Values: sessions},
	}
}

// ProjectComparison maps engagement to platform labels with a Page Views series.
func ProjectComparison(engagement []EngagementRecord) ([]string, []ChartSeries) {
	labels := make([]string, len(engagement))
	views := make([]float64, len(engagement))
	for i, rec := range engagement {
		labels[i] = rec.Platform
		views[i] = float64(rec.PageViews)
	}
	return labels, []ChartSeries{{Name: "Page Views", Values: views}}
}

// ProjectDistribution maps products to percentage labels with a Revenue series.
func ProjectDistribution(products []ProductRecord) ([]string, []ChartSeries) {
	total := 0.0
	for _, rec := range products {
		total += rec.Revenue
	}
	labels := make([]string, len(products))
	revenue := make([]float64, len(products))
	for i, rec := range products {
		labels[i] = DistributionLabel(rec.Product, SharePercent(rec.Revenue, total))
		revenue[i] = rec.Revenue
	}
	return labels, []ChartSeries{{Name: "Revenue", Values: revenue}}
}

// SharePercent returns value/total*100 rounded to one decimal, or 0 for an empty total.
func SharePercent(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromFloat(value).
		Div(decimal.NewFromFloat(total)).
		Mul(decimal.NewFromInt(100)).
		Round(1).
		InexactFloat64()
}

// DistributionLabel formats a pie slice label as "<name> (<pct>%)".
func DistributionLabel(name string, pct float64) string {
	return fmt.Sprintf("%s (%s%%)", name, decimal.NewFromFloat(pct).StringFixed(1))
}

func cloneSeries(in []ChartSeries) []ChartSeries {
	out := make([]ChartSeries, len(in))
	for i, s := range in {
		out[i] = ChartSeries{Name: s.Name, Values: append([]float64(nil), s.Values...)}
	}
	return out
}
