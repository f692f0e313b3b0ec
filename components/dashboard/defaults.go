package dashboard

// Widget ids rendered by the default dashboard.
const (
	WidgetRevenueCard     = "summary-revenue"
	WidgetUsersCard       = "summary-users"
	WidgetSessionsCard    = "summary-sessions"
	WidgetDurationCard    = "summary-duration"
	WidgetTrendChart      = "chart-trend"
	WidgetComparisonChart = "chart-comparison"
	WidgetDistribution    = "chart-distribution"
	WidgetActivityTable   = "table-activity"
	WidgetEngagementTable = "table-engagement"
	WidgetProductsTable   = "table-products"
)

// GridContainerID is the surface element the grid attaches to.
const GridContainerID = "dashboard-grid"

var defaultWidgetDefinitions = []WidgetDefinition{
	{ID: WidgetRevenueCard, Title: "Total Revenue", Kind: WidgetKindSummary, Default: WidgetLayoutEntry{X: 0, Y: 0, W: 3, H: 1}},
	{ID: WidgetUsersCard, Title: "Avg. Active Users", Kind: WidgetKindSummary, Default: WidgetLayoutEntry{X: 3, Y: 0, W: 3, H: 1}},
	{ID: WidgetSessionsCard, Title: "Total Sessions", Kind: WidgetKindSummary, Default: WidgetLayoutEntry{X: 6, Y: 0, W: 3, H: 1}},
	{ID: WidgetDurationCard, Title: "Avg. Session Duration", Kind: WidgetKindSummary, Default: WidgetLayoutEntry{X: 9, Y: 0, W: 3, H: 1}},
	{ID: WidgetTrendChart, Title: "User Activity Trend", Kind: WidgetKindChart, Chart: ChartTrend, Default: WidgetLayoutEntry{X: 0, Y: 1, W: 8, H: 4}},
	{ID: WidgetDistribution, Title: "Revenue by Product", Kind: WidgetKindChart, Chart: ChartDistribution, Default: WidgetLayoutEntry{X: 8, Y: 1, W: 4, H: 4}},
	{ID: WidgetComparisonChart, Title: "Page Views by Platform", Kind: WidgetKindChart, Chart: ChartComparison, Default: WidgetLayoutEntry{X: 0, Y: 5, W: 6, H: 4}},
	{ID: WidgetEngagementTable, Title: "Engagement", Kind: WidgetKindTable, Default: WidgetLayoutEntry{X: 6, Y: 5, W: 6, H: 4}},
	{ID: WidgetActivityTable, Title: "Daily Activity", Kind: WidgetKindTable, Default: WidgetLayoutEntry{X: 0, Y: 9, W: 8, H: 5}},
	{ID: WidgetProductsTable, Title: "Top Products", Kind: WidgetKindTable, Default: WidgetLayoutEntry{X: 8, Y: 9, W: 4, H: 5}},
}

// DefaultWidgetDefinitions exposes the built-in widget catalog.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(out, defaultWidgetDefinitions)
	for i := range out {
		out[i].Default.ID = out[i].ID
	}
	return out
}

// DefaultSnapshot returns the demo data bundle served by StaticDataProvider.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Sales: []SaleRecord{
			{Month: "January", Revenue: 12000, Orders: 310, Returns: 12},
			{Month: "February", Revenue: 15000, Orders: 355, Returns: 15},
			{Month: "March", Revenue: 18000, Orders: 390, Returns: 14},
			{Month: "April", Revenue: 22000, Orders: 420, Returns: 10},
			{Month: "May", Revenue: 26000, Orders: 460, Returns: 8},
			{Month: "June", Revenue: 30000, Orders: 510, Returns: 6},
		},
		UserActivity: []ActivityRecord{
			{Date: "2025-06-01", ActiveUsers: 520, NewUsers: 120, Sessions: 850},
			{Date: "2025-06-02", ActiveUsers: 580, NewUsers: 140, Sessions: 910},
			{Date: "2025-06-03", ActiveUsers: 600, NewUsers: 150, Sessions: 980},
			{Date: "2025-06-04", ActiveUsers: 640, NewUsers: 165, Sessions: 1050},
			{Date: "2025-06-05", ActiveUsers: 690, NewUsers: 180, Sessions: 1120},
			{Date: "2025-06-06", ActiveUsers: 720, NewUsers: 195, Sessions: 1180},
			{Date: "2025-06-07", ActiveUsers: 750, NewUsers: 210, Sessions: 1250},
			{Date: "2025-06-08", ActiveUsers: 680, NewUsers: 190, Sessions: 1150},
			{Date: "2025-06-09", ActiveUsers: 710, NewUsers: 200, Sessions: 1200},
			{Date: "2025-06-10", ActiveUsers: 740, NewUsers: 215, Sessions: 1280},
			{Date: "2025-06-11", ActiveUsers: 680, NewUsers: 185, Sessions: 1130},
			{Date: "2025-06-12", ActiveUsers: 760, NewUsers: 220, Sessions: 1320},
			{Date: "2025-06-13", ActiveUsers: 790, NewUsers: 240, Sessions: 1400},
			{Date: "2025-06-14", ActiveUsers: 720, NewUsers: 210, Sessions: 1220},
			{Date: "2025-06-15", ActiveUsers: 770, NewUsers: 230, Sessions: 1350},
		},
		Engagement: []EngagementRecord{
			{Platform: "Web", PageViews: 12000, AvgSessionDuration: 4.3, BounceRate: 42},
			{Platform: "iOS", PageViews: 9000, AvgSessionDuration: 5.1, BounceRate: 37},
			{Platform: "Android", PageViews: 11000, AvgSessionDuration: 4.8, BounceRate: 39},
		},
		TopProducts: []ProductRecord{
			{Product: "Premium Plan", Sales: 1200, Revenue: 36000},
			{Product: "Standard Plan", Sales: 1980, Revenue: 29700},
			{Product: "Basic Plan", Sales: 2500, Revenue: 25000},
		},
	}
}
