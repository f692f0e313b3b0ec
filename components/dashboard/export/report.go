// Package export renders a dashboard view as a downloadable report.
package export

import (
	"fmt"
	"strings"
	"time"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
)

// Report is the filtered dashboard content written by the formatters. Activity holds
// every filtered row, not the visible table page.
type Report struct {
	Title       string
	GeneratedAt time.Time
	DateRange   dashboard.DateRange
	Summary     dashboard.Summary
	Activity    []dashboard.ActivityRecord
	Engagement  []dashboard.EngagementRecord
	Products    []dashboard.ProductRecord
}

// BuildReport copies the exportable parts of view.
func BuildReport(view dashboard.DashboardView) Report {
	return Report{
		Title:       "Analytics Dashboard",
		GeneratedAt: time.Now().UTC(),
		DateRange:   view.DateRange,
		Summary:     view.Summary,
		Activity:    append([]dashboard.ActivityRecord(nil), view.Activity...),
		Engagement:  append([]dashboard.EngagementRecord(nil), view.Engagement...),
		Products:    append([]dashboard.ProductRecord(nil), view.Products...),
	}
}

// FileName returns dashboard-report-<range>.<ext>.
func FileName(r dashboard.DateRange, ext string) string {
	if r == "" {
		r = dashboard.DefaultDateRange
	}
	return fmt.Sprintf("dashboard-report-%s.%s", r, strings.TrimPrefix(ext, "."))
}

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func summaryRows(s dashboard.Summary) [][2]string {
	return [][2]string{
		{"Total Revenue", formatMoney(s.TotalRevenue)},
		{"Avg. Active Users", fmt.Sprintf("%.1f", s.AvgActiveUsers)},
		{"Total Sessions", fmt.Sprintf("%d", s.TotalSessions)},
		{"Avg. Session Duration", fmt.Sprintf("%.1f min", s.AvgSessionDuration)},
	}
}
