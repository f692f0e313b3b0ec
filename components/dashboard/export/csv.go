package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes the report as sections separated by blank records. Each section
// starts with its name, then a header record, then its rows.
func WriteCSV(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)
	records := [][]string{
		{"Report", report.Title},
		{"Date Range", string(report.DateRange)},
		{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{},
		{"Summary"},
		{"Metric", "Value"},
	}
	for _, row := range summaryRows(report.Summary) {
		records = append(records, []string{row[0], row[1]})
	}

	records = append(records, []string{}, []string{"User Activity"}, []string{"Date", "Active Users", "New Users", "Sessions"})
	for _, day := range report.Activity {
		records = append(records, []string{
			day.Date,
			strconv.Itoa(day.ActiveUsers),
			strconv.Itoa(day.NewUsers),
			strconv.Itoa(day.Sessions),
		})
	}

	records = append(records, []string{}, []string{"Engagement"}, []string{"Platform", "Page Views", "Avg. Session Duration", "Bounce Rate"})
	for _, e := range report.Engagement {
		records = append(records, []string{
			e.Platform,
			strconv.Itoa(e.PageViews),
			strconv.FormatFloat(e.AvgSessionDuration, 'f', 1, 64),
			strconv.FormatFloat(e.BounceRate, 'f', 1, 64),
		})
	}

	records = append(records, []string{}, []string{"Top Products"}, []string{"Product", "Sales", "Revenue"})
	for _, p := range report.Products {
		records = append(records, []string{
			p.Product,
			strconv.Itoa(p.Sales),
			strconv.FormatFloat(p.Revenue, 'f', 2, 64),
		})
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("export: write csv: %w", err)
	}
	return nil
}
