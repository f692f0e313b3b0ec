package dashboard

// GridMetrics are the responsive grid parameters derived from viewport width.
type GridMetrics struct {
	Columns   int `json:"columns"`
	RowHeight int `json:"row_height"`
	Margin    int `json:"margin"`
}

// DefaultViewportWidth is assumed until the client reports its width.
const DefaultViewportWidth = 1280

// MetricsForWidth maps a viewport width (layout pixels) to grid metrics.
func MetricsForWidth(width int) GridMetrics {
	switch {
	case width < 576:
		return GridMetrics{Columns: 1, RowHeight: 80, Margin: 8}
	case width < 768:
		return GridMetrics{Columns: 2, RowHeight: 75, Margin: 12}
	case width < 992:
		return GridMetrics{Columns: 6, RowHeight: 70, Margin: 15}
	default:
		return GridMetrics{Columns: 12, RowHeight: 70, Margin: 15}
	}
}

// applyMetricDiff pushes only the values that differ from prev into the grid.
func applyMetricDiff(grid GridEngine, prev, next GridMetrics) []string {
	var changed []string
	if prev.Columns != next.Columns {
		grid.SetColumns(next.Columns)
		changed = append(changed, "columns")
	}
	if prev.RowHeight != next.RowHeight {
		grid.SetCellHeight(next.RowHeight)
		changed = append(changed, "row_height")
	}
	if prev.Margin != next.Margin {
		grid.SetMargin(next.Margin)
		changed = append(changed, "margin")
	}
	return changed
}
