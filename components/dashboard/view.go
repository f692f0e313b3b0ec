package dashboard

import (
	"fmt"
	"time"
)

// ChartView describes a chart handle for transports.
type ChartView struct {
	ID       string        `json:"id"`
	Kind     ChartKind     `json:"kind"`
	Revision int           `json:"revision"`
	Labels   []string      `json:"labels"`
	Series   []ChartSeries `json:"series"`
}

// TableView is the visible page of the activity table.
type TableView struct {
	Rows        []ActivityRecord `json:"rows"`
	Page        int              `json:"page"`
	TotalPages  int              `json:"total_pages"`
	TotalRows   int              `json:"total_rows"`
	PerPage     int              `json:"per_page"`
	Sort        SortState        `json:"sort"`
	HasNext     bool             `json:"has_next"`
	HasPrevious bool             `json:"has_previous"`
}

// DashboardView is a read-only copy of coordinator state.
type DashboardView struct {
	SessionID     string              `json:"session_id"`
	State         CoordinatorState    `json:"state"`
	Error         string              `json:"error,omitempty"`
	EditMode      bool                `json:"edit_mode"`
	SaveIndicator bool                `json:"save_indicator"`
	LastSaved     *time.Time          `json:"last_saved,omitempty"`
	DateRange     DateRange           `json:"date_range"`
	ViewportWidth int                 `json:"viewport_width"`
	Metrics       GridMetrics         `json:"metrics"`
	Summary       Summary             `json:"summary"`
	Activity      []ActivityRecord    `json:"activity"`
	Table         TableView           `json:"table"`
	Sales         []SaleRecord        `json:"sales"`
	Engagement    []EngagementRecord  `json:"engagement"`
	Products      []ProductRecord     `json:"products"`
	Layout        []WidgetLayoutEntry `json:"layout"`
	Charts        []ChartView         `json:"charts"`
}

// View snapshots the coordinator for rendering and export.
func (c *Coordinator) View() DashboardView {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := DashboardView{
		SessionID:     c.sessionID,
		State:         c.state,
		EditMode:      c.editMode,
		SaveIndicator: c.indicator,
		DateRange:     c.dateRange,
		ViewportWidth: c.width,
		Metrics:       c.metrics,
		Summary:       Summarize(c.current, c.baseline.Engagement, c.baseline.TopProducts),
		Activity:      append([]ActivityRecord{}, c.current...),
		Sales:         append([]SaleRecord{}, c.baseline.Sales...),
		Engagement:    append([]EngagementRecord{}, c.baseline.Engagement...),
		Products:      append([]ProductRecord{}, c.baseline.TopProducts...),
		Table: TableView{
			Rows:        c.table.Current(),
			Page:        c.table.CurrentPage(),
			TotalPages:  c.table.TotalPages(),
			TotalRows:   c.table.Len(),
			PerPage:     ItemsPerPage,
			Sort:        c.table.SortState(),
			HasNext:     c.table.CurrentPage() < c.table.TotalPages(),
			HasPrevious: c.table.CurrentPage() > 1,
		},
		Layout: c.grid.Positions(),
	}
	if c.err != nil {
		view.Error = c.err.Error()
	}
	if !c.lastSaved.IsZero() {
		saved := c.lastSaved
		view.LastSaved = &saved
	}
	for _, adapter := range c.adapters {
		handle, ok := c.handles[adapter.Kind()]
		if !ok {
			continue
		}
		view.Charts = append(view.Charts, ChartView{
			ID:       handle.ID(),
			Kind:     handle.Kind(),
			Revision: handle.Revision(),
			Labels:   handle.Labels(),
			Series:   handle.Series(),
		})
	}
	return view
}

// Handle returns the chart handle for kind once charts are created.
func (c *Coordinator) Handle(kind ChartKind) (*ChartHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.handles[kind]
	return h, ok
}

// ChartHTML renders every chart keyed by element id.
func (c *Coordinator) ChartHTML() (map[string]string, error) {
	c.mu.Lock()
	handles := make([]*ChartHandle, 0, len(c.handles))
	for _, h := range c.handles {
		handles = append(handles, h)
	}
	c.mu.Unlock()

	out := make(map[string]string, len(handles))
	for _, h := range handles {
		html, err := h.HTML()
		if err != nil {
			return nil, fmt.Errorf("dashboard: render %s: %w", h.ID(), err)
		}
		out[h.ID()] = html
	}
	return out, nil
}
