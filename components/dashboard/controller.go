package dashboard

import (
	"context"
	"errors"
	"io"
)

const defaultTemplate = "dashboard.html"

type sessionReader interface {
	State(ctx context.Context, id string) (SessionState, error)
	Session(id string) (*Session, error)
	Catalog() *WidgetCatalog
	BasePath() string
}

// ControllerOptions wires the controller collaborators.
type ControllerOptions struct {
	Service  sessionReader
	Renderer Renderer
	Template string
}

// Controller renders the dashboard page for a session.
type Controller struct {
	service  sessionReader
	renderer Renderer
	template string
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultTemplate
	}
	return &Controller{service: opts.Service, renderer: opts.Renderer, template: opts.Template}
}

// WidgetView is one grid cell of the rendered page.
type WidgetView struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Kind      WidgetKind        `json:"kind"`
	Chart     ChartKind         `json:"chart,omitempty"`
	Layout    WidgetLayoutEntry `json:"layout"`
	ChartHTML string            `json:"-"`
}

// PageData builds the template payload for a session.
func (c *Controller) PageData(ctx context.Context, id string) (map[string]any, error) {
	if c.service == nil {
		return nil, errors.New("dashboard: controller requires service")
	}
	state, err := c.service.State(ctx, id)
	if err != nil {
		return nil, err
	}
	session, err := c.service.Session(id)
	if err != nil {
		return nil, err
	}
	charts, err := session.Coordinator.ChartHTML()
	if err != nil {
		return nil, err
	}
	positions := make(map[string]WidgetLayoutEntry, len(state.Layout))
	for _, entry := range state.Layout {
		positions[entry.ID] = entry
	}
	defs := c.service.Catalog().Definitions()
	widgets := make([]WidgetView, 0, len(defs))
	for _, def := range defs {
		layout, ok := positions[def.ID]
		if !ok {
			layout = def.Default
		}
		widgets = append(widgets, WidgetView{
			ID:        def.ID,
			Title:     def.Title,
			Kind:      def.Kind,
			Chart:     def.Chart,
			Layout:    layout,
			ChartHTML: charts[def.ID],
		})
	}
	engagement := make([]map[string]any, 0, len(state.Engagement))
	for _, rec := range state.Engagement {
		engagement = append(engagement, map[string]any{
			"record":       rec,
			"bounce_class": BounceRateClass(rec.BounceRate),
		})
	}
	return map[string]any{
		"session":      id,
		"state":        state,
		"widgets":      widgets,
		"engagement":   engagement,
		"date_ranges":  DateRanges(),
		"container_id": GridContainerID,
		"base_path":    c.service.BasePath(),
		"page_path":    c.service.BasePath() + "/dashboard",
		"api_path":     c.service.BasePath() + "/dashboard/" + id,
	}, nil
}

// RenderTemplate renders the dashboard page for a session into out.
func (c *Controller) RenderTemplate(ctx context.Context, id string, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("dashboard: controller requires renderer")
	}
	data, err := c.PageData(ctx, id)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(c.template, data, out)
	return err
}
