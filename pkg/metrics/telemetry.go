package metrics

import (
	"context"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	eventActivate   = "dashboard.session.activate"
	eventDeactivate = "dashboard.session.deactivate"
)

// Telemetry counts dashboard telemetry events in Prometheus and tracks the
// number of active sessions.
type Telemetry struct {
	events   *prometheus.CounterVec
	sessions prometheus.Gauge
}

var _ dashboard.Telemetry = (*Telemetry)(nil)

// NewTelemetry registers the dashboard metrics on the provided registerer.
func NewTelemetry(reg prometheus.Registerer) *Telemetry {
	if reg == nil {
		return &Telemetry{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_events_total",
		Help: "Dashboard telemetry events by name.",
	}, []string{"event"})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_active_sessions",
		Help: "Dashboard sessions currently active.",
	})
	reg.MustRegister(events, sessions)
	return &Telemetry{events: events, sessions: sessions}
}

// Record increments the counter for event.
func (t *Telemetry) Record(_ context.Context, event string, _ map[string]any) {
	if t == nil || t.events == nil {
		return
	}
	t.events.WithLabelValues(normalizeLabel(event)).Inc()
	switch event {
	case eventActivate:
		t.sessions.Inc()
	case eventDeactivate:
		t.sessions.Dec()
	}
}

func normalizeLabel(event string) string {
	if event == "" {
		return "unknown"
	}
	return event
}
