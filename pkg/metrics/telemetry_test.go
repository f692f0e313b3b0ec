package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTelemetryCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	telemetry := NewTelemetry(reg)
	ctx := context.Background()

	telemetry.Record(ctx, "dashboard.layout.saved", nil)
	telemetry.Record(ctx, "dashboard.layout.saved", nil)
	telemetry.Record(ctx, "", nil)

	if got := testutil.ToFloat64(telemetry.events.WithLabelValues("dashboard.layout.saved")); got != 2 {
		t.Fatalf("expected 2 saves, got %f", got)
	}
	if got := testutil.ToFloat64(telemetry.events.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("expected unnamed event under unknown, got %f", got)
	}
}

func TestTelemetryTracksSessions(t *testing.T) {
	reg := prometheus.NewRegistry()
	telemetry := NewTelemetry(reg)
	ctx := context.Background()

	telemetry.Record(ctx, eventActivate, map[string]any{"session": "a"})
	telemetry.Record(ctx, eventActivate, map[string]any{"session": "b"})
	telemetry.Record(ctx, eventDeactivate, map[string]any{"session": "a"})

	expected := `
# HELP dashboard_active_sessions Dashboard sessions currently active.
# TYPE dashboard_active_sessions gauge
dashboard_active_sessions 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "dashboard_active_sessions"); err != nil {
		t.Fatalf("unexpected gauge: %v", err)
	}
}

func TestTelemetryNilSafe(t *testing.T) {
	var telemetry *Telemetry
	telemetry.Record(context.Background(), "dashboard.layout.saved", nil)

	NewTelemetry(nil).Record(context.Background(), "dashboard.layout.saved", nil)
}
