package dashboard

import (
	"context"

	"github.com/rs/zerolog"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// LoggerTelemetry writes telemetry events as debug log lines.
type LoggerTelemetry struct {
	logger zerolog.Logger
}

// NewLoggerTelemetry wraps logger.
func NewLoggerTelemetry(logger zerolog.Logger) LoggerTelemetry {
	return LoggerTelemetry{logger: logger}
}

func (t LoggerTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	t.logger.Debug().Str("event", event).Fields(payload).Msg("telemetry")
}

// MultiTelemetry forwards every event to each sink.
type MultiTelemetry []Telemetry

func (m MultiTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	for _, t := range m {
		if t != nil {
			t.Record(ctx, event, payload)
		}
	}
}
