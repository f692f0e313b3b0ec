package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// ChangeDateRangeInput selects a new activity window.
type ChangeDateRangeInput struct {
	SessionID string              `json:"session_id"`
	Range     dashboard.DateRange `json:"range"`
}

type dateRangeService interface {
	ChangeDateRange(ctx context.Context, id string, r dashboard.DateRange) (bool, error)
}

// ChangeDateRangeCommand wraps Service.ChangeDateRange. An unknown selector is not an
// error; the session keeps its previous range.
type ChangeDateRangeCommand struct {
	service   dateRangeService
	telemetry Telemetry
}

// NewChangeDateRangeCommand creates the command.
func NewChangeDateRangeCommand(service dateRangeService, telemetry Telemetry) *ChangeDateRangeCommand {
	return &ChangeDateRangeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ChangeDateRangeInput] = (*ChangeDateRangeCommand)(nil)

// Execute re-filters the session.
func (c *ChangeDateRangeCommand) Execute(ctx context.Context, msg ChangeDateRangeInput) error {
	if c.service == nil {
		return errors.New("date range command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("date range command requires session id")
	}
	applied, err := c.service.ChangeDateRange(ctx, msg.SessionID, msg.Range)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.date_range", map[string]any{
		"session": msg.SessionID,
		"range":   string(msg.Range),
		"applied": applied,
	})
	return nil
}
