package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// SortTableInput selects the activity table sort column.
type SortTableInput struct {
	SessionID string `json:"session_id"`
	Column    string `json:"column"`
}

type sortService interface {
	SortTable(ctx context.Context, id, column string) (dashboard.SortState, error)
}

// SortTableCommand wraps Service.SortTable.
type SortTableCommand struct {
	service   sortService
	telemetry Telemetry
}

// NewSortTableCommand creates the command.
func NewSortTableCommand(service sortService, telemetry Telemetry) *SortTableCommand {
	return &SortTableCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SortTableInput] = (*SortTableCommand)(nil)

// Execute sorts, toggling direction when the column is reselected.
func (c *SortTableCommand) Execute(ctx context.Context, msg SortTableInput) error {
	if c.service == nil {
		return errors.New("sort command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("sort command requires session id")
	}
	state, err := c.service.SortTable(ctx, msg.SessionID, msg.Column)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.sort", map[string]any{
		"session":   msg.SessionID,
		"column":    state.Column,
		"direction": string(state.Direction),
	})
	return nil
}

// PaginateInput moves the activity table. Action wins over Page when set.
type PaginateInput struct {
	SessionID string               `json:"session_id"`
	Action    dashboard.PageAction `json:"action"`
	Page      int                  `json:"page"`
}

type pageService interface {
	Paginate(ctx context.Context, id string, action dashboard.PageAction, page int) (int, error)
}

// PaginateCommand wraps Service.Paginate.
type PaginateCommand struct {
	service   pageService
	telemetry Telemetry
}

// NewPaginateCommand creates the command.
func NewPaginateCommand(service pageService, telemetry Telemetry) *PaginateCommand {
	return &PaginateCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[PaginateInput] = (*PaginateCommand)(nil)

// Execute moves the table page.
func (c *PaginateCommand) Execute(ctx context.Context, msg PaginateInput) error {
	if c.service == nil {
		return errors.New("paginate command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("paginate command requires session id")
	}
	page, err := c.service.Paginate(ctx, msg.SessionID, msg.Action, msg.Page)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.paginate", map[string]any{
		"session": msg.SessionID,
		"page":    page,
	})
	return nil
}
