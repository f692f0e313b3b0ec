package httpapi

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/queries"
	gocommand "github.com/goliatone/go-command"
)

// Executor is the transport-neutral surface behind the HTTP routes.
type Executor interface {
	Mount(ctx context.Context, input commands.MountInput) error
	Dispatch(ctx context.Context, input commands.DispatchInput) error
	ToggleEditMode(ctx context.Context, input commands.ToggleEditModeInput) error
	SaveLayout(ctx context.Context, input commands.SaveLayoutInput) error
	ApplyLayout(ctx context.Context, input commands.ApplyLayoutChangeInput) error
	ChangeRange(ctx context.Context, input commands.ChangeDateRangeInput) error
	Sort(ctx context.Context, input commands.SortTableInput) error
	Paginate(ctx context.Context, input commands.PaginateInput) error
	Resize(ctx context.Context, input commands.ResizeViewportInput) error
	Deactivate(ctx context.Context, input commands.DeactivateSessionInput) error
	State(ctx context.Context, sessionID string) (dashboard.SessionState, error)
}

// CommandExecutor adapts go-command commanders and queriers to Executor.
type CommandExecutor struct {
	MountCommander      gocommand.Commander[commands.MountInput]
	DispatchCommander   gocommand.Commander[commands.DispatchInput]
	EditModeCommander   gocommand.Commander[commands.ToggleEditModeInput]
	SaveCommander       gocommand.Commander[commands.SaveLayoutInput]
	LayoutCommander     gocommand.Commander[commands.ApplyLayoutChangeInput]
	RangeCommander      gocommand.Commander[commands.ChangeDateRangeInput]
	SortCommander       gocommand.Commander[commands.SortTableInput]
	PageCommander       gocommand.Commander[commands.PaginateInput]
	ResizeCommander     gocommand.Commander[commands.ResizeViewportInput]
	DeactivateCommander gocommand.Commander[commands.DeactivateSessionInput]
	StateQuerier        gocommand.Querier[string, dashboard.SessionState]
}

var _ Executor = (*CommandExecutor)(nil)

// NewCommandExecutor wires every command and query against service.
func NewCommandExecutor(service *dashboard.Service, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		MountCommander:      commands.NewMountCommand(service, telemetry),
		DispatchCommander:   commands.NewDispatchCommand(service, telemetry),
		EditModeCommander:   commands.NewToggleEditModeCommand(service, telemetry),
		SaveCommander:       commands.NewSaveLayoutCommand(service, telemetry),
		LayoutCommander:     commands.NewApplyLayoutChangeCommand(service, telemetry),
		RangeCommander:      commands.NewChangeDateRangeCommand(service, telemetry),
		SortCommander:       commands.NewSortTableCommand(service, telemetry),
		PageCommander:       commands.NewPaginateCommand(service, telemetry),
		ResizeCommander:     commands.NewResizeViewportCommand(service, telemetry),
		DeactivateCommander: commands.NewDeactivateSessionCommand(service, telemetry),
		StateQuerier:        queries.NewDashboardStateQuery(service),
	}
}

var errNotConfigured = errors.New("httpapi: operation not configured")

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return errNotConfigured
	}
	return cmd.Execute(ctx, msg)
}

func (e *CommandExecutor) Mount(ctx context.Context, input commands.MountInput) error {
	return execute(ctx, e.MountCommander, input)
}

func (e *CommandExecutor) Dispatch(ctx context.Context, input commands.DispatchInput) error {
	return execute(ctx, e.DispatchCommander, input)
}

func (e *CommandExecutor) ToggleEditMode(ctx context.Context, input commands.ToggleEditModeInput) error {
	return execute(ctx, e.EditModeCommander, input)
}

func (e *CommandExecutor) SaveLayout(ctx context.Context, input commands.SaveLayoutInput) error {
	return execute(ctx, e.SaveCommander, input)
}

func (e *CommandExecutor) ApplyLayout(ctx context.Context, input commands.ApplyLayoutChangeInput) error {
	return execute(ctx, e.LayoutCommander, input)
}

func (e *CommandExecutor) ChangeRange(ctx context.Context, input commands.ChangeDateRangeInput) error {
	return execute(ctx, e.RangeCommander, input)
}

func (e *CommandExecutor) Sort(ctx context.Context, input commands.SortTableInput) error {
	return execute(ctx, e.SortCommander, input)
}

func (e *CommandExecutor) Paginate(ctx context.Context, input commands.PaginateInput) error {
	return execute(ctx, e.PageCommander, input)
}

func (e *CommandExecutor) Resize(ctx context.Context, input commands.ResizeViewportInput) error {
	return execute(ctx, e.ResizeCommander, input)
}

func (e *CommandExecutor) Deactivate(ctx context.Context, input commands.DeactivateSessionInput) error {
	return execute(ctx, e.DeactivateCommander, input)
}

func (e *CommandExecutor) State(ctx context.Context, sessionID string) (dashboard.SessionState, error) {
	if e.StateQuerier == nil {
		return dashboard.SessionState{}, errNotConfigured
	}
	return e.StateQuerier.Query(ctx, sessionID)
}
