package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// DispatchInput publishes a chrome command on the session bus.
type DispatchInput struct {
	SessionID string                  `json:"session_id"`
	Command   dashboard.LayoutCommand `json:"command"`
}

type dispatchService interface {
	Dispatch(ctx context.Context, id string, cmd dashboard.LayoutCommand) error
}

// DispatchCommand wraps Service.Dispatch. Subscribers react asynchronously.
type DispatchCommand struct {
	service   dispatchService
	telemetry Telemetry
}

// NewDispatchCommand creates the command.
func NewDispatchCommand(service dispatchService, telemetry Telemetry) *DispatchCommand {
	return &DispatchCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DispatchInput] = (*DispatchCommand)(nil)

// Execute publishes the command.
func (c *DispatchCommand) Execute(ctx context.Context, msg DispatchInput) error {
	if c.service == nil {
		return errors.New("dispatch command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("dispatch command requires session id")
	}
	if !msg.Command.Valid() {
		return errors.New("dispatch command requires a known layout command")
	}
	if err := c.service.Dispatch(ctx, msg.SessionID, msg.Command); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.dispatch", map[string]any{
		"session": msg.SessionID,
		"command": string(msg.Command),
	})
	return nil
}

// DeactivateSessionInput closes a session.
type DeactivateSessionInput struct {
	SessionID string `json:"session_id"`
}

type deactivateService interface {
	Deactivate(ctx context.Context, id string) error
}

// DeactivateSessionCommand tears a session down; the persisted layout survives.
type DeactivateSessionCommand struct {
	service   deactivateService
	telemetry Telemetry
}

// NewDeactivateSessionCommand creates the command.
func NewDeactivateSessionCommand(service deactivateService, telemetry Telemetry) *DeactivateSessionCommand {
	return &DeactivateSessionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeactivateSessionInput] = (*DeactivateSessionCommand)(nil)

// Execute deactivates the session.
func (c *DeactivateSessionCommand) Execute(ctx context.Context, msg DeactivateSessionInput) error {
	if c.service == nil {
		return errors.New("deactivate command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("deactivate command requires session id")
	}
	if err := c.service.Deactivate(ctx, msg.SessionID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.deactivate", map[string]any{"session": msg.SessionID})
	return nil
}
