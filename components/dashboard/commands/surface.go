package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// MountInput reports drawing surface elements rendered by the client.
type MountInput struct {
	SessionID string   `json:"session_id"`
	IDs       []string `json:"ids"`
}

type mountService interface {
	Mount(ctx context.Context, id string, elements []string) error
}

// MountCommand releases coordinator waits on the mounted elements.
type MountCommand struct {
	service   mountService
	telemetry Telemetry
}

// NewMountCommand creates the command.
func NewMountCommand(service mountService, telemetry Telemetry) *MountCommand {
	return &MountCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MountInput] = (*MountCommand)(nil)

// Execute mounts the elements.
func (c *MountCommand) Execute(ctx context.Context, msg MountInput) error {
	if c.service == nil {
		return errors.New("mount command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("mount command requires session id")
	}
	if err := c.service.Mount(ctx, msg.SessionID, msg.IDs); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.mount", map[string]any{
		"session":  msg.SessionID,
		"elements": len(msg.IDs),
	})
	return nil
}

// ResizeViewportInput reports a new viewport width in layout pixels.
type ResizeViewportInput struct {
	SessionID string `json:"session_id"`
	Width     int    `json:"width"`
}

type resizeService interface {
	Resize(ctx context.Context, id string, width int) ([]string, error)
}

// ResizeViewportCommand recomputes grid metrics for the session.
type ResizeViewportCommand struct {
	service   resizeService
	telemetry Telemetry
}

// NewResizeViewportCommand creates the command.
func NewResizeViewportCommand(service resizeService, telemetry Telemetry) *ResizeViewportCommand {
	return &ResizeViewportCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResizeViewportInput] = (*ResizeViewportCommand)(nil)

// Execute applies the width.
func (c *ResizeViewportCommand) Execute(ctx context.Context, msg ResizeViewportInput) error {
	if c.service == nil {
		return errors.New("resize command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("resize command requires session id")
	}
	if msg.Width <= 0 {
		return errors.New("resize command requires a positive width")
	}
	changed, err := c.service.Resize(ctx, msg.SessionID, msg.Width)
	if err != nil {
		return err
	}
	if len(changed) > 0 {
		c.telemetry.Record(ctx, "dashboard.command.resize", map[string]any{
			"session": msg.SessionID,
			"width":   msg.Width,
			"changed": changed,
		})
	}
	return nil
}
