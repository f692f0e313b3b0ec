package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// ToggleEditModeInput flips edit mode for one session.
type ToggleEditModeInput struct {
	SessionID string `json:"session_id"`
}

type editModeService interface {
	ToggleEditMode(ctx context.Context, id string) (bool, error)
}

// ToggleEditModeCommand wraps Service.ToggleEditMode. Toggling never persists the
// layout.
type ToggleEditModeCommand struct {
	service   editModeService
	telemetry Telemetry
}

// NewToggleEditModeCommand creates the command.
func NewToggleEditModeCommand(service editModeService, telemetry Telemetry) *ToggleEditModeCommand {
	return &ToggleEditModeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleEditModeInput] = (*ToggleEditModeCommand)(nil)

// Execute toggles edit mode.
func (c *ToggleEditModeCommand) Execute(ctx context.Context, msg ToggleEditModeInput) error {
	if c.service == nil {
		return errors.New("edit mode command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("edit mode command requires session id")
	}
	editMode, err := c.service.ToggleEditMode(ctx, msg.SessionID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.edit_mode", map[string]any{
		"session":   msg.SessionID,
		"edit_mode": editMode,
	})
	return nil
}

// SaveLayoutInput requests an explicit save.
type SaveLayoutInput struct {
	SessionID string `json:"session_id"`
}

type saveService interface {
	SaveLayout(ctx context.Context, id string) error
}

// SaveLayoutCommand persists the session grid regardless of edit mode.
type SaveLayoutCommand struct {
	service   saveService
	telemetry Telemetry
}

// NewSaveLayoutCommand creates the command.
func NewSaveLayoutCommand(service saveService, telemetry Telemetry) *SaveLayoutCommand {
	return &SaveLayoutCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveLayoutInput] = (*SaveLayoutCommand)(nil)

// Execute writes the layout.
func (c *SaveLayoutCommand) Execute(ctx context.Context, msg SaveLayoutInput) error {
	if c.service == nil {
		return errors.New("save layout command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("save layout command requires session id")
	}
	if err := c.service.SaveLayout(ctx, msg.SessionID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.save_layout", map[string]any{"session": msg.SessionID})
	return nil
}

// ApplyLayoutChangeInput carries the geometry of a settled drag or resize.
type ApplyLayoutChangeInput struct {
	SessionID string                        `json:"session_id"`
	Entries   []dashboard.WidgetLayoutEntry `json:"entries"`
}

type layoutChangeService interface {
	ApplyLayoutChange(ctx context.Context, id string, entries []dashboard.WidgetLayoutEntry) error
}

// ApplyLayoutChangeCommand forwards settled geometry into the session grid. Saving
// follows through the debounced change listener while edit mode is on.
type ApplyLayoutChangeCommand struct {
	service   layoutChangeService
	telemetry Telemetry
}

// NewApplyLayoutChangeCommand creates the command.
func NewApplyLayoutChangeCommand(service layoutChangeService, telemetry Telemetry) *ApplyLayoutChangeCommand {
	return &ApplyLayoutChangeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ApplyLayoutChangeInput] = (*ApplyLayoutChangeCommand)(nil)

// Execute applies the change.
func (c *ApplyLayoutChangeCommand) Execute(ctx context.Context, msg ApplyLayoutChangeInput) error {
	if c.service == nil {
		return errors.New("layout change command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("layout change command requires session id")
	}
	if len(msg.Entries) == 0 {
		return nil
	}
	if err := c.service.ApplyLayoutChange(ctx, msg.SessionID, msg.Entries); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.layout_change", map[string]any{
		"session": msg.SessionID,
		"entries": len(msg.Entries),
	})
	return nil
}
