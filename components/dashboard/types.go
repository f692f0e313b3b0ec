package dashboard

import (
	"context"
	"time"
)

// KVStore is the keyed slot the layout is persisted to. Implementations must be safe
// for concurrent use; concurrent writers are last-write-wins.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// WidgetKind groups widgets by the renderer they need.
type WidgetKind string

const (
	WidgetKindSummary WidgetKind = "summary"
	WidgetKindChart   WidgetKind = "chart"
	WidgetKindTable   WidgetKind = "table"
)

// WidgetDefinition describes a widget the grid can host.
type WidgetDefinition struct {
	ID      string            `json:"id" yaml:"id"`
	Title   string            `json:"title" yaml:"title"`
	Kind    WidgetKind        `json:"kind" yaml:"kind"`
	Chart   ChartKind         `json:"chart,omitempty" yaml:"chart,omitempty"`
	Default WidgetLayoutEntry `json:"default" yaml:"default"`
}

// WidgetLayoutEntry is the grid geometry of one widget, in cells.
type WidgetLayoutEntry struct {
	ID string `json:"id" yaml:"id"`
	X  int    `json:"x" yaml:"x"`
	Y  int    `json:"y" yaml:"y"`
	W  int    `json:"w" yaml:"w"`
	H  int    `json:"h" yaml:"h"`
}

// LayoutCommand is a payload-less instruction fired by the UI chrome.
type LayoutCommand string

const (
	CommandToggleEditMode LayoutCommand = "toggleEditMode"
	CommandSaveLayout     LayoutCommand = "saveLayout"
	CommandToggleSidebar  LayoutCommand = "toggleSidebar"
	CommandCloseSidebar   LayoutCommand = "closeSidebar"
)

// Valid reports whether the command is one of the known chrome commands.
func (c LayoutCommand) Valid() bool {
	switch c {
	case CommandToggleEditMode, CommandSaveLayout, CommandToggleSidebar, CommandCloseSidebar:
		return true
	default:
		return false
	}
}

// DashboardEvent describes coordinator changes that transports might care about.
type DashboardEvent struct {
	SessionID  string           `json:"session_id"`
	Reason     string           `json:"reason"`
	State      CoordinatorState `json:"state"`
	EditMode   bool             `json:"edit_mode"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// EventHook receives coordinator events.
type EventHook interface {
	DashboardUpdated(ctx context.Context, event DashboardEvent) error
}

type noopEventHook struct{}

func (noopEventHook) DashboardUpdated(context.Context, DashboardEvent) error { return nil }
