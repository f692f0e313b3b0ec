package dashboard

import (
	"slices"
	"strings"
	"sync"
)

// GridConfig is the configuration a grid is initialized with.
type GridConfig struct {
	GridMetrics
	Interactive bool
}

// GridEngine is the drag-and-resize widget grid the coordinator attaches to the
// container element.
type GridEngine interface {
	Init(container string, cfg GridConfig) error
	Initialized() bool
	SetInteractive(interactive bool)
	Interactive() bool
	SetColumns(columns int)
	SetCellHeight(height int)
	SetMargin(margin int)
	Metrics() GridMetrics
	// Positions returns the current geometry of every widget.
	Positions() []WidgetLayoutEntry
	// Update moves one widget by id without emitting a change event. Unknown ids
	// return false.
	Update(entry WidgetLayoutEntry) bool
	// Settle applies the result of a finished drag or resize and emits one change
	// event with the affected entries. Static grids reject it with ErrGridStatic.
	Settle(entries []WidgetLayoutEntry) error
	OnChange(fn func([]WidgetLayoutEntry)) (cancel func())
	// Destroy detaches the grid. removeVisual=false keeps widget geometry in place.
	Destroy(removeVisual bool)
}

// MemoryGrid is an in-process GridEngine that keeps widget geometry in memory.
type MemoryGrid struct {
	mu          sync.RWMutex
	container   string
	initialized bool
	interactive bool
	metrics     GridMetrics
	widgets     map[string]WidgetLayoutEntry
	listeners   map[int]func([]WidgetLayoutEntry)
	nextID      int
}

var _ GridEngine = (*MemoryGrid)(nil)

// NewMemoryGrid seeds the grid with each definition's default geometry.
func NewMemoryGrid(definitions []WidgetDefinition) *MemoryGrid {
	g := &MemoryGrid{
		metrics:   MetricsForWidth(DefaultViewportWidth),
		widgets:   make(map[string]WidgetLayoutEntry, len(definitions)),
		listeners: map[int]func([]WidgetLayoutEntry){},
	}
	for _, def := range definitions {
		entry := def.Default
		entry.ID = def.ID
		g.widgets[def.ID] = entry
	}
	return g
}

// Init attaches the grid to container using cfg.
func (g *MemoryGrid) Init(container string, cfg GridConfig) error {
	if strings.TrimSpace(container) == "" {
		return ErrSurfaceNotMounted
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.container = container
	g.metrics = cfg.GridMetrics
	if g.metrics.Columns <= 0 {
		g.metrics = MetricsForWidth(DefaultViewportWidth)
	}
	g.interactive = cfg.Interactive
	g.initialized = true
	g.reflowLocked()
	return nil
}

// Initialized reports whether Init succeeded and Destroy has not run.
func (g *MemoryGrid) Initialized() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.initialized
}

// Container returns the element the grid was attached to.
func (g *MemoryGrid) Container() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.container
}

func (g *MemoryGrid) SetInteractive(interactive bool) {
	g.mu.Lock()
	g.interactive = interactive
	g.mu.Unlock()
}

func (g *MemoryGrid) Interactive() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.interactive
}

// SetColumns changes the column count and clamps widgets into it.
func (g *MemoryGrid) SetColumns(columns int) {
	if columns <= 0 {
		return
	}
	g.mu.Lock()
	g.metrics.Columns = columns
	g.reflowLocked()
	g.mu.Unlock()
}

func (g *MemoryGrid) SetCellHeight(height int) {
	g.mu.Lock()
	g.metrics.RowHeight = height
	g.mu.Unlock()
}

func (g *MemoryGrid) SetMargin(margin int) {
	g.mu.Lock()
	g.metrics.Margin = margin
	g.mu.Unlock()
}

func (g *MemoryGrid) Metrics() GridMetrics {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.metrics
}

// Positions returns widget geometry ordered by row, column, then id.
func (g *MemoryGrid) Positions() []WidgetLayoutEntry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]WidgetLayoutEntry, 0, len(g.widgets))
	for _, entry := range g.widgets {
		out = append(out, entry)
	}
	sortEntries(out)
	return out
}

// Has reports whether a widget with id exists.
func (g *MemoryGrid) Has(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.widgets[id]
	return ok
}

func (g *MemoryGrid) Update(entry WidgetLayoutEntry) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.widgets[entry.ID]; !ok {
		return false
	}
	g.widgets[entry.ID] = clampEntry(entry, g.metrics.Columns)
	return true
}

func (g *MemoryGrid) Settle(entries []WidgetLayoutEntry) error {
	g.mu.Lock()
	if !g.initialized {
		g.mu.Unlock()
		return ErrGridNotInitialized
	}
	if !g.interactive {
		g.mu.Unlock()
		return ErrGridStatic
	}
	changed := make([]WidgetLayoutEntry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := g.widgets[entry.ID]; !ok {
			continue
		}
		entry = clampEntry(entry, g.metrics.Columns)
		g.widgets[entry.ID] = entry
		changed = append(changed, entry)
	}
	listeners := make([]func([]WidgetLayoutEntry), 0, len(g.listeners))
	for _, fn := range g.listeners {
		listeners = append(listeners, fn)
	}
	g.mu.Unlock()

	if len(changed) == 0 {
		return nil
	}
	for _, fn := range listeners {
		fn(append([]WidgetLayoutEntry(nil), changed...))
	}
	return nil
}

func (g *MemoryGrid) OnChange(fn func([]WidgetLayoutEntry)) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	return func() {
		g.mu.Lock()
		delete(g.listeners, id)
		g.mu.Unlock()
	}
}

// ListenerCount reports attached change listeners.
func (g *MemoryGrid) ListenerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.listeners)
}

func (g *MemoryGrid) Destroy(removeVisual bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initialized = false
	g.interactive = false
	g.listeners = map[int]func([]WidgetLayoutEntry){}
	if removeVisual {
		g.widgets = map[string]WidgetLayoutEntry{}
	}
}

func (g *MemoryGrid) reflowLocked() {
	for id, entry := range g.widgets {
		g.widgets[id] = clampEntry(entry, g.metrics.Columns)
	}
}

// clampEntry keeps an entry non-negative and inside the column count.
func clampEntry(entry WidgetLayoutEntry, columns int) WidgetLayoutEntry {
	if entry.W < 1 {
		entry.W = 1
	}
	if entry.H < 1 {
		entry.H = 1
	}
	if entry.X < 0 {
		entry.X = 0
	}
	if entry.Y < 0 {
		entry.Y = 0
	}
	if columns > 0 {
		if entry.W > columns {
			entry.W = columns
		}
		if entry.X+entry.W > columns {
			entry.X = columns - entry.W
		}
	}
	return entry
}

func sortEntries(entries []WidgetLayoutEntry) {
	slices.SortFunc(entries, func(a, b WidgetLayoutEntry) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		if a.X != b.X {
			return a.X - b.X
		}
		return strings.Compare(a.ID, b.ID)
	})
}
