package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// CoordinatorState is a step of the dashboard initialization sequence.
type CoordinatorState string

const (
	StateUninitialized   CoordinatorState = "uninitialized"
	StateAwaitingData    CoordinatorState = "awaiting_data"
	StateAwaitingSurface CoordinatorState = "awaiting_surface"
	StateChartsReady     CoordinatorState = "charts_ready"
	StateGridReady       CoordinatorState = "grid_ready"
	StateInteractive     CoordinatorState = "interactive"
	StateFailed          CoordinatorState = "failed"
	StateDestroyed       CoordinatorState = "destroyed"
)

// Terminal reports whether no further transitions happen except Destroyed.
func (s CoordinatorState) Terminal() bool {
	return s == StateInteractive || s == StateFailed || s == StateDestroyed
}

const (
	DefaultInitTimeout       = 10 * time.Second
	DefaultSaveDelay         = 300 * time.Millisecond
	DefaultIndicatorDuration = 2 * time.Second
)

// CoordinatorOptions wires a Coordinator. Zero values fall back to defaults.
type CoordinatorOptions struct {
	SessionID         string
	Provider          DataProvider
	Surface           *Surface
	Grid              GridEngine
	Adapters          []ChartAdapter
	ChartElements     map[ChartKind]string
	Container         string
	Layout            *LayoutRepository
	Commands          *CommandBus
	Hook              EventHook
	Telemetry         Telemetry
	Logger            *zerolog.Logger
	InitTimeout       time.Duration
	SaveDelay         time.Duration
	IndicatorDuration time.Duration
	ViewportWidth     int
	DateRange         DateRange
}

// Coordinator sequences data, surface, charts, grid and persisted layout, then
// serves the interactive dashboard until Destroy.
type Coordinator struct {
	mu sync.Mutex

	sessionID     string
	provider      DataProvider
	surface       *Surface
	grid          GridEngine
	adapters      []ChartAdapter
	chartElements map[ChartKind]string
	container     string
	layout        *LayoutRepository
	commands      *CommandBus
	hook          EventHook
	telemetry     Telemetry
	logger        zerolog.Logger
	initTimeout   time.Duration

	state     CoordinatorState
	err       error
	started   bool
	done      chan struct{}
	finish    sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
	baseline  Snapshot
	dateRange DateRange
	filterRev uint64
	current   []ActivityRecord
	table     *TableState
	handles   map[ChartKind]*ChartHandle
	editMode  bool
	width     int
	metrics   GridMetrics
	indicator bool
	lastSaved time.Time

	saves         *debouncer
	indicatorTick *debouncer
	detachGrid    func()
	detachBus     func()
}

// NewCoordinator builds a coordinator in the Uninitialized state.
func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	if opts.Provider == nil {
		opts.Provider = NewStaticDataProvider(Snapshot{})
	}
	if opts.Surface == nil {
		opts.Surface = NewSurface()
	}
	if opts.Grid == nil {
		opts.Grid = NewMemoryGrid(DefaultWidgetDefinitions())
	}
	if len(opts.Adapters) == 0 {
		opts.Adapters = DefaultChartAdapters()
	}
	if len(opts.ChartElements) == 0 {
		opts.ChartElements = chartElementsFor(DefaultWidgetDefinitions())
	}
	if opts.Container == "" {
		opts.Container = GridContainerID
	}
	if opts.Layout == nil {
		opts.Layout = NewLayoutRepository(nil)
	}
	if opts.Commands == nil {
		opts.Commands = NewCommandBus()
	}
	if opts.Hook == nil {
		opts.Hook = noopEventHook{}
	}
	if opts.InitTimeout <= 0 {
		opts.InitTimeout = DefaultInitTimeout
	}
	if opts.SaveDelay <= 0 {
		opts.SaveDelay = DefaultSaveDelay
	}
	if opts.IndicatorDuration <= 0 {
		opts.IndicatorDuration = DefaultIndicatorDuration
	}
	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = DefaultViewportWidth
	}
	if !opts.DateRange.Valid() {
		opts.DateRange = DefaultDateRange
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Coordinator{
		sessionID:     opts.SessionID,
		provider:      opts.Provider,
		surface:       opts.Surface,
		grid:          opts.Grid,
		adapters:      opts.Adapters,
		chartElements: opts.ChartElements,
		container:     opts.Container,
		layout:        opts.Layout,
		commands:      opts.Commands,
		hook:          opts.Hook,
		telemetry:     normalizeTelemetry(opts.Telemetry),
		logger:        logger.With().Str("session", opts.SessionID).Logger(),
		initTimeout:   opts.InitTimeout,
		state:         StateUninitialized,
		done:          make(chan struct{}),
		dateRange:     opts.DateRange,
		table:         NewTableState(nil),
		handles:       map[ChartKind]*ChartHandle{},
		width:         opts.ViewportWidth,
		metrics:       MetricsForWidth(opts.ViewportWidth),
		saves:         newDebouncer(opts.SaveDelay),
		indicatorTick: newDebouncer(opts.IndicatorDuration),
	}
}

func chartElementsFor(definitions []WidgetDefinition) map[ChartKind]string {
	out := map[ChartKind]string{}
	for _, def := range definitions {
		if def.Kind == WidgetKindChart && def.Chart != "" {
			out[def.Chart] = def.ID
		}
	}
	return out
}

// Start moves to AwaitingData and runs the initialization sequence in the
// background. Only ctx values are inherited; Destroy ends the run.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateDestroyed {
		c.mu.Unlock()
		return ErrDestroyed
	}
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.ctx, c.cancel = context.WithCancel(context.WithoutCancel(ctx))
	runCtx := c.ctx
	c.state = StateAwaitingData
	commands, detach := c.commands.Subscribe()
	c.detachBus = detach
	c.mu.Unlock()

	c.telemetry.Record(runCtx, "dashboard.coordinator.start", map[string]any{"session": c.sessionID})
	c.notify(runCtx, "started")
	go c.listenCommands(runCtx, commands)
	go c.initialize(runCtx)
	return nil
}

// Wait blocks until the initialization sequence ends. It returns nil once the
// dashboard is Interactive.
func (c *Coordinator) Wait(ctx context.Context) error {
	select {
	case <-c.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Done is closed when initialization reaches Interactive, Failed or Destroyed.
func (c *Coordinator) Done() <-chan struct{} { return c.done }

// State returns the current state.
func (c *Coordinator) State() CoordinatorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the failure that ended initialization, if any.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// SessionID returns the owning session id.
func (c *Coordinator) SessionID() string { return c.sessionID }

// Surface returns the drawing surface the coordinator waits on.
func (c *Coordinator) Surface() *Surface { return c.surface }

// Commands returns the session command bus.
func (c *Coordinator) Commands() *CommandBus { return c.commands }

func (c *Coordinator) initialize(ctx context.Context) {
	initCtx, cancel := context.WithTimeout(ctx, c.initTimeout)
	defer cancel()

	snapshot, err := c.awaitPreconditions(initCtx)
	if err != nil {
		c.abort(ctx, err)
		return
	}
	data, rev, ok := c.acceptSnapshot(snapshot)
	if !ok {
		return
	}
	c.notify(ctx, "data_ready")

	handles, err := c.createCharts(initCtx, data)
	if err != nil {
		for _, h := range handles {
			h.Destroy()
		}
		c.abort(ctx, err)
		return
	}
	if !c.attachCharts(handles, rev) {
		return
	}
	c.notify(ctx, "charts_ready")

	if err := c.initGrid(); err != nil {
		c.abort(ctx, err)
		return
	}
	c.notify(ctx, "grid_ready")

	c.restoreLayout(ctx)
	c.notify(ctx, "interactive")
}

// awaitPreconditions joins the data-arrived and container-mounted signals.
func (c *Coordinator) awaitPreconditions(ctx context.Context) (Snapshot, error) {
	dataReady := make(chan Snapshot, 1)
	go func() {
		for snapshot := range c.provider.Subscribe(ctx) {
			if !snapshot.Empty() {
				dataReady <- snapshot
				return
			}
		}
	}()
	mounted := c.surface.Ready(c.container)

	var (
		snapshot Snapshot
		gotData  bool
	)
	for !gotData || mounted != nil {
		select {
		case snapshot = <-dataReady:
			gotData = true
			dataReady = nil
		case <-mounted:
			mounted = nil
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}
	}
	return snapshot, nil
}

// acceptSnapshot stores the baseline and returns the chart data along with the
// filter revision it was built from.
func (c *Coordinator) acceptSnapshot(snapshot Snapshot) (ChartData, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAwaitingData {
		return ChartData{}, 0, false
	}
	c.baseline = snapshot.Clone()
	current, _ := FilterActivity(c.baseline.UserActivity, c.dateRange)
	c.current = current
	c.table.Reset(current)
	c.state = StateAwaitingSurface
	return c.chartDataLocked(), c.filterRev, true
}

// createCharts runs one create loop per adapter. A loop whose element is not yet
// mounted waits for that mount and retries without blocking the others.
func (c *Coordinator) createCharts(ctx context.Context, data ChartData) (map[ChartKind]*ChartHandle, error) {
	var (
		mu      sync.Mutex
		handles = make(map[ChartKind]*ChartHandle, len(c.adapters))
	)
	for _, adapter := range c.adapters {
		if _, ok := c.chartElements[adapter.Kind()]; !ok {
			return handles, fmt.Errorf("dashboard: no element bound to %s chart", adapter.Kind())
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, adapter := range c.adapters {
		elementID := c.chartElements[adapter.Kind()]
		g.Go(func() error {
			for attempt := 1; ; attempt++ {
				handle, err := adapter.Create(c.surface, elementID, data)
				if err == nil {
					mu.Lock()
					handles[adapter.Kind()] = handle
					mu.Unlock()
					return nil
				}
				if !errors.Is(err, ErrSurfaceNotMounted) {
					return err
				}
				c.logger.Debug().Str("chart", elementID).Int("attempt", attempt).Msg("chart surface not mounted, waiting")
				if err := c.surface.WaitMounted(gctx, elementID); err != nil {
					return err
				}
			}
		})
	}
	err := g.Wait()
	return handles, err
}

// attachCharts installs the created handles. A range change that landed while the
// charts waited for their elements is replayed onto the new handles.
func (c *Coordinator) attachCharts(handles map[ChartKind]*ChartHandle, rev uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAwaitingSurface {
		for _, h := range handles {
			h.Destroy()
		}
		return false
	}
	c.handles = handles
	if c.filterRev != rev {
		c.logger.Debug().Str("range", string(c.dateRange)).Msg("range changed during chart creation, refreshing")
		c.refreshChartsLocked()
	}
	c.state = StateChartsReady
	return true
}

func (c *Coordinator) initGrid() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateChartsReady {
		return ErrDestroyed
	}
	cfg := GridConfig{GridMetrics: c.metrics, Interactive: c.editMode}
	if err := c.grid.Init(c.container, cfg); err != nil {
		return fmt.Errorf("dashboard: init grid: %w", err)
	}
	c.detachGrid = c.grid.OnChange(c.onGridChange)
	c.state = StateGridReady
	return nil
}

func (c *Coordinator) restoreLayout(ctx context.Context) {
	entries, err := c.layout.Load(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("persisted layout ignored")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateGridReady {
		return
	}
	applied, skipped := 0, 0
	for _, entry := range entries {
		if !c.surface.Mounted(entry.ID) {
			skipped++
			continue
		}
		if c.grid.Update(entry) {
			applied++
		} else {
			skipped++
		}
	}
	if len(entries) > 0 {
		c.logger.Debug().Int("applied", applied).Int("skipped", skipped).Msg("layout restored")
	}
	c.state = StateInteractive
	c.finish.Do(func() { close(c.done) })
	c.telemetry.Record(ctx, "dashboard.coordinator.interactive", map[string]any{
		"session": c.sessionID,
		"applied": applied,
		"skipped": skipped,
	})
}

// abort moves to Failed unless the run was ended by Destroy.
func (c *Coordinator) abort(ctx context.Context, err error) {
	c.mu.Lock()
	if c.state.Terminal() {
		c.mu.Unlock()
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w after %s in %s", ErrInitTimeout, c.initTimeout, c.state)
	}
	c.state = StateFailed
	c.err = err
	c.finish.Do(func() { close(c.done) })
	c.mu.Unlock()

	c.logger.Error().Err(err).Msg("dashboard initialization failed")
	c.telemetry.Record(ctx, "dashboard.coordinator.failed", map[string]any{
		"session": c.sessionID,
		"error":   err.Error(),
	})
	c.notify(ctx, "failed")
}

func (c *Coordinator) listenCommands(ctx context.Context, commands <-chan LayoutCommand) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-commands:
			if !ok {
				return
			}
			switch cmd {
			case CommandToggleEditMode:
				c.ToggleEditMode()
			case CommandSaveLayout:
				if err := c.SaveLayout(ctx); err != nil {
					c.logger.Warn().Err(err).Msg("save layout command failed")
				}
			}
		}
	}
}

// ToggleEditMode flips edit mode and the grid's interactivity. It never saves.
func (c *Coordinator) ToggleEditMode() bool {
	c.mu.Lock()
	if c.state == StateDestroyed {
		c.mu.Unlock()
		return false
	}
	c.editMode = !c.editMode
	if c.grid.Initialized() {
		c.grid.SetInteractive(c.editMode)
	}
	editMode := c.editMode
	ctx := c.contextLocked()
	c.mu.Unlock()

	c.telemetry.Record(ctx, "dashboard.edit_mode.toggled", map[string]any{
		"session":   c.sessionID,
		"edit_mode": editMode,
	})
	c.notify(ctx, "edit_mode")
	return editMode
}

// EditMode reports whether the grid accepts drag and resize input.
func (c *Coordinator) EditMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editMode
}

// SaveLayout writes the grid positions to storage regardless of edit mode and
// raises the save indicator.
func (c *Coordinator) SaveLayout(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateDestroyed {
		c.mu.Unlock()
		return ErrDestroyed
	}
	if !c.grid.Initialized() {
		c.mu.Unlock()
		return ErrGridNotInitialized
	}
	positions := c.grid.Positions()
	c.saves.Cancel()
	c.mu.Unlock()

	if err := c.layout.Save(ctx, positions); err != nil {
		return err
	}

	c.mu.Lock()
	if c.state == StateDestroyed {
		c.mu.Unlock()
		return nil
	}
	c.indicator = true
	c.lastSaved = time.Now()
	c.indicatorTick.Schedule(c.clearIndicator)
	c.mu.Unlock()

	c.telemetry.Record(ctx, "dashboard.layout.saved", map[string]any{
		"session": c.sessionID,
		"widgets": len(positions),
	})
	c.notify(ctx, "layout_saved")
	return nil
}

func (c *Coordinator) clearIndicator() {
	c.mu.Lock()
	c.indicator = false
	ctx := c.contextLocked()
	c.mu.Unlock()
	c.notify(ctx, "indicator_cleared")
}

// SaveIndicator reports whether the transient "layout saved" indicator is shown.
func (c *Coordinator) SaveIndicator() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indicator
}

// SavePending reports whether a debounced save is scheduled.
func (c *Coordinator) SavePending() bool {
	return c.saves.Pending()
}

func (c *Coordinator) onGridChange(entries []WidgetLayoutEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDestroyed || !c.editMode {
		return
	}
	ctx := c.contextLocked()
	c.saves.Schedule(func() {
		if err := c.SaveLayout(ctx); err != nil && !errors.Is(err, ErrDestroyed) {
			c.logger.Warn().Err(err).Msg("debounced layout save failed")
		}
	})
}

// ApplyLayoutChange forwards a settled drag or resize into the grid.
func (c *Coordinator) ApplyLayoutChange(entries []WidgetLayoutEntry) error {
	c.mu.Lock()
	if c.state == StateDestroyed {
		c.mu.Unlock()
		return ErrDestroyed
	}
	grid := c.grid
	c.mu.Unlock()
	if !grid.Initialized() {
		return ErrGridNotInitialized
	}
	return grid.Settle(entries)
}

// ChangeDateRange re-filters the baseline, resets the table to page 1 and refreshes
// the charts. Unknown ranges keep the previous selection and return false.
func (c *Coordinator) ChangeDateRange(r DateRange) bool {
	c.mu.Lock()
	ctx := c.contextLocked()
	if c.state == StateDestroyed {
		c.mu.Unlock()
		return false
	}
	current, ok := FilterActivity(c.baseline.UserActivity, r)
	if !ok {
		previous := c.dateRange
		c.mu.Unlock()
		c.logger.Warn().Str("range", string(r)).Str("kept", string(previous)).Msg("unknown date range ignored")
		c.telemetry.Record(ctx, "dashboard.filter.unknown_range", map[string]any{
			"session": c.sessionID,
			"range":   string(r),
		})
		return false
	}
	c.dateRange = r
	c.filterRev++
	c.current = current
	c.table.Reset(current)
	c.table.ResetPage()
	c.refreshChartsLocked()
	c.mu.Unlock()

	c.telemetry.Record(ctx, "dashboard.filter.changed", map[string]any{
		"session": c.sessionID,
		"range":   string(r),
		"rows":    len(current),
	})
	c.notify(ctx, "date_range")
	return true
}

// DateRange returns the active selector.
func (c *Coordinator) DateRange() DateRange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dateRange
}

func (c *Coordinator) refreshChartsLocked() {
	data := c.chartDataLocked()
	for _, adapter := range c.adapters {
		handle, ok := c.handles[adapter.Kind()]
		if !ok {
			continue
		}
		if err := adapter.Refresh(handle, data); err != nil {
			c.logger.Warn().Err(err).Str("chart", handle.ID()).Msg("chart refresh failed")
		}
	}
}

func (c *Coordinator) chartDataLocked() ChartData {
	return ChartData{
		Activity:   c.current,
		Engagement: c.baseline.Engagement,
		Products:   c.baseline.TopProducts,
	}
}

// SortTable sorts the activity table by column, toggling on reselection.
func (c *Coordinator) SortTable(column string) (SortState, error) {
	c.mu.Lock()
	if c.state == StateDestroyed {
		c.mu.Unlock()
		return SortState{}, ErrDestroyed
	}
	if err := c.table.Sort(column); err != nil {
		c.mu.Unlock()
		return SortState{}, err
	}
	state := c.table.SortState()
	ctx := c.contextLocked()
	c.mu.Unlock()
	c.notify(ctx, "table_sorted")
	return state, nil
}

// GoToPage moves the activity table to page, clamped into range.
func (c *Coordinator) GoToPage(page int) int {
	return c.paginate(func(t *TableState) { t.GoTo(page) })
}

// NextPage advances the activity table; no-op on the last page.
func (c *Coordinator) NextPage() int {
	return c.paginate((*TableState).Next)
}

// PrevPage moves the activity table back; no-op on the first page.
func (c *Coordinator) PrevPage() int {
	return c.paginate((*TableState).Previous)
}

func (c *Coordinator) paginate(move func(*TableState)) int {
	c.mu.Lock()
	before := c.table.CurrentPage()
	move(c.table)
	page := c.table.CurrentPage()
	ctx := c.contextLocked()
	c.mu.Unlock()
	if page != before {
		c.notify(ctx, "table_paged")
	}
	return page
}

// Resize recomputes grid metrics for width and pushes only the values that changed.
func (c *Coordinator) Resize(width int) []string {
	if width <= 0 {
		return nil
	}
	c.mu.Lock()
	if c.state == StateDestroyed {
		c.mu.Unlock()
		return nil
	}
	next := MetricsForWidth(width)
	var changed []string
	if c.grid.Initialized() {
		changed = applyMetricDiff(c.grid, c.metrics, next)
	}
	c.width = width
	c.metrics = next
	ctx := c.contextLocked()
	c.mu.Unlock()
	if len(changed) > 0 {
		c.notify(ctx, "viewport")
	}
	return changed
}

// Destroy tears the coordinator down. Pending saves, waits and listeners are
// cancelled; the grid is detached without clearing its geometry. Only the persisted
// layout survives. Safe to call more than once.
func (c *Coordinator) Destroy() {
	c.mu.Lock()
	if c.state == StateDestroyed {
		c.mu.Unlock()
		return
	}
	c.state = StateDestroyed
	if c.err == nil {
		select {
		case <-c.done:
		default:
			c.err = ErrDestroyed
		}
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.saves.Stop()
	c.indicatorTick.Stop()
	c.indicator = false
	if c.detachBus != nil {
		c.detachBus()
		c.detachBus = nil
	}
	if c.detachGrid != nil {
		c.detachGrid()
		c.detachGrid = nil
	}
	if c.grid.Initialized() {
		c.grid.Destroy(false)
	}
	for kind, handle := range c.handles {
		handle.Destroy()
		delete(c.handles, kind)
	}
	c.finish.Do(func() { close(c.done) })
	c.mu.Unlock()

	ctx := context.Background()
	c.telemetry.Record(ctx, "dashboard.coordinator.destroyed", map[string]any{"session": c.sessionID})
	c.notify(ctx, "destroyed")
}

func (c *Coordinator) contextLocked() context.Context {
	if c.ctx != nil {
		return c.ctx
	}
	return context.Background()
}

func (c *Coordinator) notify(ctx context.Context, reason string) {
	c.mu.Lock()
	event := DashboardEvent{
		SessionID:  c.sessionID,
		Reason:     reason,
		State:      c.state,
		EditMode:   c.editMode,
		OccurredAt: time.Now().UTC(),
	}
	c.mu.Unlock()
	if err := c.hook.DashboardUpdated(context.WithoutCancel(ctx), event); err != nil {
		c.logger.Warn().Err(err).Str("reason", reason).Msg("dashboard event hook failed")
	}
}
