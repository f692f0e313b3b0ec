package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSaveDelay = 20 * time.Millisecond
	testIndicator = 40 * time.Millisecond
	testWait      = 2 * time.Second
	testTick      = 5 * time.Millisecond
)

type recordingTelemetry struct {
	mu    sync.Mutex
	names []string
}

func (t *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.names = append(t.names, event)
}

func (t *recordingTelemetry) events() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.names...)
}

type recordingHook struct {
	mu      sync.Mutex
	reasons []string
}

func (h *recordingHook) DashboardUpdated(_ context.Context, event DashboardEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reasons = append(h.reasons, event.Reason)
	return nil
}

func (h *recordingHook) seen(reason string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.reasons {
		if r == reason {
			return true
		}
	}
	return false
}

type coordinatorFixture struct {
	coordinator *Coordinator
	surface     *Surface
	grid        *MemoryGrid
	store       *MemoryKVStore
	telemetry   *recordingTelemetry
	hook        *recordingHook
}

func newCoordinatorFixture(t *testing.T, mutate ...func(*CoordinatorOptions)) *coordinatorFixture {
	t.Helper()
	f := &coordinatorFixture{
		surface:   NewSurface(),
		grid:      NewMemoryGrid(DefaultWidgetDefinitions()),
		store:     NewMemoryKVStore(),
		telemetry: &recordingTelemetry{},
		hook:      &recordingHook{},
	}
	opts := CoordinatorOptions{
		SessionID:         "session-1",
		Provider:          NewStaticDataProvider(DefaultSnapshot()),
		Surface:           f.surface,
		Grid:              f.grid,
		Layout:            NewLayoutRepository(f.store),
		Hook:              f.hook,
		Telemetry:         f.telemetry,
		SaveDelay:         testSaveDelay,
		IndicatorDuration: testIndicator,
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	f.coordinator = NewCoordinator(opts)
	t.Cleanup(f.coordinator.Destroy)
	return f
}

func (f *coordinatorFixture) mountAll() {
	f.surface.Mount(GridContainerID, WidgetTrendChart, WidgetComparisonChart, WidgetDistribution)
}

func (f *coordinatorFixture) startInteractive(t *testing.T) *Coordinator {
	t.Helper()
	f.mountAll()
	require.NoError(t, f.coordinator.Start(context.Background()))
	ctx, cancel := context.WithTimeout(context.Background(), testWait)
	defer cancel()
	require.NoError(t, f.coordinator.Wait(ctx))
	return f.coordinator
}

func (f *coordinatorFixture) persisted(t *testing.T) ([]WidgetLayoutEntry, bool) {
	t.Helper()
	raw, ok, err := f.store.Get(context.Background(), DefaultLayoutKey)
	require.NoError(t, err)
	if !ok {
		return nil, false
	}
	entries, _, err := DecodeLayout(raw)
	require.NoError(t, err)
	return entries, true
}

func TestCoordinatorReachesInteractive(t *testing.T) {
	f := newCoordinatorFixture(t)
	c := f.startInteractive(t)

	assert.Equal(t, StateInteractive, c.State())
	assert.NoError(t, c.Err())
	assert.True(t, f.grid.Initialized())
	assert.Equal(t, GridContainerID, f.grid.Container())
	assert.False(t, f.grid.Interactive())
	assert.Equal(t, 1, f.grid.ListenerCount())

	for _, kind := range []ChartKind{ChartTrend, ChartComparison, ChartDistribution} {
		handle, ok := c.Handle(kind)
		require.Truef(t, ok, "missing %s chart", kind)
		assert.False(t, handle.Destroyed())
	}

	view := c.View()
	assert.Equal(t, DefaultDateRange, view.DateRange)
	assert.Len(t, view.Activity, 15)
	assert.Equal(t, 3, view.Table.TotalPages)
	assert.Len(t, view.Charts, 3)
	assert.Contains(t, f.telemetry.events(), "dashboard.coordinator.interactive")
	assert.True(t, f.hook.seen("interactive"))
}

func TestCoordinatorStartTwice(t *testing.T) {
	f := newCoordinatorFixture(t)
	require.NoError(t, f.coordinator.Start(context.Background()))
	assert.ErrorIs(t, f.coordinator.Start(context.Background()), ErrAlreadyStarted)
}

func TestCoordinatorWaitsForContainer(t *testing.T) {
	f := newCoordinatorFixture(t)
	c := f.coordinator
	f.surface.Mount(WidgetTrendChart, WidgetComparisonChart, WidgetDistribution)
	require.NoError(t, c.Start(context.Background()))

	assert.Never(t, func() bool { return c.State() != StateAwaitingData }, 60*time.Millisecond, testTick)
	assert.False(t, f.grid.Initialized())

	f.surface.Mount(GridContainerID)
	require.Eventually(t, func() bool { return c.State() == StateInteractive }, testWait, testTick)
}

func TestCoordinatorWaitsForData(t *testing.T) {
	release := make(chan struct{})
	f := newCoordinatorFixture(t, func(opts *CoordinatorOptions) {
		opts.Provider = DataProviderFunc(func(ctx context.Context) (Snapshot, error) {
			select {
			case <-release:
				return DefaultSnapshot(), nil
			case <-ctx.Done():
				return Snapshot{}, ctx.Err()
			}
		})
	})
	c := f.coordinator
	f.mountAll()
	require.NoError(t, c.Start(context.Background()))

	assert.Never(t, func() bool { return c.State() != StateAwaitingData }, 60*time.Millisecond, testTick)

	close(release)
	require.Eventually(t, func() bool { return c.State() == StateInteractive }, testWait, testTick)
}

func TestCoordinatorRetriesChartsUntilMounted(t *testing.T) {
	f := newCoordinatorFixture(t)
	c := f.coordinator
	f.surface.Mount(GridContainerID, WidgetTrendChart)
	require.NoError(t, c.Start(context.Background()))

	require.Eventually(t, func() bool { return c.State() == StateAwaitingSurface }, testWait, testTick)
	assert.Never(t, func() bool { return c.State() != StateAwaitingSurface }, 60*time.Millisecond, testTick)

	f.surface.Mount(WidgetComparisonChart)
	assert.Never(t, func() bool { return c.State() != StateAwaitingSurface }, 30*time.Millisecond, testTick)

	f.surface.Mount(WidgetDistribution)
	require.Eventually(t, func() bool { return c.State() == StateInteractive }, testWait, testTick)
	_, ok := c.Handle(ChartDistribution)
	assert.True(t, ok)
}

func TestCoordinatorInitDeadline(t *testing.T) {
	f := newCoordinatorFixture(t, func(opts *CoordinatorOptions) {
		opts.InitTimeout = 30 * time.Millisecond
	})
	c := f.coordinator
	require.NoError(t, c.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), testWait)
	defer cancel()
	err := c.Wait(ctx)
	require.ErrorIs(t, err, ErrInitTimeout)
	assert.Equal(t, StateFailed, c.State())
	assert.False(t, f.grid.Initialized())
	assert.Contains(t, f.telemetry.events(), "dashboard.coordinator.failed")
	assert.NotEmpty(t, c.View().Error)
}

func TestCoordinatorDeadlineWhileChartsWait(t *testing.T) {
	f := newCoordinatorFixture(t, func(opts *CoordinatorOptions) {
		opts.InitTimeout = 50 * time.Millisecond
	})
	c := f.coordinator
	f.surface.Mount(GridContainerID)
	require.NoError(t, c.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), testWait)
	defer cancel()
	require.ErrorIs(t, c.Wait(ctx), ErrInitTimeout)
	_, ok := c.Handle(ChartTrend)
	assert.False(t, ok)
}

func TestCoordinatorRestoresPersistedLayout(t *testing.T) {
	f := newCoordinatorFixture(t)
	saved := `[{"id":"chart-trend","x":4,"y":2,"w":8,"h":3},{"id":"retired-widget","x":0,"y":0,"w":2,"h":2}]`
	require.NoError(t, f.store.Set(context.Background(), DefaultLayoutKey, saved))

	f.startInteractive(t)

	var trend WidgetLayoutEntry
	for _, entry := range f.grid.Positions() {
		if entry.ID == WidgetTrendChart {
			trend = entry
		}
		assert.NotEqual(t, "retired-widget", entry.ID)
	}
	assert.Equal(t, WidgetLayoutEntry{ID: WidgetTrendChart, X: 4, Y: 2, W: 8, H: 3}, trend)
	assert.False(t, f.grid.Has("retired-widget"))
}

func TestCoordinatorRestoreSkipsUnmountedWidgets(t *testing.T) {
	f := newCoordinatorFixture(t)
	saved := `[{"id":"chart-trend","x":4,"y":2,"w":8,"h":3},{"id":"table-activity","x":0,"y":0,"w":6,"h":2}]`
	require.NoError(t, f.store.Set(context.Background(), DefaultLayoutKey, saved))
	defaults := map[string]WidgetLayoutEntry{}
	for _, entry := range NewMemoryGrid(DefaultWidgetDefinitions()).Positions() {
		defaults[entry.ID] = entry
	}

	f.startInteractive(t)

	for _, entry := range f.grid.Positions() {
		switch entry.ID {
		case WidgetTrendChart:
			assert.Equal(t, WidgetLayoutEntry{ID: WidgetTrendChart, X: 4, Y: 2, W: 8, H: 3}, entry)
		case WidgetActivityTable:
			assert.Equal(t, defaults[WidgetActivityTable], entry)
		}
	}
}

func TestCoordinatorClearsMalformedLayout(t *testing.T) {
	f := newCoordinatorFixture(t)
	require.NoError(t, f.store.Set(context.Background(), DefaultLayoutKey, `{"not":"an array"}`))
	defaults := NewMemoryGrid(DefaultWidgetDefinitions()).Positions()

	f.startInteractive(t)

	_, ok := f.persisted(t)
	assert.False(t, ok)
	assert.Equal(t, defaults, f.grid.Positions())
}

func TestCoordinatorEditModeOffNeverSaves(t *testing.T) {
	f := newCoordinatorFixture(t)
	c := f.startInteractive(t)

	err := c.ApplyLayoutChange([]WidgetLayoutEntry{{ID: WidgetTrendChart, X: 2, Y: 1, W: 6, H: 4}})
	assert.ErrorIs(t, err, ErrGridStatic)
	assert.False(t, c.SavePending())

	assert.True(t, c.ToggleEditMode())
	assert.False(t, c.ToggleEditMode())
	time.Sleep(3 * testSaveDelay)
	_, ok := f.persisted(t)
	assert.False(t, ok)
}

func TestCoordinatorExplicitSaveIgnoresEditMode(t *testing.T) {
	f := newCoordinatorFixture(t)
	c := f.startInteractive(t)
	require.False(t, c.EditMode())

	require.NoError(t, c.SaveLayout(context.Background()))
	entries, ok := f.persisted(t)
	require.True(t, ok)
	assert.Equal(t, f.grid.Positions(), entries)
	assert.True(t, c.SaveIndicator())
	assert.NotNil(t, c.View().LastSaved)

	require.Eventually(t, func() bool { return !c.SaveIndicator() }, testWait, testTick)
	assert.True(t, f.hook.seen("indicator_cleared"))
}

func TestCoordinatorDebouncesSaves(t *testing.T) {
	f := newCoordinatorFixture(t)
	c := f.startInteractive(t)
	require.True(t, c.ToggleEditMode())
	require.True(t, f.grid.Interactive())

	require.NoError(t, c.ApplyLayoutChange([]WidgetLayoutEntry{{ID: WidgetTrendChart, X: 1, Y: 1, W: 6, H: 4}}))
	require.NoError(t, c.ApplyLayoutChange([]WidgetLayoutEntry{{ID: WidgetTrendChart, X: 2, Y: 1, W: 6, H: 4}}))
	assert.True(t, c.SavePending())
	_, ok := f.persisted(t)
	assert.False(t, ok)

	require.Eventually(t, func() bool {
		_, ok := f.persisted(t)
		return ok
	}, testWait, testTick)
	entries, _ := f.persisted(t)
	assert.Contains(t, entries, WidgetLayoutEntry{ID: WidgetTrendChart, X: 2, Y: 1, W: 6, H: 4})
	assert.False(t, c.SavePending())
}

func TestCoordinatorUnknownRangeKeepsPrevious(t *testing.T) {
	f := newCoordinatorFixture(t)
	c := f.startInteractive(t)
	require.True(t, c.ChangeDateRange(Range7Days))

	assert.False(t, c.ChangeDateRange("14d"))
	assert.Equal(t, Range7Days, c.DateRange())
	assert.Len(t, c.View().Activity, 7)
	assert.Contains(t, f.telemetry.events(), "dashboard.filter.unknown_range")
}

func TestCoordinatorRangeChangeRefreshesCharts(t *testing.T) {
	f := newCoordinatorFixture(t)
	c := f.startInteractive(t)
	before, ok := c.Handle(ChartTrend)
	require.True(t, ok)
	require.Equal(t, 2, c.NextPage())

	require.True(t, c.ChangeDateRange(Range7Days))

	after, ok := c.Handle(ChartTrend)
	require.True(t, ok)
	assert.Same(t, before, after)
	assert.Equal(t, 1, after.Revision())
	assert.Len(t, after.Labels(), 7)

	view := c.View()
	assert.Equal(t, 1, view.Table.Page)
	assert.Equal(t, 2, view.Table.TotalPages)
	assert.Equal(t, 7, view.Table.TotalRows)
	assert.True(t, f.hook.seen("date_range"))
}

func TestCoordinatorRangeChangeWhileChartsWait(t *testing.T) {
	f := newCoordinatorFixture(t)
	c := f.coordinator
	f.surface.Mount(GridContainerID)
	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return c.State() == StateAwaitingSurface }, testWait, testTick)

	require.True(t, c.ChangeDateRange(Range7Days))
	f.surface.Mount(WidgetTrendChart, WidgetComparisonChart, WidgetDistribution)

	ctx, cancel := context.WithTimeout(context.Background(), testWait)
	defer cancel()
	require.NoError(t, c.Wait(ctx))

	trend, ok := c.Handle(ChartTrend)
	require.True(t, ok)
	assert.Len(t, c.View().Activity, 7)
	assert.Len(t, trend.Labels(), 7)
	assert.Equal(t, 1, trend.Revision())
}

func TestCoordinatorTableActions(t *testing.T) {
	f := newCoordinatorFixture(t)
	c := f.startInteractive(t)

	state, err := c.SortTable("active_users")
	require.NoError(t, err)
	assert.Equal(t, SortState{Column: ColumnActiveUsers, Direction: SortAscending}, state)
	state, err = c.SortTable(ColumnActiveUsers)
	require.NoError(t, err)
	assert.Equal(t, SortDescending, state.Direction)
	assert.Equal(t, 790, c.View().Table.Rows[0].ActiveUsers)

	_, err = c.SortTable("bounce")
	assert.ErrorIs(t, err, ErrUnknownSortColumn)

	assert.Equal(t, 1, c.PrevPage())
	assert.Equal(t, 3, c.GoToPage(99))
	assert.Equal(t, 3, c.NextPage())
	assert.Equal(t, 2, c.PrevPage())
}

func TestCoordinatorResizeAppliesChangedMetrics(t *testing.T) {
	f := newCoordinatorFixture(t)
	c := f.startInteractive(t)

	assert.Empty(t, c.Resize(1100))
	assert.Equal(t, []string{"columns"}, c.Resize(800))
	assert.Equal(t, 6, f.grid.Metrics().Columns)
	assert.Equal(t, []string{"columns", "row_height", "margin"}, c.Resize(400))
	assert.Equal(t, GridMetrics{Columns: 1, RowHeight: 80, Margin: 8}, f.grid.Metrics())
	assert.Nil(t, c.Resize(0))
	assert.Equal(t, 400, c.View().ViewportWidth)
}

func TestCoordinatorCommandsFromBus(t *testing.T) {
	f := newCoordinatorFixture(t)
	c := f.startInteractive(t)

	c.Commands().Publish(CommandToggleEditMode)
	require.Eventually(t, c.EditMode, testWait, testTick)

	c.Commands().Publish(CommandSaveLayout)
	require.Eventually(t, func() bool {
		_, ok := f.persisted(t)
		return ok
	}, testWait, testTick)
}

type gatedKVStore struct {
	*MemoryKVStore
	entered chan struct{}
	release chan struct{}

	mu   sync.Mutex
	sets int
}

func (s *gatedKVStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.sets++
	s.mu.Unlock()
	select {
	case s.entered <- struct{}{}:
	default:
	}
	<-s.release
	return s.MemoryKVStore.Set(ctx, key, value)
}

func (s *gatedKVStore) setCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

func TestCoordinatorBusDeliversCommandsDuringSlowSave(t *testing.T) {
	store := &gatedKVStore{
		MemoryKVStore: NewMemoryKVStore(),
		entered:       make(chan struct{}, 1),
		release:       make(chan struct{}),
	}
	f := newCoordinatorFixture(t, func(opts *CoordinatorOptions) {
		opts.Layout = NewLayoutRepository(store)
	})
	c := f.startInteractive(t)

	c.Commands().Publish(CommandSaveLayout)
	select {
	case <-store.entered:
	case <-time.After(testWait):
		t.Fatalf("save never reached the store")
	}
	for i := 0; i < 11; i++ {
		c.Commands().Publish(CommandToggleEditMode)
	}
	c.Commands().Publish(CommandSaveLayout)
	close(store.release)

	require.Eventually(t, func() bool { return store.setCalls() == 2 }, testWait, testTick)
	assert.True(t, c.EditMode())
	_, ok, err := store.Get(context.Background(), DefaultLayoutKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCoordinatorDestroyCancelsPendingSave(t *testing.T) {
	f := newCoordinatorFixture(t, func(opts *CoordinatorOptions) {
		opts.SaveDelay = 60 * time.Millisecond
	})
	c := f.startInteractive(t)
	trend, _ := c.Handle(ChartTrend)
	require.True(t, c.ToggleEditMode())
	require.NoError(t, c.ApplyLayoutChange([]WidgetLayoutEntry{{ID: WidgetTrendChart, X: 3, Y: 1, W: 6, H: 4}}))
	require.True(t, c.SavePending())

	c.Destroy()
	c.Destroy()

	time.Sleep(120 * time.Millisecond)
	_, ok := f.persisted(t)
	assert.False(t, ok)
	assert.Equal(t, StateDestroyed, c.State())
	assert.False(t, f.grid.Initialized())
	assert.Equal(t, 0, f.grid.ListenerCount())
	assert.True(t, f.grid.Has(WidgetTrendChart))
	assert.True(t, trend.Destroyed())
	assert.ErrorIs(t, c.SaveLayout(context.Background()), ErrDestroyed)
	assert.False(t, c.ChangeDateRange(Range7Days))
	assert.ErrorIs(t, c.Start(context.Background()), ErrDestroyed)
}

func TestCoordinatorDestroyDuringInit(t *testing.T) {
	f := newCoordinatorFixture(t)
	c := f.coordinator
	require.NoError(t, c.Start(context.Background()))
	c.Destroy()

	ctx, cancel := context.WithTimeout(context.Background(), testWait)
	defer cancel()
	err := c.Wait(ctx)
	assert.True(t, errors.Is(err, ErrDestroyed))

	f.mountAll()
	assert.Never(t, f.grid.Initialized, 50*time.Millisecond, testTick)
}
