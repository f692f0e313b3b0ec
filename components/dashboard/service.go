package dashboard

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Provider          DataProvider
	Catalog           *WidgetCatalog
	Store             KVStore
	LayoutKey         string
	ChartOptions      []EChartsAdapterOption
	GridFactory       func(*WidgetCatalog) GridEngine
	Hook              EventHook
	Telemetry         Telemetry
	Logger            *zerolog.Logger
	BasePath          string
	InitTimeout       time.Duration
	SaveDelay         time.Duration
	IndicatorDuration time.Duration
	IdleTimeout       time.Duration
}

// DefaultIdleTimeout is how long a session may go without a request before the
// reaper deactivates it.
const DefaultIdleTimeout = 30 * time.Minute

// Session is one activation of the dashboard view.
type Session struct {
	ID          string
	Coordinator *Coordinator
	Shell       *Shell
	Commands    *CommandBus
	CreatedAt   time.Time
	cancel      context.CancelFunc
	lastSeen    atomic.Int64
}

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

// LastSeen returns the time of the latest request routed to the session.
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()).UTC() }

// ActivateRequest carries what the client knows when the view opens.
type ActivateRequest struct {
	ViewportWidth int
	DateRange     DateRange
}

// Service activates dashboard sessions and routes user actions to them.
type Service struct {
	opts     Options
	layout   *LayoutRepository
	adapters []ChartAdapter
	logger   zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Provider == nil {
		opts.Provider = NewStaticDataProvider(Snapshot{})
	}
	if opts.Catalog == nil {
		opts.Catalog, _ = NewWidgetCatalog()
	}
	if opts.Store == nil {
		opts.Store = NewMemoryKVStore()
	}
	if opts.GridFactory == nil {
		opts.GridFactory = func(c *WidgetCatalog) GridEngine { return c.NewGrid() }
	}
	if opts.Hook == nil {
		opts.Hook = noopEventHook{}
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	opts.BasePath = strings.TrimRight(opts.BasePath, "/")
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	chartOptions := append([]EChartsAdapterOption{WithChartCache(NewChartCache(5 * time.Minute))}, opts.ChartOptions...)
	return &Service{
		opts: opts,
		layout: NewLayoutRepository(opts.Store,
			WithLayoutKey(opts.LayoutKey),
			WithRepositoryLogger(logger),
			WithRepositoryTelemetry(opts.Telemetry),
		),
		adapters: DefaultChartAdapters(chartOptions...),
		logger:   logger,
		sessions: map[string]*Session{},
	}
}

// Layout exposes the persisted layout slot.
func (s *Service) Layout() *LayoutRepository { return s.layout }

// Catalog returns the widget catalog.
func (s *Service) Catalog() *WidgetCatalog { return s.opts.Catalog }

// BasePath returns the configured route prefix.
func (s *Service) BasePath() string { return s.opts.BasePath }

// Activate opens a new session and starts its coordinator.
func (s *Service) Activate(ctx context.Context, req ActivateRequest) (*Session, error) {
	id := uuid.NewString()
	bus := NewCommandBus()
	logger := s.logger
	coordinator := NewCoordinator(CoordinatorOptions{
		SessionID:         id,
		Provider:          s.opts.Provider,
		Grid:              s.opts.GridFactory(s.opts.Catalog),
		Adapters:          s.adapters,
		ChartElements:     s.opts.Catalog.ChartElements(),
		Layout:            s.layout,
		Commands:          bus,
		Hook:              s.opts.Hook,
		Telemetry:         s.opts.Telemetry,
		Logger:            &logger,
		InitTimeout:       s.opts.InitTimeout,
		SaveDelay:         s.opts.SaveDelay,
		IndicatorDuration: s.opts.IndicatorDuration,
		ViewportWidth:     req.ViewportWidth,
		DateRange:         req.DateRange,
	})
	shellCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	shell := NewShell(DefaultMenu(s.opts.BasePath))
	shell.Navigate(req.ViewportWidth)
	shell.Listen(shellCtx, bus)

	session := &Session{
		ID:          id,
		Coordinator: coordinator,
		Shell:       shell,
		Commands:    bus,
		CreatedAt:   time.Now().UTC(),
		cancel:      cancel,
	}
	session.touch(session.CreatedAt)
	if err := coordinator.Start(ctx); err != nil {
		cancel()
		shell.Destroy()
		bus.Close()
		return nil, err
	}

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	s.opts.Telemetry.Record(ctx, "dashboard.session.activate", map[string]any{"session": id})
	s.logger.Info().Str("session", id).Msg("dashboard session activated")
	return session, nil
}

// Session looks up an active session.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	session.touch(time.Now())
	return session, nil
}

// Sessions lists active session ids.
func (s *Service) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Deactivate tears the session down. The persisted layout is kept.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	session.Coordinator.Destroy()
	session.Shell.Destroy()
	session.cancel()
	session.Commands.Close()
	s.opts.Telemetry.Record(ctx, "dashboard.session.deactivate", map[string]any{"session": id})
	s.logger.Info().Str("session", id).Msg("dashboard session deactivated")
	return nil
}

// Reap deactivates sessions idle for longer than the idle timeout at now and
// returns their ids. Clients that vanish without a deactivate request are
// collected here, Failed sessions included.
func (s *Service) Reap(ctx context.Context, now time.Time) []string {
	cutoff := now.Add(-s.opts.IdleTimeout)
	s.mu.RLock()
	var idle []string
	for id, session := range s.sessions {
		if session.LastSeen().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	s.mu.RUnlock()
	slices.Sort(idle)

	reaped := idle[:0]
	for _, id := range idle {
		if err := s.Deactivate(ctx, id); err != nil {
			continue
		}
		s.logger.Info().Str("session", id).Dur("idle_timeout", s.opts.IdleTimeout).Msg("idle dashboard session reaped")
		reaped = append(reaped, id)
	}
	if len(reaped) > 0 {
		s.opts.Telemetry.Record(ctx, "dashboard.session.reaped", map[string]any{"sessions": len(reaped)})
	}
	return reaped
}

// RunReaper calls Reap every interval until ctx ends. A non-positive interval
// uses a quarter of the idle timeout.
func (s *Service) RunReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.opts.IdleTimeout / 4
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Reap(ctx, now)
		}
	}
}

// Close deactivates every session.
func (s *Service) Close(ctx context.Context) {
	for _, id := range s.Sessions() {
		_ = s.Deactivate(ctx, id)
	}
}

// Dispatch publishes a chrome command on the session bus.
func (s *Service) Dispatch(ctx context.Context, id string, cmd LayoutCommand) error {
	if !cmd.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	session, err := s.Session(id)
	if err != nil {
		return err
	}
	session.Commands.Publish(cmd)
	s.opts.Telemetry.Record(ctx, "dashboard.command.dispatch", map[string]any{
		"session": id,
		"command": string(cmd),
	})
	return nil
}

// Mount records drawing surface elements rendered by the client.
func (s *Service) Mount(_ context.Context, id string, elements []string) error {
	session, err := s.Session(id)
	if err != nil {
		return err
	}
	session.Coordinator.Surface().Mount(elements...)
	return nil
}

// ToggleEditMode flips edit mode for the session.
func (s *Service) ToggleEditMode(_ context.Context, id string) (bool, error) {
	session, err := s.Session(id)
	if err != nil {
		return false, err
	}
	return session.Coordinator.ToggleEditMode(), nil
}

// SaveLayout writes the session grid to the persisted slot.
func (s *Service) SaveLayout(ctx context.Context, id string) error {
	session, err := s.Session(id)
	if err != nil {
		return err
	}
	return session.Coordinator.SaveLayout(ctx)
}

// ApplyLayoutChange forwards a settled drag or resize.
func (s *Service) ApplyLayoutChange(_ context.Context, id string, entries []WidgetLayoutEntry) error {
	session, err := s.Session(id)
	if err != nil {
		return err
	}
	return session.Coordinator.ApplyLayoutChange(entries)
}

// ChangeDateRange re-filters the session. Unknown ranges report false.
func (s *Service) ChangeDateRange(_ context.Context, id string, r DateRange) (bool, error) {
	session, err := s.Session(id)
	if err != nil {
		return false, err
	}
	return session.Coordinator.ChangeDateRange(r), nil
}

// SortTable sorts the session activity table.
func (s *Service) SortTable(_ context.Context, id, column string) (SortState, error) {
	session, err := s.Session(id)
	if err != nil {
		return SortState{}, err
	}
	return session.Coordinator.SortTable(column)
}

// PageAction names a relative pagination move.
type PageAction string

const (
	PageNext     PageAction = "next"
	PagePrevious PageAction = "previous"
)

// Paginate moves the session table by action, or to page when action is empty.
func (s *Service) Paginate(_ context.Context, id string, action PageAction, page int) (int, error) {
	session, err := s.Session(id)
	if err != nil {
		return 0, err
	}
	switch action {
	case PageNext:
		return session.Coordinator.NextPage(), nil
	case PagePrevious:
		return session.Coordinator.PrevPage(), nil
	case "":
		return session.Coordinator.GoToPage(page), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPageAction, action)
	}
}

// Resize reports a viewport width change to the session.
func (s *Service) Resize(_ context.Context, id string, width int) ([]string, error) {
	session, err := s.Session(id)
	if err != nil {
		return nil, err
	}
	return session.Coordinator.Resize(width), nil
}

// SessionState is the read model served to transports.
type SessionState struct {
	DashboardView
	SidebarOpen bool       `json:"sidebar_open"`
	Menu        []MenuItem `json:"menu"`
}

// State returns the read model for a session.
func (s *Service) State(_ context.Context, id string) (SessionState, error) {
	session, err := s.Session(id)
	if err != nil {
		return SessionState{}, err
	}
	return SessionState{
		DashboardView: session.Coordinator.View(),
		SidebarOpen:   session.Shell.SidebarOpen(),
		Menu:          session.Shell.Menu(),
	}, nil
}
