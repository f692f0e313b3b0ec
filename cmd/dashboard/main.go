package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-analytics-dashboard/components/dashboard"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/gorouter"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-analytics-dashboard/pkg/analytics"
	"github.com/goliatone/go-analytics-dashboard/pkg/config"
	"github.com/goliatone/go-analytics-dashboard/pkg/kvstore"
	"github.com/goliatone/go-analytics-dashboard/pkg/logger"
	"github.com/goliatone/go-analytics-dashboard/pkg/metrics"
)

type cli struct {
	EnvFile []string `name:"env-file" default:".env" help:"Optional dotenv files loaded before the environment."`

	Serve  serveCmd  `cmd:"" default:"1" help:"Serve the dashboard over HTTP."`
	Export exportCmd `cmd:"" help:"Render a CSV or PDF report for a date range."`
}

func main() {
	var app cli
	kctx := kong.Parse(&app,
		kong.Name("dashboard"),
		kong.Description("Analytics dashboard server and report exporter."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	cfg, err := config.Load(app.EnvFile...)
	kctx.FatalIfErrorf(err)
	log := logger.New(logger.Options{
		Service: "analytics-dashboard",
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  os.Stderr,
	})
	err = kctx.Run(cfg, log)
	kctx.FatalIfErrorf(err)
}

// app holds the wired dashboard collaborators.
type app struct {
	service   *dashboard.Service
	events    *dashboard.EventBroadcaster
	telemetry dashboard.Telemetry
	store     kvstore.Store
	registry  *prometheus.Registry
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	store, err := kvstore.Open(ctx, cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return nil, fmt.Errorf("open layout store: %w", err)
	}
	var provider dashboard.DataProvider
	if cfg.FixturePath != "" {
		provider, err = analytics.NewFixtureProvider(cfg.FixturePath, analytics.WithProviderLogger(log))
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	telemetry := dashboard.MultiTelemetry{
		dashboard.NewLoggerTelemetry(log),
		metrics.NewTelemetry(registry),
	}
	events := dashboard.NewEventBroadcaster()

	var chartOptions []dashboard.EChartsAdapterOption
	if cfg.ChartTheme != "" {
		chartOptions = append(chartOptions, dashboard.WithChartTheme(cfg.ChartTheme))
	}
	service := dashboard.NewService(dashboard.Options{
		Provider:          provider,
		Store:             store,
		LayoutKey:         cfg.LayoutKey,
		ChartOptions:      chartOptions,
		Hook:              events,
		Telemetry:         telemetry,
		Logger:            &log,
		BasePath:          cfg.BasePath,
		InitTimeout:       cfg.InitTimeout,
		SaveDelay:         cfg.SaveDelay,
		IndicatorDuration: cfg.IndicatorDuration,
		IdleTimeout:       cfg.IdleTimeout,
	})
	return &app{
		service:   service,
		events:    events,
		telemetry: telemetry,
		store:     store,
		registry:  registry,
	}, nil
}

func (a *app) Close(ctx context.Context) error {
	a.service.Close(ctx)
	return a.store.Close()
}

type serveCmd struct{}

func (cmd *serveCmd) Run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("template renderer: %w", err)
	}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  a.service,
		Renderer: renderer,
	})

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		Sessions:   a.service,
		API:        httpapi.NewCommandExecutor(a.service, a.telemetry),
		Events:     a.events,
		BasePath:   cfg.BasePath,
	}); err != nil {
		return fmt.Errorf("register routes: %w", err)
	}

	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errs := make(chan error, 2)
	go a.service.RunReaper(ctx, 0)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("base_path", cfg.BasePath).Msg("dashboard listening")
		errs <- server.Serve(cfg.Addr)
	}()
	if cfg.MetricsAddr != "" {
		go func() {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errs:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	shutdownErr := errors.Join(
		server.Shutdown(shutdownCtx),
		metricsServer.Shutdown(shutdownCtx),
		a.Close(shutdownCtx),
	)
	return errors.Join(runErr, shutdownErr)
}
