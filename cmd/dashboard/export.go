package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-analytics-dashboard/components/dashboard"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-analytics-dashboard/pkg/config"
)

type exportCmd struct {
	Format string `default:"csv" enum:"csv,pdf" help:"Report format."`
	Range  string `default:"30d" help:"Date range: 7d, 30d, 90d or all."`
	Out    string `type:"path" help:"Output file or directory (defaults to the report file name in the working directory)."`
}

func (cmd *exportCmd) Run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	dateRange, err := dashboard.ParseDateRange(cmd.Range)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	file, err := renderReport(ctx, a.service, dateRange, cmd.Format, cfg.InitTimeout)
	if err != nil {
		return err
	}
	target := cmd.Out
	if target == "" {
		target = file.Name
	} else if info, err := os.Stat(target); err == nil && info.IsDir() {
		target = filepath.Join(target, file.Name)
	}
	if err := os.WriteFile(target, file.Body, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Info().Str("file", target).Str("range", string(dateRange)).Msg("report written")
	return nil
}

// renderReport runs one headless session to Interactive and renders its view.
func renderReport(ctx context.Context, service *dashboard.Service, dateRange dashboard.DateRange, format string, timeout time.Duration) (httpapi.ExportFile, error) {
	session, err := service.Activate(ctx, dashboard.ActivateRequest{DateRange: dateRange})
	if err != nil {
		return httpapi.ExportFile{}, err
	}
	defer service.Deactivate(ctx, session.ID)

	elements := []string{dashboard.GridContainerID}
	for _, id := range service.Catalog().ChartElements() {
		elements = append(elements, id)
	}
	if err := service.Mount(ctx, session.ID, elements); err != nil {
		return httpapi.ExportFile{}, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := session.Coordinator.Wait(waitCtx); err != nil {
		return httpapi.ExportFile{}, fmt.Errorf("dashboard did not become ready: %w", err)
	}
	state, err := service.State(ctx, session.ID)
	if err != nil {
		return httpapi.ExportFile{}, err
	}
	return httpapi.RenderExport(state, format)
}
