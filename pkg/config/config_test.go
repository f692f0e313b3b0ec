package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Addr)
	}
	if cfg.StoreDriver != StoreMemory {
		t.Fatalf("expected memory store, got %q", cfg.StoreDriver)
	}
	if cfg.InitTimeout != 10*time.Second {
		t.Fatalf("expected 10s init timeout, got %v", cfg.InitTimeout)
	}
	if cfg.LayoutKey != "dashboard-layout" {
		t.Fatalf("unexpected layout key %q", cfg.LayoutKey)
	}
	if cfg.IdleTimeout != 30*time.Minute {
		t.Fatalf("expected 30m idle timeout, got %v", cfg.IdleTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DASHBOARD_STORE_DRIVER", StoreSQLite)
	t.Setenv("DASHBOARD_STORE_DSN", "file:layout.db")
	t.Setenv("DASHBOARD_SAVE_DELAY", "250ms")
	t.Setenv("DASHBOARD_LOG_FORMAT", "console")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.StoreDSN != "file:layout.db" {
		t.Fatalf("unexpected dsn %q", cfg.StoreDSN)
	}
	if cfg.SaveDelay != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", cfg.SaveDelay)
	}
}

func TestLoadRejectsMissingDSN(t *testing.T) {
	t.Setenv("DASHBOARD_STORE_DRIVER", StoreRedis)

	if _, err := Load(); err == nil {
		t.Fatal("expected redis without a dsn to fail")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DASHBOARD_STORE_DRIVER", "mongo")
	t.Setenv("DASHBOARD_STORE_DSN", "mongodb://localhost")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown driver to fail")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("DASHBOARD_CHART_THEME=dark\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("DASHBOARD_CHART_THEME") })

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.ChartTheme != "dark" {
		t.Fatalf("expected theme from env file, got %q", cfg.ChartTheme)
	}
}
