package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every variable, e.g. DASHBOARD_ADDR.
const EnvPrefix = "DASHBOARD"

// Store drivers accepted by StoreDriver.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds the runtime settings for the dashboard server and tools.
type Config struct {
	Addr              string        `envconfig:"ADDR" default:":8080" validate:"required"`
	MetricsAddr       string        `envconfig:"METRICS_ADDR" default:":9090"`
	BasePath          string        `envconfig:"BASE_PATH" default:"/admin" validate:"required,startswith=/"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFormat         string        `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`
	StoreDriver       string        `envconfig:"STORE_DRIVER" default:"memory" validate:"oneof=memory file redis sqlite postgres"`
	StoreDSN          string        `envconfig:"STORE_DSN" validate:"required_unless=StoreDriver memory"`
	LayoutKey         string        `envconfig:"LAYOUT_KEY" default:"dashboard-layout" validate:"required"`
	InitTimeout       time.Duration `envconfig:"INIT_TIMEOUT" default:"10s" validate:"gt=0"`
	SaveDelay         time.Duration `envconfig:"SAVE_DELAY" default:"300ms" validate:"gte=0"`
	IndicatorDuration time.Duration `envconfig:"INDICATOR_DURATION" default:"2s" validate:"gte=0"`
	IdleTimeout       time.Duration `envconfig:"IDLE_TIMEOUT" default:"30m" validate:"gt=0"`
	ChartTheme        string        `envconfig:"CHART_THEME" default:"white"`
	FixturePath       string        `envconfig:"FIXTURE_PATH"`
}

var validate = validator.New()

// Load reads the optional env files, then the process environment, and
// validates the result. Missing env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid config: %s failed %s", first.Field(), first.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
