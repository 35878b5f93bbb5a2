// Package config loads the service configuration from a YAML file and
// SPOTCHART_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override, e.g.
// SPOTCHART_UPSTREAM_BASE_URL.
const EnvPrefix = "SPOTCHART"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Upstream  UpstreamConfig  `yaml:"upstream" envconfig:"UPSTREAM"`
	Chart     ChartConfig     `yaml:"chart" envconfig:"CHART"`
	ClientLog ClientLogConfig `yaml:"client_log" envconfig:"CLIENT_LOG"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Schedule  ScheduleConfig  `yaml:"schedule" envconfig:"SCHEDULE"`
}

type ServerConfig struct {
	Addr   string `yaml:"addr" envconfig:"ADDR" validate:"required"`
	WebDir string `yaml:"web_dir" envconfig:"WEB_DIR"`
}

// UpstreamConfig points at the backend serving the price endpoints.
type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
}

type ChartConfig struct {
	InitialDate         string        `yaml:"initial_date" envconfig:"INITIAL_DATE"`
	MovingAverageWindow int           `yaml:"moving_average_window" envconfig:"MOVING_AVERAGE_WINDOW" validate:"min=1"`
	ShiftIntervals      int           `yaml:"shift_intervals" envconfig:"SHIFT_INTERVALS" validate:"min=0"`
	ResizeDebounce      time.Duration `yaml:"resize_debounce" envconfig:"RESIZE_DEBOUNCE" validate:"gte=0"`
}

// ClientLogConfig controls where diagnostics are shipped. An empty URL keeps
// them local.
type ClientLogConfig struct {
	URL           string  `yaml:"url" envconfig:"URL" validate:"omitempty,url"`
	RatePerSecond float64 `yaml:"rate_per_second" envconfig:"RATE_PER_SECOND" validate:"gte=0"`
	Burst         int     `yaml:"burst" envconfig:"BURST" validate:"min=1"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
}

// ScheduleConfig holds cron specs. An empty ReloadCron disables the
// scheduled reload.
type ScheduleConfig struct {
	ReloadCron string `yaml:"reload_cron" envconfig:"RELOAD_CRON"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the YAML file at path (a missing file is not an error), applies
// environment overrides, fills defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Environment variables win over the file
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = "http://localhost:8000"
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = 15 * time.Second
	}
	if c.Chart.MovingAverageWindow == 0 {
		c.Chart.MovingAverageWindow = 9
	}
	if c.Chart.ShiftIntervals == 0 {
		c.Chart.ShiftIntervals = 96
	}
	if c.Chart.ResizeDebounce == 0 {
		c.Chart.ResizeDebounce = 120 * time.Millisecond
	}
	if c.ClientLog.RatePerSecond == 0 {
		c.ClientLog.RatePerSecond = 5
	}
	if c.ClientLog.Burst == 0 {
		c.ClientLog.Burst = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
