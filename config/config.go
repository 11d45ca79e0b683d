// Package config holds the runtime configuration of cursorwatch.
// Values will be taken from a config yml file or environment variables
// or both.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"
)

type ctxKey string

// LoggerCtxKey is the key under which a logger can be attached to a context.
const LoggerCtxKey ctxKey = "logger"

// Debug is set by the main command and turns on verbose logging.
var Debug bool

func GetLogLevel() slog.Level {
	if Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Config defines the overall configuration of cursorwatch.
type Config struct {
	DashboardURL        string `yaml:"dashboard_url" env:"CURSORWATCH_DASHBOARD_URL" env-default:"https://cursor.com/en-US/dashboard?tab=usage"`
	ProfileDir          string `yaml:"profile_dir" env:"CURSORWATCH_PROFILE_DIR"`
	UserAgent           string `yaml:"user_agent" env:"CURSORWATCH_USER_AGENT"`
	IntervalMinutes     int    `yaml:"interval_minutes" env:"CURSORWATCH_INTERVAL_MINUTES" env-default:"15"`
	WorkHourStart       int    `yaml:"work_hour_start" env:"CURSORWATCH_WORK_HOUR_START" env-default:"9"`
	WorkHourEnd         int    `yaml:"work_hour_end" env:"CURSORWATCH_WORK_HOUR_END" env-default:"17"`
	PageLoadWaitMS      int    `yaml:"page_load_wait_ms" env:"CURSORWATCH_PAGE_LOAD_WAIT_MS" env-default:"2000"`
	AlertOnMaxMode      bool   `yaml:"alert_on_max_mode" env:"CURSORWATCH_ALERT_ON_MAX_MODE" env-default:"true"`
	AlertOnThinkingMode bool   `yaml:"alert_on_thinking_mode" env:"CURSORWATCH_ALERT_ON_THINKING_MODE" env-default:"false"`
}

// New reads the configuration from the given path. A missing config file is
// not an error, in that case only defaults and environment variables apply.
func New(configPath string) (*Config, error) {
	var config Config
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &config); err != nil {
			return nil, err
		}
	} else {
		if err := cleanenv.ReadEnv(&config); err != nil {
			return nil, err
		}
	}
	if config.ProfileDir == "" {
		config.ProfileDir = filepath.Join(xdg.DataHome, "cursorwatch", "browser-data")
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	if c.IntervalMinutes < 1 {
		return fmt.Errorf("interval_minutes must be at least 1, got %d", c.IntervalMinutes)
	}
	if c.WorkHourStart < 0 || c.WorkHourEnd > 24 || c.WorkHourStart >= c.WorkHourEnd {
		return fmt.Errorf("invalid work hour window %d-%d", c.WorkHourStart, c.WorkHourEnd)
	}
	return nil
}

// DefaultPath returns the default location of the config file.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "cursorwatch", "config.yml")
}
