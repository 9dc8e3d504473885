// Package config loads stepchef settings. Values come from built-in
// defaults, then an optional YAML file, then STEPCHEF_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/stepchef/internal/engine"
	"github.com/hammamikhairi/stepchef/internal/logger"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STEPCHEF_"

// DefaultDir holds the database and log file unless configured otherwise.
const DefaultDir = ".stepchef"

// Config holds all runtime settings.
type Config struct {
	DBPath           string        `yaml:"db_path" env:"DB_PATH"`
	LogLevel         string        `yaml:"log_level" env:"LOG_LEVEL"`
	LogFile          string        `yaml:"log_file" env:"LOG_FILE"`
	TickInterval     time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`
	AdvanceMode      string        `yaml:"advance_mode" env:"ADVANCE_MODE"`
	Chime            bool          `yaml:"chime" env:"CHIME"`
	WatchInterval    time.Duration `yaml:"watch_interval" env:"WATCH_INTERVAL"`
	PausedNudgeAfter time.Duration `yaml:"paused_nudge_after" env:"PAUSED_NUDGE_AFTER"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DBPath:           filepath.Join(DefaultDir, "stepchef.db"),
		LogLevel:         "normal",
		LogFile:          filepath.Join(DefaultDir, "stepchef.log"),
		TickInterval:     time.Second,
		AdvanceMode:      engine.AdvanceLoop.String(),
		Chime:            true,
		WatchInterval:    30 * time.Second,
		PausedNudgeAfter: 5 * time.Minute,
	}
}

// Load builds the configuration. path may be empty, and a missing file at
// path is only an error when required is set. ${VAR} references in the file
// are expanded before parsing.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !required:
		default:
			return Config{}, fmt.Errorf("config: load: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("config: db_path is required")
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := engine.ParseAdvanceMode(c.AdvanceMode); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("config: tick_interval must be positive")
	}
	if c.TickInterval > time.Minute {
		return fmt.Errorf("config: tick_interval %s is longer than a minute", c.TickInterval)
	}
	if c.WatchInterval <= 0 {
		return fmt.Errorf("config: watch_interval must be positive")
	}
	if c.PausedNudgeAfter < 0 {
		return fmt.Errorf("config: paused_nudge_after must not be negative")
	}
	return nil
}

// Level returns the parsed log level. Call after Validate.
func (c Config) Level() logger.Level {
	l, _ := logger.ParseLevel(c.LogLevel)
	return l
}

// Mode returns the parsed advance mode. Call after Validate.
func (c Config) Mode() engine.AdvanceMode {
	m, _ := engine.ParseAdvanceMode(c.AdvanceMode)
	return m
}
