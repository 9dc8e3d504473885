package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/stepchef/internal/engine"
	"github.com/hammamikhairi/stepchef/internal/logger"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stepchef.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, logger.LevelNormal, cfg.Level())
	assert.Equal(t, engine.AdvanceLoop, cfg.Mode())
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := Load(missing, false)
	require.NoError(t, err)

	_, err = Load(missing, true)
	assert.Error(t, err)
}

func TestLoadFileWithExpansion(t *testing.T) {
	t.Setenv("KITCHEN_DIR", "/tmp/kitchen")
	path := writeConfig(t, `
db_path: ${KITCHEN_DIR}/recipes.db
log_level: verbose
tick_interval: 500ms
advance_mode: single
chime: false
paused_nudge_after: 2m
`)

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/kitchen/recipes.db", cfg.DBPath)
	assert.Equal(t, logger.LevelVerbose, cfg.Level())
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, engine.AdvanceSingleStep, cfg.Mode())
	assert.False(t, cfg.Chime)
	assert.Equal(t, 2*time.Minute, cfg.PausedNudgeAfter)
	assert.Equal(t, 30*time.Second, cfg.WatchInterval)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log_level: off\nadvance_mode: single\n")
	t.Setenv("STEPCHEF_LOG_LEVEL", "debug")
	t.Setenv("STEPCHEF_DB_PATH", "env.db")
	t.Setenv("STEPCHEF_WATCH_INTERVAL", "10s")

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, logger.LevelVerbose, cfg.Level())
	assert.Equal(t, "env.db", cfg.DBPath)
	assert.Equal(t, 10*time.Second, cfg.WatchInterval)
	assert.Equal(t, engine.AdvanceSingleStep, cfg.Mode())
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "tick_interval: [1, 2\n")
	_, err := Load(path, true)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty db path", func(c *Config) { c.DBPath = "" }, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"bad mode", func(c *Config) { c.AdvanceMode = "sideways" }, true},
		{"zero tick", func(c *Config) { c.TickInterval = 0 }, true},
		{"slow tick", func(c *Config) { c.TickInterval = 2 * time.Minute }, true},
		{"zero watch", func(c *Config) { c.WatchInterval = 0 }, true},
		{"negative nudge", func(c *Config) { c.PausedNudgeAfter = -time.Second }, true},
		{"nudge disabled", func(c *Config) { c.PausedNudgeAfter = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
