package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/ascend/internal/tracker"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "ASCEND_AI_API_KEY", "ASCEND_LOG_LEVEL", "ASCEND_DRIFT_BUFFER_SECONDS", "ASCEND_DB_PATH"} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 120, cfg.Drift.BufferSeconds)
	assert.Equal(t, 600, cfg.Drift.AlertThresholdSeconds)
	assert.Equal(t, 60, cfg.Drift.NoiseMarginSeconds)
	assert.Equal(t, 60, cfg.Timeline.LaneBufferSeconds)
	assert.Equal(t, 25, cfg.Focus.DefaultMinutes)
	assert.Equal(t, DefaultModel, cfg.AI.Model)
	assert.False(t, cfg.AIEnabled())
}

func TestLoadMissingDefaultFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, tracker.DefaultDriftConfig(), cfg.DriftSettings())
	assert.Equal(t, "ascend.db", filepath.Base(cfg.DBPath))
	assert.Equal(t, "ascend.log", filepath.Base(cfg.LogFile))
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
db_path: /tmp/custom.db
log_level: debug
drift:
  buffer_seconds: 30
timeline:
  lane_buffer_seconds: 300
focus:
  default_minutes: 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.DriftSettings().Buffer)
	assert.Equal(t, 600*time.Second, cfg.DriftSettings().AlertThreshold, "unset keys keep defaults")
	assert.Equal(t, 5*time.Minute, cfg.LaneBuffer())
	assert.Equal(t, 50*time.Minute, cfg.FocusLength())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o644))

	t.Setenv("ASCEND_LOG_LEVEL", "error")
	t.Setenv("ASCEND_DRIFT_BUFFER_SECONDS", "90")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 90, cfg.Drift.BufferSeconds)
	assert.Equal(t, "secret", cfg.AI.APIKey)
	assert.True(t, cfg.AIEnabled())
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("drift: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Focus.DefaultMinutes = 45
	cfg.AI.APIKey = "do-not-write"
	require.NoError(t, Write(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "do-not-write")
	assert.Contains(t, string(data), "default_minutes: 45")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45, loaded.Focus.DefaultMinutes)
	assert.Empty(t, loaded.AI.APIKey)
}

func TestDerivedSettingsFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Drift.BufferSeconds = 0
	cfg.Drift.AlertThresholdSeconds = -1
	cfg.Timeline.LaneBufferSeconds = -10
	cfg.Focus.DefaultMinutes = 500
	cfg.AI.TimeoutSeconds = 0

	assert.Equal(t, tracker.DefaultDriftBuffer, cfg.DriftSettings().Buffer)
	assert.Equal(t, tracker.DefaultDriftAlertThreshold, cfg.DriftSettings().AlertThreshold)
	assert.Zero(t, cfg.LaneBuffer())
	assert.Equal(t, tracker.MaxFocusDuration, cfg.FocusLength())
	assert.Equal(t, 20*time.Second, cfg.AITimeout())
}
