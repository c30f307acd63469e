package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sadopc/ascend/internal/tracker"
)

// Load reads configuration from path (or DefaultPath when empty). A missing
// default file is not an error; a missing explicit file is. ASCEND_*
// environment variables override file values, and GEMINI_API_KEY supplies
// ai.api_key.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix("ascend")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("ai.api_key", "ASCEND_AI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if explicit || !isNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("drift.buffer_seconds", d.Drift.BufferSeconds)
	v.SetDefault("drift.alert_threshold_seconds", d.Drift.AlertThresholdSeconds)
	v.SetDefault("drift.noise_margin_seconds", d.Drift.NoiseMarginSeconds)
	v.SetDefault("timeline.lane_buffer_seconds", d.Timeline.LaneBufferSeconds)
	v.SetDefault("focus.default_minutes", d.Focus.DefaultMinutes)
	v.SetDefault("ai.api_key", d.AI.APIKey)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.timeout_seconds", d.AI.TimeoutSeconds)
}

func isNotExist(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, os.ErrNotExist)
}

func (c *Config) resolvePaths() error {
	if c.DBPath != "" && c.LogFile != "" {
		return nil
	}
	dir, err := Dir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(dir, "ascend.db")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(dir, "ascend.log")
	}
	return nil
}

// DriftSettings converts the seconds-based config into detector settings.
// Non-positive values fall back to defaults.
func (c *Config) DriftSettings() tracker.DriftConfig {
	d := tracker.DefaultDriftConfig()
	if c.Drift.BufferSeconds > 0 {
		d.Buffer = seconds(c.Drift.BufferSeconds)
	}
	if c.Drift.AlertThresholdSeconds > 0 {
		d.AlertThreshold = seconds(c.Drift.AlertThresholdSeconds)
	}
	if c.Drift.NoiseMarginSeconds >= 0 {
		d.NoiseMargin = seconds(c.Drift.NoiseMarginSeconds)
	}
	return d
}

func (c *Config) LaneBuffer() time.Duration {
	if c.Timeline.LaneBufferSeconds < 0 {
		return 0
	}
	return seconds(c.Timeline.LaneBufferSeconds)
}

func (c *Config) FocusLength() time.Duration {
	return tracker.ClampFocusDuration(time.Duration(c.Focus.DefaultMinutes) * time.Minute)
}

func (c *Config) AITimeout() time.Duration {
	if c.AI.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return seconds(c.AI.TimeoutSeconds)
}

// AIEnabled reports whether an API key is configured.
func (c *Config) AIEnabled() bool {
	return strings.TrimSpace(c.AI.APIKey) != ""
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
