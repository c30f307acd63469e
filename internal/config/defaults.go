package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/ascend/internal/tracker"
)

const DefaultModel = "gemini-2.5-flash"

// DefaultConfig returns the default configuration. Paths are left empty and
// resolved by Dir at load time.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Drift: DriftConfig{
			BufferSeconds:         int(tracker.DefaultDriftBuffer / time.Second),
			AlertThresholdSeconds: int(tracker.DefaultDriftAlertThreshold / time.Second),
			NoiseMarginSeconds:    int(tracker.DefaultDriftNoiseMargin / time.Second),
		},
		Timeline: TimelineConfig{
			LaneBufferSeconds: int(tracker.DefaultLaneBuffer / time.Second),
		},
		Focus: FocusConfig{
			DefaultMinutes: int(tracker.DefaultFocusDuration / time.Minute),
		},
		AI: AIConfig{
			Model:          DefaultModel,
			TimeoutSeconds: 20,
		},
	}
}

// Dir returns ~/.config/ascend
func Dir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "ascend"), nil
}

// DefaultPath returns ~/.config/ascend/config.yaml
func DefaultPath() string {
	dir, err := Dir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "config.yaml")
}

// Write marshals cfg as YAML to path, creating parent directories. The API
// key is never written; it belongs in GEMINI_API_KEY.
func Write(cfg *Config, path string) error {
	out := *cfg
	out.AI.APIKey = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	header := []byte("# ascend configuration\n# The Gemini API key is read from GEMINI_API_KEY or ASCEND_AI_API_KEY.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
