package config

// Config is the on-disk configuration. Values flow defaults -> file -> env.
type Config struct {
	DBPath   string `yaml:"db_path" mapstructure:"db_path"`
	LogFile  string `yaml:"log_file" mapstructure:"log_file"`
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`

	Drift    DriftConfig    `yaml:"drift" mapstructure:"drift"`
	Timeline TimelineConfig `yaml:"timeline" mapstructure:"timeline"`
	Focus    FocusConfig    `yaml:"focus" mapstructure:"focus"`
	AI       AIConfig       `yaml:"ai" mapstructure:"ai"`
}

// DriftConfig tunes idle detection.
type DriftConfig struct {
	BufferSeconds         int `yaml:"buffer_seconds" mapstructure:"buffer_seconds"`
	AlertThresholdSeconds int `yaml:"alert_threshold_seconds" mapstructure:"alert_threshold_seconds"`
	NoiseMarginSeconds    int `yaml:"noise_margin_seconds" mapstructure:"noise_margin_seconds"`
}

type TimelineConfig struct {
	LaneBufferSeconds int `yaml:"lane_buffer_seconds" mapstructure:"lane_buffer_seconds"`
}

type FocusConfig struct {
	DefaultMinutes int `yaml:"default_minutes" mapstructure:"default_minutes"`
}

// AIConfig configures subtask suggestions. An empty APIKey disables them.
type AIConfig struct {
	APIKey         string `yaml:"api_key" mapstructure:"api_key"`
	Model          string `yaml:"model" mapstructure:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}
