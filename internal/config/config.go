package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Hue             HueConfig      `yaml:"hue"`
	GSI             GSIConfig      `yaml:"gsi"`
	Database        DatabaseConfig `yaml:"database"`
	Log             LogConfig      `yaml:"log"`
	EventBus        EventBusConfig `yaml:"eventbus"`
	Feed            FeedConfig     `yaml:"feed"`
	Script          string         `yaml:"script"`           // Optional Lua file overriding effect programs
	ShutdownTimeout Duration       `yaml:"shutdown_timeout"` // General shutdown timeout for graceful stops
}

// HueConfig contains Hue bridge connection settings
type HueConfig struct {
	Bridge     string   `yaml:"bridge"`     // Empty = discover on the local network
	Token      string   `yaml:"token"`      // Empty = use the token stored by `gsilight pair`
	Lights     []string `yaml:"lights"`     // Light IDs to control, empty = all lights
	DeviceType string   `yaml:"device_type"` // Application name registered while pairing
	Timeout    Duration `yaml:"timeout"`    // HTTP timeout for Hue API requests

	RateLimitRPS float64 `yaml:"rate_limit_rps"` // Light commands per second across all lights

	// Reconnect settings
	MinRetryBackoff Duration `yaml:"min_retry_backoff"` // Minimum backoff between reconnects (default: 1s)
	MaxRetryBackoff Duration `yaml:"max_retry_backoff"` // Maximum backoff between reconnects (default: 2m)
	RetryMultiplier float64  `yaml:"retry_multiplier"`  // Backoff multiplier (default: 2.0)
}

// GSIConfig contains settings for the game state listener
type GSIConfig struct {
	Host      string   `yaml:"host"`
	Port      int      `yaml:"port"`
	AuthToken string   `yaml:"auth_token"` // Must match auth.token in the game's cfg file, empty = accept all
	QueueSize int      `yaml:"queue_size"` // Snapshots waiting while an effect runs
	MaxBody   ByteSize `yaml:"max_body"`   // Maximum payload size, e.g. 1MiB
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	Colors  bool   `yaml:"colors"`
	UseJSON bool   `yaml:"json"`
}

// EventBusConfig contains event bus settings
type EventBusConfig struct {
	Workers   int `yaml:"workers"`    // Number of worker goroutines (default: 1, keeps order)
	QueueSize int `yaml:"queue_size"` // Event queue size (default: 100)
}

// FeedConfig contains live event feed settings
type FeedConfig struct {
	Enabled    bool `yaml:"enabled"`
	SendBuffer int  `yaml:"send_buffer"` // Events buffered per client
}

// GetWorkers returns worker count with default
func (c *EventBusConfig) GetWorkers() int {
	if c.Workers <= 0 {
		return 1
	}
	return c.Workers
}

// GetQueueSize returns queue size with default
func (c *EventBusConfig) GetQueueSize() int {
	if c.QueueSize <= 0 {
		return 100
	}
	return c.QueueSize
}

// Addr returns the listen address of the GSI server
func (c *GSIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetLevel returns the configured log level
func (c *LogConfig) GetLevel() string {
	return c.Level
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// ByteSize is a size in bytes that accepts plain numbers or units like "512KB" and "1MiB"
type ByteSize int64

// UnmarshalYAML implements yaml.Unmarshaler for ByteSize
func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := humanize.ParseBytes(s)
	if err != nil {
		return err
	}
	*b = ByteSize(parsed)
	return nil
}

// String formats the size with binary units
func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// Load reads and parses the configuration file.
// A missing file is not an error: defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return Parse(data)
}

// Parse parses YAML configuration and applies defaults
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./gsilight.sqlite"
	}

	// Hue defaults
	if cfg.Hue.Token == "" {
		cfg.Hue.Token = os.Getenv("HUE_USERNAME")
	}
	if cfg.Hue.Bridge == "" {
		cfg.Hue.Bridge = os.Getenv("HUE_BRIDGE_IP")
	}
	if cfg.Hue.DeviceType == "" {
		cfg.Hue.DeviceType = "gsilight#daemon"
	}
	if cfg.Hue.Timeout == 0 {
		cfg.Hue.Timeout = Duration(5 * time.Second)
	}
	if cfg.Hue.RateLimitRPS == 0 {
		cfg.Hue.RateLimitRPS = 10.0 // 10 requests per second
	}
	if cfg.Hue.MinRetryBackoff == 0 {
		cfg.Hue.MinRetryBackoff = Duration(1 * time.Second)
	}
	if cfg.Hue.MaxRetryBackoff == 0 {
		cfg.Hue.MaxRetryBackoff = Duration(2 * time.Minute)
	}
	if cfg.Hue.RetryMultiplier == 0 {
		cfg.Hue.RetryMultiplier = 2.0
	}

	// GSI defaults
	if cfg.GSI.Host == "" {
		cfg.GSI.Host = "127.0.0.1"
	}
	if cfg.GSI.Port == 0 {
		cfg.GSI.Port = 3000
	}
	if cfg.GSI.QueueSize == 0 {
		cfg.GSI.QueueSize = 16
	}
	if cfg.GSI.MaxBody == 0 {
		cfg.GSI.MaxBody = 1 << 20 // 1MiB
	}

	// General shutdown timeout
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = Duration(5 * time.Second)
	}
}

// Validate checks values that have no sensible default
func (cfg *Config) Validate() error {
	if cfg.GSI.Port < 1 || cfg.GSI.Port > 65535 {
		return fmt.Errorf("gsi.port out of range: %d", cfg.GSI.Port)
	}
	if cfg.GSI.QueueSize < 1 {
		return fmt.Errorf("gsi.queue_size must be positive: %d", cfg.GSI.QueueSize)
	}
	if cfg.GSI.MaxBody < 0 {
		return fmt.Errorf("gsi.max_body must not be negative: %d", cfg.GSI.MaxBody)
	}
	if cfg.Hue.RateLimitRPS < 0 {
		return fmt.Errorf("hue.rate_limit_rps must not be negative: %v", cfg.Hue.RateLimitRPS)
	}
	if cfg.Hue.RetryMultiplier < 1 {
		return fmt.Errorf("hue.retry_multiplier must be at least 1: %v", cfg.Hue.RetryMultiplier)
	}
	return nil
}

// envPattern matches ${VAR} or ${VAR:default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	return envPattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := envPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
