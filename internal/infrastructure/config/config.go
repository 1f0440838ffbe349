package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Switchboard.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Channels  []ChannelConfig `yaml:"channels"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	History   HistoryConfig   `yaml:"history"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DeviceConfig identifies this switchboard instance.
// The ID is used in MQTT topics and as the broker client ID,
// so it must be unique per device on a shared broker.
type DeviceConfig struct {
	ID     string `yaml:"id"`
	Driver string `yaml:"driver"` // "gpio" or "memory"
}

// ChannelConfig declares one controllable output.
// The channel table is fixed at startup; names are matched case-insensitively.
type ChannelConfig struct {
	Name string `yaml:"name"`
	Pin  int    `yaml:"pin"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	TLS  bool   `yaml:"tls"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig selects the reconnect strategy for the connection manager.
//
// Strategy "fixed" retries every Delay seconds forever (the default).
// Strategy "exponential" starts at Delay seconds and doubles up to
// MaxDelay, with jitter.
type MQTTReconnectConfig struct {
	Strategy string `yaml:"strategy"`
	Delay    int    `yaml:"delay"`
	MaxDelay int    `yaml:"max_delay"`
}

// SnapshotConfig bounds the encoded state snapshot.
// A snapshot that would exceed MaxBytes is abandoned rather than truncated.
type SnapshotConfig struct {
	MaxBytes int `yaml:"max_bytes"`
}

// HistoryConfig contains the optional SQLite snapshot history settings.
type HistoryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// TelemetryConfig contains the optional InfluxDB telemetry settings.
type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SWITCHBOARD_SECTION_KEY
// For example: SWITCHBOARD_MQTT_HOST, SWITCHBOARD_DEVICE_ID
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
//
// The channel table has no default: it must come from the config file,
// since the pin wiring is installation-specific.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			ID:     "switchboard",
			Driver: "gpio",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				Strategy: "fixed",
				Delay:    5,
				MaxDelay: 60,
			},
		},
		Snapshot: SnapshotConfig{
			MaxBytes: 256,
		},
		History: HistoryConfig{
			Enabled:     false,
			Path:        "./data/switchboard.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Telemetry: TelemetryConfig{
			Enabled:       false,
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SWITCHBOARD_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Device
	if v := os.Getenv("SWITCHBOARD_DEVICE_ID"); v != "" {
		cfg.Device.ID = v
	}
	if v := os.Getenv("SWITCHBOARD_DEVICE_DRIVER"); v != "" {
		cfg.Device.Driver = v
	}

	// MQTT
	if v := os.Getenv("SWITCHBOARD_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SWITCHBOARD_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("SWITCHBOARD_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SWITCHBOARD_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// History
	if v := os.Getenv("SWITCHBOARD_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}

	// Telemetry
	if v := os.Getenv("SWITCHBOARD_TELEMETRY_TOKEN"); v != "" {
		cfg.Telemetry.Token = v
	}
}

// Valid QoS bounds for MQTT.
const (
	minQoS = 0
	maxQoS = 2
)

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Device validation
	if c.Device.ID == "" {
		errs = append(errs, "device.id is required")
	}
	switch c.Device.Driver {
	case "gpio", "memory":
	default:
		errs = append(errs, fmt.Sprintf("device.driver %q is not recognised (gpio, memory)", c.Device.Driver))
	}

	// Channel table validation: at least one channel, names unique
	// case-insensitively (names are matched case-insensitively at runtime).
	if len(c.Channels) == 0 {
		errs = append(errs, "at least one channel is required")
	}
	seen := make(map[string]bool, len(c.Channels))
	for i, ch := range c.Channels {
		if ch.Name == "" {
			errs = append(errs, fmt.Sprintf("channels[%d].name is required", i))
			continue
		}
		key := strings.ToLower(ch.Name)
		if seen[key] {
			errs = append(errs, fmt.Sprintf("channels[%d].name %q duplicates another channel (names are case-insensitive)", i, ch.Name))
		}
		seen[key] = true
		if ch.Pin < 0 {
			errs = append(errs, fmt.Sprintf("channels[%d].pin must not be negative", i))
		}
	}

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port <= 0 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, fmt.Sprintf("mqtt.broker.port %d is out of range", c.MQTT.Broker.Port))
	}
	if c.MQTT.QoS < minQoS || c.MQTT.QoS > maxQoS {
		errs = append(errs, fmt.Sprintf("mqtt.qos %d is out of range (0-2)", c.MQTT.QoS))
	}
	switch c.MQTT.Reconnect.Strategy {
	case "fixed", "exponential":
	default:
		errs = append(errs, fmt.Sprintf("mqtt.reconnect.strategy %q is not recognised (fixed, exponential)", c.MQTT.Reconnect.Strategy))
	}
	if c.MQTT.Reconnect.Delay <= 0 {
		errs = append(errs, "mqtt.reconnect.delay must be positive")
	}
	if c.MQTT.Reconnect.Strategy == "exponential" && c.MQTT.Reconnect.MaxDelay < c.MQTT.Reconnect.Delay {
		errs = append(errs, "mqtt.reconnect.max_delay must be >= mqtt.reconnect.delay")
	}

	// Snapshot validation
	if c.Snapshot.MaxBytes <= 0 {
		errs = append(errs, "snapshot.max_bytes must be positive")
	}

	// History validation
	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, "history.path is required when history is enabled")
	}

	// Telemetry validation
	if c.Telemetry.Enabled {
		if c.Telemetry.URL == "" {
			errs = append(errs, "telemetry.url is required when telemetry is enabled")
		}
		if c.Telemetry.Org == "" {
			errs = append(errs, "telemetry.org is required when telemetry is enabled")
		}
		if c.Telemetry.Bucket == "" {
			errs = append(errs, "telemetry.bucket is required when telemetry is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
