package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Cozytouch bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Bridge        BridgeConfig        `yaml:"bridge"`
	Database      DatabaseConfig      `yaml:"database"`
	MQTT          MQTTConfig          `yaml:"mqtt"`
	HomeAssistant HomeAssistantConfig `yaml:"homeassistant"`
	Cozytouch     CozytouchConfig     `yaml:"cozytouch"`
	API           APIConfig           `yaml:"api"`
	WebSocket     WebSocketConfig     `yaml:"websocket"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// BridgeConfig identifies this bridge instance.
type BridgeConfig struct {
	// ID is used as the discovery node_id and in the bridge status topic.
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
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
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// HomeAssistantConfig contains MQTT discovery settings.
type HomeAssistantConfig struct {
	// DiscoveryPrefix is the root of discovery config topics.
	// Default: "homeassistant"
	DiscoveryPrefix string `yaml:"discovery_prefix"`

	// StatusTopic carries Home Assistant's birth/will messages. Discovery
	// is republished whenever "online" is received here.
	StatusTopic string `yaml:"status_topic"`

	// StateTopicPrefix is the root of entity state and availability topics.
	StateTopicPrefix string `yaml:"state_topic_prefix"`
}

// CozytouchConfig contains the config entry and snapshot feed settings.
type CozytouchConfig struct {
	// EntryID is the config entry identifier stamped on every registered entity.
	EntryID string `yaml:"entry_id"`

	// Title is the human-readable config entry name (usually the account).
	Title string `yaml:"title"`

	// SnapshotTopic is where the external poller publishes coordinator
	// snapshots as JSON.
	SnapshotTopic string `yaml:"snapshot_topic"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	Auth     APIAuthConfig    `yaml:"auth"`
}

// APIAuthConfig contains bearer token settings for the API.
// An empty secret leaves the API unauthenticated.
type APIAuthConfig struct {
	Secret string `yaml:"secret"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
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
// Environment variables follow the pattern: COZYTOUCH_SECTION_KEY
// For example: COZYTOUCH_DATABASE_PATH, COZYTOUCH_MQTT_HOST
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
func defaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			ID:   "cozytouch",
			Name: "Cozytouch Bridge",
		},
		Database: DatabaseConfig{
			Path:        "./data/cozytouch.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "cozytouch-bridge",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		HomeAssistant: HomeAssistantConfig{
			DiscoveryPrefix:  "homeassistant",
			StatusTopic:      "homeassistant/status",
			StateTopicPrefix: "cozytouch",
		},
		Cozytouch: CozytouchConfig{
			EntryID:       "default",
			Title:         "Cozytouch",
			SnapshotTopic: "cozytouch/coordinator/snapshot",
		},
		API: APIConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8099,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COZYTOUCH_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("COZYTOUCH_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("COZYTOUCH_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("COZYTOUCH_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("COZYTOUCH_DISCOVERY_PREFIX"); v != "" {
		cfg.HomeAssistant.DiscoveryPrefix = v
	}

	if v := os.Getenv("COZYTOUCH_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("COZYTOUCH_API_SECRET"); v != "" {
		cfg.API.Auth.Secret = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Bridge.ID == "" {
		errs = append(errs, "bridge.id is required")
	} else if strings.ContainsAny(c.Bridge.ID, "/+# ") {
		errs = append(errs, "bridge.id must not contain '/', '+', '#' or spaces")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.HomeAssistant.DiscoveryPrefix == "" {
		errs = append(errs, "homeassistant.discovery_prefix is required")
	}
	if c.HomeAssistant.StateTopicPrefix == "" {
		errs = append(errs, "homeassistant.state_topic_prefix is required")
	}

	if c.Cozytouch.EntryID == "" {
		errs = append(errs, "cozytouch.entry_id is required")
	}
	if c.Cozytouch.SnapshotTopic == "" {
		errs = append(errs, "cozytouch.snapshot_topic is required")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if s := c.API.Auth.Secret; s != "" && len(s) < minAPISecretLength {
		errs = append(errs, fmt.Sprintf("api.auth.secret must be at least %d characters", minAPISecretLength))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// minAPISecretLength is the shortest accepted HMAC signing secret.
const minAPISecretLength = 32

// GetReadTimeout returns the API read timeout as a Duration.
func (c APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.Idle) * time.Second
}
