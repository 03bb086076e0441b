package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
bridge:
  id: "lounge-bridge"
database:
  path: "/tmp/test.db"
mqtt:
  broker:
    host: "broker.local"
    port: 1884
    client_id: "test-client"
  qos: 0
homeassistant:
  discovery_prefix: "ha"
cozytouch:
  entry_id: "entry-1"
  snapshot_topic: "vendor/snapshot"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bridge.ID != "lounge-bridge" {
		t.Errorf("Bridge.ID = %q, want %q", cfg.Bridge.ID, "lounge-bridge")
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if cfg.HomeAssistant.DiscoveryPrefix != "ha" {
		t.Errorf("DiscoveryPrefix = %q, want %q", cfg.HomeAssistant.DiscoveryPrefix, "ha")
	}
	// Unset keys keep their defaults.
	if cfg.HomeAssistant.StatusTopic != "homeassistant/status" {
		t.Errorf("StatusTopic = %q, want default", cfg.HomeAssistant.StatusTopic)
	}
	if cfg.Cozytouch.SnapshotTopic != "vendor/snapshot" {
		t.Errorf("SnapshotTopic = %q, want %q", cfg.Cozytouch.SnapshotTopic, "vendor/snapshot")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/from-file.db"
`)
	t.Setenv("COZYTOUCH_DATABASE_PATH", "/tmp/from-env.db")
	t.Setenv("COZYTOUCH_MQTT_HOST", "env-broker")
	t.Setenv("COZYTOUCH_MQTT_PASSWORD", "secret")
	t.Setenv("COZYTOUCH_API_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/from-env.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.MQTT.Broker.Host != "env-broker" {
		t.Errorf("MQTT.Broker.Host = %q, want env override", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Auth.Password != "secret" {
		t.Errorf("MQTT.Auth.Password not overridden")
	}
	if cfg.API.Auth.Secret != "0123456789abcdef0123456789abcdef" {
		t.Errorf("API.Auth.Secret not overridden")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "empty bridge id",
			mutate:  func(c *Config) { c.Bridge.ID = "" },
			wantErr: "bridge.id is required",
		},
		{
			name:    "bridge id with wildcard",
			mutate:  func(c *Config) { c.Bridge.ID = "a/#" },
			wantErr: "bridge.id must not contain",
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path is required",
		},
		{
			name:    "qos out of range",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:    "empty discovery prefix",
			mutate:  func(c *Config) { c.HomeAssistant.DiscoveryPrefix = "" },
			wantErr: "discovery_prefix",
		},
		{
			name:    "empty snapshot topic",
			mutate:  func(c *Config) { c.Cozytouch.SnapshotTopic = "" },
			wantErr: "snapshot_topic",
		},
		{
			name:    "bad api port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: "api.port",
		},
		{
			name:    "short api secret",
			mutate:  func(c *Config) { c.API.Auth.Secret = "too-short" },
			wantErr: "api.auth.secret",
		},
		{
			name:   "api secret of minimum length",
			mutate: func(c *Config) { c.API.Auth.Secret = strings.Repeat("k", 32) },
		},
		{
			name: "api port ignored when disabled",
			mutate: func(c *Config) {
				c.API.Enabled = false
				c.API.Port = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Timeouts(t *testing.T) {
	cfg := defaultConfig()

	if got := cfg.API.GetReadTimeout(); got != 30*time.Second {
		t.Errorf("GetReadTimeout() = %v, want 30s", got)
	}
	if got := cfg.API.GetWriteTimeout(); got != 30*time.Second {
		t.Errorf("GetWriteTimeout() = %v, want 30s", got)
	}
	if got := cfg.API.GetIdleTimeout(); got != 60*time.Second {
		t.Errorf("GetIdleTimeout() = %v, want 60s", got)
	}
}
