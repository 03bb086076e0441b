package mqtt

import "testing"

func TestTopics(t *testing.T) {
	topics := Topics{DiscoveryPrefix: "homeassistant", StatePrefix: "cozytouch", NodeID: "bridge-1"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"bridge status", topics.BridgeStatus(), "cozytouch/bridge/status"},
		{"discovery config", topics.DiscoveryConfig("binary_sensor", "sensor-1"), "homeassistant/binary_sensor/bridge-1/sensor-1/config"},
		{"entity state", topics.EntityState("sensor-1"), "cozytouch/sensor-1/state"},
		{"entity availability", topics.EntityAvailability("sensor-1"), "cozytouch/sensor-1/availability"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestTopicLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain-id", "plain-id"},
		{"io://1234-5678/99#1", "io___1234-5678_99_1"},
		{"a+b c", "a_b_c"},
		{"", ""},
		{"a_b", "a_b"},
		{"a/b", "a_b"},
	}

	for _, tt := range tests {
		if got := TopicLevel(tt.input); got != tt.want {
			t.Errorf("TopicLevel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
