package mqtt

import "fmt"

// Availability payloads. Home Assistant's defaults are used so discovery
// configs need not override payload_available/payload_not_available.
const (
	PayloadOnline  = "online"
	PayloadOffline = "offline"
)

// Topics builds the bridge's MQTT topics from configured prefixes.
//
//	topics := mqtt.Topics{DiscoveryPrefix: "homeassistant", StatePrefix: "cozytouch", NodeID: "cozytouch"}
//	topics.DiscoveryConfig("binary_sensor", "io-123")
//	// Returns: "homeassistant/binary_sensor/cozytouch/io-123/config"
type Topics struct {
	// DiscoveryPrefix is Home Assistant's discovery root (usually "homeassistant").
	DiscoveryPrefix string

	// StatePrefix is the root for bridge-owned state and availability topics.
	StatePrefix string

	// NodeID groups this bridge's discovery configs.
	NodeID string
}

// BridgeStatus returns the bridge's own availability topic.
// Carries the LWT so every entity goes unavailable when the bridge dies.
//
// Example: cozytouch/bridge/status
func (t Topics) BridgeStatus() string {
	return fmt.Sprintf("%s/bridge/status", t.StatePrefix)
}

// DiscoveryConfig returns the retained discovery config topic for an entity.
//
// Example: homeassistant/binary_sensor/cozytouch/io-123/config
func (t Topics) DiscoveryConfig(component, uniqueID string) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", t.DiscoveryPrefix, component, t.NodeID, TopicLevel(uniqueID))
}

// EntityState returns the state topic for an entity.
//
// Example: cozytouch/io-123/state
func (t Topics) EntityState(uniqueID string) string {
	return fmt.Sprintf("%s/%s/state", t.StatePrefix, TopicLevel(uniqueID))
}

// EntityAvailability returns the per-entity availability topic.
//
// Example: cozytouch/io-123/availability
func (t Topics) EntityAvailability(uniqueID string) string {
	return fmt.Sprintf("%s/%s/availability", t.StatePrefix, TopicLevel(uniqueID))
}

// TopicLevel encodes an id as a single topic level by replacing characters
// that would split or wildcard it. Vendor ids are URLs such as
// "io://1234-5678-9012/123456#1".
//
// The encoding is lossy: "a/b" and "a_b" share a level. Callers that key
// topics by id must reject a second id with an already-used level.
func TopicLevel(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '/', '+', '#', ' ', ':':
			out = append(out, '_')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
