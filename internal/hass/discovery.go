package hass

import (
	"encoding/json"

	"github.com/nerrad567/gray-logic-cozytouch/internal/infrastructure/mqtt"
)

// Origin identifies the bridge in discovery payloads.
type Origin struct {
	Name    string `json:"name"`
	Version string `json:"sw,omitempty"`
}

// DiscoveryMessage is the Home Assistant MQTT discovery config for a binary sensor.
type DiscoveryMessage struct {
	Name             string              `json:"name"`
	UniqueID         string              `json:"unique_id"`
	ObjectID         string              `json:"object_id,omitempty"`
	DeviceClass      string              `json:"device_class,omitempty"`
	StateTopic       string              `json:"state_topic"`
	PayloadOn        string              `json:"payload_on"`
	PayloadOff       string              `json:"payload_off"`
	Availability     []AvailabilityTopic `json:"availability"`
	AvailabilityMode string              `json:"availability_mode"`
	Device           *DiscoveryDevice    `json:"device,omitempty"`
	Origin           Origin              `json:"origin"`
}

// AvailabilityTopic is one entry of the discovery availability list.
type AvailabilityTopic struct {
	Topic string `json:"topic"`
}

// DiscoveryDevice is the device block of a discovery message.
type DiscoveryDevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name,omitempty"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	ViaDevice    string   `json:"via_device,omitempty"`
}

// buildDiscovery renders the discovery config for an entity. A nil device
// omits the device block (used when DeviceInfo cannot be derived).
func buildDiscovery(e Entity, device *DeviceInfo, topics mqtt.Topics, origin Origin) DiscoveryMessage {
	id := e.UniqueID()
	msg := DiscoveryMessage{
		Name:        e.Name(),
		UniqueID:    id,
		ObjectID:    mqtt.TopicLevel(id),
		DeviceClass: string(e.DeviceClass()),
		StateTopic:  topics.EntityState(id),
		PayloadOn:   StateOn,
		PayloadOff:  StateOff,
		Availability: []AvailabilityTopic{
			{Topic: topics.BridgeStatus()},
			{Topic: topics.EntityAvailability(id)},
		},
		AvailabilityMode: "all",
		Origin:           origin,
	}

	if device != nil {
		ids := make([]string, 0, len(device.Identifiers))
		for _, ident := range device.Identifiers {
			ids = append(ids, ident.String())
		}
		msg.Device = &DiscoveryDevice{
			Identifiers:  ids,
			Name:         device.Name,
			Manufacturer: device.Manufacturer,
		}
		if device.ViaDevice != (Identifier{}) {
			msg.Device.ViaDevice = device.ViaDevice.String()
		}
	}

	return msg
}

// marshalDiscovery encodes a discovery message.
func marshalDiscovery(msg DiscoveryMessage) ([]byte, error) {
	return json.Marshal(msg)
}
