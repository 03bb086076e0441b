package hass

import (
	"encoding/json"
	"testing"
)

func TestBuildDiscovery(t *testing.T) {
	e := newFakeEntity("io-1")
	e.class = DeviceClassWindow
	device, _ := e.DeviceInfo() //nolint:errcheck // fake never fails here

	msg := buildDiscovery(e, &device, testTopics, Origin{Name: "cozytouch-bridge", Version: "1.0.0"})

	if msg.UniqueID != "io-1" || msg.ObjectID != "io-1" {
		t.Errorf("ids = %q/%q, want io-1", msg.UniqueID, msg.ObjectID)
	}
	if msg.DeviceClass != "window" {
		t.Errorf("DeviceClass = %q, want window", msg.DeviceClass)
	}
	if msg.StateTopic != "cozytouch/io-1/state" {
		t.Errorf("StateTopic = %q", msg.StateTopic)
	}
	if len(msg.Availability) != 2 {
		t.Fatalf("Availability has %d topics, want 2", len(msg.Availability))
	}
	if msg.Availability[0].Topic != "cozytouch/bridge/status" {
		t.Errorf("Availability[0] = %q, want bridge status", msg.Availability[0].Topic)
	}
	if msg.AvailabilityMode != "all" {
		t.Errorf("AvailabilityMode = %q, want all", msg.AvailabilityMode)
	}
	if msg.Device == nil {
		t.Fatal("Device = nil")
	}
	if len(msg.Device.Identifiers) != 1 || msg.Device.Identifiers[0] != "cozytouch_parent-1" {
		t.Errorf("Identifiers = %v, want [cozytouch_parent-1]", msg.Device.Identifiers)
	}
	if msg.Device.ViaDevice != "cozytouch_place-1" {
		t.Errorf("ViaDevice = %q, want cozytouch_place-1", msg.Device.ViaDevice)
	}
}

func TestBuildDiscovery_ObjectIDIsTopicSafe(t *testing.T) {
	msg := buildDiscovery(newFakeEntity("io://1234/5678#2"), nil, testTopics, Origin{Name: "bridge"})

	if msg.UniqueID != "io://1234/5678#2" {
		t.Errorf("UniqueID = %q, want the raw vendor id", msg.UniqueID)
	}
	if msg.ObjectID != "io___1234_5678_2" {
		t.Errorf("ObjectID = %q, want io___1234_5678_2", msg.ObjectID)
	}
}

func TestBuildDiscovery_NoDevice(t *testing.T) {
	msg := buildDiscovery(newFakeEntity("io-1"), nil, testTopics, Origin{Name: "bridge"})

	payload, err := marshalDiscovery(msg)
	if err != nil {
		t.Fatalf("marshalDiscovery() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if _, ok := raw["device"]; ok {
		t.Error("payload has device block, want none")
	}
	if raw["payload_on"] != StateOn || raw["payload_off"] != StateOff {
		t.Errorf("payload_on/off = %v/%v", raw["payload_on"], raw["payload_off"])
	}
	origin, ok := raw["origin"].(map[string]any)
	if !ok || origin["name"] != "bridge" {
		t.Errorf("origin = %v", raw["origin"])
	}
	if _, ok := origin["sw"]; ok {
		t.Error("origin.sw present with empty version")
	}
}
