package hass

import (
	"context"
	"fmt"
	"time"
)

// DeviceClass is the Home Assistant binary_sensor device class.
type DeviceClass string

// Binary sensor device classes used by the bridge.
const (
	DeviceClassOccupancy DeviceClass = "occupancy"
	DeviceClassWindow    DeviceClass = "window"
)

// ComponentBinarySensor is the discovery component for every entity the
// platform hosts.
const ComponentBinarySensor = "binary_sensor"

// State payloads.
const (
	StateOn  = "ON"
	StateOff = "OFF"
)

// Entity is the contract an integration implements for each binary sensor.
//
// Property methods must be cheap and must not block: they run on every
// coordinator refresh.
type Entity interface {
	// UniqueID is stable across restarts and keys the entity registry.
	UniqueID() string

	// Name is the display name.
	Name() string

	// DeviceInfo describes the device the entity belongs to.
	DeviceInfo() (DeviceInfo, error)

	DeviceClass() DeviceClass

	// IsOn reads the current state. An error marks the entity unavailable.
	IsOn() (bool, error)
}

// Identifier is a (domain, id) device identifier.
type Identifier struct {
	Domain string
	ID     string
}

// String renders the identifier as used in discovery payloads.
func (i Identifier) String() string {
	return fmt.Sprintf("%s_%s", i.Domain, i.ID)
}

// DeviceInfo groups entities under a device in Home Assistant.
type DeviceInfo struct {
	Identifiers  []Identifier
	Name         string
	Manufacturer string

	// ViaDevice links the device to the device it is reached through.
	ViaDevice Identifier
}

// ConfigEntry is one configured instance of an integration.
type ConfigEntry struct {
	EntryID string
	Domain  string
	Title   string
}

// AddEntitiesFunc registers entities with the platform.
type AddEntitiesFunc func(ctx context.Context, entities []Entity) error

// EntityState is the platform's last evaluated view of an entity.
type EntityState struct {
	UniqueID      string    `json:"unique_id"`
	ConfigEntryID string    `json:"config_entry_id"`
	Name          string    `json:"name"`
	DeviceClass   string    `json:"device_class"`
	Available     bool      `json:"available"`
	On            bool      `json:"on"`
	Error         string    `json:"error,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StateString returns ON or OFF.
func (s EntityState) StateString() string {
	if s.On {
		return StateOn
	}
	return StateOff
}
