package binarysensor

import (
	"fmt"

	"github.com/nerrad567/gray-logic-cozytouch/internal/coordinator"
	"github.com/nerrad567/gray-logic-cozytouch/internal/cozytouch"
	"github.com/nerrad567/gray-logic-cozytouch/internal/hass"
)

// DataSource provides the coordinator's current snapshot.
// Data returns nil until the first snapshot is published.
type DataSource interface {
	Data() *cozytouch.Snapshot
}

// Kind selects which reading a binary sensor exposes.
type Kind int

const (
	// KindOccupancy reports presence in the sensor's room.
	KindOccupancy Kind = iota + 1

	// KindContact reports whether a window or door is open.
	KindContact
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindOccupancy:
		return "occupancy"
	case KindContact:
		return "contact"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// DeviceClass returns the Home Assistant device class for the kind.
func (k Kind) DeviceClass() hass.DeviceClass {
	if k == KindContact {
		return hass.DeviceClassWindow
	}
	return hass.DeviceClassOccupancy
}

// reading extracts the kind's value from a snapshot device.
func (k Kind) reading(d *cozytouch.Device) bool {
	if k == KindContact {
		return d.IsOpened
	}
	return d.IsOccupied
}

// kindForWidget maps a widget tag to a sensor kind.
func kindForWidget(w cozytouch.Widget) (Kind, bool) {
	switch w {
	case cozytouch.WidgetOccupancy:
		return KindOccupancy, true
	case cozytouch.WidgetContact:
		return KindContact, true
	default:
		return 0, false
	}
}

// Entity is a Cozytouch binary sensor. It implements hass.Entity.
type Entity struct {
	sensor *cozytouch.Sensor
	kind   Kind
	data   DataSource
}

// NewEntity wraps a sensor. The sensor is treated as read-only.
func NewEntity(sensor *cozytouch.Sensor, kind Kind, data DataSource) *Entity {
	return &Entity{sensor: sensor, kind: kind, data: data}
}

// Kind returns the sensor kind.
func (e *Entity) Kind() Kind {
	return e.kind
}

// UniqueID returns the vendor sensor id.
func (e *Entity) UniqueID() string {
	return e.sensor.ID
}

// Name returns "<place> <sensor>", e.g. "Lounge Window1".
func (e *Entity) Name() string {
	return fmt.Sprintf("%s %s", e.sensor.Place.Name, e.sensor.Name)
}

// DeviceInfo groups the entity under its parent device, reached via the
// sensor's place.
func (e *Entity) DeviceInfo() (hass.DeviceInfo, error) {
	placeOID, ok := e.sensor.Data[cozytouch.PlaceOIDKey]
	if !ok {
		return hass.DeviceInfo{}, fmt.Errorf("%w: %s", ErrMissingPlaceOID, e.sensor.ID)
	}

	parent := e.sensor.Parent
	return hass.DeviceInfo{
		Identifiers:  []hass.Identifier{{Domain: cozytouch.Domain, ID: parent.ID}},
		Name:         parent.Name,
		Manufacturer: parent.Manufacturer,
		ViaDevice:    hass.Identifier{Domain: cozytouch.Domain, ID: placeOID},
	}, nil
}

// DeviceClass returns occupancy or window.
func (e *Entity) DeviceClass() hass.DeviceClass {
	return e.kind.DeviceClass()
}

// IsOn reads the sensor from the current snapshot.
func (e *Entity) IsOn() (bool, error) {
	snap := e.data.Data()
	if snap == nil {
		return false, coordinator.ErrNoData
	}

	d := snap.Device(e.sensor.ID)
	if d == nil {
		return false, fmt.Errorf("%w: %s", ErrDeviceNotFound, e.sensor.ID)
	}
	return e.kind.reading(d), nil
}
