package cozytouch

// Domain is the integration domain used in device identifiers.
const Domain = "cozytouch"

// PlaceOIDKey is the Sensor.Data key holding the object id of the place
// (room) the sensor belongs to.
const PlaceOIDKey = "placeOID"

// Widget is the vendor type tag identifying a device's capability class.
type Widget string

// Known widget tags. Only OCCUPANCY and CONTACT map to binary sensors;
// the rest are owned by other platforms.
const (
	WidgetOccupancy     Widget = "OCCUPANCY"
	WidgetContact       Widget = "CONTACT"
	WidgetTemperature   Widget = "TEMPERATURE"
	WidgetHeater        Widget = "HEATER"
	WidgetPod           Widget = "POD"
	WidgetThermostat    Widget = "THERMOSTAT"
	WidgetWaterHeater   Widget = "WATER_HEATER"
	WidgetHeatingSystem Widget = "HEATINGSYSTEM"
)

// Snapshot is one published view of the account.
type Snapshot struct {
	Devices map[string]*Device `json:"devices"`
}

// Device is a hub device. For sensor entries the live readings are set.
type Device struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Manufacturer string             `json:"manufacturer"`
	Widget       Widget             `json:"widget"`
	Sensors      map[string]*Sensor `json:"sensors,omitempty"`

	IsOccupied bool `json:"is_occupied"`
	IsOpened   bool `json:"is_opened"`
}

// Sensor describes a sensor attached to a parent device.
type Sensor struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Widget Widget            `json:"widget"`
	Parent Parent            `json:"parent"`
	Place  Place             `json:"place"`
	Data   map[string]string `json:"data,omitempty"`
}

// Parent identifies the device a sensor belongs to.
type Parent struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
}

// Place is the room a sensor is installed in.
type Place struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Device returns the device with the given id, or nil.
// Safe on a nil Snapshot.
func (s *Snapshot) Device(id string) *Device {
	if s == nil {
		return nil
	}
	return s.Devices[id]
}
