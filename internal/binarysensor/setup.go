package binarysensor

import (
	"context"
	"fmt"
	"sort"

	"github.com/nerrad567/gray-logic-cozytouch/internal/coordinator"
	"github.com/nerrad567/gray-logic-cozytouch/internal/hass"
)

// Logger defines the logging interface used during setup.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}

type setupOptions struct {
	logger Logger
}

// Option configures SetupEntry.
type Option func(*setupOptions)

// WithLogger logs skipped sensors and the discovery summary to l.
func WithLogger(l Logger) Option {
	return func(o *setupOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// SetupEntry creates an entity for every occupancy and contact sensor in
// the current snapshot and registers them with a single call to add.
//
// Devices and sensors are visited in id order. An empty result is still
// passed to add.
func SetupEntry(ctx context.Context, entry hass.ConfigEntry, data DataSource, add hass.AddEntitiesFunc, opts ...Option) error {
	o := setupOptions{logger: noopLogger{}}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	snap := data.Data()
	if snap == nil {
		return fmt.Errorf("setting up binary sensors for %s: %w", entry.EntryID, coordinator.ErrNoData)
	}

	deviceIDs := make([]string, 0, len(snap.Devices))
	for id := range snap.Devices {
		deviceIDs = append(deviceIDs, id)
	}
	sort.Strings(deviceIDs)

	var entities []hass.Entity
	for _, deviceID := range deviceIDs {
		device := snap.Devices[deviceID]
		if device == nil {
			continue
		}

		sensorIDs := make([]string, 0, len(device.Sensors))
		for id := range device.Sensors {
			sensorIDs = append(sensorIDs, id)
		}
		sort.Strings(sensorIDs)

		for _, sensorID := range sensorIDs {
			sensor := device.Sensors[sensorID]
			if sensor == nil {
				continue
			}
			kind, ok := kindForWidget(sensor.Widget)
			if !ok {
				logger.Debug("skipping sensor",
					"sensor_id", sensor.ID,
					"widget", string(sensor.Widget),
				)
				continue
			}
			entities = append(entities, NewEntity(sensor, kind, data))
		}
	}

	logger.Info("binary sensors discovered",
		"entry_id", entry.EntryID,
		"count", len(entities),
	)
	return add(ctx, entities)
}
