// Package binarysensor exposes Cozytouch occupancy and contact sensors as
// binary sensor entities.
//
// SetupEntry walks the coordinator snapshot once, wraps every OCCUPANCY and
// CONTACT sensor in an Entity and registers them in a single call. Sensors
// of any other widget belong to other platforms and are skipped.
//
// Entities capture their sensor's metadata at setup but never its reading:
// IsOn looks the sensor up in the coordinator's current snapshot on every
// call, so a refresh is visible without re-creating entities.
//
// Usage:
//
//	add := platform.AddEntitiesFor(entry)
//	if err := binarysensor.SetupEntry(ctx, entry, coord, add); err != nil {
//	    return err
//	}
package binarysensor
