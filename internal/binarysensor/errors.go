package binarysensor

import "errors"

var (
	// ErrDeviceNotFound is returned by IsOn when the sensor is absent from
	// the current snapshot.
	ErrDeviceNotFound = errors.New("binarysensor: device not in snapshot")

	// ErrMissingPlaceOID is returned by DeviceInfo when the sensor has no
	// placeOID data entry.
	ErrMissingPlaceOID = errors.New("binarysensor: sensor has no placeOID")
)
