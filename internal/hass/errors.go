package hass

import "errors"

var (
	// ErrDuplicateEntity is returned when a unique id is registered twice.
	ErrDuplicateEntity = errors.New("hass: entity already registered")

	// ErrTopicCollision is returned when two unique ids encode to the same
	// MQTT topic level.
	ErrTopicCollision = errors.New("hass: unique id topic level already in use")

	// ErrEntityNotFound is returned for lookups of unknown unique ids.
	ErrEntityNotFound = errors.New("hass: entity not found")

	// ErrPublisherRequired is returned by NewPlatform without a publisher.
	ErrPublisherRequired = errors.New("hass: publisher is required")
)
