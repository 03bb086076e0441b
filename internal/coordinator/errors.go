package coordinator

import "errors"

var (
	// ErrNoData is returned when no snapshot has been published yet.
	ErrNoData = errors.New("coordinator: no snapshot available")

	// ErrInvalidSnapshot is returned when a feed message does not decode.
	ErrInvalidSnapshot = errors.New("coordinator: invalid snapshot payload")
)
