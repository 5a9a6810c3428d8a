package outbox

import "errors"

var (
	// ErrStorage wraps every failure of the underlying database. The node
	// treats it as fatal.
	ErrStorage        = errors.New("outbox storage error")
	ErrSensorNotFound = errors.New("sensor not found")
	// ErrInvalidReading rejects a reading the collector would refuse.
	ErrInvalidReading = errors.New("invalid reading")
	errNilReading     = errors.New("nil reading")
)
