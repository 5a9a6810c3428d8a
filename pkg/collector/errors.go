package collector

import "errors"

var (
	// ErrMalformedBatch rejects a whole batch; nothing of it is stored.
	ErrMalformedBatch = errors.New("malformed batch")
	// ErrInvalidSensor rejects a registration request.
	ErrInvalidSensor = errors.New("invalid sensor")
	// ErrStorage wraps failures of the collector database.
	ErrStorage = errors.New("collector storage error")

	errEmptyReadingID  = errors.New("empty reading id")
	errEmptySensorID   = errors.New("empty sensor id")
	errNonFiniteValue  = errors.New("value is not a finite number")
	errMissingTime     = errors.New("missing observation time")
	errConflictingCopy = errors.New("reading id repeated with different content")
)
