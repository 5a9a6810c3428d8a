package api

import "errors"

var (
	errMissingSensorID = errors.New("sensor_id query parameter is required")
	errInvalidQuery    = errors.New("invalid query parameter")
	errServerRunning   = errors.New("api server already started")
)
