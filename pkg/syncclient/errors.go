package syncclient

import "errors"

var (
	// ErrTransport marks a failed exchange with the collector: unreachable,
	// timed out, or failing on its side. The cycle is retried next period.
	ErrTransport = errors.New("transport error")
	// ErrProtocol marks a response the node could not use. Nothing was
	// mutated locally and the cycle is retried next period.
	ErrProtocol = errors.New("protocol error")
	// ErrCycleInProgress is returned when a cycle is requested while another
	// one is still running.
	ErrCycleInProgress = errors.New("sync cycle already in progress")

	errUnexpectedStatus  = errors.New("unexpected HTTP status")
	errEmptyAggregateID  = errors.New("aggregate without id")
	errEmptyAggregateSrc = errors.New("aggregate without sensor id")
	errAckRefused        = errors.New("collector refused acknowledgement")
	errEmptySensorReply  = errors.New("registration returned no sensor id")
	errUnknownTransport  = errors.New("unknown transport")
)
