package grpc

import (
	"errors"
)

var (
	errUnknownSecurityMode      = errors.New("unknown security mode")
	errSecurityConfigRequired   = errors.New("security config required for TLS")
	errInvalidServiceRole       = errors.New("invalid service role")
	errFailedToLoadClientCreds  = errors.New("failed to load client credentials")
	errFailedToLoadServerCreds  = errors.New("failed to load server credentials")
	errFailedToReadCACert       = errors.New("failed to read CA certificate")
	errFailedToAppendCACert     = errors.New("failed to append CA certificate")
	errFailedToLoadServerCert   = errors.New("failed to load server certificate")
	errServiceNotClient         = errors.New("service is not configured as a client")
	errServiceNotServer         = errors.New("service is not configured as a server")
	errConnectionConfigRequired = errors.New("connection config required")
	errUnexpectedMessageType    = errors.New("unexpected message type")
)
