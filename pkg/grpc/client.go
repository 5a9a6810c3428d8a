/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package grpc - gRPC client and server wrappers for the sensor sync protocol
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/carverauto/sensorsync/pkg/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

const (
	defaultMaxRetries    = 3
	retryBaseDelay       = 100 * time.Millisecond
	grpcKeepAliveTime    = 10 * time.Second
	grpcKeepAliveTimeout = 5 * time.Second
)

type ConnectionConfig struct {
	Address  string                `json:"address"`
	Security models.SecurityConfig `json:"security,omitempty"`
}

// ClientOption allows customization of the client.
type ClientOption func(*ClientConn)

// ClientConn wraps a gRPC client connection with additional functionality.
type ClientConn struct {
	conn             *grpc.ClientConn
	healthClient     grpc_health_v1.HealthClient
	addr             string
	maxRetries       int
	logger           *slog.Logger
	securityProvider SecurityProvider
	extraDialOpts    []grpc.DialOption
}

// NewClient creates a new gRPC client connection. The connection is lazy:
// nothing is dialed until the first call. Every call defaults to the json
// codec.
func NewClient(ctx context.Context, connConfig *ConnectionConfig, opts ...ClientOption) (*ClientConn, error) {
	if connConfig == nil {
		return nil, errConnectionConfigRequired
	}

	c := &ClientConn{
		addr:       connConfig.Address,
		maxRetries: defaultMaxRetries,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.securityProvider == nil {
		provider, err := NewSecurityProvider(ctx, &connConfig.Security)
		if err != nil {
			return nil, fmt.Errorf("failed to create security provider: %w", err)
		}

		c.securityProvider = provider
	}

	dialOpts, err := c.createDialOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create dial options: %w", err)
	}

	conn, err := grpc.NewClient(connConfig.Address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", connConfig.Address, err)
	}

	c.conn = conn
	c.healthClient = grpc_health_v1.NewHealthClient(conn)

	c.logger.Info("Created gRPC client connection", "addr", connConfig.Address)

	return c, nil
}

func (c *ClientConn) createDialOptions(ctx context.Context) ([]grpc.DialOption, error) {
	creds, err := c.securityProvider.GetClientCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get client credentials: %w", err)
	}

	dialOpts := []grpc.DialOption{
		creds,
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
		grpc.WithChainUnaryInterceptor(
			ClientLoggingInterceptor(c.logger),
			RetryInterceptor(c.maxRetries, c.logger),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                grpcKeepAliveTime,
			Timeout:             grpcKeepAliveTimeout,
			PermitWithoutStream: true,
		}),
	}

	return append(dialOpts, c.extraDialOpts...), nil
}

// retryable reports whether a failed call may succeed if sent again as is.
// RegisterSensor creates a new sensor per call and is never resent.
func retryable(method string, err error) bool {
	if method == registerSensorMethod {
		return false
	}

	switch status.Code(err) {
	case codes.Unavailable, codes.Aborted:
		return true
	default:
		return false
	}
}

// RetryInterceptor retries idempotent calls that failed with a transient
// status, backing off linearly.
func RetryInterceptor(maxRetries int, logger *slog.Logger) grpc.UnaryClientInterceptor {
	if maxRetries < 1 {
		maxRetries = 1
	}

	return func(ctx context.Context, method string, req, reply interface{},
		cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		var lastErr error

		for attempt := 0; attempt < maxRetries; attempt++ {
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return fmt.Errorf("%w (last error: %w)", ctx.Err(), lastErr)
				case <-time.After(time.Duration(attempt) * retryBaseDelay):
				}
			}

			lastErr = invoker(ctx, method, req, reply, cc, opts...)
			if lastErr == nil || !retryable(method, lastErr) {
				return lastErr
			}

			logger.Debug("gRPC call attempt failed", "method", method, "attempt", attempt+1, "error", lastErr)
		}

		return lastErr
	}
}

// WithMaxRetries sets the maximum number of attempts per call.
func WithMaxRetries(retries int) ClientOption {
	return func(c *ClientConn) {
		c.maxRetries = retries
	}
}

// WithSecurityProvider sets the security provider for the client.
func WithSecurityProvider(provider SecurityProvider) ClientOption {
	return func(c *ClientConn) {
		c.securityProvider = provider
	}
}

// WithClientLogger sets the logger used by the client interceptors.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *ClientConn) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDialOptions appends raw dial options, e.g. a custom dialer.
func WithDialOptions(opts ...grpc.DialOption) ClientOption {
	return func(c *ClientConn) {
		c.extraDialOpts = append(c.extraDialOpts, opts...)
	}
}

// GetConnection returns the underlying gRPC connection.
func (c *ClientConn) GetConnection() *grpc.ClientConn {
	return c.conn
}

// Close closes the client connection.
func (c *ClientConn) Close() error {
	if c.securityProvider != nil {
		if err := c.securityProvider.Close(); err != nil {
			c.logger.Warn("Failed to close security provider", "error", err)
		}
	}

	return c.conn.Close()
}

// CheckHealth checks the health of a specific service.
func (c *ClientConn) CheckHealth(ctx context.Context, service string) (bool, error) {
	resp, err := c.healthClient.Check(ctx, &grpc_health_v1.HealthCheckRequest{
		Service: service,
	})
	if err != nil {
		return false, fmt.Errorf("health check failed: %w", err)
	}

	return resp.Status == grpc_health_v1.HealthCheckResponse_SERVING, nil
}

// ClientLoggingInterceptor logs client-side RPC calls.
func ClientLoggingInterceptor(logger *slog.Logger) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{},
		cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)

		logger.Debug("gRPC client call", "method", method, "duration", time.Since(start), "error", err)

		return err
	}
}
