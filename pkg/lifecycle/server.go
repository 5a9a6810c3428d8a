// Package lifecycle runs a long-lived service next to its gRPC server and
// shuts both down on a signal, a service error or context cancellation.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/sensorsync/pkg/grpc"
	"github.com/carverauto/sensorsync/pkg/models"
)

const (
	MaxRecvSize     = 4 * 1024 * 1024 // 4MB
	MaxSendSize     = 4 * 1024 * 1024 // 4MB
	ShutdownTimeout = 10 * time.Second
)

var errServiceFailed = errors.New("service error")

// Service defines the interface that all services must implement.
type Service interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// GRPCServiceRegistrar is a function type for registering gRPC services.
type GRPCServiceRegistrar func(*grpc.Server) error

// ServerOptions holds configuration for creating a server.
type ServerOptions struct {
	ListenAddr           string
	ServiceName          string
	Service              Service
	RegisterGRPCServices []GRPCServiceRegistrar
	Security             *models.SecurityConfig
	Logger               *slog.Logger
	// Listener, when set, is served instead of listening on ListenAddr.
	Listener net.Listener
}

// RunServer starts a service with the provided options and handles lifecycle.
// It returns nil after a clean shutdown triggered by a signal or by ctx.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Starting service", "service", opts.ServiceName)

	grpcServer, provider, err := setupGRPCServer(ctx, opts, logger)
	if err != nil {
		return fmt.Errorf("failed to setup gRPC server: %w", err)
	}

	defer func() {
		if err := provider.Close(); err != nil {
			logger.Warn("Failed to close security provider", "error", err)
		}
	}()

	errChan := make(chan error, 2)

	go func() {
		if err := opts.Service.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- err
		}
	}()

	go func() {
		logger.Info("Starting gRPC server", "addr", opts.ListenAddr)

		var err error
		if opts.Listener != nil {
			err = grpcServer.Serve(opts.Listener)
		} else {
			err = grpcServer.Start()
		}

		if err != nil {
			errChan <- err
		}
	}()

	return handleShutdown(ctx, cancel, grpcServer, opts.Service, errChan, logger)
}

func setupGRPCServer(ctx context.Context, opts *ServerOptions, logger *slog.Logger) (*grpc.Server, grpc.SecurityProvider, error) {
	provider, err := grpc.NewSecurityProvider(ctx, opts.Security)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create security provider: %w", err)
	}

	creds, err := provider.GetServerCredentials(ctx)
	if err != nil {
		_ = provider.Close()

		return nil, nil, fmt.Errorf("failed to get server credentials: %w", err)
	}

	grpcServer := grpc.NewServer(opts.ListenAddr,
		grpc.WithLogger(logger),
		grpc.WithMaxRecvSize(MaxRecvSize),
		grpc.WithMaxSendSize(MaxSendSize),
		grpc.WithServerOptions(creds),
	)

	for _, register := range opts.RegisterGRPCServices {
		if err := register(grpcServer); err != nil {
			_ = provider.Close()

			return nil, nil, fmt.Errorf("failed to register gRPC service: %w", err)
		}
	}

	return grpcServer, provider, nil
}

func handleShutdown(ctx context.Context, cancel context.CancelFunc, grpcServer *grpc.Server, svc Service,
	errChan chan error, logger *slog.Logger) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	defer signal.Stop(sigChan)

	var runErr error

	select {
	case sig := <-sigChan:
		logger.Info("Received signal, initiating shutdown", "signal", sig.String())
	case err := <-errChan:
		logger.Error("Received error, initiating shutdown", "error", err)
		runErr = fmt.Errorf("%w: %w", errServiceFailed, err)
	case <-ctx.Done():
		logger.Info("Context canceled, initiating shutdown")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	cancel()

	grpcServer.Stop(shutdownCtx)

	if err := svc.Stop(shutdownCtx); err != nil {
		logger.Error("Error during service shutdown", "error", err)

		if runErr == nil {
			runErr = fmt.Errorf("shutdown error: %w", err)
		}
	}

	return runErr
}
