package syncclient

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carverauto/sensorsync/pkg/grpc"
	"github.com/carverauto/sensorsync/pkg/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GRPCTransport talks to the collector's SyncService.
type GRPCTransport struct {
	conn   *grpc.ClientConn
	client *grpc.SyncServiceClient
}

var _ Transport = (*GRPCTransport)(nil)

// NewGRPCTransport creates a lazy connection to address. A nil security
// config means plaintext.
func NewGRPCTransport(ctx context.Context, address string, security *models.SecurityConfig,
	logger *slog.Logger, opts ...grpc.ClientOption) (*GRPCTransport, error) {
	connCfg := &grpc.ConnectionConfig{Address: address}
	if security != nil {
		connCfg.Security = *security
	}

	opts = append([]grpc.ClientOption{grpc.WithClientLogger(logger)}, opts...)

	conn, err := grpc.NewClient(ctx, connCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	return &GRPCTransport{
		conn:   conn,
		client: grpc.NewSyncServiceClient(conn.GetConnection()),
	}, nil
}

func (t *GRPCTransport) SubmitReadings(ctx context.Context, req *models.SubmitReadingsRequest) (*models.SubmitReadingsResponse, error) {
	resp, err := t.client.SubmitReadings(ctx, req)
	if err != nil {
		return nil, classifyStatus(err)
	}

	return resp, nil
}

func (t *GRPCTransport) AcknowledgeAggregates(ctx context.Context, req *models.AckRequest) (*models.AckResponse, error) {
	resp, err := t.client.AcknowledgeAggregates(ctx, req)
	if err != nil {
		return nil, classifyStatus(err)
	}

	return resp, nil
}

func (t *GRPCTransport) RegisterSensor(ctx context.Context, req *models.RegisterSensorRequest) (*models.SensorMessage, error) {
	resp, err := t.client.RegisterSensor(ctx, req)
	if err != nil {
		return nil, classifyStatus(err)
	}

	return resp, nil
}

// CheckHealth asks the collector's health service whether SyncService is up.
func (t *GRPCTransport) CheckHealth(ctx context.Context) (bool, error) {
	return t.conn.CheckHealth(ctx, grpc.SyncServiceName)
}

func (t *GRPCTransport) Close() error {
	return t.conn.Close()
}

// classifyStatus separates requests the collector rejected from failures
// worth retrying as they are.
func classifyStatus(err error) error {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.Unimplemented, codes.Unknown:
		return fmt.Errorf("%w: %w", ErrProtocol, err)
	default:
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
}
