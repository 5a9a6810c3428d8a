package collector

import (
	"context"
	"errors"

	"github.com/carverauto/sensorsync/pkg/grpc"
	"github.com/carverauto/sensorsync/pkg/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var _ grpc.SyncServiceServer = (*Server)(nil)

// SubmitReadings is the gRPC binding of Sync.
func (s *Server) SubmitReadings(ctx context.Context, req *models.SubmitReadingsRequest) (*models.SubmitReadingsResponse, error) {
	resp, err := s.Sync(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}

	return resp, nil
}

// AcknowledgeAggregates is the gRPC binding of Acknowledge. It succeeds for
// unknown ids.
func (s *Server) AcknowledgeAggregates(ctx context.Context, req *models.AckRequest) (*models.AckResponse, error) {
	if _, err := s.Acknowledge(ctx, req.IDs); err != nil {
		return nil, toStatus(err)
	}

	return &models.AckResponse{OK: true}, nil
}

// RegisterSensor is the gRPC binding of CreateSensor.
func (s *Server) RegisterSensor(ctx context.Context, req *models.RegisterSensorRequest) (*models.SensorMessage, error) {
	sensor, err := s.CreateSensor(ctx, req.Type, req.Name)
	if err != nil {
		return nil, toStatus(err)
	}

	msg := sensor.ToMessage()

	return &msg, nil
}

// toStatus maps collector errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, ErrMalformedBatch), errors.Is(err, ErrInvalidSensor):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
