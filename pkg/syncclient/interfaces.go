package syncclient

import (
	"context"

	"github.com/carverauto/sensorsync/pkg/models"
)

//go:generate mockgen -destination=mock_transport.go -package=syncclient github.com/carverauto/sensorsync/pkg/syncclient Transport

// Transport carries the three protocol operations to the collector. Errors
// wrap ErrTransport or ErrProtocol.
type Transport interface {
	SubmitReadings(ctx context.Context, req *models.SubmitReadingsRequest) (*models.SubmitReadingsResponse, error)
	AcknowledgeAggregates(ctx context.Context, req *models.AckRequest) (*models.AckResponse, error)
	RegisterSensor(ctx context.Context, req *models.RegisterSensorRequest) (*models.SensorMessage, error)
	Close() error
}
