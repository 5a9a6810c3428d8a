package api

import (
	"context"

	"github.com/carverauto/sensorsync/pkg/models"
)

//go:generate mockgen -destination=mock_api.go -package=api github.com/carverauto/sensorsync/pkg/collector/api CollectorService

// CollectorService is the part of the collector served over HTTP.
type CollectorService interface {
	Sync(ctx context.Context, req *models.SubmitReadingsRequest) (*models.SubmitReadingsResponse, error)
	Acknowledge(ctx context.Context, ids []string) (int, error)
	CreateSensor(ctx context.Context, sensorType, name string) (*models.Sensor, error)
	ListSensors(ctx context.Context, skip, limit int) ([]models.Sensor, error)
	GetSensor(ctx context.Context, id string) (*models.Sensor, error)
	RecentReadings(ctx context.Context, sensorID string, limit int) ([]models.Reading, error)
	RecentAggregates(ctx context.Context, sensorID string, limit int) ([]models.Aggregate, error)
}
