// Package db pkg/db/interfaces.go
package db

import (
	"context"

	"github.com/carverauto/sensorsync/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/carverauto/sensorsync/pkg/db Service

// Service represents all collector database operations.
type Service interface {
	Close() error

	// Reading operations.

	// InsertReadings stores every reading whose id is not yet known and
	// returns how many rows were new. Known ids are skipped, not errors.
	InsertReadings(ctx context.Context, readings []models.Reading) (int, error)
	// RecentReadings returns up to limit readings of a sensor, newest
	// observation first.
	RecentReadings(ctx context.Context, sensorID string, limit int) ([]models.Reading, error)

	// Aggregate operations.

	InsertAggregate(ctx context.Context, agg *models.Aggregate) error
	PendingAggregates(ctx context.Context, sensorIDs []string) ([]models.Aggregate, error)
	AcknowledgeAggregates(ctx context.Context, ids []string) (int64, error)
	RecentAggregates(ctx context.Context, sensorID string, limit int) ([]models.Aggregate, error)

	// Sensor operations.

	CreateSensor(ctx context.Context, sensor *models.Sensor) error
	GetSensor(ctx context.Context, id string) (*models.Sensor, error)
	ListSensors(ctx context.Context, skip, limit int) ([]models.Sensor, error)
}
