package outbox

import (
	"context"

	"github.com/carverauto/sensorsync/pkg/models"
)

//go:generate mockgen -destination=mock_outbox.go -package=outbox github.com/carverauto/sensorsync/pkg/outbox Outbox

// Outbox is the node-local durable buffer shared by the sensor generators and
// the sync client.
type Outbox interface {
	// Append persists a new reading as untransmitted. Readings the collector
	// would refuse are rejected with ErrInvalidReading.
	Append(ctx context.Context, reading *models.Reading) error
	// UntransmittedReadings returns a snapshot of at most limit readings not
	// yet accepted by the collector, oldest observation first.
	UntransmittedReadings(ctx context.Context, limit int) ([]models.Reading, error)
	// MarkTransmitted flags exactly the given readings. Marking twice is a no-op.
	MarkTransmitted(ctx context.Context, ids []string) error

	// StoreAggregates saves aggregates received from the collector, ignoring
	// ids that are already stored.
	StoreAggregates(ctx context.Context, aggs []models.Aggregate) error
	// UnackedAggregateIDs lists stored aggregates whose ack has not been
	// delivered yet.
	UnackedAggregateIDs(ctx context.Context) ([]string, error)
	MarkAggregatesAcked(ctx context.Context, ids []string) error

	PendingCount(ctx context.Context) (int, error)
	SensorByName(ctx context.Context, sensorType, name string) (*models.Sensor, error)
	SaveSensor(ctx context.Context, sensor *models.Sensor) error
	Readings(ctx context.Context, sensorID string, limit int) ([]models.Reading, error)
	Aggregates(ctx context.Context, sensorID string, limit int) ([]models.Aggregate, error)

	Close() error
}
