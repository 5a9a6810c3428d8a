package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/carverauto/sensorsync/pkg/models"
)

// IngestResult reports the outcome of one accepted batch.
type IngestResult struct {
	// AcceptedIDs holds every submitted reading id, new or already known.
	AcceptedIDs []string
	// SensorIDs holds the distinct sensors of the batch in first-seen order.
	SensorIDs []string
	// Inserted counts readings stored for the first time.
	Inserted int
}

// Ingest validates and stores a batch, then refreshes the rolling average of
// every sensor it touches. A malformed batch is rejected as a whole with
// ErrMalformedBatch and nothing is written. Resubmitting a batch is safe:
// known ids are accepted again without being stored twice.
func (s *Server) Ingest(ctx context.Context, readings []models.Reading) (*IngestResult, error) {
	start := time.Now()
	defer func() { s.metrics.IngestDuration.Observe(time.Since(start).Seconds()) }()

	unique, err := validateBatch(readings)
	if err != nil {
		s.metrics.BatchesRejected.Inc()
		s.logger.Warn("Rejected malformed batch", "size", len(readings), "error", err)

		return nil, err
	}

	result := &IngestResult{
		AcceptedIDs: make([]string, 0, len(readings)),
		SensorIDs:   distinctSensors(unique),
	}

	for i := range readings {
		result.AcceptedIDs = append(result.AcceptedIDs, readings[i].ID)
	}

	if len(unique) == 0 {
		return result, nil
	}

	unlock := s.locks.lock(result.SensorIDs)
	defer unlock()

	inserted, err := s.db.InsertReadings(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	result.Inserted = inserted

	s.metrics.ReadingsReceived.Add(float64(len(readings)))
	s.metrics.ReadingsInserted.Add(float64(inserted))

	if inserted == 0 && s.skipDuplicateAggs {
		s.logger.Debug("Batch held only known readings, skipping aggregation", "size", len(readings))

		return result, nil
	}

	for _, sensorID := range result.SensorIDs {
		if _, err := s.recompute(ctx, sensorID); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("Ingested batch",
		"size", len(readings), "inserted", inserted, "sensors", len(result.SensorIDs))

	return result, nil
}

// validateBatch checks every reading and folds exact repeats of the same id.
// It returns the readings to store, in submission order.
func validateBatch(readings []models.Reading) ([]models.Reading, error) {
	seen := make(map[string]models.Reading, len(readings))
	unique := make([]models.Reading, 0, len(readings))

	for i := range readings {
		r := readings[i]

		switch {
		case r.ID == "":
			return nil, fmt.Errorf("%w: reading %d: %w", ErrMalformedBatch, i, errEmptyReadingID)
		case r.SensorID == "":
			return nil, fmt.Errorf("%w: reading %s: %w", ErrMalformedBatch, r.ID, errEmptySensorID)
		case math.IsNaN(r.Value) || math.IsInf(r.Value, 0):
			return nil, fmt.Errorf("%w: reading %s: %w", ErrMalformedBatch, r.ID, errNonFiniteValue)
		case r.ObservedAt.IsZero():
			return nil, fmt.Errorf("%w: reading %s: %w", ErrMalformedBatch, r.ID, errMissingTime)
		}

		if prev, ok := seen[r.ID]; ok {
			if !sameReading(prev, r) {
				return nil, fmt.Errorf("%w: reading %s: %w", ErrMalformedBatch, r.ID, errConflictingCopy)
			}

			continue
		}

		seen[r.ID] = r
		unique = append(unique, r)
	}

	return unique, nil
}

func sameReading(a, b models.Reading) bool {
	return a.SensorID == b.SensorID &&
		a.Value == b.Value &&
		a.Unit == b.Unit &&
		a.ObservedAt.Equal(b.ObservedAt)
}

func distinctSensors(readings []models.Reading) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)

	for i := range readings {
		id := readings[i].SensorID
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}
