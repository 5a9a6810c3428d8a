package collector

import (
	"context"
	"fmt"

	"github.com/carverauto/sensorsync/pkg/models"
)

// Recompute appends a new rolling average for sensorID over its most recent
// readings. It returns nil without error when the sensor has no readings.
func (s *Server) Recompute(ctx context.Context, sensorID string) (*models.Aggregate, error) {
	unlock := s.locks.lock([]string{sensorID})
	defer unlock()

	return s.recompute(ctx, sensorID)
}

// recompute expects the caller to hold the sensor's lock.
func (s *Server) recompute(ctx context.Context, sensorID string) (*models.Aggregate, error) {
	window, err := s.db.RecentReadings(ctx, sensorID, s.windowSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if len(window) == 0 {
		return nil, nil
	}

	var sum float64
	for i := range window {
		sum += window[i].Value
	}

	agg := models.NewAggregate(sensorID, sum/float64(len(window)), s.now())

	if err := s.db.InsertAggregate(ctx, agg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.metrics.AggregatesComputed.Inc()
	s.logger.Debug("Computed aggregate",
		"sensor_id", sensorID, "aggregate_id", agg.ID, "value", agg.Value, "window", len(window))

	return agg, nil
}
