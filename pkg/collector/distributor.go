package collector

import (
	"context"
	"fmt"

	"github.com/carverauto/sensorsync/pkg/models"
)

// PendingAggregates returns the unacknowledged aggregates of exactly the given
// sensors, oldest first. Aggregates stay pending, and are returned again on
// every call, until acknowledged.
func (s *Server) PendingAggregates(ctx context.Context, sensorIDs []string) ([]models.Aggregate, error) {
	ids := union(sensorIDs, nil)
	if len(ids) == 0 {
		return []models.Aggregate{}, nil
	}

	pending, err := s.db.PendingAggregates(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if pending == nil {
		pending = []models.Aggregate{}
	}

	s.metrics.AggregatesDistributed.Add(float64(len(pending)))

	return pending, nil
}

// Acknowledge marks the given aggregates as delivered. Unknown and already
// acknowledged ids are ignored. It returns how many aggregates changed state.
func (s *Server) Acknowledge(ctx context.Context, ids []string) (int, error) {
	ids = union(ids, nil)
	if len(ids) == 0 {
		return 0, nil
	}

	n, err := s.db.AcknowledgeAggregates(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.metrics.AggregatesAcked.Add(float64(n))

	if n < int64(len(ids)) {
		s.logger.Debug("Ignored unknown or repeated acknowledgements", "received", len(ids), "acked", n)
	}

	return int(n), nil
}
