/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package collector implements the central side of the sensor sync protocol:
// idempotent ingestion, rolling-average aggregation and acknowledged
// distribution of aggregates back to the nodes.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carverauto/sensorsync/pkg/config"
	"github.com/carverauto/sensorsync/pkg/db"
	"github.com/carverauto/sensorsync/pkg/models"
)

// Server owns the collector store and every operation on it. It is safe for
// concurrent use.
type Server struct {
	db                db.Service
	windowSize        int
	skipDuplicateAggs bool
	locks             sensorLocks
	metrics           *Metrics
	logger            *slog.Logger
	now               func() time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithClock replaces the clock stamping computed aggregates.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a collector on top of database. cfg supplies the window
// size and the duplicate-batch policy; nil means defaults.
func NewServer(database db.Service, cfg *config.CollectorConfig, opts ...Option) *Server {
	s := &Server{
		db:         database,
		windowSize: config.DefaultWindowSize,
		logger:     slog.Default(),
		now:        time.Now,
	}

	if cfg != nil {
		if cfg.WindowSize > 0 {
			s.windowSize = cfg.WindowSize
		}

		s.skipDuplicateAggs = cfg.SkipDuplicateAggregation
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}

	return s
}

// Sync handles one submitReadings exchange: the batch is ingested, then every
// pending aggregate of the batch's sensors and of the extra sensors named in
// the request is returned.
func (s *Server) Sync(ctx context.Context, req *models.SubmitReadingsRequest) (*models.SubmitReadingsResponse, error) {
	readings := make([]models.Reading, 0, len(req.Readings))

	for i := range req.Readings {
		r, err := req.Readings[i].ToReading()
		if err != nil {
			s.metrics.BatchesRejected.Inc()

			return nil, fmt.Errorf("%w: %w", ErrMalformedBatch, err)
		}

		readings = append(readings, r)
	}

	result, err := s.Ingest(ctx, readings)
	if err != nil {
		return nil, err
	}

	pending, err := s.PendingAggregates(ctx, union(result.SensorIDs, req.SensorIDs))
	if err != nil {
		return nil, err
	}

	resp := &models.SubmitReadingsResponse{
		AcceptedIDs: result.AcceptedIDs,
		Aggregates:  make([]models.AggregateMessage, 0, len(pending)),
	}

	for i := range pending {
		resp.Aggregates = append(resp.Aggregates, pending[i].ToMessage())
	}

	return resp, nil
}

// CreateSensor registers a new sensor under a fresh identifier.
func (s *Server) CreateSensor(ctx context.Context, sensorType, name string) (*models.Sensor, error) {
	if sensorType == "" || name == "" {
		return nil, fmt.Errorf("%w: type and name are required", ErrInvalidSensor)
	}

	sensor := models.NewSensor(sensorType, name)

	if err := s.db.CreateSensor(ctx, sensor); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.logger.Info("Registered sensor", "sensor_id", sensor.ID, "type", sensorType, "name", name)

	return sensor, nil
}

func (s *Server) ListSensors(ctx context.Context, skip, limit int) ([]models.Sensor, error) {
	sensors, err := s.db.ListSensors(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return sensors, nil
}

// GetSensor returns db.ErrNotFound (wrapped) for unknown ids.
func (s *Server) GetSensor(ctx context.Context, id string) (*models.Sensor, error) {
	sensor, err := s.db.GetSensor(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return sensor, nil
}

// RecentReadings returns the newest stored readings of a sensor.
func (s *Server) RecentReadings(ctx context.Context, sensorID string, limit int) ([]models.Reading, error) {
	readings, err := s.db.RecentReadings(ctx, sensorID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return readings, nil
}

// RecentAggregates returns the newest aggregates of a sensor, acknowledged or not.
func (s *Server) RecentAggregates(ctx context.Context, sensorID string, limit int) ([]models.Aggregate, error) {
	aggs, err := s.db.RecentAggregates(ctx, sensorID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return aggs, nil
}

// union returns the distinct ids of a followed by those of b, keeping order.
func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))

	for _, ids := range [][]string{a, b} {
		for _, id := range ids {
			if id == "" {
				continue
			}

			if _, ok := seen[id]; ok {
				continue
			}

			seen[id] = struct{}{}
			out = append(out, id)
		}
	}

	return out
}
