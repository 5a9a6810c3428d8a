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

// Package syncclient drains a node's outbox to the collector and brings the
// collector's aggregates back, acknowledging them once stored.
package syncclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carverauto/sensorsync/pkg/config"
	"github.com/carverauto/sensorsync/pkg/models"
	"github.com/carverauto/sensorsync/pkg/outbox"
)

// Client runs sync cycles against one collector.
type Client struct {
	outbox    outbox.Outbox
	transport Transport
	interval  time.Duration
	timeout   time.Duration
	batchSize int
	skipIdle  bool
	metrics   *Metrics
	logger    *slog.Logger

	running atomic.Bool

	mu        sync.RWMutex
	sensorIDs []string
}

// CycleResult summarizes one completed cycle.
type CycleResult struct {
	Skipped            bool
	Submitted          int
	Transmitted        int
	AggregatesReceived int
	Acked              int
}

// Option customizes a Client.
type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a sync client. Interval, request timeout, batch size and
// idle skipping come from cfg.
func NewClient(ob outbox.Outbox, transport Transport, cfg *config.NodeConfig, opts ...Option) *Client {
	c := &Client{
		outbox:    ob,
		transport: transport,
		interval:  time.Duration(cfg.SyncInterval),
		timeout:   time.Duration(cfg.RequestTimeout),
		batchSize: cfg.MaxBatchSize,
		skipIdle:  cfg.SkipIdleCycles,
		logger:    slog.Default(),
	}

	if c.interval <= 0 {
		c.interval = config.DefaultSyncInterval
	}

	if c.timeout <= 0 {
		c.timeout = config.DefaultRequestTimeout
	}

	if c.batchSize <= 0 {
		c.batchSize = config.DefaultMaxBatchSize
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.metrics == nil {
		c.metrics = NewMetrics(nil)
	}

	return c
}

// SensorIDs returns the sensors this node owns. Every submission names them
// so that their pending aggregates are drained even when no reading is sent.
func (c *Client) SensorIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.sensorIDs)
}

func (c *Client) trackSensor(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !slices.Contains(c.sensorIDs, id) {
		c.sensorIDs = append(c.sensorIDs, id)
	}
}

// EnsureSensor returns the locally known sensor with this type and name, or
// registers it with the collector and stores it when there is none.
func (c *Client) EnsureSensor(ctx context.Context, sensorType, name string) (*models.Sensor, error) {
	sensor, err := c.outbox.SensorByName(ctx, sensorType, name)
	if err == nil {
		c.trackSensor(sensor.ID)
		return sensor, nil
	}

	if !errors.Is(err, outbox.ErrSensorNotFound) {
		return nil, err
	}

	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.transport.RegisterSensor(rctx, &models.RegisterSensorRequest{Type: sensorType, Name: name})
	if err != nil {
		return nil, classify(err)
	}

	if msg == nil || msg.ID == "" {
		return nil, fmt.Errorf("%w: %w", ErrProtocol, errEmptySensorReply)
	}

	registered := msg.ToSensor()

	if err := c.outbox.SaveSensor(ctx, &registered); err != nil {
		return nil, err
	}

	c.trackSensor(registered.ID)

	c.logger.Info("Registered sensor with collector", "sensor_id", registered.ID, "type", sensorType, "name", name)

	return &registered, nil
}

// Run performs one cycle immediately and then one per interval until ctx is
// canceled. Transport and protocol failures are retried next period; an
// outbox storage failure stops the loop and is returned.
func (c *Client) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.Info("Starting sync client", "interval", c.interval, "request_timeout", c.timeout)

	if err := c.runOnce(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.runOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func (c *Client) runOnce(ctx context.Context) error {
	result, err := c.RunCycle(ctx)

	switch {
	case err == nil:
		if !result.Skipped {
			c.logger.Debug("Sync cycle completed",
				"submitted", result.Submitted,
				"transmitted", result.Transmitted,
				"aggregates", result.AggregatesReceived,
				"acked", result.Acked)
		}

		return nil
	case ctx.Err() != nil:
		// Shutting down; a canceled outbox call is not a storage failure.
		return nil
	case errors.Is(err, outbox.ErrStorage):
		c.logger.Error("Outbox storage failed, stopping sync", "error", err)
		return err
	default:
		c.logger.Warn("Sync cycle failed, retrying next period", "error", err)
		return nil
	}
}

// RunCycle performs one sync cycle. It returns ErrCycleInProgress if another
// cycle is running.
func (c *Client) RunCycle(ctx context.Context) (*CycleResult, error) {
	if !c.running.CompareAndSwap(false, true) {
		c.metrics.Cycles.WithLabelValues(resultBusy).Inc()
		return nil, ErrCycleInProgress
	}
	defer c.running.Store(false)

	start := time.Now()
	result, err := c.cycle(ctx)

	c.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	c.metrics.Cycles.WithLabelValues(resultLabel(result, err)).Inc()

	return result, err
}

func (c *Client) cycle(ctx context.Context) (*CycleResult, error) {
	readings, err := c.outbox.UntransmittedReadings(ctx, c.batchSize)
	if err != nil {
		return nil, err
	}

	unacked, err := c.outbox.UnackedAggregateIDs(ctx)
	if err != nil {
		return nil, err
	}

	c.metrics.OutboxPending.Set(float64(len(readings)))

	if c.skipIdle && len(readings) == 0 && len(unacked) == 0 {
		return &CycleResult{Skipped: true}, nil
	}

	result := &CycleResult{}

	var received []string

	// A full batch means more readings may be waiting, so the cycle keeps
	// sending batches until one comes back short or nothing is accepted.
	for batch := 0; ; batch++ {
		transmitted, aggIDs, err := c.sendBatch(ctx, readings)
		if err != nil {
			if batch == 0 {
				return nil, err
			}

			// Aggregates of earlier batches stay unacked locally and are
			// acked next cycle.
			return result, err
		}

		received = dedupe(append(received, aggIDs...))

		result.Submitted += len(readings)
		result.Transmitted += transmitted
		result.AggregatesReceived = len(received)

		if len(readings) < c.batchSize || transmitted == 0 {
			break
		}

		if readings, err = c.outbox.UntransmittedReadings(ctx, c.batchSize); err != nil {
			return result, err
		}

		if len(readings) == 0 {
			break
		}
	}

	ackIDs := dedupe(append(received, unacked...))
	if len(ackIDs) == 0 {
		return result, nil
	}

	// A failed ack leaves the aggregates unacked locally; they are acked
	// again next cycle.
	if err := c.acknowledge(ctx, ackIDs); err != nil {
		return result, err
	}

	if err := c.outbox.MarkAggregatesAcked(ctx, ackIDs); err != nil {
		return result, err
	}

	c.metrics.AcksSent.Add(float64(len(ackIDs)))
	result.Acked = len(ackIDs)

	return result, nil
}

// sendBatch submits one batch and applies the reply locally. It returns how
// many readings were marked transmitted and the ids of the stored aggregates.
// Nothing is written until the whole reply is known to be usable.
func (c *Client) sendBatch(ctx context.Context, readings []models.Reading) (int, []string, error) {
	resp, err := c.submit(ctx, models.NewSubmitReadingsRequest(readings, c.SensorIDs()))
	if err != nil {
		return 0, nil, err
	}

	c.metrics.ReadingsSent.Add(float64(len(readings)))

	aggs, err := decodeAggregates(resp.Aggregates)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	transmitted := acceptedSubset(readings, resp.AcceptedIDs)

	if err := c.outbox.MarkTransmitted(ctx, transmitted); err != nil {
		return 0, nil, err
	}

	if err := c.outbox.StoreAggregates(ctx, aggs); err != nil {
		return 0, nil, err
	}

	c.metrics.ReadingsAccepted.Add(float64(len(transmitted)))
	c.metrics.AggregatesReceived.Add(float64(len(aggs)))

	ids := make([]string, 0, len(aggs))
	for i := range aggs {
		ids = append(ids, aggs[i].ID)
	}

	return len(transmitted), ids, nil
}

func (c *Client) submit(ctx context.Context, req *models.SubmitReadingsRequest) (*models.SubmitReadingsResponse, error) {
	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.transport.SubmitReadings(rctx, req)
	if err != nil {
		return nil, classify(err)
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: empty submit response", ErrProtocol)
	}

	return resp, nil
}

func (c *Client) acknowledge(ctx context.Context, ids []string) error {
	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.transport.AcknowledgeAggregates(rctx, &models.AckRequest{IDs: ids})
	if err != nil {
		return classify(err)
	}

	if resp == nil || !resp.OK {
		return fmt.Errorf("%w: %w", ErrProtocol, errAckRefused)
	}

	return nil
}

// decodeAggregates converts and checks every returned aggregate, failing on
// the first unusable one.
func decodeAggregates(msgs []models.AggregateMessage) ([]models.Aggregate, error) {
	aggs := make([]models.Aggregate, 0, len(msgs))

	for i := range msgs {
		agg, err := msgs[i].ToAggregate()
		if err != nil {
			return nil, err
		}

		switch {
		case agg.ID == "":
			return nil, errEmptyAggregateID
		case agg.SensorID == "":
			return nil, fmt.Errorf("aggregate %s: %w", agg.ID, errEmptyAggregateSrc)
		}

		aggs = append(aggs, agg)
	}

	return aggs, nil
}

// acceptedSubset returns the ids of readings that the collector accepted.
// Accepted ids the node did not submit in this batch are ignored.
func acceptedSubset(readings []models.Reading, accepted []string) []string {
	acceptedSet := make(map[string]struct{}, len(accepted))
	for _, id := range accepted {
		acceptedSet[id] = struct{}{}
	}

	ids := make([]string, 0, len(readings))

	for i := range readings {
		if _, ok := acceptedSet[readings[i].ID]; ok {
			ids = append(ids, readings[i].ID)
		}
	}

	return ids
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

// classify makes sure a transport failure carries one of the package's
// sentinels.
func classify(err error) error {
	if errors.Is(err, ErrTransport) || errors.Is(err, ErrProtocol) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrTransport, err)
}

func resultLabel(result *CycleResult, err error) string {
	switch {
	case err == nil && result != nil && result.Skipped:
		return resultSkipped
	case err == nil:
		return resultOK
	case errors.Is(err, outbox.ErrStorage):
		return resultStorage
	case errors.Is(err, ErrProtocol):
		return resultProtocol
	default:
		return resultTransport
	}
}

// NewTransport builds the transport selected by cfg.
func NewTransport(ctx context.Context, cfg *config.NodeConfig, logger *slog.Logger) (Transport, error) {
	switch cfg.Transport {
	case config.TransportGRPC, "":
		t, err := NewGRPCTransport(ctx, cfg.CollectorAddress, cfg.Security, logger)
		if err != nil {
			return nil, err
		}

		return t, nil
	case config.TransportHTTP:
		return NewHTTPTransport(cfg.CollectorAddress, time.Duration(cfg.RequestTimeout)), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownTransport, cfg.Transport)
	}
}
