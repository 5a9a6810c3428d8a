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

package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/relvacode/iso8601"
)

var (
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// ReadingMessage is a Reading in transit.
type ReadingMessage struct {
	EventID   string  `json:"event_id"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	SensorID  string  `json:"sensor_id"`
	Timestamp string  `json:"timestamp"`
}

// AggregateMessage is an Aggregate in transit.
type AggregateMessage struct {
	AggregateID string  `json:"aggregate_id"`
	Value       float64 `json:"value"`
	SensorID    string  `json:"sensor_id"`
	ComputedAt  string  `json:"computed_at"`
}

// SensorMessage is a Sensor in transit.
type SensorMessage struct {
	ID   string `json:"uuid"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// SubmitReadingsRequest carries one sync batch. SensorIDs lists sensors owned by
// the node whose pending aggregates should be returned even when the batch
// holds no reading for them.
type SubmitReadingsRequest struct {
	Readings  []ReadingMessage `json:"events"`
	SensorIDs []string         `json:"sensor_ids,omitempty"`
}

type SubmitReadingsResponse struct {
	AcceptedIDs []string           `json:"received_event_uuids"`
	Aggregates  []AggregateMessage `json:"averages"`
}

// AckRequest lists the aggregates a node has durably stored.
type AckRequest struct {
	IDs []string `json:"received"`
}

type AckResponse struct {
	OK bool `json:"ok"`
}

type RegisterSensorRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// FormatTimestamp renders t as an ISO-8601 string in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := iso8601.ParseString(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %w", ErrInvalidTimestamp, s, err)
	}

	return t.UTC(), nil
}

// ToMessage converts a reading to its wire form.
func (r *Reading) ToMessage() ReadingMessage {
	return ReadingMessage{
		EventID:   r.ID,
		Value:     r.Value,
		Unit:      r.Unit,
		SensorID:  r.SensorID,
		Timestamp: FormatTimestamp(r.ObservedAt),
	}
}

// ToReading converts a wire reading back into the domain type.
func (m *ReadingMessage) ToReading() (Reading, error) {
	observedAt, err := ParseTimestamp(m.Timestamp)
	if err != nil {
		return Reading{}, fmt.Errorf("reading %s: %w", m.EventID, err)
	}

	return Reading{
		ID:         m.EventID,
		SensorID:   m.SensorID,
		Value:      m.Value,
		Unit:       m.Unit,
		ObservedAt: observedAt,
	}, nil
}

// ToMessage converts an aggregate to its wire form.
func (a *Aggregate) ToMessage() AggregateMessage {
	return AggregateMessage{
		AggregateID: a.ID,
		Value:       a.Value,
		SensorID:    a.SensorID,
		ComputedAt:  FormatTimestamp(a.ComputedAt),
	}
}

// ToAggregate converts a wire aggregate back into the domain type.
func (m *AggregateMessage) ToAggregate() (Aggregate, error) {
	computedAt, err := ParseTimestamp(m.ComputedAt)
	if err != nil {
		return Aggregate{}, fmt.Errorf("aggregate %s: %w", m.AggregateID, err)
	}

	return Aggregate{
		ID:         m.AggregateID,
		SensorID:   m.SensorID,
		Value:      m.Value,
		ComputedAt: computedAt,
	}, nil
}

func (s *Sensor) ToMessage() SensorMessage {
	return SensorMessage{ID: s.ID, Type: s.Type, Name: s.Name}
}

func (m *SensorMessage) ToSensor() Sensor {
	return Sensor{ID: m.ID, Type: m.Type, Name: m.Name}
}

// NewSubmitReadingsRequest builds the wire request for a batch.
func NewSubmitReadingsRequest(readings []Reading, sensorIDs []string) *SubmitReadingsRequest {
	req := &SubmitReadingsRequest{
		Readings:  make([]ReadingMessage, 0, len(readings)),
		SensorIDs: sensorIDs,
	}

	for i := range readings {
		req.Readings = append(req.Readings, readings[i].ToMessage())
	}

	return req
}
