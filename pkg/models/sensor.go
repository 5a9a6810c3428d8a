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

// Package models pkg/models/sensor.go holds the entities shared by the node and the collector.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Sensor is a registered data source. It never changes after registration.
type Sensor struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// Reading is a single observation produced by a node. The ID is assigned once,
// when the reading is created, and is what makes retransmission safe.
type Reading struct {
	ID          string    `json:"id"`
	SensorID    string    `json:"sensor_id"`
	Value       float64   `json:"value"`
	Unit        string    `json:"unit"`
	ObservedAt  time.Time `json:"observed_at"`
	Transmitted bool      `json:"transmitted"`
}

// Aggregate is a rolling average computed by the collector. Value is immutable
// once computed; only Transmitted ever flips, and only to true.
type Aggregate struct {
	ID          string    `json:"id"`
	SensorID    string    `json:"sensor_id"`
	Value       float64   `json:"value"`
	ComputedAt  time.Time `json:"computed_at"`
	Transmitted bool      `json:"transmitted"`
}

// NewReading creates an untransmitted reading with a fresh identifier.
func NewReading(sensorID string, value float64, unit string, observedAt time.Time) *Reading {
	return &Reading{
		ID:         uuid.NewString(),
		SensorID:   sensorID,
		Value:      value,
		Unit:       unit,
		ObservedAt: observedAt.UTC(),
	}
}

// NewAggregate creates an untransmitted aggregate with a fresh identifier.
func NewAggregate(sensorID string, value float64, computedAt time.Time) *Aggregate {
	return &Aggregate{
		ID:         uuid.NewString(),
		SensorID:   sensorID,
		Value:      value,
		ComputedAt: computedAt.UTC(),
	}
}

// NewSensor creates a sensor with a fresh identifier.
func NewSensor(sensorType, name string) *Sensor {
	return &Sensor{
		ID:   uuid.NewString(),
		Type: sensorType,
		Name: name,
	}
}
