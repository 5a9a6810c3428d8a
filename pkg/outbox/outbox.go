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

// Package outbox implements the node's durable store-and-forward buffer on
// top of a local SQLite file.
package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/carverauto/sensorsync/pkg/models"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

const (
	maxIDsPerStatement = 500

	schemaSQL = `
	CREATE TABLE IF NOT EXISTS sensors (
		id TEXT PRIMARY KEY,
		sensor_type TEXT NOT NULL,
		sensor_name TEXT NOT NULL,
		UNIQUE (sensor_type, sensor_name)
	);

	CREATE TABLE IF NOT EXISTS readings (
		id TEXT PRIMARY KEY,
		sensor_id TEXT NOT NULL,
		value REAL NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		observed_at INTEGER NOT NULL,
		transmitted INTEGER NOT NULL DEFAULT 0
	);

	-- transmitted on a node-side aggregate means its ack reached the collector
	CREATE TABLE IF NOT EXISTS aggregates (
		id TEXT PRIMARY KEY,
		sensor_id TEXT NOT NULL,
		value REAL NOT NULL,
		computed_at INTEGER NOT NULL,
		transmitted INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_readings_pending ON readings(transmitted, observed_at);
	CREATE INDEX IF NOT EXISTS idx_readings_sensor ON readings(sensor_id, observed_at);
	CREATE INDEX IF NOT EXISTS idx_aggregates_pending ON aggregates(transmitted, computed_at);
	CREATE INDEX IF NOT EXISTS idx_aggregates_sensor ON aggregates(sensor_id, computed_at);
	`
)

// Store is the SQLite backed Outbox.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Outbox = (*Store)(nil)

// Open opens (creating if needed) the outbox file at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStorage, path, err)
	}

	// SQLite has a single writer; one connection keeps writers from racing
	// each other into SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("%w: init schema: %w", ErrStorage, err)
	}

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", ErrStorage, err)
	}

	return nil
}

func (s *Store) Append(ctx context.Context, reading *models.Reading) error {
	if err := validateReading(reading); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO readings (id, sensor_id, value, unit, observed_at, transmitted)
		VALUES (?, ?, ?, ?, ?, 0)
	`, reading.ID, reading.SensorID, reading.Value, reading.Unit, reading.ObservedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("%w: append reading %s: %w", ErrStorage, reading.ID, err)
	}

	return nil
}

// validateReading applies the collector's batch rules to a single reading, so
// that nothing the collector would reject is ever queued.
func validateReading(r *models.Reading) error {
	switch {
	case r == nil:
		return fmt.Errorf("%w: %w", ErrInvalidReading, errNilReading)
	case r.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidReading)
	case r.SensorID == "":
		return fmt.Errorf("%w: reading %s: empty sensor id", ErrInvalidReading, r.ID)
	case math.IsNaN(r.Value) || math.IsInf(r.Value, 0):
		return fmt.Errorf("%w: reading %s: value %v is not finite", ErrInvalidReading, r.ID, r.Value)
	case r.ObservedAt.IsZero():
		return fmt.Errorf("%w: reading %s: missing timestamp", ErrInvalidReading, r.ID)
	case !time.Unix(0, r.ObservedAt.UnixNano()).Equal(r.ObservedAt):
		return fmt.Errorf("%w: reading %s: timestamp %v out of range", ErrInvalidReading, r.ID, r.ObservedAt)
	}

	return nil
}

// UntransmittedReadings returns up to limit untransmitted readings, oldest
// first. A limit below 1 returns all of them.
func (s *Store) UntransmittedReadings(ctx context.Context, limit int) ([]models.Reading, error) {
	query := `
		SELECT id, sensor_id, value, unit, observed_at, transmitted
		FROM readings
		WHERE transmitted = 0
		ORDER BY observed_at, id
	`
	args := []interface{}{}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	readings, err := s.queryReadings(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: untransmitted readings: %w", ErrStorage, err)
	}

	return readings, nil
}

func (s *Store) MarkTransmitted(ctx context.Context, ids []string) error {
	if err := s.updateIDs(ctx, "UPDATE readings SET transmitted = 1 WHERE id IN (%s)", ids); err != nil {
		return fmt.Errorf("%w: mark transmitted: %w", ErrStorage, err)
	}

	return nil
}

func (s *Store) StoreAggregates(ctx context.Context, aggs []models.Aggregate) (err error) {
	if len(aggs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrStorage, err)
	}
	defer func() { s.rollbackOnError(tx, err) }()

	for i := range aggs {
		a := &aggs[i]

		if _, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO aggregates (id, sensor_id, value, computed_at, transmitted)
			VALUES (?, ?, ?, ?, 0)
		`, a.ID, a.SensorID, a.Value, a.ComputedAt.UnixNano()); err != nil {
			return fmt.Errorf("%w: store aggregate %s: %w", ErrStorage, a.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit aggregates: %w", ErrStorage, err)
	}

	return nil
}

func (s *Store) UnackedAggregateIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM aggregates WHERE transmitted = 0 ORDER BY computed_at, id")
	if err != nil {
		return nil, fmt.Errorf("%w: unacked aggregates: %w", ErrStorage, err)
	}
	defer s.closeRows(rows)

	var ids []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan aggregate id: %w", ErrStorage, err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: unacked aggregates: %w", ErrStorage, err)
	}

	return ids, nil
}

func (s *Store) MarkAggregatesAcked(ctx context.Context, ids []string) error {
	if err := s.updateIDs(ctx, "UPDATE aggregates SET transmitted = 1 WHERE id IN (%s)", ids); err != nil {
		return fmt.Errorf("%w: mark aggregates acked: %w", ErrStorage, err)
	}

	return nil
}

// PendingCount returns the number of readings still waiting for the collector.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	var n int

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM readings WHERE transmitted = 0").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: pending count: %w", ErrStorage, err)
	}

	return n, nil
}

func (s *Store) SensorByName(ctx context.Context, sensorType, name string) (*models.Sensor, error) {
	var sensor models.Sensor

	err := s.db.QueryRowContext(ctx, `
		SELECT id, sensor_type, sensor_name FROM sensors
		WHERE sensor_type = ? AND sensor_name = ?
	`, sensorType, name).Scan(&sensor.ID, &sensor.Type, &sensor.Name)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("%w: %s/%s", ErrSensorNotFound, sensorType, name)
	case err != nil:
		return nil, fmt.Errorf("%w: sensor lookup: %w", ErrStorage, err)
	}

	return &sensor, nil
}

func (s *Store) SaveSensor(ctx context.Context, sensor *models.Sensor) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO sensors (id, sensor_type, sensor_name) VALUES (?, ?, ?)
	`, sensor.ID, sensor.Type, sensor.Name); err != nil {
		return fmt.Errorf("%w: save sensor: %w", ErrStorage, err)
	}

	return nil
}

// Readings returns the newest readings of a sensor regardless of state.
func (s *Store) Readings(ctx context.Context, sensorID string, limit int) ([]models.Reading, error) {
	readings, err := s.queryReadings(ctx, `
		SELECT id, sensor_id, value, unit, observed_at, transmitted
		FROM readings
		WHERE sensor_id = ?
		ORDER BY observed_at DESC, id DESC
		LIMIT ?
	`, sensorID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: readings: %w", ErrStorage, err)
	}

	return readings, nil
}

// Aggregates returns the newest aggregates received for a sensor.
func (s *Store) Aggregates(ctx context.Context, sensorID string, limit int) ([]models.Aggregate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sensor_id, value, computed_at, transmitted
		FROM aggregates
		WHERE sensor_id = ?
		ORDER BY computed_at DESC, id DESC
		LIMIT ?
	`, sensorID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregates: %w", ErrStorage, err)
	}
	defer s.closeRows(rows)

	var aggs []models.Aggregate

	for rows.Next() {
		var (
			a          models.Aggregate
			computedAt int64
		)

		if err := rows.Scan(&a.ID, &a.SensorID, &a.Value, &computedAt, &a.Transmitted); err != nil {
			return nil, fmt.Errorf("%w: scan aggregate: %w", ErrStorage, err)
		}

		a.ComputedAt = time.Unix(0, computedAt).UTC()
		aggs = append(aggs, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: aggregates: %w", ErrStorage, err)
	}

	return aggs, nil
}

func (s *Store) queryReadings(ctx context.Context, query string, args ...interface{}) ([]models.Reading, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	var readings []models.Reading

	for rows.Next() {
		var (
			r          models.Reading
			observedAt int64
		)

		if err := rows.Scan(&r.ID, &r.SensorID, &r.Value, &r.Unit, &observedAt, &r.Transmitted); err != nil {
			return nil, err
		}

		r.ObservedAt = time.Unix(0, observedAt).UTC()
		readings = append(readings, r)
	}

	return readings, rows.Err()
}

// updateIDs runs an "... WHERE id IN (%s)" statement over ids in one
// transaction, splitting the list to stay under SQLite's parameter limit.
func (s *Store) updateIDs(ctx context.Context, format string, ids []string) (err error) {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { s.rollbackOnError(tx, err) }()

	for start := 0; start < len(ids); start += maxIDsPerStatement {
		end := min(start+maxIDsPerStatement, len(ids))
		group := ids[start:end]

		args := make([]interface{}, len(group))
		for i, id := range group {
			args[i] = id
		}

		marks := strings.TrimSuffix(strings.Repeat("?,", len(group)), ",")

		if _, err = tx.ExecContext(ctx, fmt.Sprintf(format, marks), args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) rollbackOnError(tx *sql.Tx, err error) {
	if err == nil {
		return
	}

	if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
		s.logger.Error("Failed to roll back outbox transaction", "error", rbErr)
	}
}

func (s *Store) closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		s.logger.Warn("Failed to close rows", "error", err)
	}
}
