package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/carverauto/sensorsync/pkg/models"
)

// InsertReadings stores a batch in a single transaction. A reading whose id
// already exists is left untouched.
func (db *DB) InsertReadings(ctx context.Context, readings []models.Reading) (inserted int, err error) {
	if len(readings) == 0 {
		return 0, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFailedToBeginTx, err)
	}
	defer func() { rollbackOnError(tx, err) }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO readings (id, sensor_id, value, unit, observed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("%w readings: %w", ErrFailedToInsert, err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmt)

	for i := range readings {
		r := &readings[i]

		result, execErr := stmt.ExecContext(ctx, r.ID, r.SensorID, r.Value, r.Unit, r.ObservedAt.UTC())
		if execErr != nil {
			err = fmt.Errorf("%w reading %s: %w", ErrFailedToInsert, r.ID, execErr)

			return 0, err
		}

		n, rowsErr := result.RowsAffected()
		if rowsErr != nil {
			err = fmt.Errorf("%w reading %s: %w", ErrFailedToInsert, r.ID, rowsErr)

			return 0, err
		}

		inserted += int(n)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFailedToCommit, err)
	}

	return inserted, nil
}

// RecentReadings returns the newest readings of a sensor by observation time.
func (db *DB) RecentReadings(ctx context.Context, sensorID string, limit int) ([]models.Reading, error) {
	const query = `
		SELECT id, sensor_id, value, unit, observed_at
		FROM readings
		WHERE sensor_id = ?
		ORDER BY observed_at DESC, id DESC
		LIMIT ?
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := db.QueryContext(ctx, query, sensorID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w recent readings: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	readings := []models.Reading{}

	for rows.Next() {
		var r models.Reading

		if err := rows.Scan(&r.ID, &r.SensorID, &r.Value, &r.Unit, &r.ObservedAt); err != nil {
			return nil, fmt.Errorf("%w reading row: %w", ErrFailedToScan, err)
		}

		r.ObservedAt = r.ObservedAt.UTC()
		readings = append(readings, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w recent readings: %w", ErrFailedToQuery, err)
	}

	return readings, nil
}
