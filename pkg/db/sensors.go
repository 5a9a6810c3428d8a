package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carverauto/sensorsync/pkg/models"
)

func (db *DB) CreateSensor(ctx context.Context, sensor *models.Sensor) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := db.ExecContext(ctx, `
		INSERT INTO sensors (id, sensor_type, sensor_name)
		VALUES (?, ?, ?)
	`, sensor.ID, sensor.Type, sensor.Name)
	if err != nil {
		return fmt.Errorf("%w sensor: %w", ErrFailedToInsert, err)
	}

	return nil
}

func (db *DB) GetSensor(ctx context.Context, id string) (*models.Sensor, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var s models.Sensor

	err := db.QueryRowContext(ctx,
		"SELECT id, sensor_type, sensor_name FROM sensors WHERE id = ?", id).
		Scan(&s.ID, &s.Type, &s.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sensor %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("%w sensor: %w", ErrFailedToQuery, err)
	}

	return &s, nil
}

// ListSensors pages through registered sensors in registration order.
func (db *DB) ListSensors(ctx context.Context, skip, limit int) ([]models.Sensor, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := db.QueryContext(ctx, `
		SELECT id, sensor_type, sensor_name
		FROM sensors
		ORDER BY created_at, id
		LIMIT ? OFFSET ?
	`, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("%w sensors: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	sensors := []models.Sensor{}

	for rows.Next() {
		var s models.Sensor
		if err := rows.Scan(&s.ID, &s.Type, &s.Name); err != nil {
			return nil, fmt.Errorf("%w sensor row: %w", ErrFailedToScan, err)
		}

		sensors = append(sensors, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w sensors: %w", ErrFailedToQuery, err)
	}

	return sensors, nil
}
