package db

import (
	"context"
	"fmt"

	"github.com/carverauto/sensorsync/pkg/models"
)

// InsertAggregate appends a freshly computed aggregate.
func (db *DB) InsertAggregate(ctx context.Context, agg *models.Aggregate) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := db.ExecContext(ctx, `
		INSERT INTO aggregates (id, sensor_id, value, computed_at, transmitted)
		VALUES (?, ?, ?, ?, ?)
	`, agg.ID, agg.SensorID, agg.Value, agg.ComputedAt.UTC(), agg.Transmitted)
	if err != nil {
		return fmt.Errorf("%w aggregate %s: %w", ErrFailedToInsert, agg.ID, err)
	}

	return nil
}

// PendingAggregates returns every untransmitted aggregate belonging to one of
// the given sensors, oldest first.
func (db *DB) PendingAggregates(ctx context.Context, sensorIDs []string) ([]models.Aggregate, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var pending []models.Aggregate

	for _, ids := range chunk(sensorIDs, maxParamsPerStatement) {
		query := fmt.Sprintf(`
			SELECT id, sensor_id, value, computed_at, transmitted
			FROM aggregates
			WHERE transmitted = 0 AND sensor_id IN (%s)
			ORDER BY computed_at, id
		`, placeholders(len(ids)))

		aggs, err := db.queryAggregates(ctx, query, toArgs(ids)...)
		if err != nil {
			return nil, fmt.Errorf("%w pending aggregates: %w", ErrFailedToQuery, err)
		}

		pending = append(pending, aggs...)
	}

	return pending, nil
}

// AcknowledgeAggregates flags the given aggregates as transmitted. Unknown or
// already transmitted ids are ignored. It returns the number of rows that
// changed state.
func (db *DB) AcknowledgeAggregates(ctx context.Context, ids []string) (acked int64, err error) {
	if len(ids) == 0 {
		return 0, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFailedToBeginTx, err)
	}
	defer func() { rollbackOnError(tx, err) }()

	for _, group := range chunk(ids, maxParamsPerStatement) {
		query := fmt.Sprintf(
			"UPDATE aggregates SET transmitted = 1 WHERE transmitted = 0 AND id IN (%s)",
			placeholders(len(group)))

		result, execErr := tx.ExecContext(ctx, query, toArgs(group)...)
		if execErr != nil {
			err = fmt.Errorf("%w aggregates: %w", ErrFailedToUpdate, execErr)

			return 0, err
		}

		n, rowsErr := result.RowsAffected()
		if rowsErr != nil {
			err = fmt.Errorf("%w aggregates: %w", ErrFailedToUpdate, rowsErr)

			return 0, err
		}

		acked += n
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFailedToCommit, err)
	}

	return acked, nil
}

// RecentAggregates returns the newest aggregates of a sensor regardless of
// their transmission state.
func (db *DB) RecentAggregates(ctx context.Context, sensorID string, limit int) ([]models.Aggregate, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	aggs, err := db.queryAggregates(ctx, `
		SELECT id, sensor_id, value, computed_at, transmitted
		FROM aggregates
		WHERE sensor_id = ?
		ORDER BY computed_at DESC, id DESC
		LIMIT ?
	`, sensorID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w recent aggregates: %w", ErrFailedToQuery, err)
	}

	return aggs, nil
}

func (db *DB) queryAggregates(ctx context.Context, query string, args ...interface{}) ([]models.Aggregate, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var aggs []models.Aggregate

	for rows.Next() {
		var a models.Aggregate

		if err := rows.Scan(&a.ID, &a.SensorID, &a.Value, &a.ComputedAt, &a.Transmitted); err != nil {
			return nil, fmt.Errorf("%w aggregate row: %w", ErrFailedToScan, err)
		}

		a.ComputedAt = a.ComputedAt.UTC()
		aggs = append(aggs, a)
	}

	return aggs, rows.Err()
}
