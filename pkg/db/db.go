// Package db pkg/db/db.go provides SQLite database functionality for the collector.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	dbOperationTimeout = 5 * time.Second

	// SQLite caps bound parameters per statement; id lists are split below this.
	maxParamsPerStatement = 500

	// SQL statements for database initialization.
	createTablesSQL = `
	-- Registered sensors
	CREATE TABLE IF NOT EXISTS sensors (
		id TEXT PRIMARY KEY,
		sensor_type TEXT NOT NULL,
		sensor_name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Readings received from nodes, keyed by the node-assigned id
	CREATE TABLE IF NOT EXISTS readings (
		id TEXT PRIMARY KEY,
		sensor_id TEXT NOT NULL,
		value REAL NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		observed_at TIMESTAMP NOT NULL,
		received_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Rolling averages, append-only
	CREATE TABLE IF NOT EXISTS aggregates (
		id TEXT PRIMARY KEY,
		sensor_id TEXT NOT NULL,
		value REAL NOT NULL,
		computed_at TIMESTAMP NOT NULL,
		transmitted BOOLEAN NOT NULL DEFAULT 0
	);

	-- Indexes for better query performance
	CREATE INDEX IF NOT EXISTS idx_readings_sensor_observed
		ON readings(sensor_id, observed_at);
	CREATE INDEX IF NOT EXISTS idx_aggregates_sensor_pending
		ON aggregates(sensor_id, transmitted);
	CREATE INDEX IF NOT EXISTS idx_aggregates_sensor_time
		ON aggregates(sensor_id, computed_at);
	`
)

// DB represents the database connection and operations.
type DB struct {
	*sql.DB
}

// New creates a new database connection and initializes the schema.
func New(dbPath string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", dbPath)

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedToEnableWAL, err)
	}

	db := &DB{sqlDB}
	if err := db.initSchema(); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	return db, nil
}

// initSchema creates the database tables if they don't exist.
func (db *DB) initSchema() error {
	_, err := db.Exec(createTablesSQL)

	return err
}

func rollbackOnError(tx *sql.Tx, err error) {
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("Error rolling back transaction", "error", rbErr)
		}
	}
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		slog.Warn("failed to close rows", "error", err)
	}
}

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}

	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// chunk splits ids into groups small enough for one statement.
func chunk(ids []string, size int) [][]string {
	var out [][]string

	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}

	if len(ids) > 0 {
		out = append(out, ids)
	}

	return out
}

func toArgs(ids []string) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	return args
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, dbOperationTimeout)
}
