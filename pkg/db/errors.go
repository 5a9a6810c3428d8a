// Package db pkg/db/errors.go provides errors for the db package.

package db

import "errors"

var (
	// Core database errors.

	ErrDatabaseError = errors.New("database error")
	ErrNotFound      = errors.New("not found")

	// Operation errors.

	ErrFailedToBeginTx   = errors.New("failed to begin transaction")
	ErrFailedToCommit    = errors.New("failed to commit transaction")
	ErrFailedToScan      = errors.New("failed to scan")
	ErrFailedToQuery     = errors.New("failed to query")
	ErrFailedToInsert    = errors.New("failed to insert")
	ErrFailedToUpdate    = errors.New("failed to update")
	ErrFailedToInit      = errors.New("failed to initialize schema")
	ErrFailedToEnableWAL = errors.New("failed to enable WAL mode")
	ErrFailedOpenDB      = errors.New("failed to open database")
)
