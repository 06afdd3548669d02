package database

import "errors"

var (
	// ErrDatabaseNotFound is returned by Open when the database file is missing
	// and CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrInvalidRun is returned when a run without an ID is saved.
	ErrInvalidRun = errors.New("run has no id")

	// ErrDuplicateRun is returned when a run ID is saved twice.
	ErrDuplicateRun = errors.New("run already stored")
)
