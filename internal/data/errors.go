package data

import (
	"errors"
	"fmt"
)

var (
	// ErrValidationFailed is returned by Save when the record rejected itself.
	// Nothing was written; the record carries the field errors.
	ErrValidationFailed = errors.New("validation failed")

	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrRevisionDelete is returned when a single revision is deleted.
	// Revisions only go away together with their page.
	ErrRevisionDelete = errors.New("revisions are deleted with their page")
)

// SchemaError reports a failed DDL statement.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error on table %s: %v", e.Table, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// StorageError reports a failed statement or transaction, including
// constraint violations that slipped past validation.
type StorageError struct {
	Op    string
	Table string
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s on %s: %v", e.Op, e.Table, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op, table string, err error) error {
	return &StorageError{Op: op, Table: table, Err: err}
}
