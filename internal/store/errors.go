// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage matches every [StorageError]. Callers use errors.Is to tell
	// storage failures apart from domain errors.
	ErrStorage = errors.New("storage error")

	// ErrNotFound is returned when a row addressed by id or key does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnknownTable is returned when the generic table API is called with
	// a table it does not manage.
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownColumn is returned when a record or ordering refers to a
	// column that is not part of the table.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNoRemoteKey is returned by UpsertByRemoteID for tables without a
	// remote_id column.
	ErrNoRemoteKey = errors.New("table has no remote id")

	// ErrEmptyPredicate is returned by DeleteWhere when no predicate is given.
	ErrEmptyPredicate = errors.New("empty predicate")
)

// Low-level database operation errors. These are wrapped inside
// [StorageError] when a SQL-level operation fails.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing an INSERT, UPDATE or
	// DELETE fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRows is returned when scanning column values fails.
	ErrScanningRows = errors.New("failed to scan rows")
)

// StorageError describes a failed storage operation. It matches [ErrStorage]
// and unwraps to the driver error.
type StorageError struct {
	Op        string
	Table     string
	Retryable bool
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports whether target is [ErrStorage].
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
