// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tomtom215/fieldhub/internal/logging"
)

// Sentinel errors for storage operations.
var (
	// ErrEntityNotFound is returned when a row does not exist.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrDuplicateEntity is returned on a uniqueness violation.
	ErrDuplicateEntity = errors.New("duplicate entity")

	// ErrNoResult is returned when a referenced secondary entity does not
	// exist, e.g. the target user of an ownership change.
	ErrNoResult = errors.New("referenced entity not found")

	// ErrStaleVersion is returned when an update supplies an entity
	// version that no longer matches the persisted row.
	ErrStaleVersion = errors.New("stale entity version")

	// ErrSameProjectRequired is returned when an area-device link names a
	// device from a different project than the area's.
	ErrSameProjectRequired = errors.New("area and device must belong to the same project")
)

// DuplicateError reports which fields collided on a uniqueness violation.
// It unwraps to ErrDuplicateEntity so callers can match with errors.Is.
type DuplicateError struct {
	Entity string
	Fields []string
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s on (%s)", e.Entity, strings.Join(e.Fields, ", "))
}

// Unwrap lets errors.Is match ErrDuplicateEntity.
func (e *DuplicateError) Unwrap() error {
	return ErrDuplicateEntity
}

// closeQuietly closes a resource and explicitly ignores any error.
// Used in error paths where Close() failures are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// rollbackQuietly rolls back a transaction. sql.ErrTxDone after a commit
// is expected; anything else is logged.
func rollbackQuietly(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logging.Warn().Err(err).Msg("Transaction rollback failed")
	}
}
