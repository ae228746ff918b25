// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

/* sharing.go - Shared entity storage
 *
 * Persists share grants: a (resource_name, entity_id, user_id) triple
 * recording that an owner gave another user access to an owned resource.
 * Granting the same triple twice is an upsert, so repeated shares are
 * idempotent and never produce duplicate rows.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/fieldhub/internal/metrics"
	"github.com/tomtom215/fieldhub/internal/models"
)

// UpsertShare records a share grant. An existing grant for the same
// triple is refreshed in place rather than duplicated.
func (db *DB) UpsertShare(ctx context.Context, s *models.SharedEntity) (*models.SharedEntity, error) {
	saved := &models.SharedEntity{}
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO shared_entities (resource_name, entity_id, user_id, granted_by)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (resource_name, entity_id, user_id)
		 DO UPDATE SET granted_by = EXCLUDED.granted_by
		 RETURNING id, resource_name, entity_id, user_id, granted_by, granted_at`,
		s.ResourceName, s.EntityID, s.UserID, s.GrantedBy).
		Scan(&saved.ID, &saved.ResourceName, &saved.EntityID, &saved.UserID,
			&saved.GrantedBy, &saved.GrantedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert share: %w", err)
	}
	return saved, nil
}

// DeleteShare removes one share grant by triple.
func (db *DB) DeleteShare(ctx context.Context, resourceName string, entityID, userID int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM shared_entities
		 WHERE resource_name = ? AND entity_id = ? AND user_id = ?`,
		resourceName, entityID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEntityNotFound
	}
	return nil
}

// IsShared reports whether the given user holds a share grant on the
// given resource instance.
func (db *DB) IsShared(ctx context.Context, resourceName string, entityID, userID int64) (bool, error) {
	start := time.Now()
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM shared_entities
		 WHERE resource_name = ? AND entity_id = ? AND user_id = ?`,
		resourceName, entityID, userID).Scan(&count)
	metrics.RecordDBQuery("select", "shared_entities", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to check share: %w", err)
	}
	return count > 0, nil
}

// ListSharesForResource returns every grant on one resource instance.
func (db *DB) ListSharesForResource(ctx context.Context, resourceName string, entityID int64) ([]*models.SharedEntity, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, resource_name, entity_id, user_id, granted_by, granted_at
		 FROM shared_entities
		 WHERE resource_name = ? AND entity_id = ?
		 ORDER BY id`,
		resourceName, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	defer closeQuietly(rows)

	return collectShares(rows)
}

// ListSharesForUser returns every grant held by one user.
func (db *DB) ListSharesForUser(ctx context.Context, userID int64) ([]*models.SharedEntity, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, resource_name, entity_id, user_id, granted_by, granted_at
		 FROM shared_entities
		 WHERE user_id = ?
		 ORDER BY id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	defer closeQuietly(rows)

	return collectShares(rows)
}

// GetShare returns one share grant by id.
func (db *DB) GetShare(ctx context.Context, id int64) (*models.SharedEntity, error) {
	s := &models.SharedEntity{}
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, resource_name, entity_id, user_id, granted_by, granted_at
		 FROM shared_entities WHERE id = ?`, id).
		Scan(&s.ID, &s.ResourceName, &s.EntityID, &s.UserID, &s.GrantedBy, &s.GrantedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share %d: %w", id, err)
	}
	return s, nil
}

func collectShares(rows *sql.Rows) ([]*models.SharedEntity, error) {
	shares := make([]*models.SharedEntity, 0)
	for rows.Next() {
		s := &models.SharedEntity{}
		err := rows.Scan(&s.ID, &s.ResourceName, &s.EntityID, &s.UserID,
			&s.GrantedBy, &s.GrantedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}
	return shares, nil
}
