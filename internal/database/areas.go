// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/fieldhub/internal/models"
)

const areaColumns = `id, project_id, name, description, area_view_type,
	entity_version, created_at, updated_at`

// scanArea scans an area row, handling nullable optional fields.
func scanArea(scanner interface{ Scan(dest ...interface{}) error }) (*models.Area, error) {
	a := &models.Area{}
	var description, viewType sql.NullString

	err := scanner.Scan(&a.ID, &a.ProjectID, &a.Name, &description, &viewType,
		&a.EntityVersion, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.Description = description.String
	a.AreaViewType = viewType.String
	return a, nil
}

// InsertArea persists a new area.
func (db *DB) InsertArea(ctx context.Context, a *models.Area) (*models.Area, error) {
	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO areas (project_id, name, description, area_view_type, entity_version)
		 VALUES (?, ?, ?, ?, 0)
		 RETURNING `+areaColumns,
		a.ProjectID, a.Name, nullString(a.Description), nullString(a.AreaViewType))

	saved, err := scanArea(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert area: %w", err)
	}
	return saved, nil
}

// GetArea returns an area by id.
func (db *DB) GetArea(ctx context.Context, id int64) (*models.Area, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+areaColumns+` FROM areas WHERE id = ?`, id)

	a, err := scanArea(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get area %d: %w", id, err)
	}
	return a, nil
}

// UpdateArea persists area changes with an optimistic version check.
func (db *DB) UpdateArea(ctx context.Context, a *models.Area) (*models.Area, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE areas
		 SET name = ?, description = ?, area_view_type = ?,
		     entity_version = entity_version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND entity_version = ?`,
		a.Name, nullString(a.Description), nullString(a.AreaViewType),
		a.ID, a.EntityVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to update area %d: %w", a.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read update result: %w", err)
	}
	if n == 0 {
		if _, getErr := db.GetArea(ctx, a.ID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStaleVersion
	}

	return db.GetArea(ctx, a.ID)
}

// DeleteArea removes an area and its device links atomically. The linked
// devices themselves are left intact, and nothing cascades upward.
func (db *DB) DeleteArea(ctx context.Context, id int64) error {
	tx, err := db.begin(ctx)
	if err != nil {
		return err
	}
	defer rollbackQuietly(tx)

	res, err := tx.ExecContext(ctx, `DELETE FROM areas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete area %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEntityNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM area_devices WHERE area_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete area %d device links: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit area deletion: %w", err)
	}
	return nil
}

// ListAreasByProject returns the areas of one project, ordered by id.
func (db *DB) ListAreasByProject(ctx context.Context, projectID int64) ([]*models.Area, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+areaColumns+` FROM areas WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}
	defer closeQuietly(rows)

	areas := make([]*models.Area, 0)
	for rows.Next() {
		a, err := scanArea(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan area: %w", err)
		}
		areas = append(areas, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate areas: %w", err)
	}
	return areas, nil
}

// AddAreaDevice links a device to an area. Both must belong to the same
// project; a mismatch returns ErrSameProjectRequired. Duplicate links
// return ErrDuplicateEntity.
func (db *DB) AddAreaDevice(ctx context.Context, areaID, deviceID int64) (*models.AreaDevice, error) {
	var areaProject, deviceProject int64

	err := db.conn.QueryRowContext(ctx,
		`SELECT project_id FROM areas WHERE id = ?`, areaID).Scan(&areaProject)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve area %d: %w", areaID, err)
	}

	err = db.conn.QueryRowContext(ctx,
		`SELECT project_id FROM devices WHERE id = ?`, deviceID).Scan(&deviceProject)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve device %d: %w", deviceID, err)
	}

	if areaProject != deviceProject {
		return nil, ErrSameProjectRequired
	}

	var count int
	err = db.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM area_devices WHERE area_id = ? AND device_id = ?`,
		areaID, deviceID).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to check area device link: %w", err)
	}
	if count > 0 {
		return nil, &DuplicateError{Entity: "areadevice", Fields: []string{"area_id", "device_id"}}
	}

	link := &models.AreaDevice{AreaID: areaID, DeviceID: deviceID}
	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO area_devices (area_id, device_id)
		 VALUES (?, ?)
		 RETURNING id, added_at`,
		areaID, deviceID).Scan(&link.ID, &link.AddedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert area device link: %w", err)
	}
	return link, nil
}

// RemoveAreaDevice deletes one area-device link by link id.
func (db *DB) RemoveAreaDevice(ctx context.Context, linkID int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM area_devices WHERE id = ?`, linkID)
	if err != nil {
		return fmt.Errorf("failed to delete area device link %d: %w", linkID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEntityNotFound
	}
	return nil
}

// ListAreaDevices returns the device links of one area, ordered by id.
func (db *DB) ListAreaDevices(ctx context.Context, areaID int64) ([]*models.AreaDevice, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, area_id, device_id, added_at FROM area_devices WHERE area_id = ? ORDER BY id`,
		areaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list area devices: %w", err)
	}
	defer closeQuietly(rows)

	links := make([]*models.AreaDevice, 0)
	for rows.Next() {
		l := &models.AreaDevice{}
		if err := rows.Scan(&l.ID, &l.AreaID, &l.DeviceID, &l.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan area device link: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate area device links: %w", err)
	}
	return links, nil
}

// GetAreaDevice returns one area-device link by link id.
func (db *DB) GetAreaDevice(ctx context.Context, linkID int64) (*models.AreaDevice, error) {
	l := &models.AreaDevice{}
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, area_id, device_id, added_at FROM area_devices WHERE id = ?`, linkID).
		Scan(&l.ID, &l.AreaID, &l.DeviceID, &l.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get area device link %d: %w", linkID, err)
	}
	return l, nil
}
