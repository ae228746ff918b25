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

const deviceColumns = `id, project_id, device_name, brand, model, firmware_version,
	software_version, password_hash, entity_version, created_at, updated_at`

// scanDevice scans a device row, handling nullable optional fields.
func scanDevice(scanner interface{ Scan(dest ...interface{}) error }) (*models.Device, error) {
	d := &models.Device{}
	var brand, model, firmware, software, passwordHash sql.NullString

	err := scanner.Scan(&d.ID, &d.ProjectID, &d.DeviceName, &brand, &model,
		&firmware, &software, &passwordHash, &d.EntityVersion, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}

	d.Brand = brand.String
	d.Model = model.String
	d.FirmwareVersion = firmware.String
	d.SoftwareVersion = software.String
	d.PasswordHash = passwordHash.String
	return d, nil
}

// InsertDevice persists a new device. device_name is unique per project.
func (db *DB) InsertDevice(ctx context.Context, d *models.Device) (*models.Device, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM devices WHERE project_id = ? AND device_name = ?`,
		d.ProjectID, d.DeviceName).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to check device uniqueness: %w", err)
	}
	if count > 0 {
		return nil, &DuplicateError{Entity: "hdevice", Fields: []string{"device_name", "project_id"}}
	}

	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO devices (project_id, device_name, brand, model,
		     firmware_version, software_version, password_hash, entity_version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0)
		 RETURNING `+deviceColumns,
		d.ProjectID, d.DeviceName, nullString(d.Brand), nullString(d.Model),
		nullString(d.FirmwareVersion), nullString(d.SoftwareVersion), nullString(d.PasswordHash))

	saved, err := scanDevice(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert device: %w", err)
	}
	return saved, nil
}

// GetDevice returns a device by id.
func (db *DB) GetDevice(ctx context.Context, id int64) (*models.Device, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE id = ?`, id)

	d, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device %d: %w", id, err)
	}
	return d, nil
}

// UpdateDevice persists device changes with an optimistic version check.
func (db *DB) UpdateDevice(ctx context.Context, d *models.Device) (*models.Device, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM devices WHERE project_id = ? AND device_name = ? AND id <> ?`,
		d.ProjectID, d.DeviceName, d.ID).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to check device uniqueness: %w", err)
	}
	if count > 0 {
		return nil, &DuplicateError{Entity: "hdevice", Fields: []string{"device_name", "project_id"}}
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE devices
		 SET device_name = ?, brand = ?, model = ?, firmware_version = ?,
		     software_version = ?, entity_version = entity_version + 1,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND entity_version = ?`,
		d.DeviceName, nullString(d.Brand), nullString(d.Model),
		nullString(d.FirmwareVersion), nullString(d.SoftwareVersion),
		d.ID, d.EntityVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to update device %d: %w", d.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read update result: %w", err)
	}
	if n == 0 {
		if _, getErr := db.GetDevice(ctx, d.ID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStaleVersion
	}

	return db.GetDevice(ctx, d.ID)
}

// DeleteDevice removes a device and its packets, fields and area links
// atomically. Deleting a device never cascades upward to its project.
func (db *DB) DeleteDevice(ctx context.Context, id int64) error {
	tx, err := db.begin(ctx)
	if err != nil {
		return err
	}
	defer rollbackQuietly(tx)

	res, err := tx.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete device %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEntityNotFound
	}

	statements := []string{
		`DELETE FROM packet_fields WHERE packet_id IN (SELECT id FROM packets WHERE device_id = ?)`,
		`DELETE FROM packets WHERE device_id = ?`,
		`DELETE FROM area_devices WHERE device_id = ?`,
	}
	for _, query := range statements {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to delete device %d children: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit device deletion: %w", err)
	}
	return nil
}

// ListDevicesByProject returns the devices of one project, ordered by id.
func (db *DB) ListDevicesByProject(ctx context.Context, projectID int64) ([]*models.Device, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer closeQuietly(rows)

	devices := make([]*models.Device, 0)
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate devices: %w", err)
	}
	return devices, nil
}
