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

const packetColumns = `id, device_id, name, type, format, serialization, version,
	timestamp_field, timestamp_format, traffic_plan, entity_version, created_at, updated_at`

// scanPacket scans a packet row, handling nullable optional fields.
func scanPacket(scanner interface{ Scan(dest ...interface{}) error }) (*models.Packet, error) {
	p := &models.Packet{}
	var serialization, version, tsField, tsFormat, trafficPlan sql.NullString

	err := scanner.Scan(&p.ID, &p.DeviceID, &p.Name, &p.Type, &p.Format,
		&serialization, &version, &tsField, &tsFormat, &trafficPlan,
		&p.EntityVersion, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Serialization = serialization.String
	p.Version = version.String
	p.TimestampField = tsField.String
	p.TimestampFormat = tsFormat.String
	p.TrafficPlan = trafficPlan.String
	return p, nil
}

// InsertPacket persists a new packet.
func (db *DB) InsertPacket(ctx context.Context, p *models.Packet) (*models.Packet, error) {
	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO packets (device_id, name, type, format, serialization,
		     version, timestamp_field, timestamp_format, traffic_plan, entity_version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		 RETURNING `+packetColumns,
		p.DeviceID, p.Name, p.Type, p.Format, nullString(p.Serialization),
		nullString(p.Version), nullString(p.TimestampField),
		nullString(p.TimestampFormat), nullString(p.TrafficPlan))

	saved, err := scanPacket(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert packet: %w", err)
	}
	return saved, nil
}

// GetPacket returns a packet by id.
func (db *DB) GetPacket(ctx context.Context, id int64) (*models.Packet, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+packetColumns+` FROM packets WHERE id = ?`, id)

	p, err := scanPacket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get packet %d: %w", id, err)
	}
	return p, nil
}

// UpdatePacket persists packet changes with an optimistic version check.
func (db *DB) UpdatePacket(ctx context.Context, p *models.Packet) (*models.Packet, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE packets
		 SET name = ?, type = ?, format = ?, serialization = ?, version = ?,
		     timestamp_field = ?, timestamp_format = ?, traffic_plan = ?,
		     entity_version = entity_version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND entity_version = ?`,
		p.Name, p.Type, p.Format, nullString(p.Serialization), nullString(p.Version),
		nullString(p.TimestampField), nullString(p.TimestampFormat),
		nullString(p.TrafficPlan), p.ID, p.EntityVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to update packet %d: %w", p.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read update result: %w", err)
	}
	if n == 0 {
		if _, getErr := db.GetPacket(ctx, p.ID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStaleVersion
	}

	return db.GetPacket(ctx, p.ID)
}

// DeletePacket removes a packet and its fields atomically.
func (db *DB) DeletePacket(ctx context.Context, id int64) error {
	tx, err := db.begin(ctx)
	if err != nil {
		return err
	}
	defer rollbackQuietly(tx)

	res, err := tx.ExecContext(ctx, `DELETE FROM packets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete packet %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEntityNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM packet_fields WHERE packet_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete packet %d fields: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit packet deletion: %w", err)
	}
	return nil
}

// ListPacketsByDevice returns the packets of one device, ordered by id.
func (db *DB) ListPacketsByDevice(ctx context.Context, deviceID int64) ([]*models.Packet, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+packetColumns+` FROM packets WHERE device_id = ? ORDER BY id`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list packets: %w", err)
	}
	defer closeQuietly(rows)

	packets := make([]*models.Packet, 0)
	for rows.Next() {
		p, err := scanPacket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan packet: %w", err)
		}
		packets = append(packets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate packets: %w", err)
	}
	return packets, nil
}

const fieldColumns = `id, packet_id, name, type, multiplicity, description, entity_version`

// scanPacketField scans a packet field row.
func scanPacketField(scanner interface{ Scan(dest ...interface{}) error }) (*models.PacketField, error) {
	f := &models.PacketField{}
	var multiplicity, description sql.NullString

	err := scanner.Scan(&f.ID, &f.PacketID, &f.Name, &f.Type,
		&multiplicity, &description, &f.EntityVersion)
	if err != nil {
		return nil, err
	}

	f.Multiplicity = multiplicity.String
	f.Description = description.String
	return f, nil
}

// InsertPacketField persists a new packet field.
func (db *DB) InsertPacketField(ctx context.Context, f *models.PacketField) (*models.PacketField, error) {
	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO packet_fields (packet_id, name, type, multiplicity, description, entity_version)
		 VALUES (?, ?, ?, ?, ?, 0)
		 RETURNING `+fieldColumns,
		f.PacketID, f.Name, f.Type, nullString(f.Multiplicity), nullString(f.Description))

	saved, err := scanPacketField(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert packet field: %w", err)
	}
	return saved, nil
}

// GetPacketField returns a packet field by id.
func (db *DB) GetPacketField(ctx context.Context, id int64) (*models.PacketField, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+fieldColumns+` FROM packet_fields WHERE id = ?`, id)

	f, err := scanPacketField(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get packet field %d: %w", id, err)
	}
	return f, nil
}

// DeletePacketField removes one packet field.
func (db *DB) DeletePacketField(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM packet_fields WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete packet field %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEntityNotFound
	}
	return nil
}

// ListPacketFields returns the fields of one packet, ordered by id.
func (db *DB) ListPacketFields(ctx context.Context, packetID int64) ([]*models.PacketField, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+fieldColumns+` FROM packet_fields WHERE packet_id = ? ORDER BY id`, packetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list packet fields: %w", err)
	}
	defer closeQuietly(rows)

	fields := make([]*models.PacketField, 0)
	for rows.Next() {
		f, err := scanPacketField(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan packet field: %w", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate packet fields: %w", err)
	}
	return fields, nil
}
