// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

/* owners.go - Ownership resolution
 *
 * Every owned resource ultimately belongs to the user who owns its root
 * project. OwnerOf walks the containment chain (packet field -> packet
 * -> device -> project, area device -> area -> project) and returns the
 * root owner's user id, so authorization checks on any level of the
 * tree compare against the same user.
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

// ownerQueries maps a resource name to the query resolving the owning
// user of one instance.
var ownerQueries = map[string]string{
	models.ResourceProject: `SELECT user_id FROM projects WHERE id = ?`,
	models.ResourceDevice: `SELECT p.user_id FROM devices d
		JOIN projects p ON p.id = d.project_id WHERE d.id = ?`,
	models.ResourcePacket: `SELECT p.user_id FROM packets pk
		JOIN devices d ON d.id = pk.device_id
		JOIN projects p ON p.id = d.project_id WHERE pk.id = ?`,
	models.ResourcePacketField: `SELECT p.user_id FROM packet_fields f
		JOIN packets pk ON pk.id = f.packet_id
		JOIN devices d ON d.id = pk.device_id
		JOIN projects p ON p.id = d.project_id WHERE f.id = ?`,
	models.ResourceArea: `SELECT p.user_id FROM areas a
		JOIN projects p ON p.id = a.project_id WHERE a.id = ?`,
	models.ResourceAreaDevice: `SELECT p.user_id FROM area_devices ad
		JOIN areas a ON a.id = ad.area_id
		JOIN projects p ON p.id = a.project_id WHERE ad.id = ?`,
}

// OwnerOf resolves the owning user id of one resource instance. The
// resource must be one of the owned resource kinds; instances that do
// not exist return ErrEntityNotFound.
func (db *DB) OwnerOf(ctx context.Context, resourceName string, entityID int64) (int64, error) {
	query, ok := ownerQueries[resourceName]
	if !ok {
		return 0, fmt.Errorf("resource %q has no owner", resourceName)
	}

	start := time.Now()
	var ownerID int64
	err := db.conn.QueryRowContext(ctx, query, entityID).Scan(&ownerID)
	metrics.RecordDBQuery("select", "owners", time.Since(start), nil)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrEntityNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve owner of %s %d: %w", resourceName, entityID, err)
	}
	return ownerID, nil
}

// RootProjectOf resolves the root project id of one resource instance.
// Share grants live on projects, so instance checks on nested resources
// need the project id to test for a grant.
func (db *DB) RootProjectOf(ctx context.Context, resourceName string, entityID int64) (int64, error) {
	if resourceName == models.ResourceProject {
		return entityID, nil
	}

	query, ok := rootProjectQueries[resourceName]
	if !ok {
		return 0, fmt.Errorf("resource %q has no root project", resourceName)
	}

	var projectID int64
	err := db.conn.QueryRowContext(ctx, query, entityID).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrEntityNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve root project of %s %d: %w", resourceName, entityID, err)
	}
	return projectID, nil
}

var rootProjectQueries = map[string]string{
	models.ResourceDevice: `SELECT project_id FROM devices WHERE id = ?`,
	models.ResourcePacket: `SELECT d.project_id FROM packets pk
		JOIN devices d ON d.id = pk.device_id WHERE pk.id = ?`,
	models.ResourcePacketField: `SELECT d.project_id FROM packet_fields f
		JOIN packets pk ON pk.id = f.packet_id
		JOIN devices d ON d.id = pk.device_id WHERE f.id = ?`,
	models.ResourceArea: `SELECT project_id FROM areas WHERE id = ?`,
	models.ResourceAreaDevice: `SELECT a.project_id FROM area_devices ad
		JOIN areas a ON a.id = ad.area_id WHERE ad.id = ?`,
}
