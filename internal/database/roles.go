// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

/*
roles.go - Role and Permission Operations

Permissions are indexed lookups, not runtime discovery: the resolver asks
for the union of a user's permission rows for one resource type and gets
them in a single join. The (role_id, resource_name, resource_id) unique
constraint keeps one generic row (resource_id 0) per role and resource,
with instance overrides as distinct rows.
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

// defaultRolePermissions is the baseline grant set attached to the
// default role: full CRUD on the commonly used resource types plus the
// custom management actions each type carries.
var defaultRolePermissions = map[string]models.Action{
	models.ResourceProject: models.ActionsCRUD | models.ActionShare |
		models.ActionAreasManagement | models.ActionDeviceList,
	models.ResourceDevice:      models.ActionsCRUD | models.ActionPacketsManagement,
	models.ResourcePacket:      models.ActionsCRUD | models.ActionFieldsManagement,
	models.ResourcePacketField: models.ActionsCRUD,
	models.ResourceArea:        models.ActionsCRUD | models.ActionAreaDeviceManager,
	models.ResourceAreaDevice:  models.ActionsCRUD,
}

// ensureDefaultRoleTx returns the default role id, creating the role and
// its baseline permissions on first use.
func (db *DB) ensureDefaultRoleTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	var roleID int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM roles WHERE name = ?`, models.DefaultRoleName).Scan(&roleID)
	if err == nil {
		return roleID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up default role: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO roles (name, description) VALUES (?, ?) RETURNING id`,
		models.DefaultRoleName, "Baseline role for newly activated users").Scan(&roleID)
	if err != nil {
		return 0, fmt.Errorf("failed to create default role: %w", err)
	}

	for resource, actions := range defaultRolePermissions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO permissions (role_id, resource_name, resource_id, action_ids)
			 VALUES (?, ?, 0, ?)`,
			roleID, resource, int64(actions)); err != nil {
			return 0, fmt.Errorf("failed to seed default permission for %s: %w", resource, err)
		}
	}

	return roleID, nil
}

// CreateRole inserts a role.
func (db *DB) CreateRole(ctx context.Context, role *models.Role) (*models.Role, error) {
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO roles (name, description) VALUES (?, ?) RETURNING id`,
		role.Name, nullString(role.Description)).Scan(&role.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert role %q: %w", role.Name, err)
	}
	return role, nil
}

// GetRoleByName returns a role by name.
func (db *DB) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	role := &models.Role{}
	var description sql.NullString
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, description FROM roles WHERE name = ?`, name).
		Scan(&role.ID, &role.Name, &description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role %q: %w", name, err)
	}
	role.Description = description.String
	return role, nil
}

// AssignRole attaches a role to a user. Re-assigning is a no-op.
func (db *DB) AssignRole(ctx context.Context, userID, roleID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_roles (user_id, role_id) VALUES (?, ?)`,
		userID, roleID)
	if err != nil {
		return fmt.Errorf("failed to assign role %d to user %d: %w", roleID, userID, err)
	}
	return nil
}

// RevokeRole detaches a role from a user.
func (db *DB) RevokeRole(ctx context.Context, userID, roleID int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = ? AND role_id = ?`, userID, roleID)
	if err != nil {
		return fmt.Errorf("failed to revoke role %d from user %d: %w", roleID, userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEntityNotFound
	}
	return nil
}

// UpsertPermission creates or replaces the permission row keyed by
// (role, resource name, resource id).
func (db *DB) UpsertPermission(ctx context.Context, perm *models.Permission) (*models.Permission, error) {
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO permissions (role_id, resource_name, resource_id, action_ids)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (role_id, resource_name, resource_id)
		 DO UPDATE SET action_ids = EXCLUDED.action_ids
		 RETURNING id`,
		perm.RoleID, perm.ResourceName, perm.ResourceID, int64(perm.ActionIDs)).
		Scan(&perm.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert permission: %w", err)
	}
	return perm, nil
}

// PermissionsFor returns the union of permission rows across all roles
// held by the user for one resource type. Both generic and
// instance-scoped rows are returned; the resolver separates them.
func (db *DB) PermissionsFor(ctx context.Context, userID int64, resourceName string) ([]*models.Permission, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT p.id, p.role_id, p.resource_name, p.resource_id, p.action_ids
		 FROM permissions p
		 JOIN user_roles ur ON ur.role_id = p.role_id
		 WHERE ur.user_id = ? AND p.resource_name = ?`,
		userID, resourceName)
	metrics.RecordDBQuery("select", "permissions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query permissions: %w", err)
	}
	defer closeQuietly(rows)

	var perms []*models.Permission
	for rows.Next() {
		p := &models.Permission{}
		var actionIDs int64
		if err := rows.Scan(&p.ID, &p.RoleID, &p.ResourceName, &p.ResourceID, &actionIDs); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		p.ActionIDs = models.Action(actionIDs)
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate permissions: %w", err)
	}

	return perms, nil
}
