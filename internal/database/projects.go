// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

/*
projects.go - Project Storage Operations

Projects are the roots of the ownership tree. Visibility queries filter
by "owner or share grant" so that non-owners without a grant simply never
see the row; the service layer turns that into entity-not-found.

Cascading delete runs strictly top-down inside one transaction:
packet fields -> packets -> area device links -> areas -> devices ->
share grants -> the project row.
*/

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/fieldhub/internal/models"
)

const projectColumns = `id, name, description, user_id, entity_version, created_at, updated_at`

// scanProject scans a project row, handling the nullable description.
func scanProject(scanner interface{ Scan(dest ...interface{}) error }) (*models.Project, error) {
	p := &models.Project{}
	var description sql.NullString

	err := scanner.Scan(&p.ID, &p.Name, &description, &p.UserID,
		&p.EntityVersion, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Description = description.String
	return p, nil
}

// InsertProject persists a new project with entity version 0.
// (name, user_id) must be unique.
func (db *DB) InsertProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM projects WHERE name = ? AND user_id = ?`,
		p.Name, p.UserID).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to check project uniqueness: %w", err)
	}
	if count > 0 {
		return nil, &DuplicateError{Entity: "hproject", Fields: []string{"name", "user_id"}}
	}

	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO projects (name, description, user_id, entity_version)
		 VALUES (?, ?, ?, 0)
		 RETURNING `+projectColumns,
		p.Name, nullString(p.Description), p.UserID)

	saved, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}
	return saved, nil
}

// GetProject returns a project by id regardless of visibility. Callers
// that need owner/share filtering use GetProjectVisibleTo.
func (db *DB) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", id, err)
	}
	return p, nil
}

// GetProjectVisibleTo returns a project only when the user owns it or
// holds a share grant for it. Rows outside the visible set surface as
// ErrEntityNotFound, never as a permission error.
func (db *DB) GetProjectVisibleTo(ctx context.Context, id, userID int64) (*models.Project, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects p
		 WHERE p.id = ?
		   AND (p.user_id = ? OR EXISTS (
		       SELECT 1 FROM shared_entities s
		       WHERE s.resource_name = ? AND s.entity_id = p.id AND s.user_id = ?))`,
		id, userID, models.ResourceProject, userID)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get visible project %d: %w", id, err)
	}
	return p, nil
}

// UpdateProject persists field changes with an optimistic version check.
// The owner (user_id) is never touched here; ownership changes go through
// UpdateProjectOwner. The uniqueness pre-check keys on the stored owner,
// not whatever owner id the payload happens to carry.
func (db *DB) UpdateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	owner, err := db.ProjectOwner(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	var count int
	err = db.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM projects WHERE name = ? AND user_id = ? AND id <> ?`,
		p.Name, owner, p.ID).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to check project uniqueness: %w", err)
	}
	if count > 0 {
		return nil, &DuplicateError{Entity: "hproject", Fields: []string{"name", "user_id"}}
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE projects
		 SET name = ?, description = ?, entity_version = entity_version + 1,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND entity_version = ?`,
		p.Name, nullString(p.Description), p.ID, p.EntityVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to update project %d: %w", p.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read update result: %w", err)
	}
	if n == 0 {
		// Distinguish a missing row from a version conflict.
		if _, getErr := db.GetProject(ctx, p.ID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStaleVersion
	}

	return db.GetProject(ctx, p.ID)
}

// UpdateProjectOwner atomically reassigns a project's owner. The new
// owner must resolve to an existing user; otherwise ErrNoResult.
func (db *DB) UpdateProjectOwner(ctx context.Context, projectID, newOwnerID int64) (*models.Project, error) {
	tx, err := db.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer rollbackQuietly(tx)

	var userCount int
	err = tx.QueryRowContext(ctx,
		`SELECT count(*) FROM users WHERE id = ?`, newOwnerID).Scan(&userCount)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve new owner %d: %w", newOwnerID, err)
	}
	if userCount == 0 {
		return nil, ErrNoResult
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE projects
		 SET user_id = ?, entity_version = entity_version + 1,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		newOwnerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to reassign project %d owner: %w", projectID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrEntityNotFound
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, projectID)
	p, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("failed to reload project %d: %w", projectID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit owner change: %w", err)
	}
	return p, nil
}

// ProjectOwner returns the owner id of a project.
func (db *DB) ProjectOwner(ctx context.Context, id int64) (int64, error) {
	var ownerID int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id FROM projects WHERE id = ?`, id).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrEntityNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get project %d owner: %w", id, err)
	}
	return ownerID, nil
}

// visibleProjectsWhere filters projects to "owned by or shared with".
const visibleProjectsWhere = `
	 WHERE p.user_id = ? OR EXISTS (
	     SELECT 1 FROM shared_entities s
	     WHERE s.resource_name = ? AND s.entity_id = p.id AND s.user_id = ?)`

// ListProjectsVisibleTo returns every project the user owns or holds a
// share grant for, ordered by id.
func (db *DB) ListProjectsVisibleTo(ctx context.Context, userID int64) ([]*models.Project, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects p`+visibleProjectsWhere+` ORDER BY p.id`,
		userID, models.ResourceProject, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer closeQuietly(rows)

	return collectProjects(rows)
}

// ListAllProjects returns every project, ordered by id. Admin-only path.
func (db *DB) ListAllProjects(ctx context.Context) ([]*models.Project, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects p ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer closeQuietly(rows)

	return collectProjects(rows)
}

// CountAllProjects returns the total project count. Admin-only path.
func (db *DB) CountAllProjects(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM projects`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// ListProjectsPageAll returns one page over all projects. Admin-only
// path; delta and page are assumed normalized by the caller.
func (db *DB) ListProjectsPageAll(ctx context.Context, delta, page int) ([]*models.Project, error) {
	offset := (page - 1) * delta
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects p ORDER BY p.id LIMIT ? OFFSET ?`,
		delta, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list project page: %w", err)
	}
	defer closeQuietly(rows)

	return collectProjects(rows)
}

// CountProjectsVisibleTo returns the size of the user's visible set.
func (db *DB) CountProjectsVisibleTo(ctx context.Context, userID int64) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM projects p`+visibleProjectsWhere,
		userID, models.ResourceProject, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// ListProjectsPageVisibleTo returns one page of the user's visible set.
// delta and page are assumed normalized by the caller.
func (db *DB) ListProjectsPageVisibleTo(ctx context.Context, userID int64, delta, page int) ([]*models.Project, error) {
	offset := (page - 1) * delta
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects p`+visibleProjectsWhere+
			` ORDER BY p.id LIMIT ? OFFSET ?`,
		userID, models.ResourceProject, userID, delta, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list project page: %w", err)
	}
	defer closeQuietly(rows)

	return collectProjects(rows)
}

// collectProjects drains a project result set.
func collectProjects(rows *sql.Rows) ([]*models.Project, error) {
	projects := make([]*models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

// DeleteProject removes a project and its whole subtree atomically.
func (db *DB) DeleteProject(ctx context.Context, id int64) error {
	tx, err := db.begin(ctx)
	if err != nil {
		return err
	}
	defer rollbackQuietly(tx)

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT count(*) FROM projects WHERE id = ?`, id).Scan(&count); err != nil {
		return fmt.Errorf("failed to check project %d: %w", id, err)
	}
	if count == 0 {
		return ErrEntityNotFound
	}

	if err := deleteProjectTreeTx(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit project deletion: %w", err)
	}
	return nil
}

// deleteProjectTreeTx deletes a project's descendants bottom-up, then the
// project row itself. Must run inside a transaction.
func deleteProjectTreeTx(ctx context.Context, tx *sql.Tx, projectID int64) error {
	statements := []struct {
		what  string
		query string
	}{
		{"packet fields", `DELETE FROM packet_fields WHERE packet_id IN (
			SELECT pk.id FROM packets pk
			JOIN devices d ON pk.device_id = d.id
			WHERE d.project_id = ?)`},
		{"packets", `DELETE FROM packets WHERE device_id IN (
			SELECT id FROM devices WHERE project_id = ?)`},
		{"area device links", `DELETE FROM area_devices WHERE area_id IN (
			SELECT id FROM areas WHERE project_id = ?)`},
		{"areas", `DELETE FROM areas WHERE project_id = ?`},
		{"devices", `DELETE FROM devices WHERE project_id = ?`},
		{"share grants", `DELETE FROM shared_entities WHERE resource_name = 'hproject' AND entity_id = ?`},
		{"project", `DELETE FROM projects WHERE id = ?`},
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt.query, projectID); err != nil {
			return fmt.Errorf("failed to delete %s of project %d: %w", stmt.what, projectID, err)
		}
	}

	return nil
}
