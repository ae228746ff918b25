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

// scanUser scans a user row, handling nullable email.
func scanUser(scanner interface{ Scan(dest ...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	var email sql.NullString

	err := scanner.Scan(&user.ID, &user.Username, &email, &user.PasswordHash,
		&user.Admin, &user.Active, &user.CreatedAt)
	if err != nil {
		return nil, err
	}

	if email.Valid {
		user.Email = email.String
	}
	return user, nil
}

const userColumns = `id, username, email, password_hash, is_admin, is_active, created_at`

// CreateUser inserts a user and attaches the default role inside one
// transaction. The default role is created lazily on first use.
func (db *DB) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	tx, err := db.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer rollbackQuietly(tx)

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT count(*) FROM users WHERE username = ?`, user.Username).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	if exists > 0 {
		return nil, &DuplicateError{Entity: "user", Fields: []string{"username"}}
	}

	var email sql.NullString
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password_hash, is_admin, is_active)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING `+userColumns,
		user.Username, nullString(user.Email), user.PasswordHash, user.Admin, user.Active,
	).Scan(&user.ID, &user.Username, &email, &user.PasswordHash,
		&user.Admin, &user.Active, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	user.Email = email.String

	roleID, err := db.ensureDefaultRoleTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`,
		user.ID, roleID); err != nil {
		return nil, fmt.Errorf("failed to attach default role: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user creation: %w", err)
	}
	return user, nil
}

// GetUser returns a user by id.
func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetUserByUsername returns a user by username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return user, nil
}

// UserExists reports whether a user row exists.
func (db *DB) UserExists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM users WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check user %d: %w", id, err)
	}
	return count > 0, nil
}

// DeleteUser removes a user, its role assignments, and every project the
// user owns (with the full cascade) in one transaction.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	tx, err := db.begin(ctx)
	if err != nil {
		return err
	}
	defer rollbackQuietly(tx)

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEntityNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete role assignments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM shared_entities WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete share grants: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `SELECT id FROM projects WHERE user_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to list owned projects: %w", err)
	}
	var projectIDs []int64
	for rows.Next() {
		var pid int64
		if err := rows.Scan(&pid); err != nil {
			closeQuietly(rows)
			return fmt.Errorf("failed to scan project id: %w", err)
		}
		projectIDs = append(projectIDs, pid)
	}
	closeQuietly(rows)
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate owned projects: %w", err)
	}

	for _, pid := range projectIDs {
		if err := deleteProjectTreeTx(ctx, tx, pid); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user deletion: %w", err)
	}
	return nil
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
