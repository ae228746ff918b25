// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

/*
schema.go - Database Schema Management

Tables:
  - users, roles, user_roles, permissions: identity and RBAC state
  - projects, devices, packets, packet_fields, areas, area_devices:
    the ownership tree rooted at projects
  - shared_entities: the sharing registry

Schema strategy: all columns are defined in the initial CREATE TABLE
statements; there are no incremental migrations yet. IDs come from
per-table sequences since DuckDB has no auto-increment.
*/

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createSchema creates sequences, tables and indexes.
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range schemaStatements() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema statement: %s: %w", query, err)
		}
	}

	return nil
}

// schemaStatements returns the schema DDL in dependency order.
func schemaStatements() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_users START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_roles START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_permissions START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_projects START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_devices START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_packets START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_packet_fields START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_areas START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_area_devices START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_shared_entities START 1`,

		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_users'),
			username TEXT NOT NULL UNIQUE,
			email TEXT,
			password_hash TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS roles (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_roles'),
			name TEXT NOT NULL UNIQUE,
			description TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS user_roles (
			user_id BIGINT NOT NULL,
			role_id BIGINT NOT NULL,
			UNIQUE (user_id, role_id)
		)`,

		// One generic (resource_id = 0) row per (role, resource); the
		// unique constraint also keys instance-scoped rows.
		`CREATE TABLE IF NOT EXISTS permissions (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_permissions'),
			role_id BIGINT NOT NULL,
			resource_name TEXT NOT NULL,
			resource_id BIGINT NOT NULL DEFAULT 0,
			action_ids BIGINT NOT NULL,
			UNIQUE (role_id, resource_name, resource_id)
		)`,

		`CREATE TABLE IF NOT EXISTS projects (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_projects'),
			name TEXT NOT NULL,
			description TEXT,
			user_id BIGINT NOT NULL,
			entity_version BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (name, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS devices (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_devices'),
			project_id BIGINT NOT NULL,
			device_name TEXT NOT NULL,
			brand TEXT,
			model TEXT,
			firmware_version TEXT,
			software_version TEXT,
			password_hash TEXT,
			entity_version BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (project_id, device_name)
		)`,

		`CREATE TABLE IF NOT EXISTS packets (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_packets'),
			device_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			format TEXT NOT NULL,
			serialization TEXT,
			version TEXT,
			timestamp_field TEXT,
			timestamp_format TEXT,
			traffic_plan TEXT,
			entity_version BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS packet_fields (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_packet_fields'),
			packet_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			multiplicity TEXT,
			description TEXT,
			entity_version BIGINT NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS areas (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_areas'),
			project_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			area_view_type TEXT,
			entity_version BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS area_devices (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_area_devices'),
			area_id BIGINT NOT NULL,
			device_id BIGINT NOT NULL,
			added_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (area_id, device_id)
		)`,

		`CREATE TABLE IF NOT EXISTS shared_entities (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_shared_entities'),
			resource_name TEXT NOT NULL,
			entity_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			granted_by BIGINT NOT NULL,
			granted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (resource_name, entity_id, user_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_projects_user ON projects (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_devices_project ON devices (project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_packets_device ON packets (device_id)`,
		`CREATE INDEX IF NOT EXISTS idx_packet_fields_packet ON packet_fields (packet_id)`,
		`CREATE INDEX IF NOT EXISTS idx_areas_project ON areas (project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_area_devices_area ON area_devices (area_id)`,
		`CREATE INDEX IF NOT EXISTS idx_permissions_role_resource ON permissions (role_id, resource_name)`,
		`CREATE INDEX IF NOT EXISTS idx_shared_entities_lookup ON shared_entities (resource_name, entity_id, user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_shared_entities_user ON shared_entities (user_id)`,
	}
}
