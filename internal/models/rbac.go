// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

/*
rbac.go - Users, Roles and Permissions

Key Structures:
  - User: platform identity; admins bypass fine-grained permission checks
  - Role: named set of permissions; users hold any number of roles
  - Permission: bitmask action grant on a resource type, optionally scoped
    to a single instance (ResourceID 0 means "all instances")

Invariant: at most one generic (ResourceID 0) permission row per
(role, resource name) pair; instance-scoped rows are distinct rows keyed
by (role, resource name, resource id). Enforced by the database layer.
*/

package models

import "time"

// DefaultRoleName is auto-assigned to newly created users and carries the
// baseline permission set for commonly used resource types.
const DefaultRoleName = "RegisteredUser"

// User represents a platform identity.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username" validate:"required,max=255,nomarkup" label:"huser-username"`
	Email        string    `json:"email,omitempty" validate:"omitempty,email,max=255" label:"huser-email"`
	PasswordHash string    `json:"-"`
	Admin        bool      `json:"admin"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Role is a named set of permissions.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Permission grants a set of actions on a resource type to a role.
// A zero ResourceID applies to all instances of the type; a non-zero
// ResourceID scopes the grant to a single instance.
type Permission struct {
	ID           int64  `json:"id"`
	RoleID       int64  `json:"role_id"`
	ResourceName string `json:"entity_resource_name"`
	ResourceID   int64  `json:"resource_id"`
	ActionIDs    Action `json:"action_ids"`
}

// Allows reports whether this permission's bitmask includes the action.
func (p *Permission) Allows(action Action) bool {
	return p.ActionIDs&action == action
}

// IsGeneric reports whether the permission applies to all instances of
// its resource type.
func (p *Permission) IsGeneric() bool {
	return p.ResourceID == 0
}
