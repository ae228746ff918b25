// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

// Package authz resolves authorization decisions for resource operations.
//
// Decisions follow a fixed pipeline:
//
//  1. An absent user is always denied.
//  2. Admin users are always allowed.
//  3. The union of permission rows across the user's roles is checked,
//     generic rows first, then rows scoped to the requested instance.
//  4. For owned resources, an instance check additionally requires the
//     user to own the root project or hold a share grant on it. Users
//     failing this gate are told the entity does not exist rather than
//     that they lack access, so resource ids are not probeable.
//
// Type-level decisions are cached with a TTL; role changes invalidate
// the affected user's entries.
package authz
