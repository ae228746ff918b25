// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package authz

import "errors"

var (
	// ErrUnauthorized is returned when the user lacks permission for
	// the requested action.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when the requested instance does not
	// exist, or exists but is hidden from the user. The two cases are
	// deliberately indistinguishable.
	ErrNotFound = errors.New("entity not found")
)
