// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

// Package middleware provides HTTP middleware shared across route
// groups: request id propagation and Prometheus instrumentation.
// Authentication middleware lives in the auth package, and the CORS
// and rate-limit factories in the api package.
package middleware
