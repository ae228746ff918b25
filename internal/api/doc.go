// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

// Package api provides the HTTP surface of Fieldhub.
//
// The package is split by concern:
//   - router.go:    Chi route tree and middleware ordering
//   - middleware.go: CORS and rate-limit middleware factories
//   - handlers.go:  Handler struct, constructor, shared request parsing
//   - handlers_*.go: one file per resource (auth, users, projects,
//     devices, packets, areas, sharing, health)
//   - respond.go:   JSON envelopes and the service error mapping
//
// Every response uses the models.APIResponse envelope. Service and
// storage errors are translated to HTTP status codes in exactly one
// place, respondServiceError, so handlers never branch on error kinds
// themselves.
package api
