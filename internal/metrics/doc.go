// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

// Package metrics centralizes Prometheus collectors for HTTP, database,
// and event instrumentation. Collectors register themselves with the
// default registry via promauto; the /metrics endpoint exposes them.
package metrics
