// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package api

import (
	"net/http"
	"time"
)

// healthStatus is the readiness payload.
type healthStatus struct {
	Status        string  `json:"status"`
	Database      string  `json:"database"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// HealthLive reports process liveness. It never touches dependencies.
//
// Method: GET
// Path: /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "ok"}, time.Now())
}

// HealthReady reports readiness to serve traffic. The database is pinged
// with a short deadline; a failed ping responds 503.
//
// Method: GET
// Path: /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := healthStatus{
		Status:        "ok",
		Database:      "ok",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	code := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		status.Status = "degraded"
		status.Database = "unreachable"
		code = http.StatusServiceUnavailable
	}

	respondData(w, code, status, start)
}
