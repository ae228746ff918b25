// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/fieldhub/internal/auth"
	"github.com/tomtom215/fieldhub/internal/config"
	"github.com/tomtom215/fieldhub/internal/database"
	"github.com/tomtom215/fieldhub/internal/service"
)

// maxBodyBytes bounds request body size for JSON payloads.
const maxBodyBytes = 1 << 20

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files by resource:
//   - handlers_auth.go:     Login, Whoami
//   - handlers_users.go:    account registration and lookup
//   - handlers_projects.go: project CRUD, ownership, pagination
//   - handlers_devices.go:  device CRUD and packet listing
//   - handlers_packets.go:  packet CRUD and field management
//   - handlers_areas.go:    area CRUD and device links
//   - handlers_sharing.go:  share grants
//   - handlers_health.go:   liveness and readiness probes
type Handler struct {
	services      *service.Services
	authenticator *auth.Authenticator
	db            *database.DB
	config        *config.Config
	startTime     time.Time
}

// NewHandler creates a new API handler with all required dependencies.
// The database handle is used only by the health endpoints; all data
// access flows through the service layer.
func NewHandler(services *service.Services, authenticator *auth.Authenticator, db *database.DB, cfg *config.Config) *Handler {
	return &Handler{
		services:      services,
		authenticator: authenticator,
		db:            db,
		config:        cfg,
		startTime:     time.Now(),
	}
}

// decodeBody parses a JSON request body into dst. It returns false and
// writes a 400 response when the body is malformed.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "MALFORMED_BODY", "Request body is not valid JSON", nil)
		return false
	}
	return true
}

// pathID extracts the {id} URL parameter as an int64. It returns false
// and writes a 400 response when the parameter is not a positive number.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Path parameter "+name+" must be a positive integer", nil)
		return 0, false
	}
	return id, true
}
