// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/fieldhub/internal/auth"
)

// shareRequest identifies a resource instance and the grantee.
type shareRequest struct {
	ResourceName string `json:"entity_resource_name"`
	EntityID     int64  `json:"entity_id"`
	UserID       int64  `json:"user_id"`
}

// ShareCreate grants another account visibility of an owned resource.
// Only the resource owner may share; a grant holder attempting to
// re-share is refused.
//
// Method: POST
// Path: /api/v1/shares
//
// Response:
//   - 201: Grant created (idempotent on repeat)
//   - 403: Caller holds a grant but is not the owner
//   - 404: Resource missing or hidden from the caller
//   - 422: Resource type is not shareable
func (h *Handler) ShareCreate(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now()

	grant, err := h.services.Sharing.Share(r.Context(), auth.UserFromContext(r.Context()),
		req.ResourceName, req.EntityID, req.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusCreated, grant, start)
}

// ShareDelete revokes a grant. Owner only.
//
// Method: DELETE
// Path: /api/v1/shares
func (h *Handler) ShareDelete(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now()

	err := h.services.Sharing.Unshare(r.Context(), auth.UserFromContext(r.Context()),
		req.ResourceName, req.EntityID, req.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, nil, start)
}

// ShareList lists the grants on one resource instance. Owner only.
//
// Method: GET
// Path: /api/v1/shares
//
// Query:
//   - entity_resource_name: resource type, e.g. "hproject"
//   - entity_id: resource instance id
func (h *Handler) ShareList(w http.ResponseWriter, r *http.Request) {
	resourceName := r.URL.Query().Get("entity_resource_name")
	entityID := int64(getIntParam(r, "entity_id", 0))
	if resourceName == "" || entityID <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_QUERY", "entity_resource_name and entity_id are required", nil)
		return
	}

	start := time.Now()

	grants, err := h.services.Sharing.ListGrants(r.Context(), auth.UserFromContext(r.Context()),
		resourceName, entityID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, grants, start)
}
