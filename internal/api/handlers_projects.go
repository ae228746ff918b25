// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/fieldhub/internal/auth"
	"github.com/tomtom215/fieldhub/internal/models"
)

// ownerChangeRequest names the new owner for a project.
type ownerChangeRequest struct {
	UserID int64 `json:"user_id"`
}

// ProjectSave creates a project. The owner defaults to the caller when
// the payload carries no user id.
//
// Method: POST
// Path: /api/v1/projects
//
// Response:
//   - 201: Project created
//   - 403: Caller lacks the save permission
//   - 409: Duplicate name for this owner
//   - 422: Validation failure
func (h *Handler) ProjectSave(w http.ResponseWriter, r *http.Request) {
	var project models.Project
	if !decodeBody(w, r, &project) {
		return
	}

	start := time.Now()

	saved, err := h.services.Projects.Save(r.Context(), auth.UserFromContext(r.Context()), &project)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusCreated, saved, start)
}

// ProjectUpdate updates a project in place. A payload naming a
// different owner is rejected; ownership changes go through
// ProjectUpdateOwner.
//
// Method: PUT
// Path: /api/v1/projects/{id}
func (h *Handler) ProjectUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var project models.Project
	if !decodeBody(w, r, &project) {
		return
	}
	project.ID = id

	start := time.Now()

	updated, err := h.services.Projects.Update(r.Context(), auth.UserFromContext(r.Context()), &project)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, updated, start)
}

// ProjectUpdateOwner transfers project ownership to another account.
//
// Method: PUT
// Path: /api/v1/projects/{id}/owner
func (h *Handler) ProjectUpdateOwner(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req ownerChangeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now()

	updated, err := h.services.Projects.UpdateOwner(r.Context(), auth.UserFromContext(r.Context()), id, req.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, updated, start)
}

// ProjectGet returns one project the caller can see.
//
// Method: GET
// Path: /api/v1/projects/{id}
func (h *Handler) ProjectGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()

	project, err := h.services.Projects.Find(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, project, start)
}

// ProjectList returns the projects visible to the caller. When delta or
// page query parameters are present the result is a page envelope.
//
// Method: GET
// Path: /api/v1/projects
//
// Query:
//   - delta: page size, defaults applied when <= 0
//   - page:  1-based page number
func (h *Handler) ProjectList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user := auth.UserFromContext(r.Context())

	q := r.URL.Query()
	if q.Get("delta") != "" || q.Get("page") != "" {
		delta := getIntParam(r, "delta", 0)
		page := getIntParam(r, "page", 0)
		if max := h.config.API.MaxPageSize; max > 0 && delta > max {
			delta = max
		}

		result, err := h.services.Projects.FindAllPaginated(r.Context(), user, delta, page)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondData(w, http.StatusOK, result, start)
		return
	}

	projects, err := h.services.Projects.FindAll(r.Context(), user)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, projects, start)
}

// ProjectDelete removes a project and everything under it: areas,
// devices, packets, fields, and share grants.
//
// Method: DELETE
// Path: /api/v1/projects/{id}
func (h *Handler) ProjectDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()

	if err := h.services.Projects.Delete(r.Context(), auth.UserFromContext(r.Context()), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, nil, start)
}

// ProjectAreas lists the areas of a project.
//
// Method: GET
// Path: /api/v1/projects/{id}/areas
func (h *Handler) ProjectAreas(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()

	areas, err := h.services.Projects.GetAreaList(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, areas, start)
}

// ProjectDevices lists the devices of a project.
//
// Method: GET
// Path: /api/v1/projects/{id}/devices
func (h *Handler) ProjectDevices(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()

	devices, err := h.services.Projects.GetDeviceList(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, devices, start)
}
