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

// areaDeviceRequest names the device to attach to an area.
type areaDeviceRequest struct {
	DeviceID int64 `json:"device_id"`
}

// AreaSave creates an area under a project.
//
// Method: POST
// Path: /api/v1/areas
func (h *Handler) AreaSave(w http.ResponseWriter, r *http.Request) {
	var area models.Area
	if !decodeBody(w, r, &area) {
		return
	}

	start := time.Now()

	saved, err := h.services.Areas.Save(r.Context(), auth.UserFromContext(r.Context()), &area)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusCreated, saved, start)
}

// AreaUpdate updates an area.
//
// Method: PUT
// Path: /api/v1/areas/{id}
func (h *Handler) AreaUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var area models.Area
	if !decodeBody(w, r, &area) {
		return
	}
	area.ID = id

	start := time.Now()

	updated, err := h.services.Areas.Update(r.Context(), auth.UserFromContext(r.Context()), &area)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, updated, start)
}

// AreaGet returns one area the caller can see.
//
// Method: GET
// Path: /api/v1/areas/{id}
func (h *Handler) AreaGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()

	area, err := h.services.Areas.Find(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, area, start)
}

// AreaDelete removes an area and its device links. The linked devices
// themselves survive.
//
// Method: DELETE
// Path: /api/v1/areas/{id}
func (h *Handler) AreaDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()

	if err := h.services.Areas.Delete(r.Context(), auth.UserFromContext(r.Context()), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, nil, start)
}

// AreaDeviceAdd links a device to an area. Both must belong to the same
// project.
//
// Method: POST
// Path: /api/v1/areas/{id}/devices
func (h *Handler) AreaDeviceAdd(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req areaDeviceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now()

	link, err := h.services.Areas.AddDevice(r.Context(), auth.UserFromContext(r.Context()), id, req.DeviceID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusCreated, link, start)
}

// AreaDeviceList lists the device links of an area.
//
// Method: GET
// Path: /api/v1/areas/{id}/devices
func (h *Handler) AreaDeviceList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()

	links, err := h.services.Areas.ListDevices(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, links, start)
}

// AreaDeviceRemove unlinks a device from an area by link id.
//
// Method: DELETE
// Path: /api/v1/areas/devices/{linkID}
func (h *Handler) AreaDeviceRemove(w http.ResponseWriter, r *http.Request) {
	linkID, ok := pathID(w, r, "linkID")
	if !ok {
		return
	}

	start := time.Now()

	if err := h.services.Areas.RemoveDevice(r.Context(), auth.UserFromContext(r.Context()), linkID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, nil, start)
}
