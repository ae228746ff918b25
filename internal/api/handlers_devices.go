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

// deviceSaveRequest is a device payload plus the connection password the
// device will authenticate with. The password is hashed before storage
// and never returned.
type deviceSaveRequest struct {
	models.Device
	Password string `json:"password"`
}

// DeviceSave registers a device under a project.
//
// Method: POST
// Path: /api/v1/devices
//
// Response:
//   - 201: Device created
//   - 404: Parent project missing or hidden from the caller
//   - 409: Duplicate device name within the project
//   - 422: Validation failure
func (h *Handler) DeviceSave(w http.ResponseWriter, r *http.Request) {
	var req deviceSaveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now()

	saved, err := h.services.Devices.Save(r.Context(), auth.UserFromContext(r.Context()), &req.Device, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusCreated, saved, start)
}

// DeviceUpdate updates device metadata. The stored password hash and
// parent project are preserved.
//
// Method: PUT
// Path: /api/v1/devices/{id}
func (h *Handler) DeviceUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var device models.Device
	if !decodeBody(w, r, &device) {
		return
	}
	device.ID = id

	start := time.Now()

	updated, err := h.services.Devices.Update(r.Context(), auth.UserFromContext(r.Context()), &device)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, updated, start)
}

// DeviceGet returns one device the caller can see.
//
// Method: GET
// Path: /api/v1/devices/{id}
func (h *Handler) DeviceGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()

	device, err := h.services.Devices.Find(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, device, start)
}

// DeviceDelete removes a device and its packets and fields. The parent
// project is untouched.
//
// Method: DELETE
// Path: /api/v1/devices/{id}
func (h *Handler) DeviceDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()

	if err := h.services.Devices.Delete(r.Context(), auth.UserFromContext(r.Context()), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, nil, start)
}

// DevicePackets lists the packets defined on a device.
//
// Method: GET
// Path: /api/v1/devices/{id}/packets
func (h *Handler) DevicePackets(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()

	packets, err := h.services.Devices.GetPacketList(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, packets, start)
}
