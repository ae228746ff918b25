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

// PacketSave defines a packet on a device.
//
// Method: POST
// Path: /api/v1/packets
func (h *Handler) PacketSave(w http.ResponseWriter, r *http.Request) {
	var packet models.Packet
	if !decodeBody(w, r, &packet) {
		return
	}

	start := time.Now()

	saved, err := h.services.Packets.Save(r.Context(), auth.UserFromContext(r.Context()), &packet)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusCreated, saved, start)
}

// PacketUpdate updates a packet definition.
//
// Method: PUT
// Path: /api/v1/packets/{id}
func (h *Handler) PacketUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var packet models.Packet
	if !decodeBody(w, r, &packet) {
		return
	}
	packet.ID = id

	start := time.Now()

	updated, err := h.services.Packets.Update(r.Context(), auth.UserFromContext(r.Context()), &packet)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, updated, start)
}

// PacketGet returns one packet the caller can see.
//
// Method: GET
// Path: /api/v1/packets/{id}
func (h *Handler) PacketGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()

	packet, err := h.services.Packets.Find(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, packet, start)
}

// PacketDelete removes a packet and its fields.
//
// Method: DELETE
// Path: /api/v1/packets/{id}
func (h *Handler) PacketDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()

	if err := h.services.Packets.Delete(r.Context(), auth.UserFromContext(r.Context()), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, nil, start)
}

// PacketFieldAdd adds a field to a packet definition.
//
// Method: POST
// Path: /api/v1/packets/{id}/fields
func (h *Handler) PacketFieldAdd(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var field models.PacketField
	if !decodeBody(w, r, &field) {
		return
	}
	field.PacketID = id

	start := time.Now()

	added, err := h.services.Packets.AddField(r.Context(), auth.UserFromContext(r.Context()), &field)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusCreated, added, start)
}

// PacketFieldList lists the fields of a packet.
//
// Method: GET
// Path: /api/v1/packets/{id}/fields
func (h *Handler) PacketFieldList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()

	fields, err := h.services.Packets.ListFields(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, fields, start)
}

// PacketFieldRemove deletes one packet field.
//
// Method: DELETE
// Path: /api/v1/packets/fields/{fieldID}
func (h *Handler) PacketFieldRemove(w http.ResponseWriter, r *http.Request) {
	fieldID, ok := pathID(w, r, "fieldID")
	if !ok {
		return
	}

	start := time.Now()

	if err := h.services.Packets.RemoveField(r.Context(), auth.UserFromContext(r.Context()), fieldID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, nil, start)
}
