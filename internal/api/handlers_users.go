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

// registerRequest is the account creation payload. Admin and Active are
// not accepted from callers; the service forces them.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserRegister creates a new account. Registration is open; the new
// account receives the default role and its baseline permissions.
//
// Method: POST
// Path: /api/v1/users
//
// Response:
//   - 201: Account created
//   - 409: Username already taken
//   - 422: Validation failure
func (h *Handler) UserRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now()

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
	}
	created, err := h.services.Users.Register(r.Context(), user, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusCreated, created, start)
}

// UserGet returns one account. Non-admin callers may only fetch their
// own account; other ids respond 404.
//
// Method: GET
// Path: /api/v1/users/{id}
func (h *Handler) UserGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()

	user, err := h.services.Users.Find(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, user, start)
}

// UserDelete removes an account together with its owned projects.
// Self-service or admin only.
//
// Method: DELETE
// Path: /api/v1/users/{id}
func (h *Handler) UserDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()

	if err := h.services.Users.Delete(r.Context(), auth.UserFromContext(r.Context()), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, nil, start)
}
