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

// loginRequest is the credentials payload for the login endpoint.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse carries the bearer token and the authenticated account.
type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login authenticates a username/password pair and returns a signed
// bearer token.
//
// Method: POST
// Path: /api/v1/auth/login
//
// Response:
//   - 200: Token issued
//   - 400: Malformed body
//   - 401: Unknown user, wrong password, or inactive account
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now()

	token, user, err := h.authenticator.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, &loginResponse{Token: token, User: user}, start)
}

// Whoami returns the account attached to the current bearer token.
//
// Method: GET
// Path: /api/v1/auth/whoami
func (h *Handler) Whoami(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required", nil)
		return
	}

	respondData(w, http.StatusOK, user, time.Now())
}
