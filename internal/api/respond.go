// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fieldhub/internal/auth"
	"github.com/tomtom215/fieldhub/internal/authz"
	"github.com/tomtom215/fieldhub/internal/database"
	"github.com/tomtom215/fieldhub/internal/logging"
	"github.com/tomtom215/fieldhub/internal/models"
	"github.com/tomtom215/fieldhub/internal/service"
	"github.com/tomtom215/fieldhub/internal/validation"
)

// sanitizeLogValue removes control characters from strings to prevent
// log injection. Newlines and other control characters could otherwise
// let request data forge log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData sends a success envelope with query timing metadata.
func respondData(w http.ResponseWriter, status int, data interface{}, start time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondError sends an error envelope.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Str("code", code).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondServiceError maps service and storage errors onto HTTP status
// codes. This is the single translation point for the whole API:
//
//	validation failure      -> 422 VALIDATION_ERROR (with violations)
//	bad credentials         -> 401 BAD_CREDENTIALS
//	permission denied       -> 403 FORBIDDEN
//	hidden or missing row   -> 404 NOT_FOUND
//	uniqueness violation    -> 409 DUPLICATE_ENTITY (naming the colliding fields)
//	stale entity version    -> 409 STALE_VERSION
//	cross-project link      -> 422 VALIDATION_ERROR
//	unshareable resource    -> 422 VALIDATION_ERROR
//	missing referenced row  -> 500 NO_RESULT
//	anything else           -> 500 INTERNAL_ERROR
func respondServiceError(w http.ResponseWriter, err error) {
	var vErr *validation.EntityValidationError
	if errors.As(err, &vErr) {
		respondJSON(w, http.StatusUnprocessableEntity, &models.APIResponse{
			Status: "error",
			Metadata: models.Metadata{
				Timestamp: time.Now(),
			},
			Error: &models.APIError{
				Code:       "VALIDATION_ERROR",
				Message:    vErr.Error(),
				Violations: vErr.Violations(),
			},
		})
		return
	}

	switch {
	case errors.Is(err, auth.ErrBadCredentials):
		respondError(w, http.StatusUnauthorized, "BAD_CREDENTIALS", "Invalid username or password", nil)
	case errors.Is(err, authz.ErrUnauthorized):
		respondError(w, http.StatusForbidden, "FORBIDDEN", "Operation not permitted", nil)
	case errors.Is(err, authz.ErrNotFound), errors.Is(err, database.ErrEntityNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Entity not found", nil)
	case errors.Is(err, database.ErrDuplicateEntity):
		respondDuplicate(w, err)
	case errors.Is(err, database.ErrStaleVersion):
		respondError(w, http.StatusConflict, "STALE_VERSION", "Entity was modified concurrently", nil)
	case errors.Is(err, database.ErrSameProjectRequired):
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Area and device must belong to the same project", nil)
	case errors.Is(err, service.ErrNotShareable):
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Resource type cannot be shared", nil)
	case errors.Is(err, database.ErrNoResult):
		respondError(w, http.StatusInternalServerError, "NO_RESULT", "Referenced entity not found", err)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", err)
	}
}

// respondDuplicate reports a uniqueness violation, naming the colliding
// fields when the storage layer identified them.
func respondDuplicate(w http.ResponseWriter, err error) {
	var dup *database.DuplicateError
	if !errors.As(err, &dup) {
		respondError(w, http.StatusConflict, "DUPLICATE_ENTITY", "Entity already exists", nil)
		return
	}

	violations := make([]models.FieldViolation, 0, len(dup.Fields))
	for _, field := range dup.Fields {
		violations = append(violations, models.FieldViolation{
			Field:   field,
			Message: "value already in use",
		})
	}

	respondJSON(w, http.StatusConflict, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:       "DUPLICATE_ENTITY",
			Message:    fmt.Sprintf("Entity already exists (%s)", strings.Join(dup.Fields, ", ")),
			Violations: violations,
		},
	})
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}
