// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

/*
api_responses.go - API Response Envelopes

Standardized response wrapper used by every HTTP endpoint, plus the page
envelope for paginated listings.

Example error response:

	{
	  "status": "error",
	  "error": {
	    "code": "VALIDATION_ERROR",
	    "message": "name must not be empty",
	    "violations": [
	      {"field": "hproject-name", "message": "must not be empty", "invalid_value": ""}
	    ]
	  },
	  "metadata": {"timestamp": "2026-08-31T12:00:00Z"}
	}
*/

package models

import "time"

// APIResponse is the standardized response wrapper for all HTTP endpoints.
// Status is "success" or "error".
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code       string           `json:"code"`
	Message    string           `json:"message"`
	Violations []FieldViolation `json:"violations,omitempty"`
}

// FieldViolation is one field-level validation failure. InvalidValue
// echoes the rejected input so clients can highlight it.
type FieldViolation struct {
	Field        string      `json:"field"`
	Message      string      `json:"message"`
	InvalidValue interface{} `json:"invalid_value"`
}

// DefaultPageDelta is used when a caller supplies delta <= 0.
const DefaultPageDelta = 10

// Page is the envelope returned by paginated listings.
//
// Contract: delta <= 0 defaults to DefaultPageDelta, page <= 0 defaults
// to 1, NumPages = ceil(total/delta), and NextPage wraps to 1 when the
// current page is the last one.
type Page[T any] struct {
	Results     []T `json:"results"`
	Delta       int `json:"delta"`
	CurrentPage int `json:"current_page"`
	NextPage    int `json:"next_page"`
	NumPages    int `json:"num_pages"`
}

// NewPage builds a page envelope from a full result window and the total
// row count, applying the pagination defaults.
func NewPage[T any](results []T, total, delta, page int) *Page[T] {
	if delta <= 0 {
		delta = DefaultPageDelta
	}
	if page <= 0 {
		page = 1
	}

	numPages := total / delta
	if total%delta != 0 {
		numPages++
	}
	if numPages == 0 {
		numPages = 1
	}

	nextPage := page + 1
	if page >= numPages {
		nextPage = 1
	}

	return &Page[T]{
		Results:     results,
		Delta:       delta,
		CurrentPage: page,
		NextPage:    nextPage,
		NumPages:    numPages,
	}
}
