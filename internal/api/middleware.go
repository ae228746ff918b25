// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/fieldhub/internal/config"
)

// Middleware provides Chi-compatible middleware built from the security
// configuration. Construction happens once; the factories just hand out
// the prepared handlers.
type Middleware struct {
	cors      func(http.Handler) http.Handler
	rateReqs  int
	rateWin   time.Duration
	disabled  bool
	limitDeny http.HandlerFunc
}

// NewMiddleware builds middleware from the security section of the
// configuration. A zero rate-limit request count disables rate limiting.
func NewMiddleware(cfg *config.SecurityConfig) *Middleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           86400,
	})

	window := cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}

	return &Middleware{
		cors:     corsHandler,
		rateReqs: cfg.RateLimitReqs,
		rateWin:  window,
		disabled: cfg.RateLimitReqs <= 0,
		limitDeny: func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests", nil)
		},
	}
}

// CORS returns the CORS middleware built from the configured origins.
func (m *Middleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns an IP-keyed rate limiter for data endpoints.
func (m *Middleware) RateLimit() func(http.Handler) http.Handler {
	return m.limiter(m.rateReqs, m.rateWin)
}

// RateLimitAuth returns the stricter limiter applied to the login
// endpoint. Five attempts per five minutes per client IP.
func (m *Middleware) RateLimitAuth() func(http.Handler) http.Handler {
	return m.limiter(5, 5*time.Minute)
}

func (m *Middleware) limiter(requests int, window time.Duration) func(http.Handler) http.Handler {
	if m.disabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(m.limitDeny),
	)
}
