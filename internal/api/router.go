// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/fieldhub/internal/auth"
	"github.com/tomtom215/fieldhub/internal/middleware"
)

// Router assembles the route tree from the handler and the configured
// middleware factories.
type Router struct {
	handler       *Handler
	middleware    *Middleware
	authenticator *auth.Authenticator
}

// NewRouter creates a router. The authenticator guards every data route;
// only login, registration, health, and /metrics stay public.
func NewRouter(handler *Handler, mw *Middleware, authenticator *auth.Authenticator) *Router {
	return &Router{
		handler:       handler,
		middleware:    mw,
		authenticator: authenticator,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	// Health endpoints. No auth so orchestrators can probe freely.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Authentication. Login carries the strictest rate limit.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(router.middleware.RateLimitAuth()).Post("/login", router.handler.Login)

		r.Group(func(r chi.Router) {
			r.Use(router.middleware.RateLimit())
			r.Use(router.authenticator.Middleware)
			r.Get("/whoami", router.handler.Whoami)
		})
	})

	// Account registration is public; everything else under /users
	// requires a bearer token.
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.With(router.middleware.RateLimitAuth()).Post("/", router.handler.UserRegister)

		r.Group(func(r chi.Router) {
			r.Use(router.authenticator.Middleware)
			r.Get("/{id}", router.handler.UserGet)
			r.Delete("/{id}", router.handler.UserDelete)
		})
	})

	// Data endpoints. Authentication attaches the caller; the service
	// layer decides what the caller may touch.
	r.Route("/api/v1/projects", func(r chi.Router) {
		router.useDataMiddleware(r)

		r.Post("/", router.handler.ProjectSave)
		r.Get("/", router.handler.ProjectList)
		r.Get("/{id}", router.handler.ProjectGet)
		r.Put("/{id}", router.handler.ProjectUpdate)
		r.Delete("/{id}", router.handler.ProjectDelete)
		r.Put("/{id}/owner", router.handler.ProjectUpdateOwner)
		r.Get("/{id}/areas", router.handler.ProjectAreas)
		r.Get("/{id}/devices", router.handler.ProjectDevices)
	})

	r.Route("/api/v1/devices", func(r chi.Router) {
		router.useDataMiddleware(r)

		r.Post("/", router.handler.DeviceSave)
		r.Get("/{id}", router.handler.DeviceGet)
		r.Put("/{id}", router.handler.DeviceUpdate)
		r.Delete("/{id}", router.handler.DeviceDelete)
		r.Get("/{id}/packets", router.handler.DevicePackets)
	})

	r.Route("/api/v1/packets", func(r chi.Router) {
		router.useDataMiddleware(r)

		r.Post("/", router.handler.PacketSave)
		r.Get("/{id}", router.handler.PacketGet)
		r.Put("/{id}", router.handler.PacketUpdate)
		r.Delete("/{id}", router.handler.PacketDelete)
		r.Post("/{id}/fields", router.handler.PacketFieldAdd)
		r.Get("/{id}/fields", router.handler.PacketFieldList)
		r.Delete("/fields/{fieldID}", router.handler.PacketFieldRemove)
	})

	r.Route("/api/v1/areas", func(r chi.Router) {
		router.useDataMiddleware(r)

		r.Post("/", router.handler.AreaSave)
		r.Get("/{id}", router.handler.AreaGet)
		r.Put("/{id}", router.handler.AreaUpdate)
		r.Delete("/{id}", router.handler.AreaDelete)
		r.Post("/{id}/devices", router.handler.AreaDeviceAdd)
		r.Get("/{id}/devices", router.handler.AreaDeviceList)
		r.Delete("/devices/{linkID}", router.handler.AreaDeviceRemove)
	})

	r.Route("/api/v1/shares", func(r chi.Router) {
		router.useDataMiddleware(r)

		r.Post("/", router.handler.ShareCreate)
		r.Delete("/", router.handler.ShareDelete)
		r.Get("/", router.handler.ShareList)
	})

	// Observability.
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// useDataMiddleware applies the shared stack for authenticated data
// routes: rate limit, metrics, then authentication.
func (router *Router) useDataMiddleware(r chi.Router) {
	r.Use(router.middleware.RateLimit())
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.authenticator.Middleware)
}
