// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

// Package main is the entry point for the Fieldhub server application.
//
// Fieldhub is a self-hosted registry for IoT projects, devices, packets and
// areas with per-entity ownership, sharing and role-based permissions. It
// exposes a REST API backed by DuckDB and publishes an audit event for every
// entity mutation.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Database: Initialize DuckDB and apply the schema
//  3. Event Bus: In-process Watermill pub/sub with an audit log consumer
//  4. Authorization: Permission resolver with optional decision caching
//  5. Services: Entity services enforcing ownership and sharing rules
//  6. Authentication: JWT token issuer and credential verification
//  7. HTTP Server: Chi REST API with rate limiting, CORS and Prometheus metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (FIELDHUB_ prefix)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// JWT_SECRET must be set to a 32+ character secret for token signing.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: the supervisor
// tree drains the event consumer and gives in-flight HTTP requests a bounded
// window to complete before the process exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/fieldhub/internal/api"
	"github.com/tomtom215/fieldhub/internal/auth"
	"github.com/tomtom215/fieldhub/internal/authz"
	"github.com/tomtom215/fieldhub/internal/config"
	"github.com/tomtom215/fieldhub/internal/database"
	"github.com/tomtom215/fieldhub/internal/events"
	"github.com/tomtom215/fieldhub/internal/logging"
	"github.com/tomtom215/fieldhub/internal/service"
	"github.com/tomtom215/fieldhub/internal/supervisor"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Fieldhub with supervisor tree")
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Dur("token_ttl", cfg.Security.TokenTTL).
		Msg("Configuration loaded")

	// Initialize database and apply schema
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// Event bus for entity audit events
	bus := events.NewBus()
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	// Permission resolver with decision caching
	resolver := authz.NewResolver(db, authz.DefaultResolverConfig())
	defer resolver.Close()

	// Entity services
	services := service.New(db, resolver, bus)

	// JWT authentication
	issuer, err := auth.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize token issuer")
	}
	authenticator := auth.NewAuthenticator(db, issuer)
	logging.Info().Msg("JWT authentication enabled")

	// HTTP handler and router
	handler := api.NewHandler(services, authenticator, db, cfg)
	router := api.NewRouter(handler, api.NewMiddleware(&cfg.Security), authenticator)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create structured logger for supervisor using our slog adapter
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	// Event layer: the audit consumer must outlive the API layer during
	// shutdown so mutations in flight still get logged.
	tree.AddEventService(events.NewAuditConsumer(bus))

	// API layer
	tree.AddAPIService(supervisor.NewHTTPService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
