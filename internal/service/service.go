// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

// Package service implements the resource operations behind the HTTP
// API. Each service method takes the requesting user, runs the
// authorization pipeline, validates input, and delegates persistence to
// the database layer. Lifecycle changes are announced on the event bus.
package service

import (
	"context"

	"github.com/tomtom215/fieldhub/internal/authz"
	"github.com/tomtom215/fieldhub/internal/database"
	"github.com/tomtom215/fieldhub/internal/logging"
)

// EventPublisher announces entity lifecycle changes. *events.Bus
// satisfies it.
type EventPublisher interface {
	PublishEntityEvent(ctx context.Context, action, resourceName string, entityID, userID int64) error
}

// NopPublisher discards events. Used when the event bus is disabled.
type NopPublisher struct{}

// PublishEntityEvent implements EventPublisher.
func (NopPublisher) PublishEntityEvent(context.Context, string, string, int64, int64) error {
	return nil
}

// Services bundles every resource service over shared dependencies.
type Services struct {
	Projects *ProjectService
	Devices  *DeviceService
	Packets  *PacketService
	Areas    *AreaService
	Sharing  *SharingService
	Users    *UserService
}

// New wires the services over one database, resolver, and publisher.
func New(db *database.DB, resolver *authz.Resolver, publisher EventPublisher) *Services {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Services{
		Projects: &ProjectService{db: db, authz: resolver, events: publisher},
		Devices:  &DeviceService{db: db, authz: resolver, events: publisher},
		Packets:  &PacketService{db: db, authz: resolver, events: publisher},
		Areas:    &AreaService{db: db, authz: resolver, events: publisher},
		Sharing:  &SharingService{db: db, authz: resolver, events: publisher},
		Users:    &UserService{db: db, authz: resolver, events: publisher},
	}
}

// publish fires an event and logs failures without propagating them.
// A lost notification must not roll back a committed change.
func publish(ctx context.Context, events EventPublisher, action, resourceName string, entityID, userID int64) {
	if err := events.PublishEntityEvent(ctx, action, resourceName, entityID, userID); err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("action", action).
			Str("resource", resourceName).
			Int64("entity_id", entityID).
			Msg("Failed to publish entity event")
	}
}
