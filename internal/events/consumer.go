// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package events

import (
	"context"

	"github.com/tomtom215/fieldhub/internal/logging"
)

// AuditConsumer subscribes to entity events and writes one structured
// log line per event. It implements suture.Service.
type AuditConsumer struct {
	bus *Bus
}

// NewAuditConsumer creates a consumer on the given bus.
func NewAuditConsumer(bus *Bus) *AuditConsumer {
	return &AuditConsumer{bus: bus}
}

// Serve consumes events until ctx is cancelled.
func (c *AuditConsumer) Serve(ctx context.Context) error {
	messages, err := c.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	logging.Info().Msg("Entity event consumer started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.handle(msg.Payload)
			msg.Ack()
		}
	}
}

func (c *AuditConsumer) handle(payload []byte) {
	event, err := DeserializeEvent(payload)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to decode entity event")
		return
	}

	logging.Info().
		Str("event_id", event.EventID).
		Str("action", event.Action).
		Str("resource", event.ResourceName).
		Int64("entity_id", event.EntityID).
		Int64("user_id", event.UserID).
		Time("occurred_at", event.OccurredAt).
		Msg("Entity event")
}

// String names the service for supervisor logs.
func (c *AuditConsumer) String() string {
	return "entity-event-consumer"
}
