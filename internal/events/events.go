// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

// Package events publishes entity lifecycle notifications over an
// in-process Watermill pub/sub. Consumers subscribe to the entity
// topic; the bundled audit consumer logs every event.
package events

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// TopicEntities carries all entity lifecycle events.
const TopicEntities = "fieldhub.entities"

// Event action constants.
const (
	EventSaved        = "saved"
	EventUpdated      = "updated"
	EventOwnerChanged = "owner_changed"
	EventRemoved      = "removed"
	EventShared       = "shared"
	EventUnshared     = "unshared"
)

// EntityEvent describes one lifecycle change of a resource instance.
type EntityEvent struct {
	EventID      string    `json:"event_id"`
	Action       string    `json:"action"`
	ResourceName string    `json:"resource_name"`
	EntityID     int64     `json:"entity_id"`
	UserID       int64     `json:"user_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// SerializeEvent marshals an event for transport.
func SerializeEvent(e *EntityEvent) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize event: %w", err)
	}
	return data, nil
}

// DeserializeEvent unmarshals an event payload.
func DeserializeEvent(data []byte) (*EntityEvent, error) {
	e := &EntityEvent{}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("failed to deserialize event: %w", err)
	}
	return e, nil
}
