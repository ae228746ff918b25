// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/fieldhub/internal/models"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	if err := bus.PublishEntityEvent(ctx, EventSaved, models.ResourceProject, 42, 7); err != nil {
		t.Fatalf("Failed to publish: %v", err)
	}

	select {
	case msg := <-messages:
		event, err := DeserializeEvent(msg.Payload)
		if err != nil {
			t.Fatalf("Failed to decode event: %v", err)
		}
		if event.Action != EventSaved {
			t.Errorf("Expected action %q, got %q", EventSaved, event.Action)
		}
		if event.ResourceName != models.ResourceProject {
			t.Errorf("Expected resource %q, got %q", models.ResourceProject, event.ResourceName)
		}
		if event.EntityID != 42 || event.UserID != 7 {
			t.Errorf("Expected entity 42 / user 7, got %d / %d", event.EntityID, event.UserID)
		}
		if event.EventID == "" {
			t.Error("Expected non-empty event id")
		}
		msg.Ack()
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for event")
	}
}

func TestBusPublishAfterClose(t *testing.T) {
	bus := NewBus()
	if err := bus.Close(); err != nil {
		t.Fatalf("Failed to close bus: %v", err)
	}
	// Closing twice is harmless.
	if err := bus.Close(); err != nil {
		t.Fatalf("Expected second close to be a no-op, got %v", err)
	}

	err := bus.PublishEntityEvent(context.Background(), EventSaved, models.ResourceProject, 1, 1)
	if err == nil {
		t.Error("Expected publish on closed bus to fail")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	original := &EntityEvent{
		EventID:      "abc",
		Action:       EventRemoved,
		ResourceName: models.ResourceDevice,
		EntityID:     5,
		UserID:       9,
		OccurredAt:   time.Now().UTC().Truncate(time.Millisecond),
	}

	data, err := SerializeEvent(original)
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}
	decoded, err := DeserializeEvent(data)
	if err != nil {
		t.Fatalf("Failed to deserialize: %v", err)
	}
	if *decoded != *original {
		t.Errorf("Round trip mismatch: %+v != %+v", decoded, original)
	}
}

func TestLoggerAdapterAllLevels(t *testing.T) {
	adapter := NewLoggerAdapter().With(watermill.LogFields{"component": "bus"})

	// Each level must emit without panicking, including nil error and
	// nil fields.
	adapter.Error("publish failed", errors.New("boom"), watermill.LogFields{"topic": TopicEntities})
	adapter.Error("publish failed", nil, nil)
	adapter.Info("subscriber started", watermill.LogFields{"topic": TopicEntities})
	adapter.Debug("message acked", nil)
	adapter.Trace("message received", nil)
}
