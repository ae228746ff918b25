// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/tomtom215/fieldhub/internal/metrics"
)

// Bus is an in-process pub/sub for entity events.
type Bus struct {
	pubsub *gochannel.GoChannel
	mu     sync.RWMutex
	closed bool
}

// NewBus creates the pub/sub channel.
func NewBus() *Bus {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 256,
		},
		NewLoggerAdapter(),
	)
	return &Bus{pubsub: pubsub}
}

// PublishEntityEvent builds and publishes one lifecycle event. Publish
// failures are returned to the caller but are not expected to abort the
// originating operation.
func (b *Bus) PublishEntityEvent(ctx context.Context, action, resourceName string, entityID, userID int64) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("event bus is closed")
	}
	b.mu.RUnlock()

	event := &EntityEvent{
		EventID:      uuid.NewString(),
		Action:       action,
		ResourceName: resourceName,
		EntityID:     entityID,
		UserID:       userID,
		OccurredAt:   time.Now().UTC(),
	}

	data, err := SerializeEvent(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set("action", action)
	msg.Metadata.Set("resource_name", resourceName)
	msg.SetContext(ctx)

	err = b.pubsub.Publish(TopicEntities, msg)
	metrics.RecordEventPublished(action, resourceName, err)
	if err != nil {
		return fmt.Errorf("failed to publish entity event: %w", err)
	}
	return nil
}

// Subscribe returns a channel of entity event messages. The channel
// closes when ctx is cancelled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	messages, err := b.pubsub.Subscribe(ctx, TopicEntities)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", TopicEntities, err)
	}
	return messages, nil
}

// Close shuts the pub/sub down. Safe to call multiple times.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}
