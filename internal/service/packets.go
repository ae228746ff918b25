// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package service

import (
	"context"

	"github.com/tomtom215/fieldhub/internal/authz"
	"github.com/tomtom215/fieldhub/internal/database"
	"github.com/tomtom215/fieldhub/internal/events"
	"github.com/tomtom215/fieldhub/internal/models"
	"github.com/tomtom215/fieldhub/internal/validation"
)

// PacketService implements packet and packet field operations.
type PacketService struct {
	db     *database.DB
	authz  *authz.Resolver
	events EventPublisher
}

// Save creates a packet under a device. The caller needs the packet
// save permission and visibility of the parent device.
func (s *PacketService) Save(ctx context.Context, user *models.User, packet *models.Packet) (*models.Packet, error) {
	if err := s.authz.Authorize(ctx, user, models.ResourcePacket, models.ActionSave); err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceDevice, packet.DeviceID, models.ActionPacketsManagement); err != nil {
		return nil, err
	}
	if err := validation.ValidateEntity(packet); err != nil {
		return nil, err
	}

	saved, err := s.db.InsertPacket(ctx, packet)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.EventSaved, models.ResourcePacket, saved.ID, user.ID)
	return saved, nil
}

// Update modifies a packet.
func (s *PacketService) Update(ctx context.Context, user *models.User, packet *models.Packet) (*models.Packet, error) {
	if err := validation.ValidateEntity(packet); err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourcePacket, packet.ID, models.ActionUpdate); err != nil {
		return nil, err
	}

	updated, err := s.db.UpdatePacket(ctx, packet)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.EventUpdated, models.ResourcePacket, updated.ID, user.ID)
	return updated, nil
}

// Find returns one packet by id.
func (s *PacketService) Find(ctx context.Context, user *models.User, id int64) (*models.Packet, error) {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourcePacket, id, models.ActionFind); err != nil {
		return nil, err
	}
	return s.db.GetPacket(ctx, id)
}

// Delete removes a packet and its fields.
func (s *PacketService) Delete(ctx context.Context, user *models.User, id int64) error {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourcePacket, id, models.ActionRemove); err != nil {
		return err
	}
	if err := s.db.DeletePacket(ctx, id); err != nil {
		return err
	}

	publish(ctx, s.events, events.EventRemoved, models.ResourcePacket, id, user.ID)
	return nil
}

// AddField attaches a field to a packet. Requires the dedicated field
// management permission on the packet.
func (s *PacketService) AddField(ctx context.Context, user *models.User, field *models.PacketField) (*models.PacketField, error) {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourcePacket, field.PacketID, models.ActionFieldsManagement); err != nil {
		return nil, err
	}
	if err := validation.ValidateEntity(field); err != nil {
		return nil, err
	}

	saved, err := s.db.InsertPacketField(ctx, field)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.EventSaved, models.ResourcePacketField, saved.ID, user.ID)
	return saved, nil
}

// ListFields returns the fields of a packet.
func (s *PacketService) ListFields(ctx context.Context, user *models.User, packetID int64) ([]*models.PacketField, error) {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourcePacket, packetID, models.ActionFieldsManagement); err != nil {
		return nil, err
	}
	return s.db.ListPacketFields(ctx, packetID)
}

// RemoveField deletes one packet field.
func (s *PacketService) RemoveField(ctx context.Context, user *models.User, fieldID int64) error {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourcePacketField, fieldID, models.ActionRemove); err != nil {
		return err
	}
	if err := s.db.DeletePacketField(ctx, fieldID); err != nil {
		return err
	}

	publish(ctx, s.events, events.EventRemoved, models.ResourcePacketField, fieldID, user.ID)
	return nil
}
