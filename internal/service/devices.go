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
	"golang.org/x/crypto/bcrypt"
)

// DeviceService implements device operations. Devices authenticate to
// the platform with their own password, stored hashed.
type DeviceService struct {
	db     *database.DB
	authz  *authz.Resolver
	events EventPublisher
}

// Save creates a device under a project. The caller needs the device
// save permission and visibility of the parent project. Password is the
// device's plaintext credential and is hashed before storage.
func (s *DeviceService) Save(ctx context.Context, user *models.User, device *models.Device, password string) (*models.Device, error) {
	if err := s.authz.Authorize(ctx, user, models.ResourceDevice, models.ActionSave); err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceProject, device.ProjectID, models.ActionDeviceList); err != nil {
		return nil, err
	}
	if err := validation.ValidateEntity(device); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	device.PasswordHash = string(hash)

	saved, err := s.db.InsertDevice(ctx, device)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.EventSaved, models.ResourceDevice, saved.ID, user.ID)
	return saved, nil
}

// Update modifies a device. The password hash is untouched.
func (s *DeviceService) Update(ctx context.Context, user *models.User, device *models.Device) (*models.Device, error) {
	if err := validation.ValidateEntity(device); err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceDevice, device.ID, models.ActionUpdate); err != nil {
		return nil, err
	}

	updated, err := s.db.UpdateDevice(ctx, device)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.EventUpdated, models.ResourceDevice, updated.ID, user.ID)
	return updated, nil
}

// Find returns one device by id.
func (s *DeviceService) Find(ctx context.Context, user *models.User, id int64) (*models.Device, error) {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceDevice, id, models.ActionFind); err != nil {
		return nil, err
	}
	return s.db.GetDevice(ctx, id)
}

// Delete removes a device and its packets. The parent project is
// untouched.
func (s *DeviceService) Delete(ctx context.Context, user *models.User, id int64) error {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceDevice, id, models.ActionRemove); err != nil {
		return err
	}
	if err := s.db.DeleteDevice(ctx, id); err != nil {
		return err
	}

	publish(ctx, s.events, events.EventRemoved, models.ResourceDevice, id, user.ID)
	return nil
}

// GetPacketList returns the packets of a device. Requires the dedicated
// packet management permission on the device.
func (s *DeviceService) GetPacketList(ctx context.Context, user *models.User, deviceID int64) ([]*models.Packet, error) {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceDevice, deviceID, models.ActionPacketsManagement); err != nil {
		return nil, err
	}
	return s.db.ListPacketsByDevice(ctx, deviceID)
}
