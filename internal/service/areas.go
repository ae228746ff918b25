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

// AreaService implements area operations, including the device links
// that place a project's devices inside its areas.
type AreaService struct {
	db     *database.DB
	authz  *authz.Resolver
	events EventPublisher
}

// Save creates an area under a project.
func (s *AreaService) Save(ctx context.Context, user *models.User, area *models.Area) (*models.Area, error) {
	if err := s.authz.Authorize(ctx, user, models.ResourceArea, models.ActionSave); err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceProject, area.ProjectID, models.ActionAreasManagement); err != nil {
		return nil, err
	}
	if err := validation.ValidateEntity(area); err != nil {
		return nil, err
	}

	saved, err := s.db.InsertArea(ctx, area)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.EventSaved, models.ResourceArea, saved.ID, user.ID)
	return saved, nil
}

// Update modifies an area.
func (s *AreaService) Update(ctx context.Context, user *models.User, area *models.Area) (*models.Area, error) {
	if err := validation.ValidateEntity(area); err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceArea, area.ID, models.ActionUpdate); err != nil {
		return nil, err
	}

	updated, err := s.db.UpdateArea(ctx, area)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.EventUpdated, models.ResourceArea, updated.ID, user.ID)
	return updated, nil
}

// Find returns one area by id.
func (s *AreaService) Find(ctx context.Context, user *models.User, id int64) (*models.Area, error) {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceArea, id, models.ActionFind); err != nil {
		return nil, err
	}
	return s.db.GetArea(ctx, id)
}

// Delete removes an area and its device links. The devices survive.
func (s *AreaService) Delete(ctx context.Context, user *models.User, id int64) error {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceArea, id, models.ActionRemove); err != nil {
		return err
	}
	if err := s.db.DeleteArea(ctx, id); err != nil {
		return err
	}

	publish(ctx, s.events, events.EventRemoved, models.ResourceArea, id, user.ID)
	return nil
}

// AddDevice links a device into an area. Both must belong to the same
// project. Requires the dedicated area device permission on the area.
func (s *AreaService) AddDevice(ctx context.Context, user *models.User, areaID, deviceID int64) (*models.AreaDevice, error) {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceArea, areaID, models.ActionAreaDeviceManager); err != nil {
		return nil, err
	}

	link, err := s.db.AddAreaDevice(ctx, areaID, deviceID)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.EventSaved, models.ResourceAreaDevice, link.ID, user.ID)
	return link, nil
}

// RemoveDevice unlinks a device from its area.
func (s *AreaService) RemoveDevice(ctx context.Context, user *models.User, linkID int64) error {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceAreaDevice, linkID, models.ActionRemove); err != nil {
		return err
	}
	if err := s.db.RemoveAreaDevice(ctx, linkID); err != nil {
		return err
	}

	publish(ctx, s.events, events.EventRemoved, models.ResourceAreaDevice, linkID, user.ID)
	return nil
}

// ListDevices returns the device links of an area.
func (s *AreaService) ListDevices(ctx context.Context, user *models.User, areaID int64) ([]*models.AreaDevice, error) {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceArea, areaID, models.ActionAreaDeviceManager); err != nil {
		return nil, err
	}
	return s.db.ListAreaDevices(ctx, areaID)
}
