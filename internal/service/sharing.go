// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

/*
sharing.go - Share Grant Operations

Only the owner of a resource can share it. Share-grant holders gain
access to the resource but cannot share it onward; re-sharing attempts
are denied outright. Granting the same share twice is idempotent.
*/

package service

import (
	"context"
	"errors"

	"github.com/tomtom215/fieldhub/internal/authz"
	"github.com/tomtom215/fieldhub/internal/database"
	"github.com/tomtom215/fieldhub/internal/events"
	"github.com/tomtom215/fieldhub/internal/models"
)

// ErrNotShareable is returned when the resource kind does not support
// sharing.
var ErrNotShareable = errors.New("resource is not shareable")

// SharingService implements share grant operations.
type SharingService struct {
	db     *database.DB
	authz  *authz.Resolver
	events EventPublisher
}

// Share grants another user access to a resource the caller owns. The
// target user must exist.
func (s *SharingService) Share(ctx context.Context, user *models.User, resourceName string, entityID, targetUserID int64) (*models.SharedEntity, error) {
	if !models.IsShareableResource(resourceName) {
		return nil, ErrNotShareable
	}
	if err := s.authz.Authorize(ctx, user, resourceName, models.ActionShare); err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, user, resourceName, entityID); err != nil {
		return nil, err
	}

	exists, err := s.db.UserExists(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, database.ErrNoResult
	}

	grant, err := s.db.UpsertShare(ctx, &models.SharedEntity{
		ResourceName: resourceName,
		EntityID:     entityID,
		UserID:       targetUserID,
		GrantedBy:    user.ID,
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.EventShared, resourceName, entityID, user.ID)
	return grant, nil
}

// Unshare revokes a previously granted share.
func (s *SharingService) Unshare(ctx context.Context, user *models.User, resourceName string, entityID, targetUserID int64) error {
	if !models.IsShareableResource(resourceName) {
		return ErrNotShareable
	}
	if err := s.authz.Authorize(ctx, user, resourceName, models.ActionShare); err != nil {
		return err
	}
	if err := s.requireOwner(ctx, user, resourceName, entityID); err != nil {
		return err
	}

	if err := s.db.DeleteShare(ctx, resourceName, entityID, targetUserID); err != nil {
		return err
	}

	publish(ctx, s.events, events.EventUnshared, resourceName, entityID, user.ID)
	return nil
}

// ListGrants returns every grant on a resource the caller owns.
func (s *SharingService) ListGrants(ctx context.Context, user *models.User, resourceName string, entityID int64) ([]*models.SharedEntity, error) {
	if !models.IsShareableResource(resourceName) {
		return nil, ErrNotShareable
	}
	if err := s.requireOwner(ctx, user, resourceName, entityID); err != nil {
		return nil, err
	}
	return s.db.ListSharesForResource(ctx, resourceName, entityID)
}

// requireOwner checks that the caller owns the resource instance.
// Admins pass. Grant holders and strangers are both denied: holders
// learn the resource exists but may not re-share it, strangers are told
// it does not exist.
func (s *SharingService) requireOwner(ctx context.Context, user *models.User, resourceName string, entityID int64) error {
	if user == nil {
		return authz.ErrUnauthorized
	}
	if user.Admin {
		return nil
	}

	ownerID, err := s.db.OwnerOf(ctx, resourceName, entityID)
	if errors.Is(err, database.ErrEntityNotFound) {
		return authz.ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID == user.ID {
		return nil
	}

	shared, err := s.db.IsShared(ctx, resourceName, entityID, user.ID)
	if err != nil {
		return err
	}
	if shared {
		return authz.ErrUnauthorized
	}
	return authz.ErrNotFound
}
