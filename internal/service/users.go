// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package service

import (
	"context"
	"errors"

	"github.com/tomtom215/fieldhub/internal/authz"
	"github.com/tomtom215/fieldhub/internal/database"
	"github.com/tomtom215/fieldhub/internal/models"
	"github.com/tomtom215/fieldhub/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// UserService implements account operations. New accounts receive the
// baseline role, so registration alone grants the standard resource
// permissions.
type UserService struct {
	db     *database.DB
	authz  *authz.Resolver
	events EventPublisher
}

// Register creates an account with a hashed password.
func (s *UserService) Register(ctx context.Context, user *models.User, password string) (*models.User, error) {
	if err := validation.ValidateEntity(user); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)
	user.Admin = false
	user.Active = true

	return s.db.CreateUser(ctx, user)
}

// Find returns one account. Users see themselves; admins see anyone.
func (s *UserService) Find(ctx context.Context, requester *models.User, id int64) (*models.User, error) {
	if requester == nil {
		return nil, authz.ErrUnauthorized
	}
	if !requester.Admin && requester.ID != id {
		return nil, authz.ErrNotFound
	}
	return s.db.GetUser(ctx, id)
}

// Delete removes an account together with every project it owns.
// Users may delete themselves; admins may delete anyone.
func (s *UserService) Delete(ctx context.Context, requester *models.User, id int64) error {
	if requester == nil {
		return authz.ErrUnauthorized
	}
	if !requester.Admin && requester.ID != id {
		return authz.ErrNotFound
	}

	err := s.db.DeleteUser(ctx, id)
	if errors.Is(err, database.ErrEntityNotFound) {
		return authz.ErrNotFound
	}
	return err
}
