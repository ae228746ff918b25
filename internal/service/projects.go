// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

/*
projects.go - Project Operations

Projects are the root of the ownership tree. Two rules shape the update
surface:

  - A generic update never changes the owner. A request carrying a
    different owner id is rejected outright; ownership changes go
    through UpdateOwner, a dedicated operation callable by the current
    owner or a share-grant holder.

Deleting a project removes its whole subtree in one transaction.
*/

package service

import (
	"context"
	"errors"

	"github.com/tomtom215/fieldhub/internal/authz"
	"github.com/tomtom215/fieldhub/internal/database"
	"github.com/tomtom215/fieldhub/internal/events"
	"github.com/tomtom215/fieldhub/internal/models"
	"github.com/tomtom215/fieldhub/internal/validation"
)

// ProjectService implements project operations.
type ProjectService struct {
	db     *database.DB
	authz  *authz.Resolver
	events EventPublisher
}

// Save creates a project. The owner defaults to the requesting user
// when the request does not name one.
func (s *ProjectService) Save(ctx context.Context, user *models.User, project *models.Project) (*models.Project, error) {
	if err := s.authz.Authorize(ctx, user, models.ResourceProject, models.ActionSave); err != nil {
		return nil, err
	}

	if project.UserID == 0 {
		project.UserID = user.ID
	}
	if err := validation.ValidateEntity(project); err != nil {
		return nil, err
	}

	saved, err := s.db.InsertProject(ctx, project)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.EventSaved, models.ResourceProject, saved.ID, user.ID)
	return saved, nil
}

// Update modifies a project's fields. A request naming a different
// owner is rejected as unauthorized; an unset owner id defaults to the
// stored one. Reassignment goes through UpdateOwner only.
func (s *ProjectService) Update(ctx context.Context, user *models.User, project *models.Project) (*models.Project, error) {
	if err := validation.ValidateEntity(project); err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceProject, project.ID, models.ActionUpdate); err != nil {
		return nil, err
	}

	owner, err := s.db.ProjectOwner(ctx, project.ID)
	if errors.Is(err, database.ErrEntityNotFound) {
		return nil, authz.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if project.UserID != 0 && project.UserID != owner {
		return nil, authz.ErrUnauthorized
	}

	updated, err := s.db.UpdateProject(ctx, project)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.EventUpdated, models.ResourceProject, updated.ID, user.ID)
	return updated, nil
}

// UpdateOwner transfers a project to a new owner. The current owner and
// share-grant holders may call it; everyone else is told the project
// does not exist. A missing new owner is a processing error, not a
// validation failure.
func (s *ProjectService) UpdateOwner(ctx context.Context, user *models.User, projectID, newOwnerID int64) (*models.Project, error) {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceProject, projectID, models.ActionUpdate); err != nil {
		return nil, err
	}

	updated, err := s.db.UpdateProjectOwner(ctx, projectID, newOwnerID)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.EventOwnerChanged, models.ResourceProject, projectID, user.ID)
	return updated, nil
}

// Find returns one project by id.
func (s *ProjectService) Find(ctx context.Context, user *models.User, id int64) (*models.Project, error) {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceProject, id, models.ActionFind); err != nil {
		return nil, err
	}
	return s.db.GetProject(ctx, id)
}

// FindAll lists the projects visible to the user. Admins see every
// project.
func (s *ProjectService) FindAll(ctx context.Context, user *models.User) ([]*models.Project, error) {
	if err := s.authz.Authorize(ctx, user, models.ResourceProject, models.ActionFindAll); err != nil {
		return nil, err
	}
	if user.Admin {
		return s.db.ListAllProjects(ctx)
	}
	return s.db.ListProjectsVisibleTo(ctx, user.ID)
}

// FindAllPaginated lists one page of the user's visible projects.
func (s *ProjectService) FindAllPaginated(ctx context.Context, user *models.User, delta, page int) (*models.Page[*models.Project], error) {
	if err := s.authz.Authorize(ctx, user, models.ResourceProject, models.ActionFindAll); err != nil {
		return nil, err
	}

	if delta <= 0 {
		delta = models.DefaultPageDelta
	}
	if page <= 0 {
		page = 1
	}

	var (
		total   int
		results []*models.Project
		err     error
	)
	if user.Admin {
		total, err = s.db.CountAllProjects(ctx)
		if err == nil {
			results, err = s.db.ListProjectsPageAll(ctx, delta, page)
		}
	} else {
		total, err = s.db.CountProjectsVisibleTo(ctx, user.ID)
		if err == nil {
			results, err = s.db.ListProjectsPageVisibleTo(ctx, user.ID, delta, page)
		}
	}
	if err != nil {
		return nil, err
	}

	return models.NewPage(results, total, delta, page), nil
}

// Delete removes a project and everything under it.
func (s *ProjectService) Delete(ctx context.Context, user *models.User, id int64) error {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceProject, id, models.ActionRemove); err != nil {
		return err
	}
	if err := s.db.DeleteProject(ctx, id); err != nil {
		return err
	}

	publish(ctx, s.events, events.EventRemoved, models.ResourceProject, id, user.ID)
	return nil
}

// GetAreaList returns the areas of a project. Requires the dedicated
// area management permission on the project.
func (s *ProjectService) GetAreaList(ctx context.Context, user *models.User, projectID int64) ([]*models.Area, error) {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceProject, projectID, models.ActionAreasManagement); err != nil {
		return nil, err
	}
	if err := s.ensureProjectExists(ctx, projectID); err != nil {
		return nil, err
	}
	return s.db.ListAreasByProject(ctx, projectID)
}

// GetDeviceList returns the devices of a project. Requires the
// dedicated device list permission on the project.
func (s *ProjectService) GetDeviceList(ctx context.Context, user *models.User, projectID int64) ([]*models.Device, error) {
	if err := s.authz.AuthorizeInstance(ctx, user, models.ResourceProject, projectID, models.ActionDeviceList); err != nil {
		return nil, err
	}
	if err := s.ensureProjectExists(ctx, projectID); err != nil {
		return nil, err
	}
	return s.db.ListDevicesByProject(ctx, projectID)
}

// ensureProjectExists covers the admin path, where the resolver skips
// the existence-implying visibility gate.
func (s *ProjectService) ensureProjectExists(ctx context.Context, projectID int64) error {
	_, err := s.db.GetProject(ctx, projectID)
	if errors.Is(err, database.ErrEntityNotFound) {
		return authz.ErrNotFound
	}
	return err
}
