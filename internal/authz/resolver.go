// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package authz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/fieldhub/internal/database"
	"github.com/tomtom215/fieldhub/internal/logging"
	"github.com/tomtom215/fieldhub/internal/models"
)

// PermissionStore loads the permission rows backing role checks.
type PermissionStore interface {
	PermissionsFor(ctx context.Context, userID int64, resourceName string) ([]*models.Permission, error)
}

// OwnershipStore resolves the owner and root project of owned resources.
type OwnershipStore interface {
	OwnerOf(ctx context.Context, resourceName string, entityID int64) (int64, error)
	RootProjectOf(ctx context.Context, resourceName string, entityID int64) (int64, error)
}

// ShareStore answers whether a user holds a share grant on a resource.
type ShareStore interface {
	IsShared(ctx context.Context, resourceName string, entityID, userID int64) (bool, error)
}

// Store is the full storage surface the resolver needs. *database.DB
// satisfies it.
type Store interface {
	PermissionStore
	OwnershipStore
	ShareStore
}

// ResolverConfig holds resolver tuning knobs.
type ResolverConfig struct {
	// CacheEnabled enables type-level decision caching.
	CacheEnabled bool

	// CacheTTL is how long cached decisions stay valid.
	CacheTTL time.Duration
}

// DefaultResolverConfig returns default configuration.
func DefaultResolverConfig() *ResolverConfig {
	return &ResolverConfig{
		CacheEnabled: true,
		CacheTTL:     5 * time.Minute,
	}
}

// Resolver makes authorization decisions against the permission store.
type Resolver struct {
	store  Store
	config *ResolverConfig
	cache  *decisionCache
}

// NewResolver creates a resolver backed by the given store.
func NewResolver(store Store, config *ResolverConfig) *Resolver {
	if config == nil {
		config = DefaultResolverConfig()
	}

	r := &Resolver{
		store:  store,
		config: config,
	}
	if config.CacheEnabled {
		r.cache = newDecisionCache(config.CacheTTL)
	}
	return r
}

// Close releases resolver resources.
func (r *Resolver) Close() {
	if r.cache != nil {
		r.cache.stop()
	}
}

// InvalidateUser drops cached decisions for one user. Call it after
// role assignments change.
func (r *Resolver) InvalidateUser(userID int64) {
	if r.cache != nil {
		r.cache.invalidateUser(userID)
	}
}

// Authorize checks a type-level operation, one not aimed at a specific
// instance, such as save or list. Returns nil when allowed,
// ErrUnauthorized otherwise.
func (r *Resolver) Authorize(ctx context.Context, user *models.User, resourceName string, action models.Action) error {
	start := time.Now()

	if user == nil {
		RecordDecision(resourceName, action.String(), false, time.Since(start), false)
		return ErrUnauthorized
	}
	if user.Admin {
		RecordDecision(resourceName, action.String(), true, time.Since(start), false)
		return nil
	}

	if r.cache != nil {
		if allowed, ok := r.cache.get(user.ID, resourceName, action); ok {
			RecordDecision(resourceName, action.String(), allowed, time.Since(start), true)
			if !allowed {
				return ErrUnauthorized
			}
			return nil
		}
	}

	allowed, err := r.hasPermission(ctx, user.ID, resourceName, 0, action)
	if err != nil {
		return fmt.Errorf("permission lookup failed: %w", err)
	}

	if r.cache != nil {
		r.cache.set(user.ID, resourceName, action, allowed)
	}
	RecordDecision(resourceName, action.String(), allowed, time.Since(start), false)

	if !allowed {
		logging.Ctx(ctx).Debug().
			Int64("user_id", user.ID).
			Str("resource", resourceName).
			Str("action", action.String()).
			Msg("Authorization denied")
		return ErrUnauthorized
	}
	return nil
}

// AuthorizeInstance checks an operation aimed at a specific instance.
// Beyond the role permission check, owned resources require the user to
// own the root project or hold a share grant on it; failing that gate
// yields ErrNotFound so the instance's existence is not revealed.
func (r *Resolver) AuthorizeInstance(ctx context.Context, user *models.User, resourceName string, entityID int64, action models.Action) error {
	start := time.Now()

	if user == nil {
		RecordDecision(resourceName, action.String(), false, time.Since(start), false)
		return ErrUnauthorized
	}
	if user.Admin {
		RecordDecision(resourceName, action.String(), true, time.Since(start), false)
		return nil
	}

	allowed, err := r.hasPermission(ctx, user.ID, resourceName, entityID, action)
	if err != nil {
		return fmt.Errorf("permission lookup failed: %w", err)
	}
	if !allowed {
		RecordDecision(resourceName, action.String(), false, time.Since(start), false)
		return ErrUnauthorized
	}

	if models.IsOwnedResource(resourceName) && entityID != 0 {
		visible, err := r.isVisible(ctx, user, resourceName, entityID)
		if err != nil {
			return err
		}
		if !visible {
			RecordDecision(resourceName, action.String(), false, time.Since(start), false)
			logging.Ctx(ctx).Debug().
				Int64("user_id", user.ID).
				Str("resource", resourceName).
				Int64("entity_id", entityID).
				Msg("Instance hidden from user")
			return ErrNotFound
		}
	}

	RecordDecision(resourceName, action.String(), true, time.Since(start), false)
	return nil
}

// hasPermission reports whether any of the user's permission rows for
// the resource allow the action. Generic rows apply to every instance;
// rows scoped to another instance are ignored.
func (r *Resolver) hasPermission(ctx context.Context, userID int64, resourceName string, entityID int64, action models.Action) (bool, error) {
	perms, err := r.store.PermissionsFor(ctx, userID, resourceName)
	if err != nil {
		return false, err
	}

	for _, p := range perms {
		if p.IsGeneric() && p.Allows(action) {
			return true, nil
		}
	}
	if entityID != 0 {
		for _, p := range perms {
			if p.ResourceID == entityID && p.Allows(action) {
				return true, nil
			}
		}
	}
	return false, nil
}

// isVisible reports whether the user owns the instance's root project
// or holds a share grant on it. A missing instance is reported as
// ErrNotFound.
func (r *Resolver) isVisible(ctx context.Context, user *models.User, resourceName string, entityID int64) (bool, error) {
	ownerID, err := r.store.OwnerOf(ctx, resourceName, entityID)
	if errors.Is(err, database.ErrEntityNotFound) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("ownership lookup failed: %w", err)
	}
	if ownerID == user.ID {
		return true, nil
	}

	projectID, err := r.store.RootProjectOf(ctx, resourceName, entityID)
	if errors.Is(err, database.ErrEntityNotFound) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("root project lookup failed: %w", err)
	}

	shared, err := r.store.IsShared(ctx, models.ResourceProject, projectID, user.ID)
	if err != nil {
		return false, fmt.Errorf("share lookup failed: %w", err)
	}
	return shared, nil
}
