// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package authz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/fieldhub/internal/database"
	"github.com/tomtom215/fieldhub/internal/models"
)

// mockStore is an in-memory Store for resolver tests.
type mockStore struct {
	// permissions by user id, all resources mixed
	permissions map[int64][]*models.Permission
	// owners and root projects keyed by resource name and entity id
	owners   map[string]map[int64]int64
	roots    map[string]map[int64]int64
	shares   map[int64][]int64 // project id -> user ids with grants
	permErrs error
}

func (m *mockStore) PermissionsFor(_ context.Context, userID int64, resourceName string) ([]*models.Permission, error) {
	if m.permErrs != nil {
		return nil, m.permErrs
	}
	var out []*models.Permission
	for _, p := range m.permissions[userID] {
		if p.ResourceName == resourceName {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockStore) OwnerOf(_ context.Context, resourceName string, entityID int64) (int64, error) {
	owner, ok := m.owners[resourceName][entityID]
	if !ok {
		return 0, database.ErrEntityNotFound
	}
	return owner, nil
}

func (m *mockStore) RootProjectOf(_ context.Context, resourceName string, entityID int64) (int64, error) {
	if resourceName == models.ResourceProject {
		return entityID, nil
	}
	root, ok := m.roots[resourceName][entityID]
	if !ok {
		return 0, database.ErrEntityNotFound
	}
	return root, nil
}

func (m *mockStore) IsShared(_ context.Context, _ string, entityID, userID int64) (bool, error) {
	for _, id := range m.shares[entityID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func newTestStore() *mockStore {
	return &mockStore{
		permissions: make(map[int64][]*models.Permission),
		owners:      map[string]map[int64]int64{models.ResourceProject: {}},
		roots:       map[string]map[int64]int64{},
		shares:      make(map[int64][]int64),
	}
}

func grantGeneric(store *mockStore, userID int64, resource string, actions models.Action) {
	store.permissions[userID] = append(store.permissions[userID], &models.Permission{
		ResourceName: resource,
		ActionIDs:    actions,
	})
}

func TestAuthorize(t *testing.T) {
	store := newTestStore()
	grantGeneric(store, 1, models.ResourceProject, models.ActionsCRUD)

	resolver := NewResolver(store, &ResolverConfig{CacheEnabled: false})
	defer resolver.Close()

	ctx := context.Background()
	user := &models.User{ID: 1, Username: "alice"}

	tests := []struct {
		name    string
		user    *models.User
		action  models.Action
		wantErr error
	}{
		{"nil user denied", nil, models.ActionFind, ErrUnauthorized},
		{"granted action allowed", user, models.ActionSave, nil},
		{"ungranted action denied", user, models.ActionShare, ErrUnauthorized},
		{"admin bypasses permissions", &models.User{ID: 2, Admin: true}, models.ActionShare, nil},
		{"user without any roles denied", &models.User{ID: 3}, models.ActionFind, ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resolver.Authorize(ctx, tt.user, models.ResourceProject, tt.action)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAuthorizeInstanceOwnership(t *testing.T) {
	store := newTestStore()
	// Project 10 owned by user 1; user 2 holds a share grant; user 3
	// has role permissions but neither ownership nor a grant.
	store.owners[models.ResourceProject][10] = 1
	store.shares[10] = []int64{2}
	for _, id := range []int64{1, 2, 3} {
		grantGeneric(store, id, models.ResourceProject, models.ActionsCRUD)
	}

	resolver := NewResolver(store, &ResolverConfig{CacheEnabled: false})
	defer resolver.Close()

	ctx := context.Background()

	tests := []struct {
		name    string
		user    *models.User
		wantErr error
	}{
		{"owner allowed", &models.User{ID: 1}, nil},
		{"share grant holder allowed", &models.User{ID: 2}, nil},
		{"outsider gets not found", &models.User{ID: 3}, ErrNotFound},
		{"admin allowed", &models.User{ID: 4, Admin: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resolver.AuthorizeInstance(ctx, tt.user, models.ResourceProject, 10, models.ActionFind)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("missing instance reported as not found", func(t *testing.T) {
		err := resolver.AuthorizeInstance(ctx, &models.User{ID: 1}, models.ResourceProject, 999, models.ActionFind)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("permission denial beats visibility", func(t *testing.T) {
		// User 5 has no role permission at all, so the denial is an
		// authorization failure, not a not-found masquerade.
		err := resolver.AuthorizeInstance(ctx, &models.User{ID: 5}, models.ResourceProject, 10, models.ActionFind)
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAuthorizeInstanceNestedResource(t *testing.T) {
	store := newTestStore()
	store.owners[models.ResourceDevice] = map[int64]int64{20: 1}
	store.roots[models.ResourceDevice] = map[int64]int64{20: 10}
	store.shares[10] = []int64{2}
	for _, id := range []int64{1, 2, 3} {
		grantGeneric(store, id, models.ResourceDevice, models.ActionsCRUD)
	}

	resolver := NewResolver(store, &ResolverConfig{CacheEnabled: false})
	defer resolver.Close()

	ctx := context.Background()

	// A grant on the root project extends to nested resources.
	if err := resolver.AuthorizeInstance(ctx, &models.User{ID: 2}, models.ResourceDevice, 20, models.ActionUpdate); err != nil {
		t.Errorf("Expected grant holder to reach nested device, got %v", err)
	}
	if err := resolver.AuthorizeInstance(ctx, &models.User{ID: 3}, models.ResourceDevice, 20, models.ActionUpdate); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for outsider, got %v", err)
	}
}

func TestAuthorizeInstanceScopedPermission(t *testing.T) {
	store := newTestStore()
	store.owners[models.ResourceProject][10] = 1
	store.owners[models.ResourceProject][11] = 1

	// User 1 owns both projects but only holds an instance-scoped
	// permission on project 10.
	store.permissions[1] = []*models.Permission{{
		ResourceName: models.ResourceProject,
		ResourceID:   10,
		ActionIDs:    models.ActionFind,
	}}

	resolver := NewResolver(store, &ResolverConfig{CacheEnabled: false})
	defer resolver.Close()

	ctx := context.Background()
	user := &models.User{ID: 1}

	if err := resolver.AuthorizeInstance(ctx, user, models.ResourceProject, 10, models.ActionFind); err != nil {
		t.Errorf("Expected scoped permission to allow its instance, got %v", err)
	}
	if err := resolver.AuthorizeInstance(ctx, user, models.ResourceProject, 11, models.ActionFind); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected other instance to be denied, got %v", err)
	}
	// Scoped rows never satisfy type-level checks.
	if err := resolver.Authorize(ctx, user, models.ResourceProject, models.ActionFind); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected type-level check to be denied, got %v", err)
	}
}

func TestResolverCache(t *testing.T) {
	store := newTestStore()
	grantGeneric(store, 1, models.ResourceProject, models.ActionFind)

	resolver := NewResolver(store, &ResolverConfig{CacheEnabled: true, CacheTTL: time.Minute})
	defer resolver.Close()

	ctx := context.Background()
	user := &models.User{ID: 1}

	if err := resolver.Authorize(ctx, user, models.ResourceProject, models.ActionFind); err != nil {
		t.Fatalf("Expected first check to pass: %v", err)
	}

	// Poison the store; the cached decision must still answer.
	store.permErrs = errors.New("store down")
	if err := resolver.Authorize(ctx, user, models.ResourceProject, models.ActionFind); err != nil {
		t.Errorf("Expected cached decision, got %v", err)
	}

	// Invalidation forces a reload, which now fails.
	resolver.InvalidateUser(user.ID)
	if err := resolver.Authorize(ctx, user, models.ResourceProject, models.ActionFind); err == nil {
		t.Error("Expected error after invalidation with failing store")
	}
}
