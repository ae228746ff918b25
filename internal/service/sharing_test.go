// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/fieldhub/internal/authz"
	"github.com/tomtom215/fieldhub/internal/database"
	"github.com/tomtom215/fieldhub/internal/models"
)

func TestShare(t *testing.T) {
	services, _ := setupTestServices(t)
	ctx := context.Background()
	alice := registerUser(t, services, "alice")
	bob := registerUser(t, services, "bob")
	carol := registerUser(t, services, "carol")
	project := saveProject(t, services, alice, "greenhouse")

	t.Run("owner shares", func(t *testing.T) {
		grant, err := services.Sharing.Share(ctx, alice, models.ResourceProject, project.ID, bob.ID)
		if err != nil {
			t.Fatalf("Failed to share: %v", err)
		}
		if grant.UserID != bob.ID || grant.GrantedBy != alice.ID {
			t.Errorf("Unexpected grant %+v", grant)
		}
	})

	t.Run("sharing twice is idempotent", func(t *testing.T) {
		if _, err := services.Sharing.Share(ctx, alice, models.ResourceProject, project.ID, bob.ID); err != nil {
			t.Fatalf("Failed to re-share: %v", err)
		}
		grants, err := services.Sharing.ListGrants(ctx, alice, models.ResourceProject, project.ID)
		if err != nil {
			t.Fatalf("Failed to list grants: %v", err)
		}
		if len(grants) != 1 {
			t.Errorf("Expected one grant, got %d", len(grants))
		}
	})

	t.Run("grant holder may not re-share", func(t *testing.T) {
		_, err := services.Sharing.Share(ctx, bob, models.ResourceProject, project.ID, carol.ID)
		if !errors.Is(err, authz.ErrUnauthorized) {
			t.Errorf("Expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("stranger gets not found", func(t *testing.T) {
		_, err := services.Sharing.Share(ctx, carol, models.ResourceProject, project.ID, carol.ID)
		if !errors.Is(err, authz.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("missing target user is a processing error", func(t *testing.T) {
		_, err := services.Sharing.Share(ctx, alice, models.ResourceProject, project.ID, 99999)
		if !errors.Is(err, database.ErrNoResult) {
			t.Errorf("Expected ErrNoResult, got %v", err)
		}
	})

	t.Run("missing project reported as not found", func(t *testing.T) {
		_, err := services.Sharing.Share(ctx, alice, models.ResourceProject, 99999, bob.ID)
		if !errors.Is(err, authz.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("non shareable resource rejected", func(t *testing.T) {
		_, err := services.Sharing.Share(ctx, alice, models.ResourceDevice, 1, bob.ID)
		if !errors.Is(err, ErrNotShareable) {
			t.Errorf("Expected ErrNotShareable, got %v", err)
		}
	})
}

func TestUnshare(t *testing.T) {
	services, _ := setupTestServices(t)
	ctx := context.Background()
	alice := registerUser(t, services, "alice")
	bob := registerUser(t, services, "bob")
	project := saveProject(t, services, alice, "greenhouse")

	if _, err := services.Sharing.Share(ctx, alice, models.ResourceProject, project.ID, bob.ID); err != nil {
		t.Fatalf("Failed to share: %v", err)
	}
	if _, err := services.Projects.Find(ctx, bob, project.ID); err != nil {
		t.Fatalf("Expected grant holder to see project, got %v", err)
	}

	t.Run("grant holder may not unshare", func(t *testing.T) {
		err := services.Sharing.Unshare(ctx, bob, models.ResourceProject, project.ID, bob.ID)
		if !errors.Is(err, authz.ErrUnauthorized) {
			t.Errorf("Expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("owner revokes and visibility drops", func(t *testing.T) {
		if err := services.Sharing.Unshare(ctx, alice, models.ResourceProject, project.ID, bob.ID); err != nil {
			t.Fatalf("Failed to unshare: %v", err)
		}
		if _, err := services.Projects.Find(ctx, bob, project.ID); !errors.Is(err, authz.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after revocation, got %v", err)
		}
	})

	t.Run("revoking a missing grant reported", func(t *testing.T) {
		err := services.Sharing.Unshare(ctx, alice, models.ResourceProject, project.ID, bob.ID)
		if !errors.Is(err, database.ErrEntityNotFound) {
			t.Errorf("Expected ErrEntityNotFound, got %v", err)
		}
	})
}
