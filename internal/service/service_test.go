// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package service

import (
	"context"
	"sync"
	"testing"

	"github.com/tomtom215/fieldhub/internal/authz"
	"github.com/tomtom215/fieldhub/internal/config"
	"github.com/tomtom215/fieldhub/internal/database"
	"github.com/tomtom215/fieldhub/internal/models"
)

// testDBSemaphore serializes DuckDB usage across tests. Concurrent
// in-memory databases under CI resource pressure can hang in CGO calls.
var testDBSemaphore = make(chan struct{}, 1)

var testDBMutex sync.Mutex

// setupTestServices builds a service stack over a fresh in-memory
// database. The semaphore is held for the whole test via t.Cleanup.
func setupTestServices(t *testing.T) (*Services, *database.DB) {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	testDBMutex.Lock()
	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
		Threads:   2,
	})
	testDBMutex.Unlock()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	resolver := authz.NewResolver(db, &authz.ResolverConfig{CacheEnabled: false})
	t.Cleanup(resolver.Close)

	return New(db, resolver, NopPublisher{}), db
}

// registerUser creates an account carrying the baseline role.
func registerUser(t *testing.T, services *Services, username string) *models.User {
	t.Helper()

	user, err := services.Users.Register(context.Background(), &models.User{
		Username: username,
		Email:    username + "@example.com",
	}, "s3cret-"+username)
	if err != nil {
		t.Fatalf("Failed to register user %q: %v", username, err)
	}
	return user
}

// createAdmin inserts an admin account directly; registration never
// produces admins.
func createAdmin(t *testing.T, db *database.DB, username string) *models.User {
	t.Helper()

	admin, err := db.CreateUser(context.Background(), &models.User{
		Username:     username,
		PasswordHash: "x",
		Admin:        true,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("Failed to create admin %q: %v", username, err)
	}
	return admin
}

func saveProject(t *testing.T, services *Services, user *models.User, name string) *models.Project {
	t.Helper()

	project, err := services.Projects.Save(context.Background(), user, &models.Project{Name: name})
	if err != nil {
		t.Fatalf("Failed to save project %q: %v", name, err)
	}
	return project
}

