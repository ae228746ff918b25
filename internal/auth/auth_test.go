// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/fieldhub/internal/database"
	"github.com/tomtom215/fieldhub/internal/models"
)

// mockUsers is an in-memory UserLookup.
type mockUsers struct {
	byName map[string]*models.User
	byID   map[int64]*models.User
}

func (m *mockUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	user, ok := m.byName[username]
	if !ok {
		return nil, database.ErrEntityNotFound
	}
	return user, nil
}

func (m *mockUsers) GetUser(_ context.Context, id int64) (*models.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, database.ErrEntityNotFound
	}
	return user, nil
}

func newMockUsers(t *testing.T, users ...*models.User) *mockUsers {
	t.Helper()
	m := &mockUsers{byName: map[string]*models.User{}, byID: map[int64]*models.User{}}
	for _, u := range users {
		m.byName[u.Username] = u
		m.byID[u.ID] = u
	}
	return m
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	return string(hash)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create issuer: %v", err)
	}

	token, err := issuer.Issue(7, "alice", true)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Failed to parse token: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "alice" || !claims.Admin {
		t.Errorf("Unexpected claims %+v", claims)
	}

	t.Run("wrong secret rejected", func(t *testing.T) {
		other, err := NewTokenIssuer("other-secret", time.Hour)
		if err != nil {
			t.Fatalf("Failed to create issuer: %v", err)
		}
		if _, err := other.Parse(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired token rejected", func(t *testing.T) {
		short, err := NewTokenIssuer("test-secret", time.Millisecond)
		if err != nil {
			t.Fatalf("Failed to create issuer: %v", err)
		}
		expired, err := short.Issue(7, "alice", false)
		if err != nil {
			t.Fatalf("Failed to issue token: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
		if _, err := short.Parse(expired); !errors.Is(err, ErrExpiredToken) {
			t.Errorf("Expected ErrExpiredToken, got %v", err)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		if _, err := issuer.Parse("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("empty secret rejected", func(t *testing.T) {
		if _, err := NewTokenIssuer("", time.Hour); err == nil {
			t.Error("Expected error for empty secret")
		}
	})
}

func TestLogin(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create issuer: %v", err)
	}

	users := newMockUsers(t,
		&models.User{ID: 1, Username: "alice", PasswordHash: hashPassword(t, "hunter2"), Active: true},
		&models.User{ID: 2, Username: "bob", PasswordHash: hashPassword(t, "pw"), Active: false},
	)
	authenticator := NewAuthenticator(users, issuer)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		token, user, err := authenticator.Login(ctx, "alice", "hunter2")
		if err != nil {
			t.Fatalf("Failed to log in: %v", err)
		}
		if token == "" || user.ID != 1 {
			t.Errorf("Unexpected login result token=%q user=%+v", token, user)
		}
	})

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "wrong"},
		{"unknown user", "mallory", "hunter2"},
		{"inactive account", "bob", "pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := authenticator.Login(ctx, tt.username, tt.password)
			if !errors.Is(err, ErrBadCredentials) {
				t.Errorf("Expected ErrBadCredentials, got %v", err)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create issuer: %v", err)
	}
	users := newMockUsers(t,
		&models.User{ID: 1, Username: "alice", Active: true},
		&models.User{ID: 2, Username: "bob", Active: false},
	)
	authenticator := NewAuthenticator(users, issuer)

	var captured *models.User
	handler := authenticator.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	issue := func(t *testing.T, id int64, username string) string {
		t.Helper()
		token, err := issuer.Issue(id, username, false)
		if err != nil {
			t.Fatalf("Failed to issue token: %v", err)
		}
		return token
	}

	t.Run("valid token attaches user", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, 1, "alice"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		if captured == nil || captured.ID != 1 {
			t.Errorf("Expected user 1 in context, got %+v", captured)
		}
	})

	t.Run("no token passes anonymous", func(t *testing.T) {
		captured = &models.User{ID: 99}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		if captured != nil {
			t.Errorf("Expected anonymous request, got %+v", captured)
		}
	})

	t.Run("bad token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("token for inactive account rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, 2, "bob"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})
}
