// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/fieldhub/internal/database"
	"github.com/tomtom215/fieldhub/internal/logging"
	"github.com/tomtom215/fieldhub/internal/models"
)

// ErrBadCredentials is returned for any login failure. Unknown users
// and wrong passwords are indistinguishable on purpose.
var ErrBadCredentials = errors.New("invalid credentials")

// UserLookup loads accounts for authentication. *database.DB satisfies it.
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Authenticator verifies credentials and issues tokens.
type Authenticator struct {
	users  UserLookup
	issuer *TokenIssuer
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(users UserLookup, issuer *TokenIssuer) *Authenticator {
	return &Authenticator{users: users, issuer: issuer}
}

// Login checks the credentials and returns a signed token with the
// account. Inactive accounts cannot log in.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := a.users.GetUserByUsername(ctx, username)
	if errors.Is(err, database.ErrEntityNotFound) {
		// Burn a comparison so unknown users cost the same as wrong
		// passwords.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
		return "", nil, ErrBadCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logging.Ctx(ctx).Warn().
			Str("username", username).
			Msg("Login failed")
		return "", nil, ErrBadCredentials
	}
	if !user.Active {
		return "", nil, ErrBadCredentials
	}

	token, err := a.issuer.Issue(user.ID, user.Username, user.Admin)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Resolve loads the account behind validated claims. Deleted or
// deactivated accounts fail even with a live token.
func (a *Authenticator) Resolve(ctx context.Context, claims *Claims) (*models.User, error) {
	user, err := a.users.GetUser(ctx, claims.UserID)
	if errors.Is(err, database.ErrEntityNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, ErrInvalidToken
	}
	return user, nil
}
