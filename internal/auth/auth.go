// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

// Package auth resolves inbound credentials into authenticated Principals.
//
// The resolver is a pure lookup: it verifies the bearer token, loads the
// stored profile, and builds a models.Principal. It applies no policy; role
// and expiry evaluation live in internal/authz so that time handling stays
// centralized and testable.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/coldspan/coldspan/internal/models"
)

// Standard authentication errors.
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates credentials have expired.
	ErrExpiredCredentials = errors.New("credentials expired")

	// ErrProfileNotFound indicates the credential resolved to no stored
	// profile.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidProfile indicates the stored profile is malformed (for
	// example an unrecognized role). Fail closed: treated as
	// unauthenticated, never as a default role.
	ErrInvalidProfile = errors.New("invalid profile record")
)

// ProfileStore is the external identity/data collaborator. Lookups are
// assumed strongly consistent. The returned models.User carries the raw
// role string so that strict parsing happens in exactly one place (the
// resolver).
type ProfileStore interface {
	// GetUserByID returns the stored account for a credential subject, or
	// an error wrapping ErrProfileNotFound.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// CredentialFromRequest extracts the opaque bearer credential from the
// Authorization header, falling back to the named cookie. Returns
// ErrNoCredentials if neither is present.
func CredentialFromRequest(r *http.Request, cookieName string) (string, error) {
	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > len(prefix) && h[:len(prefix)] == prefix {
			return h[len(prefix):], nil
		}
		return "", ErrInvalidCredentials
	}
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", ErrNoCredentials
}
