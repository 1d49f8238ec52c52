// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coldspan/coldspan/internal/logging"
	"github.com/coldspan/coldspan/internal/models"
)

// Resolver turns an inbound request's credential into an authenticated
// Principal. Construction is per request; the Principal is never cached.
//
// The resolver deliberately does NOT evaluate auditor expiry; it surfaces
// AuditorExpiry on the Principal and leaves the time comparison to the
// authorization gate.
type Resolver struct {
	jwt        *JWTManager
	profiles   ProfileStore
	cookieName string
}

// NewResolver creates a resolver backed by the given token manager and
// profile collaborator.
func NewResolver(jwtManager *JWTManager, profiles ProfileStore, cookieName string) *Resolver {
	return &Resolver{
		jwt:        jwtManager,
		profiles:   profiles,
		cookieName: cookieName,
	}
}

// Resolve authenticates the request and returns a fresh Principal.
//
// Failure modes (all map to 401 at the gate):
//   - ErrNoCredentials / ErrInvalidCredentials / ErrExpiredCredentials from
//     credential extraction and verification
//   - ErrProfileNotFound when the subject has no stored account
//   - ErrInvalidProfile when the stored role string is outside the closed
//     role enumeration (fail closed, never guess a default role)
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (*models.Principal, error) {
	credential, err := CredentialFromRequest(req, r.cookieName)
	if err != nil {
		return nil, err
	}

	userID, err := r.jwt.ValidateToken(credential)
	if err != nil {
		return nil, err
	}

	user, err := r.profiles.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("profile lookup failed: %w", err)
	}

	role, err := models.ParseRole(user.Role)
	if err != nil {
		// A corrupt role is logged with context but surfaces only as an
		// authentication failure to the caller.
		logging.Ctx(ctx).Error().
			Str("user_id", userID).
			Str("stored_role", user.Role).
			Msg("Profile has unrecognized role, rejecting credential")
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	return &models.Principal{
		ID:            user.ID,
		Role:          role,
		TenantID:      user.TenantID,
		SiteAccess:    user.SiteAccess,
		AuditorExpiry: user.AuditorExpiry,
	}, nil
}
