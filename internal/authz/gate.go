// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

/*
gate.go - Per-Endpoint Authorization Gate

The gate is the single enforcement point between routing and handlers. Every
protected endpoint goes through Authorize with a declared capability; there
is no default-allow path.

Decision order:
 1. resolve the credential into a Principal (failure → 401)
 2. evaluate auditor expiry against the gate's clock (expired → 401,
    indistinguishable from no credential)
 3. check the declared capability (failure → 403)

Error messages are fixed strings that never include resource data; the only
variable part of an error is the requestId added by the response writer.
*/

package authz

import (
	"net/http"
	"time"

	"github.com/coldspan/coldspan/internal/auth"
	"github.com/coldspan/coldspan/internal/logging"
	"github.com/coldspan/coldspan/internal/models"
)

// Capability declares what an endpoint requires beyond authentication.
type Capability int

const (
	// AnyAuthenticated admits every resolved, non-expired principal.
	AnyAuthenticated Capability = iota

	// AdminOnly admits only the admin role.
	AdminOnly

	// OrganizationMember admits admins and any principal with a tenant
	// binding. Principals with no tenant are rejected with
	// NO_ORGANIZATION_MEMBERSHIP rather than silently seeing nothing.
	OrganizationMember

	// ManageUsers admits admins and master users. Covers user CRUD and
	// role-change operations.
	ManageUsers

	// ResourceWrite admits every tenant-bound principal except the
	// read-only auditor role, plus admins. Covers create/update/delete of
	// sites, environments, and sensors.
	ResourceWrite
)

// String returns the capability name for logging and metrics labels.
func (c Capability) String() string {
	switch c {
	case AnyAuthenticated:
		return "any_authenticated"
	case AdminOnly:
		return "admin_only"
	case OrganizationMember:
		return "organization_member"
	case ManageUsers:
		return "manage_users"
	case ResourceWrite:
		return "resource_write"
	default:
		return "unknown"
	}
}

// HTTPError is a ready-to-serialize authorization failure. The api package
// wraps it in the standard error envelope and fills in the request ID.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details map[string]interface{}
}

// Fixed, non-leaking error messages.
const (
	msgAuthRequired  = "Authentication required"
	msgAdminRequired = "Admin access required"
	msgNoMembership  = "User has no organization membership"
	msgInsufficient  = "Insufficient privileges"
)

// errUnauthenticated is the single 401 shape. Missing, malformed, expired,
// and unresolvable credentials all produce this exact response so a caller
// cannot probe which failure occurred.
func errUnauthenticated() *HTTPError {
	return &HTTPError{
		Status:  http.StatusUnauthorized,
		Code:    models.ErrCodeUnauthenticated,
		Message: msgAuthRequired,
	}
}

// Gate enforces authentication and capability requirements for protected
// endpoints.
type Gate struct {
	resolver *auth.Resolver

	// now is the gate's clock. All time comparisons (auditor expiry) happen
	// here, not in the resolver, so tests can pin the instant.
	now func() time.Time
}

// NewGate creates a gate over the given resolver.
func NewGate(resolver *auth.Resolver) *Gate {
	return &Gate{
		resolver: resolver,
		now:      time.Now,
	}
}

// WithClock overrides the gate's clock. Test hook.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Authorize resolves the request's credential and checks the declared
// capability. On success it returns the Principal for the handler to use;
// on failure it returns an HTTPError and the handler must not proceed.
func (g *Gate) Authorize(r *http.Request, capability Capability) (*models.Principal, *HTTPError) {
	ctx := r.Context()

	principal, err := g.resolver.Resolve(ctx, r)
	if err != nil {
		logging.Ctx(ctx).Debug().
			Err(err).
			Str("capability", capability.String()).
			Msg("Credential resolution failed")
		RecordDecision(capability.String(), "unauthenticated")
		return nil, errUnauthenticated()
	}

	if IsAuditorExpired(principal, g.now()) {
		// An expired auditor is an anonymous caller: same status, same code,
		// same message as a missing credential.
		logging.Ctx(ctx).Info().
			Str("user_id", principal.ID).
			Str("capability", capability.String()).
			Msg("Auditor access window closed, rejecting as unauthenticated")
		RecordDecision(capability.String(), "auditor_expired")
		return nil, errUnauthenticated()
	}

	if httpErr := checkCapability(principal, capability); httpErr != nil {
		logging.Ctx(ctx).Info().
			Str("user_id", principal.ID).
			Str("role", principal.Role.String()).
			Str("capability", capability.String()).
			Msg("Capability check failed")
		RecordDecision(capability.String(), "forbidden")
		return nil, httpErr
	}

	RecordDecision(capability.String(), "allowed")
	return principal, nil
}

// checkCapability applies the closed capability table. Pure; every
// (role × capability) pair has an explicit outcome.
func checkCapability(p *models.Principal, capability Capability) *HTTPError {
	switch capability {
	case AnyAuthenticated:
		return nil

	case AdminOnly:
		if p.IsAdmin() {
			return nil
		}
		return &HTTPError{
			Status:  http.StatusForbidden,
			Code:    models.ErrCodeForbidden,
			Message: msgAdminRequired,
		}

	case OrganizationMember:
		if CanAccessSite(p) {
			return nil
		}
		return &HTTPError{
			Status:  http.StatusForbidden,
			Code:    models.ErrCodeNoOrganizationMembership,
			Message: msgNoMembership,
		}

	case ManageUsers:
		if p.IsAdmin() || p.Role == models.RoleMasterUser {
			return nil
		}
		return &HTTPError{
			Status:  http.StatusForbidden,
			Code:    models.ErrCodeForbidden,
			Message: msgInsufficient,
		}

	case ResourceWrite:
		if p.IsAdmin() {
			return nil
		}
		if p.Role == models.RoleAuditor {
			// Auditors are read-only regardless of tenant binding.
			return &HTTPError{
				Status:  http.StatusForbidden,
				Code:    models.ErrCodeForbidden,
				Message: msgInsufficient,
			}
		}
		if p.HasTenant() {
			return nil
		}
		return &HTTPError{
			Status:  http.StatusForbidden,
			Code:    models.ErrCodeNoOrganizationMembership,
			Message: msgNoMembership,
		}

	default:
		// Unknown capability constants are a programming error; deny.
		return &HTTPError{
			Status:  http.StatusForbidden,
			Code:    models.ErrCodeForbidden,
			Message: msgInsufficient,
		}
	}
}
