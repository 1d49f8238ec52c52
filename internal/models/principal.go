// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

/*
principal.go - Authenticated Principal Model

This file defines the resolved identity for one request: who the caller is,
what role they hold, and which organization (tenant) they belong to.

Key Structures:
  - Role: closed enumeration (admin, master_user, user, auditor)
  - Principal: per-request identity, constructed by the resolver and
    discarded at request end

A Principal is never cached across requests and never mutated after
construction. Unknown role strings are a resolution failure, not a
least-privilege fallback.
*/

package models

import (
	"errors"
	"fmt"
	"time"
)

// Role is the closed set of roles recognized by the authorization layer.
type Role string

const (
	// RoleAdmin is the platform operator role. Admins bypass tenant scoping
	// but remain subject to capability checks.
	RoleAdmin Role = "admin"

	// RoleMasterUser is the organization owner role.
	RoleMasterUser Role = "master_user"

	// RoleUser is the standard organization member role.
	RoleUser Role = "user"

	// RoleAuditor is a time-boxed read-only role. An auditor whose expiry
	// has passed is treated as unauthenticated.
	RoleAuditor Role = "auditor"
)

// ErrUnknownRole is returned by ParseRole for any value outside the closed
// role set. Callers must treat it as a fatal profile error, never as a
// default role.
var ErrUnknownRole = errors.New("unknown role")

// ValidRoles contains all valid role names for validation.
var ValidRoles = []Role{RoleAdmin, RoleMasterUser, RoleUser, RoleAuditor}

// ParseRole converts a stored role string into a Role. The enumeration is
// closed: anything unrecognized fails, including the empty string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleMasterUser:
		return RoleMasterUser, nil
	case RoleUser:
		return RoleUser, nil
	case RoleAuditor:
		return RoleAuditor, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValidRole checks if a role name is in the closed role set.
func IsValidRole(s string) bool {
	_, err := ParseRole(s)
	return err == nil
}

// Principal is the authenticated identity for a single request.
//
// TenantID is empty for admins (they have no tenant binding) and required
// for every other role; a non-admin principal with an empty TenantID is a
// misconfigured account and must be denied all tenant-scoped data.
type Principal struct {
	// ID is the opaque user identifier from the credential subject.
	ID string `json:"id"`

	// Role is the principal's role. Always a member of ValidRoles.
	Role Role `json:"role"`

	// TenantID binds the principal to one organization. Empty means no
	// membership (admins, or misconfigured accounts).
	TenantID string `json:"tenant_id,omitempty"`

	// SiteAccess optionally narrows a non-admin principal's visibility to an
	// explicit set of site IDs within their tenant. Nil or empty means all
	// sites in the tenant.
	SiteAccess []string `json:"site_access,omitempty"`

	// AuditorExpiry is the end of an auditor's access window. Nil on an
	// auditor means the account was never granted a window and is treated as
	// unauthorized (fail closed). Ignored for other roles.
	AuditorExpiry *time.Time `json:"auditor_expiry,omitempty"`
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// HasTenant reports whether the principal is bound to an organization.
func (p *Principal) HasTenant() bool {
	return p != nil && p.TenantID != ""
}

// CanSeeSite reports whether the site ID passes the principal's optional
// site_access narrowing. An empty SiteAccess set means no narrowing. This is
// in addition to, never instead of, the tenant-boundary check.
func (p *Principal) CanSeeSite(siteID string) bool {
	if p == nil {
		return false
	}
	if len(p.SiteAccess) == 0 {
		return true
	}
	for _, id := range p.SiteAccess {
		if id == siteID {
			return true
		}
	}
	return false
}
