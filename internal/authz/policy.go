// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package authz

import (
	"time"

	"github.com/coldspan/coldspan/internal/models"
)

// CanAccessSite answers whether the principal participates in site-scoped
// data at all. It does NOT check ownership of a specific site; that is the
// ownership validator's job. The gate's OrganizationMember capability routes
// through here so the membership decision has exactly one implementation.
//
//   - admin: always true
//   - any other role: true iff the principal has a tenant binding
//   - nil principal or no tenant: false, regardless of role
func CanAccessSite(p *models.Principal) bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case models.RoleAdmin:
		return true
	case models.RoleMasterUser, models.RoleUser, models.RoleAuditor:
		return p.TenantID != ""
	default:
		// Unreachable for principals built by the resolver, which rejects
		// unknown roles. Fail closed anyway.
		return false
	}
}

// ValidateOrganizationAccess is the sole tenant-boundary check for
// item-level endpoints.
//
//   - admin: true unconditionally, even with no tenant binding
//   - any other role: true iff both tenant IDs are non-empty and equal,
//     compared exactly (case-sensitive, no normalization)
//
// An empty string on either side means "no membership" and always fails for
// non-admins.
func ValidateOrganizationAccess(principalTenantID, resourceTenantID string, role models.Role) bool {
	if role == models.RoleAdmin {
		return true
	}
	if principalTenantID == "" || resourceTenantID == "" {
		return false
	}
	return principalTenantID == resourceTenantID
}

// IsAuditorExpired reports whether an auditor principal's time-boxed access
// window has closed. Non-auditor roles never expire here.
//
// An auditor with no expiry set was never granted a window: treated as
// expired (fail closed), not as "never expires".
func IsAuditorExpired(p *models.Principal, now time.Time) bool {
	if p == nil || p.Role != models.RoleAuditor {
		return false
	}
	if p.AuditorExpiry == nil {
		return true
	}
	return now.After(*p.AuditorExpiry)
}
