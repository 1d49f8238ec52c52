// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package authz

import (
	"github.com/coldspan/coldspan/internal/models"
)

// FilterKind classifies what a ScopeFilter allows.
type FilterKind int

const (
	// DenyAll matches nothing. Produced for principals with no tenant
	// binding; the zero value so an uninitialized filter denies.
	DenyAll FilterKind = iota

	// RestrictToTenant matches resources owned by exactly one tenant,
	// optionally further narrowed to a set of sites.
	RestrictToTenant

	// Unrestricted matches everything. Admins only.
	Unrestricted
)

// String returns a readable name for logging.
func (k FilterKind) String() string {
	switch k {
	case DenyAll:
		return "deny_all"
	case RestrictToTenant:
		return "restrict_to_tenant"
	case Unrestricted:
		return "unrestricted"
	default:
		return "unknown"
	}
}

// ScopeFilter is the declarative description of which resources a principal
// may see. It is the ONLY narrowing channel for collection endpoints: stores
// apply it, handlers never hand-roll tenant predicates.
//
// The filter is a value type and is never mutated after construction.
type ScopeFilter struct {
	// Kind decides how the other fields are interpreted.
	Kind FilterKind

	// TenantID is the owning tenant when Kind is RestrictToTenant. Empty
	// otherwise.
	TenantID string

	// SiteIDs optionally narrows a RestrictToTenant filter to specific sites
	// within the tenant. Empty means all sites in the tenant. Never widens
	// the filter beyond TenantID.
	SiteIDs []string
}

// BuildFilter derives the scope filter for a principal:
//
//   - admin: Unrestricted
//   - any other role with a tenant: RestrictToTenant, carrying the
//     principal's optional site_access narrowing
//   - any other role without a tenant: DenyAll, never all tenants
//   - nil principal: DenyAll
//
// The derivation is pure and idempotent; building twice from the same
// principal yields equal filters.
func BuildFilter(p *models.Principal) ScopeFilter {
	if p == nil {
		return ScopeFilter{Kind: DenyAll}
	}
	if p.Role == models.RoleAdmin {
		return ScopeFilter{Kind: Unrestricted}
	}
	if p.TenantID == "" {
		return ScopeFilter{Kind: DenyAll}
	}
	return ScopeFilter{
		Kind:     RestrictToTenant,
		TenantID: p.TenantID,
		SiteIDs:  p.SiteAccess,
	}
}

// MatchesTenant reports whether a resource owned by the given tenant passes
// the filter, ignoring any site narrowing. Used by stores for resources that
// hang directly off the organization.
func (f ScopeFilter) MatchesTenant(tenantID string) bool {
	switch f.Kind {
	case Unrestricted:
		return true
	case RestrictToTenant:
		return tenantID != "" && tenantID == f.TenantID
	default:
		return false
	}
}

// MatchesSite reports whether a site owned by the given tenant passes the
// filter, including the optional site narrowing. Descendant resources
// (environments, sensors) inherit their site's answer.
func (f ScopeFilter) MatchesSite(tenantID, siteID string) bool {
	if !f.MatchesTenant(tenantID) {
		return false
	}
	if f.Kind == RestrictToTenant && len(f.SiteIDs) > 0 {
		for _, id := range f.SiteIDs {
			if id == siteID {
				return true
			}
		}
		return false
	}
	return true
}
