// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

/*
ownership.go - Cross-Tenant Resource Validator

Item-level endpoints name a resource directly in the path, so list-level
scope filtering cannot protect them: a caller could pass another tenant's
id. The validator loads the named resource, walks its ownership chain up to
the owning tenant (sensor → environment → site → tenant), and asserts the
tenant boundary with the role policy.

Responses:
  - resource absent → 404, never confirming anything
  - owning tenant differs → 403 CROSS_TENANT_ACCESS_DENIED with a details
    object naming both organizations for operator diagnosis, or a bare 404
    when security.hide_cross_tenant is set
  - owning organization suspended/cancelled → 404 for non-admins (visibility
    cascade); admins still see every status
  - site outside the principal's site_access narrowing → 404, matching what
    the list filter would have hidden
*/

package authz

import (
	"context"
	"errors"
	"net/http"

	"github.com/coldspan/coldspan/internal/logging"
	"github.com/coldspan/coldspan/internal/models"
)

// ErrResourceNotFound is the sentinel a ResourceStore returns (possibly
// wrapped) when the requested id does not exist.
var ErrResourceNotFound = errors.New("resource not found")

// ResourceStore is the external data collaborator for ownership-chain
// lookups. Reads are assumed strongly consistent. Absent ids return an
// error wrapping ErrResourceNotFound.
type ResourceStore interface {
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
	GetSite(ctx context.Context, id string) (*models.Site, error)
	GetEnvironment(ctx context.Context, id string) (*models.Environment, error)
	GetSensor(ctx context.Context, id string) (*models.Sensor, error)
}

// Validator asserts that path-addressed resources belong to the caller's
// tenant before a handler may touch them.
type Validator struct {
	store ResourceStore

	// hideCrossTenant, when set, collapses cross-tenant denials into plain
	// 404s so existence is never confirmed to other tenants.
	hideCrossTenant bool
}

// NewValidator creates a validator over the given resource collaborator.
func NewValidator(store ResourceStore, hideCrossTenant bool) *Validator {
	return &Validator{
		store:           store,
		hideCrossTenant: hideCrossTenant,
	}
}

func errNotFound() *HTTPError {
	return &HTTPError{
		Status:  http.StatusNotFound,
		Code:    models.ErrCodeNotFound,
		Message: "Resource not found",
	}
}

func errInternal() *HTTPError {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    models.ErrCodeInternal,
		Message: "Internal server error",
	}
}

// denyCrossTenant builds the tenant-mismatch response. The details object
// names both organizations so operators can diagnose misrouted requests.
func (v *Validator) denyCrossTenant(ctx context.Context, p *models.Principal, resourceTenantID string) *HTTPError {
	logging.Ctx(ctx).Warn().
		Str("user_id", p.ID).
		Str("user_organization", p.TenantID).
		Str("resource_organization", resourceTenantID).
		Msg("Cross-tenant access denied")
	RecordCrossTenantDenial()

	if v.hideCrossTenant {
		return errNotFound()
	}
	return &HTTPError{
		Status:  http.StatusForbidden,
		Code:    models.ErrCodeCrossTenantDenied,
		Message: "Access to this resource is denied",
		Details: map[string]interface{}{
			"userOrganization":     p.TenantID,
			"resourceOrganization": resourceTenantID,
		},
	}
}

// assertTenant is the shared tail of every assertion: tenant boundary via
// the role policy, then the organization-status visibility cascade.
func (v *Validator) assertTenant(ctx context.Context, p *models.Principal, resourceTenantID string) *HTTPError {
	if !ValidateOrganizationAccess(p.TenantID, resourceTenantID, p.Role) {
		return v.denyCrossTenant(ctx, p, resourceTenantID)
	}
	if p.IsAdmin() {
		return nil
	}

	org, err := v.store.GetOrganization(ctx, resourceTenantID)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return errNotFound()
		}
		logging.CtxErr(ctx, err).Msg("Organization lookup failed during ownership check")
		return errInternal()
	}
	if !org.IsVisible() {
		// Suspension hides the whole subtree from the tenant's own members.
		return errNotFound()
	}
	return nil
}

// assertSiteVisible layers the optional site_access narrowing on top of the
// tenant check. A site outside the narrowing set is hidden, not forbidden,
// mirroring its absence from filtered lists.
func (v *Validator) assertSiteVisible(p *models.Principal, siteID string) *HTTPError {
	if p.IsAdmin() {
		return nil
	}
	if !p.CanSeeSite(siteID) {
		return errNotFound()
	}
	return nil
}

// AssertOrganizationAccess verifies the caller may address the named
// organization and returns it.
func (v *Validator) AssertOrganizationAccess(ctx context.Context, p *models.Principal, orgID string) (*models.Organization, *HTTPError) {
	org, err := v.store.GetOrganization(ctx, orgID)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return nil, errNotFound()
		}
		logging.CtxErr(ctx, err).Str("organization_id", orgID).Msg("Organization lookup failed")
		return nil, errInternal()
	}

	if !ValidateOrganizationAccess(p.TenantID, org.ID, p.Role) {
		return nil, v.denyCrossTenant(ctx, p, org.ID)
	}
	if !p.IsAdmin() && !org.IsVisible() {
		return nil, errNotFound()
	}
	return org, nil
}

// AssertSiteAccess verifies the caller may address the named site and
// returns it. The site's tenant_id is the ownership chain's first hop.
func (v *Validator) AssertSiteAccess(ctx context.Context, p *models.Principal, siteID string) (*models.Site, *HTTPError) {
	site, err := v.store.GetSite(ctx, siteID)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return nil, errNotFound()
		}
		logging.CtxErr(ctx, err).Str("site_id", siteID).Msg("Site lookup failed")
		return nil, errInternal()
	}

	if httpErr := v.assertTenant(ctx, p, site.TenantID); httpErr != nil {
		return nil, httpErr
	}
	if httpErr := v.assertSiteVisible(p, site.ID); httpErr != nil {
		return nil, httpErr
	}
	return site, nil
}

// AssertEnvironmentAccess walks environment → site → tenant and verifies
// the caller may address the named environment.
func (v *Validator) AssertEnvironmentAccess(ctx context.Context, p *models.Principal, envID string) (*models.Environment, *HTTPError) {
	env, err := v.store.GetEnvironment(ctx, envID)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return nil, errNotFound()
		}
		logging.CtxErr(ctx, err).Str("environment_id", envID).Msg("Environment lookup failed")
		return nil, errInternal()
	}

	if _, httpErr := v.AssertSiteAccess(ctx, p, env.SiteID); httpErr != nil {
		// A broken parent link means the environment is unreachable through
		// any legitimate path; hide it.
		return nil, httpErr
	}
	return env, nil
}

// AssertSensorAccess walks sensor → environment → site → tenant and
// verifies the caller may address the named sensor.
func (v *Validator) AssertSensorAccess(ctx context.Context, p *models.Principal, sensorID string) (*models.Sensor, *HTTPError) {
	sensor, err := v.store.GetSensor(ctx, sensorID)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return nil, errNotFound()
		}
		logging.CtxErr(ctx, err).Str("sensor_id", sensorID).Msg("Sensor lookup failed")
		return nil, errInternal()
	}

	if _, httpErr := v.AssertEnvironmentAccess(ctx, p, sensor.EnvironmentID); httpErr != nil {
		return nil, httpErr
	}
	return sensor, nil
}
