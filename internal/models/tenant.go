// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

/*
tenant.go - Tenant Hierarchy Models

Organization (tenant) → Site → Environment → Sensor. Ownership references
(site.tenant_id, environment.site_id, sensor.environment_id) are write-once
at creation: no update path may move a resource between tenants.

Status and environment-type enumerations are closed and validated at the API
boundary; unknown values are rejected, never stored.
*/

package models

import "time"

// Organization statuses.
const (
	// OrgStatusActive is the normal operating status.
	OrgStatusActive = "active"

	// OrgStatusSuspended hides the organization's subtree from non-admin
	// principals without deleting data.
	OrgStatusSuspended = "suspended"

	// OrgStatusCancelled marks a closed account. Visibility cascades like
	// suspension; storage cleanup is an offline concern.
	OrgStatusCancelled = "cancelled"
)

// ValidOrgStatuses contains all valid organization statuses.
var ValidOrgStatuses = []string{OrgStatusActive, OrgStatusSuspended, OrgStatusCancelled}

// IsValidOrgStatus checks if a status value is in the closed set.
func IsValidOrgStatus(s string) bool {
	for _, v := range ValidOrgStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Resource statuses shared by sites, environments, and sensors.
const (
	ResourceStatusActive   = "active"
	ResourceStatusInactive = "inactive"
)

// Environment types. The enumeration is closed; the cold-chain subdomain
// uses the refrigeration types, general facilities use the building types.
const (
	EnvTypeIndoor       = "indoor"
	EnvTypeOutdoor      = "outdoor"
	EnvTypeWarehouse    = "warehouse"
	EnvTypeOffice       = "office"
	EnvTypeProduction   = "production"
	EnvTypeColdStorage  = "cold_storage"
	EnvTypeBlastFreezer = "blast_freezer"
	EnvTypeChiller      = "chiller"
	EnvTypeOther        = "other"
)

// ValidEnvironmentTypes contains all valid environment types.
var ValidEnvironmentTypes = []string{
	EnvTypeIndoor, EnvTypeOutdoor, EnvTypeWarehouse, EnvTypeOffice,
	EnvTypeProduction, EnvTypeColdStorage, EnvTypeBlastFreezer,
	EnvTypeChiller, EnvTypeOther,
}

// IsValidEnvironmentType checks if an environment type is in the closed set.
func IsValidEnvironmentType(s string) bool {
	for _, v := range ValidEnvironmentTypes {
		if v == s {
			return true
		}
	}
	return false
}

// Organization is the billing and access boundary. Everything below it
// shares its tenant ID.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	PlanTier  string    `json:"plan_tier"`
	MaxUsers  int       `json:"max_users"`
	Status    string    `json:"status"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsVisible reports whether the organization's subtree should be shown to
// non-admin principals. Admins see every status.
func (o *Organization) IsVisible() bool {
	return o != nil && o.Status == OrgStatusActive
}

// Site is a physical location owned by exactly one organization.
// TenantID is immutable after creation.
type Site struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Environment is a monitored space within a site. SiteID is immutable after
// creation.
type Environment struct {
	ID        string    `json:"id"`
	SiteID    string    `json:"site_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sensor is a physical device within an environment. EnvironmentID is
// immutable after creation.
type Sensor struct {
	ID            string    `json:"id"`
	EnvironmentID string    `json:"environment_id"`
	Name          string    `json:"name"`
	LocalID       string    `json:"local_id,omitempty"`
	Model         string    `json:"model,omitempty"`
	Status        string    `json:"status"`
	BatteryLevel  int       `json:"battery_level"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// User is a stored account profile. The resolver turns a User into a
// Principal for each request; the two are deliberately separate types so
// that request-scoped identity never leaks persistence concerns.
type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name,omitempty"`
	Role          string     `json:"role"`
	TenantID      string     `json:"tenant_id,omitempty"`
	SiteAccess    []string   `json:"site_access,omitempty"`
	AuditorExpiry *time.Time `json:"auditor_expiry,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Reading is one sensor measurement accepted by the ingest endpoint.
type Reading struct {
	SensorID    string    `json:"sensor_id"`
	Temperature float64   `json:"temperature"`
	Humidity    *float64  `json:"humidity,omitempty"`
	Battery     *int      `json:"battery,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}
