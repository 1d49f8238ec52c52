// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

// Package store defines the data collaborator interfaces the authorization
// layer and handlers depend on, plus an in-memory reference implementation.
//
// List operations take an authz.ScopeFilter and apply it inside the store;
// handlers never post-filter results. Item lookups return every row
// regardless of caller, because tenant checks on named resources are the
// ownership validator's job.
package store

import (
	"context"
	"errors"

	"github.com/coldspan/coldspan/internal/authz"
	"github.com/coldspan/coldspan/internal/models"
)

// ErrConflict is returned on uniqueness violations (duplicate organization
// slug, duplicate user email, duplicate device ID).
var ErrConflict = errors.New("conflict")

// ErrImmutableOwner is returned when an update attempts to move a resource
// to a different parent. Ownership references are write-once.
var ErrImmutableOwner = errors.New("ownership reference is immutable")

// ErrNotFound is the shared absent-row sentinel. It aliases the
// authorization layer's sentinel so both sides test with errors.Is against
// the same value.
var ErrNotFound = authz.ErrResourceNotFound

// OrganizationStore persists tenants.
type OrganizationStore interface {
	CreateOrganization(ctx context.Context, org *models.Organization) error
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error)
	ListOrganizations(ctx context.Context, filter authz.ScopeFilter) ([]*models.Organization, error)
	UpdateOrganization(ctx context.Context, org *models.Organization) error
	DeleteOrganization(ctx context.Context, id string) error
}

// SiteStore persists sites.
type SiteStore interface {
	CreateSite(ctx context.Context, site *models.Site) error
	GetSite(ctx context.Context, id string) (*models.Site, error)
	ListSites(ctx context.Context, filter authz.ScopeFilter) ([]*models.Site, error)
	UpdateSite(ctx context.Context, site *models.Site) error
	DeleteSite(ctx context.Context, id string) error
}

// EnvironmentStore persists environments.
type EnvironmentStore interface {
	CreateEnvironment(ctx context.Context, env *models.Environment) error
	GetEnvironment(ctx context.Context, id string) (*models.Environment, error)
	ListEnvironmentsBySite(ctx context.Context, siteID string) ([]*models.Environment, error)
	UpdateEnvironment(ctx context.Context, env *models.Environment) error
	DeleteEnvironment(ctx context.Context, id string) error
}

// SensorStore persists sensors.
type SensorStore interface {
	CreateSensor(ctx context.Context, sensor *models.Sensor) error
	GetSensor(ctx context.Context, id string) (*models.Sensor, error)
	ListSensorsByEnvironment(ctx context.Context, environmentID string) ([]*models.Sensor, error)
	UpdateSensor(ctx context.Context, sensor *models.Sensor) error
	DeleteSensor(ctx context.Context, id string) error
}

// UserStore persists accounts. GetUserByID doubles as the auth package's
// ProfileStore; absent users return an error wrapping auth.ErrProfileNotFound.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, filter authz.ScopeFilter) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

// RoleChangeStore persists the user↔master_user confirmation state machine.
type RoleChangeStore interface {
	CreateRoleChange(ctx context.Context, request *models.RoleChangeRequest) error
	GetRoleChange(ctx context.Context, id string) (*models.RoleChangeRequest, error)
	UpdateRoleChange(ctx context.Context, request *models.RoleChangeRequest) error
	ListRoleChangesByTenant(ctx context.Context, tenantID string) ([]*models.RoleChangeRequest, error)
}

// IngestStore persists device credentials, readings, and idempotency keys
// for the ingest endpoint.
type IngestStore interface {
	CreateDevice(ctx context.Context, device *models.Device) error
	GetDevice(ctx context.Context, id string) (*models.Device, error)
	AppendReadings(ctx context.Context, readings []*models.Reading) error
	ListReadingsBySensor(ctx context.Context, sensorID string, limit int) ([]*models.Reading, error)

	// ClaimIdempotencyKey atomically records the key and reports whether
	// this call was the first to see it.
	ClaimIdempotencyKey(ctx context.Context, key string) (bool, error)
}

// Store is the full data collaborator surface. The in-memory implementation
// satisfies it; a database-backed one would too.
type Store interface {
	OrganizationStore
	SiteStore
	EnvironmentStore
	SensorStore
	UserStore
	RoleChangeStore
	IngestStore
}
