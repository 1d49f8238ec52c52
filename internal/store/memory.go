// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

/*
memory.go - In-Memory Store

Mutex-guarded map implementation of the Store interface. Used by the server
in standalone mode and by the end-to-end tests; it is also the reference
for how the scope filter and the write-once ownership rules are meant to be
applied by any database-backed implementation.

Scope filtering happens in exactly one place per resource kind: the list
methods. Item lookups return any row; tenant checks on named resources
belong to the ownership validator.
*/

package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/coldspan/coldspan/internal/auth"
	"github.com/coldspan/coldspan/internal/authz"
	"github.com/coldspan/coldspan/internal/models"
)

// Memory is the in-memory Store implementation. Safe for concurrent use.
type Memory struct {
	mu sync.RWMutex

	orgs        map[string]*models.Organization
	sites       map[string]*models.Site
	envs        map[string]*models.Environment
	sensors     map[string]*models.Sensor
	users       map[string]*models.User
	roleChanges map[string]*models.RoleChangeRequest
	devices     map[string]*models.Device
	readings    map[string][]*models.Reading
	idemKeys    map[string]struct{}
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		orgs:        make(map[string]*models.Organization),
		sites:       make(map[string]*models.Site),
		envs:        make(map[string]*models.Environment),
		sensors:     make(map[string]*models.Sensor),
		users:       make(map[string]*models.User),
		roleChanges: make(map[string]*models.RoleChangeRequest),
		devices:     make(map[string]*models.Device),
		readings:    make(map[string][]*models.Reading),
		idemKeys:    make(map[string]struct{}),
	}
}

// orgVisible reports whether the owning organization exists and is active.
// Used only for non-admin list filtering; a deleted or suspended tenant
// hides its whole subtree. Callers hold at least the read lock.
func (m *Memory) orgVisible(tenantID string) bool {
	org, ok := m.orgs[tenantID]
	return ok && org.IsVisible()
}

// --- Organizations ---

func (m *Memory) CreateOrganization(_ context.Context, org *models.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.orgs {
		if existing.Slug == org.Slug {
			return fmt.Errorf("%w: slug %q already in use", ErrConflict, org.Slug)
		}
	}
	cp := *org
	m.orgs[org.ID] = &cp
	return nil
}

func (m *Memory) GetOrganization(_ context.Context, id string) (*models.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	org, ok := m.orgs[id]
	if !ok {
		return nil, fmt.Errorf("%w: organization %s", ErrNotFound, id)
	}
	cp := *org
	return &cp, nil
}

func (m *Memory) GetOrganizationBySlug(_ context.Context, slug string) (*models.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, org := range m.orgs {
		if org.Slug == slug {
			cp := *org
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: organization slug %s", ErrNotFound, slug)
}

func (m *Memory) ListOrganizations(_ context.Context, filter authz.ScopeFilter) ([]*models.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := []*models.Organization{}
	for _, org := range m.orgs {
		if !filter.MatchesTenant(org.ID) {
			continue
		}
		if filter.Kind != authz.Unrestricted && !org.IsVisible() {
			continue
		}
		cp := *org
		results = append(results, &cp)
	}
	return results, nil
}

func (m *Memory) UpdateOrganization(_ context.Context, org *models.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orgs[org.ID]; !ok {
		return fmt.Errorf("%w: organization %s", ErrNotFound, org.ID)
	}
	for _, existing := range m.orgs {
		if existing.ID != org.ID && existing.Slug == org.Slug {
			return fmt.Errorf("%w: slug %q already in use", ErrConflict, org.Slug)
		}
	}
	cp := *org
	m.orgs[org.ID] = &cp
	return nil
}

func (m *Memory) DeleteOrganization(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orgs[id]; !ok {
		return fmt.Errorf("%w: organization %s", ErrNotFound, id)
	}
	delete(m.orgs, id)
	return nil
}

// --- Sites ---

func (m *Memory) CreateSite(_ context.Context, site *models.Site) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orgs[site.TenantID]; !ok {
		return fmt.Errorf("%w: organization %s", ErrNotFound, site.TenantID)
	}
	cp := *site
	m.sites[site.ID] = &cp
	return nil
}

func (m *Memory) GetSite(_ context.Context, id string) (*models.Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	site, ok := m.sites[id]
	if !ok {
		return nil, fmt.Errorf("%w: site %s", ErrNotFound, id)
	}
	cp := *site
	return &cp, nil
}

func (m *Memory) ListSites(_ context.Context, filter authz.ScopeFilter) ([]*models.Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := []*models.Site{}
	for _, site := range m.sites {
		if !filter.MatchesSite(site.TenantID, site.ID) {
			continue
		}
		if filter.Kind != authz.Unrestricted && !m.orgVisible(site.TenantID) {
			continue
		}
		cp := *site
		results = append(results, &cp)
	}
	return results, nil
}

func (m *Memory) UpdateSite(_ context.Context, site *models.Site) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.sites[site.ID]
	if !ok {
		return fmt.Errorf("%w: site %s", ErrNotFound, site.ID)
	}
	if site.TenantID != existing.TenantID {
		return fmt.Errorf("%w: site %s tenant", ErrImmutableOwner, site.ID)
	}
	cp := *site
	m.sites[site.ID] = &cp
	return nil
}

func (m *Memory) DeleteSite(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sites[id]; !ok {
		return fmt.Errorf("%w: site %s", ErrNotFound, id)
	}
	delete(m.sites, id)
	return nil
}

// --- Environments ---

func (m *Memory) CreateEnvironment(_ context.Context, env *models.Environment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sites[env.SiteID]; !ok {
		return fmt.Errorf("%w: site %s", ErrNotFound, env.SiteID)
	}
	cp := *env
	m.envs[env.ID] = &cp
	return nil
}

func (m *Memory) GetEnvironment(_ context.Context, id string) (*models.Environment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	env, ok := m.envs[id]
	if !ok {
		return nil, fmt.Errorf("%w: environment %s", ErrNotFound, id)
	}
	cp := *env
	return &cp, nil
}

func (m *Memory) ListEnvironmentsBySite(_ context.Context, siteID string) ([]*models.Environment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := []*models.Environment{}
	for _, env := range m.envs {
		if env.SiteID != siteID {
			continue
		}
		cp := *env
		results = append(results, &cp)
	}
	return results, nil
}

func (m *Memory) UpdateEnvironment(_ context.Context, env *models.Environment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.envs[env.ID]
	if !ok {
		return fmt.Errorf("%w: environment %s", ErrNotFound, env.ID)
	}
	if env.SiteID != existing.SiteID {
		return fmt.Errorf("%w: environment %s site", ErrImmutableOwner, env.ID)
	}
	cp := *env
	m.envs[env.ID] = &cp
	return nil
}

func (m *Memory) DeleteEnvironment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.envs[id]; !ok {
		return fmt.Errorf("%w: environment %s", ErrNotFound, id)
	}
	delete(m.envs, id)
	return nil
}

// --- Sensors ---

func (m *Memory) CreateSensor(_ context.Context, sensor *models.Sensor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.envs[sensor.EnvironmentID]; !ok {
		return fmt.Errorf("%w: environment %s", ErrNotFound, sensor.EnvironmentID)
	}
	cp := *sensor
	m.sensors[sensor.ID] = &cp
	return nil
}

func (m *Memory) GetSensor(_ context.Context, id string) (*models.Sensor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sensor, ok := m.sensors[id]
	if !ok {
		return nil, fmt.Errorf("%w: sensor %s", ErrNotFound, id)
	}
	cp := *sensor
	return &cp, nil
}

func (m *Memory) ListSensorsByEnvironment(_ context.Context, environmentID string) ([]*models.Sensor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := []*models.Sensor{}
	for _, sensor := range m.sensors {
		if sensor.EnvironmentID != environmentID {
			continue
		}
		cp := *sensor
		results = append(results, &cp)
	}
	return results, nil
}

func (m *Memory) UpdateSensor(_ context.Context, sensor *models.Sensor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.sensors[sensor.ID]
	if !ok {
		return fmt.Errorf("%w: sensor %s", ErrNotFound, sensor.ID)
	}
	if sensor.EnvironmentID != existing.EnvironmentID {
		return fmt.Errorf("%w: sensor %s environment", ErrImmutableOwner, sensor.ID)
	}
	cp := *sensor
	m.sensors[sensor.ID] = &cp
	return nil
}

func (m *Memory) DeleteSensor(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sensors[id]; !ok {
		return fmt.Errorf("%w: sensor %s", ErrNotFound, id)
	}
	delete(m.sensors, id)
	return nil
}

// --- Users ---

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email {
			return fmt.Errorf("%w: email %q already registered", ErrConflict, user.Email)
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *Memory) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		// Wraps the auth sentinel: this method serves as the resolver's
		// profile lookup.
		return nil, fmt.Errorf("%w: user %s", auth.ErrProfileNotFound, id)
	}
	cp := *user
	return &cp, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: user email %s", ErrNotFound, email)
}

func (m *Memory) ListUsers(_ context.Context, filter authz.ScopeFilter) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := []*models.User{}
	for _, user := range m.users {
		if !filter.MatchesTenant(user.TenantID) {
			continue
		}
		if filter.Kind != authz.Unrestricted && !m.orgVisible(user.TenantID) {
			continue
		}
		cp := *user
		results = append(results, &cp)
	}
	return results, nil
}

func (m *Memory) UpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, user.ID)
	}
	for _, existing := range m.users {
		if existing.ID != user.ID && existing.Email == user.Email {
			return fmt.Errorf("%w: email %q already registered", ErrConflict, user.Email)
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	delete(m.users, id)
	return nil
}

// --- Role changes ---

func (m *Memory) CreateRoleChange(_ context.Context, request *models.RoleChangeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *request
	m.roleChanges[request.ID] = &cp
	return nil
}

func (m *Memory) GetRoleChange(_ context.Context, id string) (*models.RoleChangeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	request, ok := m.roleChanges[id]
	if !ok {
		return nil, fmt.Errorf("%w: role change %s", ErrNotFound, id)
	}
	cp := *request
	return &cp, nil
}

func (m *Memory) UpdateRoleChange(_ context.Context, request *models.RoleChangeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.roleChanges[request.ID]; !ok {
		return fmt.Errorf("%w: role change %s", ErrNotFound, request.ID)
	}
	cp := *request
	m.roleChanges[request.ID] = &cp
	return nil
}

func (m *Memory) ListRoleChangesByTenant(_ context.Context, tenantID string) ([]*models.RoleChangeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := []*models.RoleChangeRequest{}
	for _, request := range m.roleChanges {
		if request.TenantID != tenantID {
			continue
		}
		cp := *request
		results = append(results, &cp)
	}
	return results, nil
}

// --- Ingest ---

func (m *Memory) CreateDevice(_ context.Context, device *models.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.devices[device.ID]; ok {
		return fmt.Errorf("%w: device %q already registered", ErrConflict, device.ID)
	}
	cp := *device
	m.devices[device.ID] = &cp
	return nil
}

func (m *Memory) GetDevice(_ context.Context, id string) (*models.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	device, ok := m.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: device %s", ErrNotFound, id)
	}
	cp := *device
	return &cp, nil
}

func (m *Memory) AppendReadings(_ context.Context, readings []*models.Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, reading := range readings {
		cp := *reading
		m.readings[reading.SensorID] = append(m.readings[reading.SensorID], &cp)
	}
	return nil
}

func (m *Memory) ListReadingsBySensor(_ context.Context, sensorID string, limit int) ([]*models.Reading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.readings[sensorID]
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}

	// Newest last in storage; return the newest `limit` readings.
	results := make([]*models.Reading, 0, limit)
	for _, reading := range all[len(all)-limit:] {
		cp := *reading
		results = append(results, &cp)
	}
	return results, nil
}

func (m *Memory) ClaimIdempotencyKey(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, seen := m.idemKeys[key]; seen {
		return false, nil
	}
	m.idemKeys[key] = struct{}{}
	return true, nil
}
