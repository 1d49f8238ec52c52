// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/coldspan/coldspan/internal/auth"
	"github.com/coldspan/coldspan/internal/authz"
	"github.com/coldspan/coldspan/internal/models"
)

func seedStore(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	ctx := context.Background()

	orgs := []*models.Organization{
		{ID: "org-1", Name: "Polar Foods", Slug: "polar-foods", Status: models.OrgStatusActive},
		{ID: "org-2", Name: "Glacier Logistics", Slug: "glacier", Status: models.OrgStatusActive},
		{ID: "org-3", Name: "Frostbite Ltd", Slug: "frostbite", Status: models.OrgStatusSuspended},
	}
	for _, org := range orgs {
		if err := m.CreateOrganization(ctx, org); err != nil {
			t.Fatalf("CreateOrganization(%s): %v", org.ID, err)
		}
	}

	sites := []*models.Site{
		{ID: "site-1", TenantID: "org-1", Name: "Oslo DC"},
		{ID: "site-2", TenantID: "org-1", Name: "Oslo Annex"},
		{ID: "site-3", TenantID: "org-2", Name: "Tromsø DC"},
		{ID: "site-4", TenantID: "org-3", Name: "Bergen DC"},
	}
	for _, site := range sites {
		if err := m.CreateSite(ctx, site); err != nil {
			t.Fatalf("CreateSite(%s): %v", site.ID, err)
		}
	}
	return m
}

func TestMemoryListSitesAppliesScopeFilter(t *testing.T) {
	m := seedStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter authz.ScopeFilter
		want   int
	}{
		{"unrestricted sees every site", authz.ScopeFilter{Kind: authz.Unrestricted}, 4},
		{"tenant filter sees own sites only", authz.ScopeFilter{Kind: authz.RestrictToTenant, TenantID: "org-1"}, 2},
		{"site narrowing applies within tenant", authz.ScopeFilter{Kind: authz.RestrictToTenant, TenantID: "org-1", SiteIDs: []string{"site-2"}}, 1},
		{"suspended tenant subtree is hidden", authz.ScopeFilter{Kind: authz.RestrictToTenant, TenantID: "org-3"}, 0},
		{"deny all sees nothing", authz.ScopeFilter{Kind: authz.DenyAll}, 0},
		{"zero value filter sees nothing", authz.ScopeFilter{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sites, err := m.ListSites(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListSites: %v", err)
			}
			if len(sites) != tt.want {
				t.Errorf("sites = %d, want %d", len(sites), tt.want)
			}
			for _, site := range sites {
				if tt.filter.Kind == authz.RestrictToTenant && site.TenantID != tt.filter.TenantID {
					t.Errorf("leaked site %s from tenant %s", site.ID, site.TenantID)
				}
			}
		})
	}
}

func TestMemoryListOrganizationsVisibility(t *testing.T) {
	m := seedStore(t)
	ctx := context.Background()

	all, err := m.ListOrganizations(ctx, authz.ScopeFilter{Kind: authz.Unrestricted})
	if err != nil {
		t.Fatalf("ListOrganizations: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("admin sees %d organizations, want 3 (including suspended)", len(all))
	}

	own, err := m.ListOrganizations(ctx, authz.ScopeFilter{Kind: authz.RestrictToTenant, TenantID: "org-3"})
	if err != nil {
		t.Fatalf("ListOrganizations: %v", err)
	}
	if len(own) != 0 {
		t.Errorf("member of suspended org sees %d organizations, want 0", len(own))
	}
}

func TestMemoryOwnershipImmutable(t *testing.T) {
	m := seedStore(t)
	ctx := context.Background()

	env := &models.Environment{ID: "env-1", SiteID: "site-1", Name: "Freezer A", Type: models.EnvTypeBlastFreezer}
	if err := m.CreateEnvironment(ctx, env); err != nil {
		t.Fatalf("CreateEnvironment: %v", err)
	}
	sensor := &models.Sensor{ID: "sensor-1", EnvironmentID: "env-1", Name: "Probe 1"}
	if err := m.CreateSensor(ctx, sensor); err != nil {
		t.Fatalf("CreateSensor: %v", err)
	}

	site, _ := m.GetSite(ctx, "site-1")
	site.TenantID = "org-2"
	if err := m.UpdateSite(ctx, site); !errors.Is(err, ErrImmutableOwner) {
		t.Errorf("UpdateSite tenant move: err = %v, want ErrImmutableOwner", err)
	}

	env.SiteID = "site-3"
	if err := m.UpdateEnvironment(ctx, env); !errors.Is(err, ErrImmutableOwner) {
		t.Errorf("UpdateEnvironment site move: err = %v, want ErrImmutableOwner", err)
	}

	sensor.EnvironmentID = "env-other"
	if err := m.UpdateSensor(ctx, sensor); !errors.Is(err, ErrImmutableOwner) {
		t.Errorf("UpdateSensor environment move: err = %v, want ErrImmutableOwner", err)
	}
}

func TestMemoryConflicts(t *testing.T) {
	m := seedStore(t)
	ctx := context.Background()

	err := m.CreateOrganization(ctx, &models.Organization{ID: "org-9", Slug: "polar-foods"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate slug: err = %v, want ErrConflict", err)
	}

	if err := m.CreateUser(ctx, &models.User{ID: "u-1", Email: "a@polar.test", Role: "user", TenantID: "org-1"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	err = m.CreateUser(ctx, &models.User{ID: "u-2", Email: "a@polar.test", Role: "user", TenantID: "org-1"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate email: err = %v, want ErrConflict", err)
	}
}

func TestMemoryGetUserByIDWrapsProfileSentinel(t *testing.T) {
	m := NewMemory()

	_, err := m.GetUserByID(context.Background(), "ghost")
	if !errors.Is(err, auth.ErrProfileNotFound) {
		t.Errorf("err = %v, want wrap of auth.ErrProfileNotFound", err)
	}
}

func TestMemoryClaimIdempotencyKey(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	first, err := m.ClaimIdempotencyKey(ctx, "key-1")
	if err != nil || !first {
		t.Fatalf("first claim = (%v, %v), want (true, nil)", first, err)
	}
	second, err := m.ClaimIdempotencyKey(ctx, "key-1")
	if err != nil || second {
		t.Fatalf("second claim = (%v, %v), want (false, nil)", second, err)
	}
}

func TestMemoryReadings(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	readings := []*models.Reading{
		{SensorID: "sensor-1", Temperature: -18.2},
		{SensorID: "sensor-1", Temperature: -18.4},
		{SensorID: "sensor-1", Temperature: -18.1},
	}
	if err := m.AppendReadings(ctx, readings); err != nil {
		t.Fatalf("AppendReadings: %v", err)
	}

	got, err := m.ListReadingsBySensor(ctx, "sensor-1", 2)
	if err != nil {
		t.Fatalf("ListReadingsBySensor: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("readings = %d, want 2", len(got))
	}
	if got[1].Temperature != -18.1 {
		t.Errorf("newest reading = %v, want -18.1", got[1].Temperature)
	}
}
