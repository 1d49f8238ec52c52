// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/coldspan/coldspan/internal/audit"
	"github.com/coldspan/coldspan/internal/auth"
	"github.com/coldspan/coldspan/internal/authz"
	"github.com/coldspan/coldspan/internal/config"
	"github.com/coldspan/coldspan/internal/models"
	"github.com/coldspan/coldspan/internal/store"
)

const testSecret = "test-secret-key-that-is-32-chars!!"

// errorBody mirrors the error envelope for assertions.
type errorBody struct {
	Error struct {
		Code      string                 `json:"code"`
		Message   string                 `json:"message"`
		RequestID string                 `json:"requestId"`
		Details   map[string]interface{} `json:"details"`
	} `json:"error"`
}

// successBody mirrors the success envelope with an untyped data payload.
type successBody struct {
	Status string                 `json:"status"`
	Data   map[string]interface{} `json:"data"`
}

// failingAuditStore rejects every append. Used to prove audit failures
// never fail the mutation they describe.
type failingAuditStore struct{}

func (failingAuditStore) Append(context.Context, *models.AdminActionRecord) error {
	return errors.New("audit store down")
}

func (failingAuditStore) List(context.Context, audit.ListQuery) ([]*models.AdminActionRecord, error) {
	return nil, nil
}

func (failingAuditStore) Close() error { return nil }

type apiTestEnv struct {
	router   http.Handler
	store    *store.Memory
	jwt      *auth.JWTManager
	auditLog audit.Store
}

func newAPITestEnv(t *testing.T, opts ...func(*config.Config)) *apiTestEnv {
	t.Helper()
	return newAPITestEnvWithAudit(t, nil, opts...)
}

func newAPITestEnvWithAudit(t *testing.T, auditLog audit.Store, opts ...func(*config.Config)) *apiTestEnv {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			CORSOrigins: []string{"*"},
		},
		Security: config.SecurityConfig{
			JWTSecret:      testSecret,
			SessionTimeout: time.Hour,
			CookieName:     "coldspan_token",
		},
		Audit: config.AuditConfig{
			Enabled:    true,
			BufferSize: 64,
		},
		Ingest: config.IngestConfig{
			Enabled:      true,
			ClockSkew:    5 * time.Minute,
			MaxBatchSize: 3,
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if auditLog == nil {
		badgerStore, err := audit.NewInMemoryStore()
		if err != nil {
			t.Fatalf("NewInMemoryStore: %v", err)
		}
		t.Cleanup(func() { badgerStore.Close() })
		auditLog = badgerStore
	}

	recorder := audit.NewRecorder(auditLog, audit.RecorderConfig{
		Enabled:      true,
		BufferSize:   cfg.Audit.BufferSize,
		WriteTimeout: time.Second,
	})
	t.Cleanup(recorder.Close)

	st := store.NewMemory()
	seedAPIStore(t, st)

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	resolver := auth.NewResolver(jwtManager, st, cfg.Security.CookieName)
	gate := authz.NewGate(resolver)
	validator := authz.NewValidator(st, cfg.Security.HideCrossTenant)

	handler := NewHandler(cfg, gate, validator, recorder, auditLog, st)
	return &apiTestEnv{
		router:   handler.Routes(),
		store:    st,
		jwt:      jwtManager,
		auditLog: auditLog,
	}
}

func seedAPIStore(t *testing.T, st *store.Memory) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	future := now.Add(24 * time.Hour)

	orgs := []*models.Organization{
		{ID: "org-1", Name: "Polar Foods", Slug: "polar-foods", PlanTier: "growth", MaxUsers: 50, Status: models.OrgStatusActive},
		{ID: "org-2", Name: "Glacier Logistics", Slug: "glacier-logistics", PlanTier: "starter", MaxUsers: 10, Status: models.OrgStatusActive},
		{ID: "org-3", Name: "Frostbite Farms", Slug: "frostbite-farms", PlanTier: "starter", MaxUsers: 10, Status: models.OrgStatusSuspended},
	}
	for _, org := range orgs {
		org.CreatedAt, org.UpdatedAt = now, now
		if err := st.CreateOrganization(ctx, org); err != nil {
			t.Fatalf("seed organization %s: %v", org.ID, err)
		}
	}

	sites := []*models.Site{
		{ID: "site-1", TenantID: "org-1", Name: "Rotterdam DC", Status: models.ResourceStatusActive},
		{ID: "site-2", TenantID: "org-1", Name: "Antwerp DC", Status: models.ResourceStatusActive},
		{ID: "site-3", TenantID: "org-2", Name: "Oslo Hub", Status: models.ResourceStatusActive},
	}
	for _, site := range sites {
		site.CreatedAt, site.UpdatedAt = now, now
		if err := st.CreateSite(ctx, site); err != nil {
			t.Fatalf("seed site %s: %v", site.ID, err)
		}
	}

	env := &models.Environment{
		ID: "env-1", SiteID: "site-1", Name: "Freezer Hall A",
		Type: models.EnvTypeBlastFreezer, Status: models.ResourceStatusActive,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := st.CreateEnvironment(ctx, env); err != nil {
		t.Fatalf("seed environment: %v", err)
	}

	sensor := &models.Sensor{
		ID: "sensor-1", EnvironmentID: "env-1", Name: "Probe 1",
		Status: models.ResourceStatusActive, BatteryLevel: 90,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := st.CreateSensor(ctx, sensor); err != nil {
		t.Fatalf("seed sensor: %v", err)
	}

	users := []*models.User{
		{ID: "admin-1", Email: "admin@coldspan.io", Role: "admin"},
		{ID: "master-1", Email: "master@polar.example", Role: "master_user", TenantID: "org-1"},
		{ID: "user-1", Email: "user@polar.example", Role: "user", TenantID: "org-1"},
		{ID: "user-2", Email: "user@glacier.example", Role: "user", TenantID: "org-2"},
		{ID: "auditor-1", Email: "auditor@polar.example", Role: "auditor", TenantID: "org-1", AuditorExpiry: &future},
		{ID: "orphan-1", Email: "orphan@nowhere.example", Role: "user"},
	}
	for _, user := range users {
		user.CreatedAt, user.UpdatedAt = now, now
		if err := st.CreateUser(ctx, user); err != nil {
			t.Fatalf("seed user %s: %v", user.ID, err)
		}
	}

	device := &models.Device{
		ID: "device-1", SensorID: "sensor-1", Secret: "device-1-shared-secret",
		Status: models.ResourceStatusActive, CreatedAt: now,
	}
	if err := st.CreateDevice(ctx, device); err != nil {
		t.Fatalf("seed device: %v", err)
	}
}

func (e *apiTestEnv) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.jwt.GenerateToken(userID)
	if err != nil {
		t.Fatalf("GenerateToken(%s): %v", userID, err)
	}
	return token
}

func (e *apiTestEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error envelope: %v (body %q)", err, rec.Body.String())
	}
	return body
}

func decodeSuccess(t *testing.T, rec *httptest.ResponseRecorder) successBody {
	t.Helper()
	var body successBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode success envelope: %v (body %q)", err, rec.Body.String())
	}
	return body
}

// waitForAuditRecord polls the audit store until a record matching the query
// appears. Audit writes are asynchronous.
func waitForAuditRecord(t *testing.T, auditLog audit.Store, query audit.ListQuery) *models.AdminActionRecord {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		records, err := auditLog.List(context.Background(), query)
		if err != nil {
			t.Fatalf("audit List: %v", err)
		}
		if len(records) > 0 {
			return records[0]
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no audit record matching %+v within deadline", query)
	return nil
}

func TestListSitesScopedToTenant(t *testing.T) {
	env := newAPITestEnv(t)

	tests := []struct {
		name      string
		userID    string
		wantSites map[string]bool
	}{
		{
			name:      "master user sees only own organization",
			userID:    "master-1",
			wantSites: map[string]bool{"site-1": true, "site-2": true},
		},
		{
			name:      "admin sees every site",
			userID:    "admin-1",
			wantSites: map[string]bool{"site-1": true, "site-2": true, "site-3": true},
		},
		{
			name:      "auditor inside expiry window sees own organization",
			userID:    "auditor-1",
			wantSites: map[string]bool{"site-1": true, "site-2": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/v1/sites/", env.token(t, tt.userID), nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
			}

			body := decodeSuccess(t, rec)
			results, _ := body.Data["results"].([]interface{})
			if len(results) != len(tt.wantSites) {
				t.Fatalf("got %d sites, want %d", len(results), len(tt.wantSites))
			}
			for _, raw := range results {
				site, _ := raw.(map[string]interface{})
				id, _ := site["id"].(string)
				if !tt.wantSites[id] {
					t.Errorf("unexpected site %q in results", id)
				}
			}
		})
	}
}

func TestCrossTenantEnvironmentListDenied(t *testing.T) {
	env := newAPITestEnv(t)

	// site-3 belongs to org-2; user-1 is org-1.
	rec := env.do(t, http.MethodGet, "/api/v1/sites/site-3/environments", env.token(t, "user-1"), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 (body %s)", rec.Code, rec.Body.String())
	}

	body := decodeError(t, rec)
	if body.Error.Code != models.ErrCodeCrossTenantDenied {
		t.Errorf("code = %q, want %q", body.Error.Code, models.ErrCodeCrossTenantDenied)
	}
	if body.Error.RequestID == "" {
		t.Error("error envelope is missing requestId")
	}
	if got := body.Error.Details["userOrganization"]; got != "org-1" {
		t.Errorf("details.userOrganization = %v, want org-1", got)
	}
	if got := body.Error.Details["resourceOrganization"]; got != "org-2" {
		t.Errorf("details.resourceOrganization = %v, want org-2", got)
	}
}

func TestCrossTenantDenialHiddenMode(t *testing.T) {
	env := newAPITestEnv(t, func(cfg *config.Config) {
		cfg.Security.HideCrossTenant = true
	})

	rec := env.do(t, http.MethodGet, "/api/v1/sites/site-3/environments", env.token(t, "user-1"), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (body %s)", rec.Code, rec.Body.String())
	}
	body := decodeError(t, rec)
	if body.Error.Code != models.ErrCodeNotFound {
		t.Errorf("code = %q, want %q", body.Error.Code, models.ErrCodeNotFound)
	}
	if len(body.Error.Details) != 0 {
		t.Errorf("hidden mode must not leak details, got %v", body.Error.Details)
	}
}

func TestNoOrganizationMembership(t *testing.T) {
	env := newAPITestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/sites/", env.token(t, "orphan-1"), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 (body %s)", rec.Code, rec.Body.String())
	}
	body := decodeError(t, rec)
	if body.Error.Code != models.ErrCodeNoOrganizationMembership {
		t.Errorf("code = %q, want %q", body.Error.Code, models.ErrCodeNoOrganizationMembership)
	}
}

func TestUnauthenticatedRequests(t *testing.T) {
	env := newAPITestEnv(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "no credential", token: ""},
		{name: "garbage credential", token: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/v1/sites/", tt.token, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			body := decodeError(t, rec)
			if body.Error.Code != models.ErrCodeUnauthenticated {
				t.Errorf("code = %q, want %q", body.Error.Code, models.ErrCodeUnauthenticated)
			}
			if body.Error.Message != "Authentication required" {
				t.Errorf("message = %q, want the fixed authentication message", body.Error.Message)
			}
		})
	}
}

func TestAuditorIsReadOnly(t *testing.T) {
	env := newAPITestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/sites/", env.token(t, "auditor-1"), map[string]interface{}{
		"name": "Sneaky Site",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 (body %s)", rec.Code, rec.Body.String())
	}
	body := decodeError(t, rec)
	if body.Error.Code != models.ErrCodeForbidden {
		t.Errorf("code = %q, want %q", body.Error.Code, models.ErrCodeForbidden)
	}
}

func TestCreateSiteIsAudited(t *testing.T) {
	env := newAPITestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/sites/", env.token(t, "user-1"), map[string]interface{}{
		"name":     "Hamburg DC",
		"location": "Hamburg",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	body := decodeSuccess(t, rec)
	siteID, _ := body.Data["id"].(string)
	if siteID == "" {
		t.Fatal("created site has no id")
	}
	if got := body.Data["tenant_id"]; got != "org-1" {
		t.Errorf("tenant_id = %v, want org-1 (the creator's organization)", got)
	}

	record := waitForAuditRecord(t, env.auditLog, audit.ListQuery{
		ActorID: "user-1",
		Action:  models.AuditActionCreateSite,
	})
	if record.TargetType != "site" || record.TargetID != siteID {
		t.Errorf("audit target = %s/%s, want site/%s", record.TargetType, record.TargetID, siteID)
	}
}

func TestCreateSiteSucceedsWhenAuditStoreFails(t *testing.T) {
	env := newAPITestEnvWithAudit(t, failingAuditStore{})

	rec := env.do(t, http.MethodPost, "/api/v1/sites/", env.token(t, "user-1"), map[string]interface{}{
		"name": "Bremen DC",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 despite audit failure (body %s)", rec.Code, rec.Body.String())
	}
}

func TestCreateSiteCrossTenantSmuggling(t *testing.T) {
	env := newAPITestEnv(t)

	// A non-admin naming another organization in the payload is still bound
	// to their own; the target organization check denies it.
	rec := env.do(t, http.MethodPost, "/api/v1/sites/", env.token(t, "user-2"), map[string]interface{}{
		"name":      "Impostor DC",
		"tenant_id": "org-1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	body := decodeSuccess(t, rec)
	if got := body.Data["tenant_id"]; got != "org-2" {
		t.Errorf("tenant_id = %v, want org-2 (payload tenant must be ignored for non-admins)", got)
	}
}

func TestSuspendedOrganizationHidden(t *testing.T) {
	env := newAPITestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/organizations/org-3", env.token(t, "user-1"), nil)
	if rec.Code != http.StatusForbidden && rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want a denial", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/organizations/org-3", env.token(t, "admin-1"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestRoleChangeConfirmationFlow(t *testing.T) {
	env := newAPITestEnv(t)
	masterToken := env.token(t, "master-1")

	// Direct role update between user and master_user is rejected.
	rec := env.do(t, http.MethodPut, "/api/v1/users/user-1", masterToken, map[string]interface{}{
		"role": "master_user",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("direct update status = %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}

	// Open the confirmation flow.
	rec = env.do(t, http.MethodPost, "/api/v1/users/user-1/role-changes", masterToken, map[string]interface{}{
		"to_role": "master_user",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	body := decodeSuccess(t, rec)
	changeID, _ := body.Data["id"].(string)
	if changeID == "" {
		t.Fatal("role change has no id")
	}
	if got := body.Data["state"]; got != models.RoleChangePending {
		t.Fatalf("state = %v, want %s", got, models.RoleChangePending)
	}

	// Applying before confirming is out of order.
	rec = env.do(t, http.MethodPost, "/api/v1/role-changes/"+changeID+"/apply", masterToken, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("premature apply status = %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}
	if got := decodeError(t, rec).Error.Code; got != models.ErrCodeConflict {
		t.Errorf("premature apply code = %q, want %q", got, models.ErrCodeConflict)
	}

	// Confirm, then apply.
	rec = env.do(t, http.MethodPost, "/api/v1/role-changes/"+changeID+"/confirm", masterToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPost, "/api/v1/role-changes/"+changeID+"/apply", masterToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("apply status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	// The target's role is rewritten.
	rec = env.do(t, http.MethodGet, "/api/v1/users/user-1", masterToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get user status = %d, want 200", rec.Code)
	}
	if got := decodeSuccess(t, rec).Data["role"]; got != "master_user" {
		t.Errorf("role after apply = %v, want master_user", got)
	}

	// The escalation is audited with the transition in metadata.
	record := waitForAuditRecord(t, env.auditLog, audit.ListQuery{
		Action: models.AuditActionRoleChange,
	})
	if record.Metadata["from_role"] != "user" || record.Metadata["to_role"] != "master_user" {
		t.Errorf("audit metadata = %v, want from_role=user to_role=master_user", record.Metadata)
	}

	// A second apply is out of order again.
	rec = env.do(t, http.MethodPost, "/api/v1/role-changes/"+changeID+"/apply", masterToken, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("repeat apply status = %d, want 409", rec.Code)
	}
}

func TestUserManagementTenantBoundary(t *testing.T) {
	env := newAPITestEnv(t)
	masterToken := env.token(t, "master-1")

	// Plain users cannot manage users at all.
	rec := env.do(t, http.MethodGet, "/api/v1/users/", env.token(t, "user-1"), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("plain user list status = %d, want 403", rec.Code)
	}

	// Master users see only their own organization's accounts.
	rec = env.do(t, http.MethodGet, "/api/v1/users/", masterToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	for _, raw := range decodeSuccess(t, rec).Data["results"].([]interface{}) {
		user, _ := raw.(map[string]interface{})
		if got := user["tenant_id"]; got != "org-1" {
			t.Errorf("user %v leaked from tenant %v", user["id"], got)
		}
	}

	// Another organization's account is denied across the boundary.
	rec = env.do(t, http.MethodGet, "/api/v1/users/user-2", masterToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cross-tenant get status = %d, want 403 (body %s)", rec.Code, rec.Body.String())
	}

	// Master users cannot mint admins.
	rec = env.do(t, http.MethodPost, "/api/v1/users/", masterToken, map[string]interface{}{
		"email": "newadmin@polar.example",
		"role":  "admin",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("create admin status = %d, want 403 (body %s)", rec.Code, rec.Body.String())
	}

	// Creation lands in the master user's own organization.
	rec = env.do(t, http.MethodPost, "/api/v1/users/", masterToken, map[string]interface{}{
		"email": "new@polar.example",
		"role":  "user",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	if got := decodeSuccess(t, rec).Data["tenant_id"]; got != "org-1" {
		t.Errorf("created user tenant = %v, want org-1", got)
	}

	// Duplicate email conflicts.
	rec = env.do(t, http.MethodPost, "/api/v1/users/", masterToken, map[string]interface{}{
		"email": "new@polar.example",
		"role":  "user",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate email status = %d, want 409", rec.Code)
	}
}

func TestUnknownRoleRejected(t *testing.T) {
	env := newAPITestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/users/", env.token(t, "admin-1"), map[string]interface{}{
		"email": "super@coldspan.io",
		"role":  "superadmin",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
	if got := decodeError(t, rec).Error.Code; got != models.ErrCodeValidation {
		t.Errorf("code = %q, want %q", got, models.ErrCodeValidation)
	}
}

func TestAuditListingAdminOnly(t *testing.T) {
	env := newAPITestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/audit", env.token(t, "master-1"), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("master user status = %d, want 403", rec.Code)
	}

	// Generate a record, then read it back as admin.
	rec = env.do(t, http.MethodPost, "/api/v1/organizations/", env.token(t, "admin-1"), map[string]interface{}{
		"name": "Tundra Retail", "slug": "tundra-retail", "plan_tier": "starter", "max_users": 5,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create org status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	waitForAuditRecord(t, env.auditLog, audit.ListQuery{Action: models.AuditActionCreateOrganization})

	rec = env.do(t, http.MethodGet, "/api/v1/audit?action=create_organization", env.token(t, "admin-1"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	results, _ := decodeSuccess(t, rec).Data["results"].([]interface{})
	if len(results) == 0 {
		t.Error("expected at least one create_organization audit record")
	}
}

func TestOwnershipIsWriteOnce(t *testing.T) {
	env := newAPITestEnv(t)

	// The update payload has no tenant field at all; a smuggled one is
	// silently ignored by the decoder and ownership never moves.
	rec := env.do(t, http.MethodPut, "/api/v1/sites/site-1", env.token(t, "master-1"), map[string]interface{}{
		"name":      "Renamed DC",
		"tenant_id": "org-2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if got := decodeSuccess(t, rec).Data["tenant_id"]; got != "org-1" {
		t.Errorf("tenant_id = %v, want org-1 (ownership must not move)", got)
	}
}
