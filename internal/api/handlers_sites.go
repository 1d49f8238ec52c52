// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coldspan/coldspan/internal/authz"
	"github.com/coldspan/coldspan/internal/models"
)

// CreateSiteRequest is the payload for POST /sites. TenantID is accepted
// from admins only; everyone else creates inside their own organization.
type CreateSiteRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Location string `json:"location" validate:"omitempty,max=500"`
	TenantID string `json:"tenant_id" validate:"omitempty,max=100"`
}

// UpdateSiteRequest is the payload for PUT /sites/{siteID}. There is no
// tenant field: ownership is write-once.
type UpdateSiteRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=500"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// ListSites returns the sites the caller's scope filter admits.
func (h *Handler) ListSites(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.AnyAuthenticated)
	if !ok {
		return
	}
	filter, ok := scopeOrDeny(w, r, principal)
	if !ok {
		return
	}

	sites, err := h.store.ListSites(r.Context(), filter)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"total":   len(sites),
		"results": sites,
	})
}

// CreateSite creates a site in the caller's organization (or, for admins,
// in the organization named by the payload).
func (h *Handler) CreateSite(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ResourceWrite)
	if !ok {
		return
	}

	var req CreateSiteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Malformed request body", nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	tenantID := principal.TenantID
	if principal.IsAdmin() {
		if req.TenantID == "" {
			respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "tenant_id is required for admin site creation", nil)
			return
		}
		tenantID = req.TenantID
	}

	// The owning organization must be addressable by the caller; this also
	// rejects a non-admin smuggling another tenant's id into the payload.
	if _, httpErr := h.validator.AssertOrganizationAccess(r.Context(), principal, tenantID); httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}

	now := time.Now().UTC()
	site := &models.Site{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Name:      req.Name,
		Location:  req.Location,
		Status:    models.ResourceStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateSite(r.Context(), site); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.audit(r, principal.ID, models.AuditActionCreateSite, "site", site.ID, nil)
	respondData(w, http.StatusCreated, site)
}

// GetSite returns one site after the ownership check.
func (h *Handler) GetSite(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.AnyAuthenticated)
	if !ok {
		return
	}

	site, httpErr := h.validator.AssertSiteAccess(r.Context(), principal, chi.URLParam(r, "siteID"))
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}
	respondData(w, http.StatusOK, site)
}

// UpdateSite updates site attributes. Ownership never moves.
func (h *Handler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ResourceWrite)
	if !ok {
		return
	}

	site, httpErr := h.validator.AssertSiteAccess(r.Context(), principal, chi.URLParam(r, "siteID"))
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}

	var req UpdateSiteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Malformed request body", nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	if req.Name != nil {
		site.Name = *req.Name
	}
	if req.Location != nil {
		site.Location = *req.Location
	}
	if req.Status != nil {
		site.Status = *req.Status
	}
	site.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateSite(r.Context(), site); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.audit(r, principal.ID, models.AuditActionUpdateSite, "site", site.ID, nil)
	respondData(w, http.StatusOK, site)
}

// DeleteSite removes a site.
func (h *Handler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ResourceWrite)
	if !ok {
		return
	}

	site, httpErr := h.validator.AssertSiteAccess(r.Context(), principal, chi.URLParam(r, "siteID"))
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}

	if err := h.store.DeleteSite(r.Context(), site.ID); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.audit(r, principal.ID, models.AuditActionDeleteSite, "site", site.ID, nil)
	respondData(w, http.StatusOK, map[string]string{"deleted": site.ID})
}
