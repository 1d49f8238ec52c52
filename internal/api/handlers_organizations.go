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

// CreateOrganizationRequest is the payload for POST /organizations.
type CreateOrganizationRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Slug     string `json:"slug" validate:"required,slug,max=100"`
	PlanTier string `json:"plan_tier" validate:"required,oneof=starter growth enterprise"`
	MaxUsers int    `json:"max_users" validate:"gte=1,lte=10000"`
}

// UpdateOrganizationRequest is the payload for PUT /organizations/{orgID}.
// Plan, seat count, and status are platform-level levers: admin only.
type UpdateOrganizationRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	PlanTier *string `json:"plan_tier,omitempty" validate:"omitempty,oneof=starter growth enterprise"`
	MaxUsers *int    `json:"max_users,omitempty" validate:"omitempty,gte=1,lte=10000"`
	Status   *string `json:"status,omitempty" validate:"omitempty,org_status"`
}

// ListOrganizations returns the organizations visible to the caller: all of
// them for admins, the caller's own (if active) otherwise.
func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.AnyAuthenticated)
	if !ok {
		return
	}
	filter, ok := scopeOrDeny(w, r, principal)
	if !ok {
		return
	}

	orgs, err := h.store.ListOrganizations(r.Context(), filter)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"total":   len(orgs),
		"results": orgs,
	})
}

// CreateOrganization provisions a new tenant. Admin only.
func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.AdminOnly)
	if !ok {
		return
	}

	var req CreateOrganizationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Malformed request body", nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	org := &models.Organization{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Slug:      req.Slug,
		PlanTier:  req.PlanTier,
		MaxUsers:  req.MaxUsers,
		Status:    models.OrgStatusActive,
		CreatedBy: principal.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateOrganization(r.Context(), org); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.audit(r, principal.ID, models.AuditActionCreateOrganization, "organization", org.ID, nil)
	respondData(w, http.StatusCreated, org)
}

// GetOrganization returns one organization after the ownership check.
func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.AnyAuthenticated)
	if !ok {
		return
	}

	org, httpErr := h.validator.AssertOrganizationAccess(r.Context(), principal, chi.URLParam(r, "orgID"))
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}
	respondData(w, http.StatusOK, org)
}

// UpdateOrganization updates tenant settings. Master users may rename their
// own organization; plan tier, seat limit, and status are admin-only.
func (h *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ManageUsers)
	if !ok {
		return
	}

	org, httpErr := h.validator.AssertOrganizationAccess(r.Context(), principal, chi.URLParam(r, "orgID"))
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}

	var req UpdateOrganizationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Malformed request body", nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	if !principal.IsAdmin() && (req.PlanTier != nil || req.MaxUsers != nil || req.Status != nil) {
		respondError(w, r, http.StatusForbidden, models.ErrCodeForbidden, "Admin access required", nil)
		return
	}

	if req.Name != nil {
		org.Name = *req.Name
	}
	if req.PlanTier != nil {
		org.PlanTier = *req.PlanTier
	}
	if req.MaxUsers != nil {
		org.MaxUsers = *req.MaxUsers
	}
	if req.Status != nil {
		org.Status = *req.Status
	}
	org.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateOrganization(r.Context(), org); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.audit(r, principal.ID, models.AuditActionUpdateOrganization, "organization", org.ID, nil)
	respondData(w, http.StatusOK, org)
}

// DeleteOrganization removes a tenant. Admin only. Child resources become
// unreachable through the visibility cascade; storage cleanup is offline.
func (h *Handler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.AdminOnly)
	if !ok {
		return
	}

	orgID := chi.URLParam(r, "orgID")
	if err := h.store.DeleteOrganization(r.Context(), orgID); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.audit(r, principal.ID, models.AuditActionDeleteOrganization, "organization", orgID, nil)
	respondData(w, http.StatusOK, map[string]string{"deleted": orgID})
}
