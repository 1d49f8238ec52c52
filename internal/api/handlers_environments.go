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

// CreateEnvironmentRequest is the payload for POST /sites/{siteID}/environments.
type CreateEnvironmentRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
	Type string `json:"type" validate:"required,env_type"`
}

// UpdateEnvironmentRequest is the payload for PUT /environments/{envID}.
// The owning site is write-once and has no field here.
type UpdateEnvironmentRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Type   *string `json:"type,omitempty" validate:"omitempty,env_type"`
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// ListEnvironments lists the environments of one site. The site is named in
// the path, so this goes through the ownership validator, not the list
// filter: a caller addressing another tenant's site is denied even though a
// filtered list would simply have omitted it.
func (h *Handler) ListEnvironments(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.AnyAuthenticated)
	if !ok {
		return
	}

	site, httpErr := h.validator.AssertSiteAccess(r.Context(), principal, chi.URLParam(r, "siteID"))
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}

	envs, err := h.store.ListEnvironmentsBySite(r.Context(), site.ID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"total":   len(envs),
		"results": envs,
	})
}

// CreateEnvironment creates an environment under a site the caller owns.
func (h *Handler) CreateEnvironment(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ResourceWrite)
	if !ok {
		return
	}

	site, httpErr := h.validator.AssertSiteAccess(r.Context(), principal, chi.URLParam(r, "siteID"))
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}

	var req CreateEnvironmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Malformed request body", nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	env := &models.Environment{
		ID:        uuid.New().String(),
		SiteID:    site.ID,
		Name:      req.Name,
		Type:      req.Type,
		Status:    models.ResourceStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateEnvironment(r.Context(), env); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.audit(r, principal.ID, models.AuditActionCreateEnvironment, "environment", env.ID, nil)
	respondData(w, http.StatusCreated, env)
}

// GetEnvironment returns one environment after walking its ownership chain.
func (h *Handler) GetEnvironment(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.AnyAuthenticated)
	if !ok {
		return
	}

	env, httpErr := h.validator.AssertEnvironmentAccess(r.Context(), principal, chi.URLParam(r, "envID"))
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}
	respondData(w, http.StatusOK, env)
}

// UpdateEnvironment updates environment attributes.
func (h *Handler) UpdateEnvironment(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ResourceWrite)
	if !ok {
		return
	}

	env, httpErr := h.validator.AssertEnvironmentAccess(r.Context(), principal, chi.URLParam(r, "envID"))
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}

	var req UpdateEnvironmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Malformed request body", nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	if req.Name != nil {
		env.Name = *req.Name
	}
	if req.Type != nil {
		env.Type = *req.Type
	}
	if req.Status != nil {
		env.Status = *req.Status
	}
	env.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateEnvironment(r.Context(), env); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.audit(r, principal.ID, models.AuditActionUpdateEnvironment, "environment", env.ID, nil)
	respondData(w, http.StatusOK, env)
}

// DeleteEnvironment removes an environment.
func (h *Handler) DeleteEnvironment(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ResourceWrite)
	if !ok {
		return
	}

	env, httpErr := h.validator.AssertEnvironmentAccess(r.Context(), principal, chi.URLParam(r, "envID"))
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}

	if err := h.store.DeleteEnvironment(r.Context(), env.ID); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.audit(r, principal.ID, models.AuditActionDeleteEnvironment, "environment", env.ID, nil)
	respondData(w, http.StatusOK, map[string]string{"deleted": env.ID})
}
