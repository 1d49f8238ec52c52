// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coldspan/coldspan/internal/authz"
	"github.com/coldspan/coldspan/internal/models"
)

// CreateSensorRequest is the payload for POST /environments/{envID}/sensors.
type CreateSensorRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	LocalID string `json:"local_id" validate:"omitempty,max=100"`
	Model   string `json:"model" validate:"omitempty,max=100"`
}

// UpdateSensorRequest is the payload for PUT /sensors/{sensorID}.
type UpdateSensorRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Model        *string `json:"model,omitempty" validate:"omitempty,max=100"`
	Status       *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	BatteryLevel *int    `json:"battery_level,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// ListSensors lists the sensors of one environment.
func (h *Handler) ListSensors(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.AnyAuthenticated)
	if !ok {
		return
	}

	env, httpErr := h.validator.AssertEnvironmentAccess(r.Context(), principal, chi.URLParam(r, "envID"))
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}

	sensors, err := h.store.ListSensorsByEnvironment(r.Context(), env.ID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"total":   len(sensors),
		"results": sensors,
	})
}

// CreateSensor registers a sensor in an environment the caller owns.
func (h *Handler) CreateSensor(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ResourceWrite)
	if !ok {
		return
	}

	env, httpErr := h.validator.AssertEnvironmentAccess(r.Context(), principal, chi.URLParam(r, "envID"))
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}

	var req CreateSensorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Malformed request body", nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	sensor := &models.Sensor{
		ID:            uuid.New().String(),
		EnvironmentID: env.ID,
		Name:          req.Name,
		LocalID:       req.LocalID,
		Model:         req.Model,
		Status:        models.ResourceStatusActive,
		BatteryLevel:  100,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.store.CreateSensor(r.Context(), sensor); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.audit(r, principal.ID, models.AuditActionCreateSensor, "sensor", sensor.ID, nil)
	respondData(w, http.StatusCreated, sensor)
}

// GetSensor returns one sensor after walking its full ownership chain.
func (h *Handler) GetSensor(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.AnyAuthenticated)
	if !ok {
		return
	}

	sensor, httpErr := h.validator.AssertSensorAccess(r.Context(), principal, chi.URLParam(r, "sensorID"))
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}
	respondData(w, http.StatusOK, sensor)
}

// UpdateSensor updates sensor attributes.
func (h *Handler) UpdateSensor(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ResourceWrite)
	if !ok {
		return
	}

	sensor, httpErr := h.validator.AssertSensorAccess(r.Context(), principal, chi.URLParam(r, "sensorID"))
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}

	var req UpdateSensorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Malformed request body", nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	if req.Name != nil {
		sensor.Name = *req.Name
	}
	if req.Model != nil {
		sensor.Model = *req.Model
	}
	if req.Status != nil {
		sensor.Status = *req.Status
	}
	if req.BatteryLevel != nil {
		sensor.BatteryLevel = *req.BatteryLevel
	}
	sensor.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateSensor(r.Context(), sensor); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.audit(r, principal.ID, models.AuditActionUpdateSensor, "sensor", sensor.ID, nil)
	respondData(w, http.StatusOK, sensor)
}

// DeleteSensor removes a sensor.
func (h *Handler) DeleteSensor(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ResourceWrite)
	if !ok {
		return
	}

	sensor, httpErr := h.validator.AssertSensorAccess(r.Context(), principal, chi.URLParam(r, "sensorID"))
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}

	if err := h.store.DeleteSensor(r.Context(), sensor.ID); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.audit(r, principal.ID, models.AuditActionDeleteSensor, "sensor", sensor.ID, nil)
	respondData(w, http.StatusOK, map[string]string{"deleted": sensor.ID})
}

// ListReadings returns recent readings for one sensor.
func (h *Handler) ListReadings(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.AnyAuthenticated)
	if !ok {
		return
	}

	sensor, httpErr := h.validator.AssertSensorAccess(r.Context(), principal, chi.URLParam(r, "sensorID"))
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "limit must be an integer between 1 and 1000", nil)
			return
		}
		limit = parsed
	}

	readings, err := h.store.ListReadingsBySensor(r.Context(), sensor.ID, limit)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"total":   len(readings),
		"results": readings,
	})
}
