// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

/*
handlers_ingest.go - Device Reading Ingest

Devices are not principals: they authenticate with a per-device shared
secret, not a bearer token. Each request carries an HMAC-SHA256 signature
over body || X-Timestamp || X-Device-Id, a timestamp inside the configured
clock-skew window, and an optional Idempotency-Key for at-most-once
delivery under retries.

All authentication failures return the same 401 body: the endpoint never
reveals whether the device exists, is inactive, or sent a bad signature.
*/

package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/coldspan/coldspan/internal/logging"
	"github.com/coldspan/coldspan/internal/models"
)

const (
	headerDeviceID       = "X-Device-Id"
	headerTimestamp      = "X-Timestamp"
	headerSignature      = "X-Signature"
	headerIdempotencyKey = "Idempotency-Key"
)

// IngestReadingsRequest is the payload for POST /api/ingest/readings.
type IngestReadingsRequest struct {
	Readings []IngestReading `json:"readings" validate:"required,min=1,dive"`
}

// IngestReading is one measurement in an ingest batch. The sensor is not
// named in the payload; it comes from the authenticated device's binding.
type IngestReading struct {
	Temperature float64   `json:"temperature" validate:"gte=-100,lte=100"`
	Humidity    *float64  `json:"humidity,omitempty" validate:"omitempty,gte=0,lte=100"`
	Battery     *int      `json:"battery,omitempty" validate:"omitempty,gte=0,lte=100"`
	RecordedAt  time.Time `json:"recorded_at" validate:"required"`
}

// respondDeviceAuthFailed is the single response for every device
// authentication failure.
func respondDeviceAuthFailed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthenticated, "Device authentication failed", nil)
}

// parseIngestTimestamp accepts RFC 3339 or unix seconds.
func parseIngestTimestamp(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0).UTC(), nil
}

// computeIngestSignature returns the hex HMAC-SHA256 of
// body || timestamp || deviceID under the device secret.
func computeIngestSignature(secret string, body []byte, timestamp, deviceID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	mac.Write([]byte(timestamp))
	mac.Write([]byte(deviceID))
	return hex.EncodeToString(mac.Sum(nil))
}

// IngestReadings accepts a signed batch of readings from a device.
func (h *Handler) IngestReadings(w http.ResponseWriter, r *http.Request) {
	deviceID := r.Header.Get(headerDeviceID)
	rawTimestamp := r.Header.Get(headerTimestamp)
	signature := r.Header.Get(headerSignature)
	if deviceID == "" || rawTimestamp == "" || signature == "" {
		respondDeviceAuthFailed(w, r)
		return
	}

	timestamp, err := parseIngestTimestamp(rawTimestamp)
	if err != nil {
		respondDeviceAuthFailed(w, r)
		return
	}
	skew := time.Since(timestamp)
	if skew < 0 {
		skew = -skew
	}
	if skew > h.cfg.Ingest.ClockSkew {
		respondDeviceAuthFailed(w, r)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Malformed request body", nil)
		return
	}

	device, err := h.store.GetDevice(r.Context(), deviceID)
	if err != nil || device.Status != models.ResourceStatusActive {
		respondDeviceAuthFailed(w, r)
		return
	}

	expected := computeIngestSignature(device.Secret, body, rawTimestamp, deviceID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		respondDeviceAuthFailed(w, r)
		return
	}

	var req IngestReadingsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Malformed request body", nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}
	if len(req.Readings) > h.cfg.Ingest.MaxBatchSize {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation,
			"batch exceeds the maximum of "+strconv.Itoa(h.cfg.Ingest.MaxBatchSize)+" readings", nil)
		return
	}

	// The key is claimed only once the batch has passed validation, so a
	// rejected batch never consumes its key and the corrected retry is
	// stored rather than treated as a replay.
	if key := r.Header.Get(headerIdempotencyKey); key != "" {
		first, err := h.store.ClaimIdempotencyKey(r.Context(), deviceID+":"+key)
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Internal server error", nil)
			return
		}
		if !first {
			// Replay of a batch already accepted. Acknowledge without
			// appending anything.
			respondData(w, http.StatusOK, map[string]interface{}{
				"accepted":  0,
				"duplicate": true,
			})
			return
		}
	}

	readings := make([]*models.Reading, 0, len(req.Readings))
	for _, in := range req.Readings {
		readings = append(readings, &models.Reading{
			SensorID:    device.SensorID,
			Temperature: in.Temperature,
			Humidity:    in.Humidity,
			Battery:     in.Battery,
			RecordedAt:  in.RecordedAt.UTC(),
		})
	}
	if err := h.store.AppendReadings(r.Context(), readings); err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Internal server error", nil)
		return
	}

	logging.Debug().
		Str("device_id", deviceID).
		Int("readings", len(readings)).
		Msg("Ingested device readings")

	respondData(w, http.StatusAccepted, map[string]interface{}{
		"accepted": len(readings),
	})
}
