// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package models

import "time"

// Device is the ingest-side identity of a sensor: the credential a field
// unit signs its readings with. Kept separate from Sensor so rotating a
// device secret never touches the monitoring hierarchy.
type Device struct {
	// ID is the identifier the device sends in X-Device-Id.
	ID string `json:"id"`

	// SensorID links the device to the sensor its readings belong to.
	SensorID string `json:"sensor_id"`

	// Secret is the shared HMAC key. Never serialized in API responses.
	Secret string `json:"-"`

	// Status is active or inactive; inactive devices are rejected at ingest.
	Status string `json:"status"`

	CreatedAt time.Time `json:"created_at"`
}
