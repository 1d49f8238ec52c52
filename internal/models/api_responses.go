// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package models

import "time"

// APIResponse is the standardized wrapper for successful responses.
//
// Example:
//
//	{
//	  "status": "success",
//	  "data": {"total": 3, "results": [...]},
//	  "metadata": {"timestamp": "2026-08-31T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// ErrorEnvelope is the wire format for every failed request:
//
//	{
//	  "error": {
//	    "code": "FORBIDDEN",
//	    "message": "Admin access required",
//	    "requestId": "7f4df6b2-...",
//	    "details": {"userOrganization": "org-1", "resourceOrganization": "org-2"}
//	  }
//	}
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// APIError carries a machine-readable code, a human-readable message that
// never leaks more than the minimum, and the request ID for correlation.
type APIError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"requestId"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Error codes used across the API.
const (
	// ErrCodeUnauthenticated covers missing, malformed, expired, or
	// unresolvable credentials (401).
	ErrCodeUnauthenticated = "UNAUTHENTICATED"

	// ErrCodeForbidden covers capability failures on a valid credential (403).
	ErrCodeForbidden = "FORBIDDEN"

	// ErrCodeNoOrganizationMembership is returned when an authenticated
	// non-admin principal has no tenant binding and therefore no data (403).
	ErrCodeNoOrganizationMembership = "NO_ORGANIZATION_MEMBERSHIP"

	// ErrCodeCrossTenantDenied is returned when a named resource belongs to
	// a different tenant than the caller (403).
	ErrCodeCrossTenantDenied = "CROSS_TENANT_ACCESS_DENIED"

	// ErrCodeNotFound covers absent resources, and resources deliberately
	// hidden from unauthorized callers (404).
	ErrCodeNotFound = "NOT_FOUND"

	// ErrCodeValidation covers malformed request payloads (400).
	ErrCodeValidation = "VALIDATION_ERROR"

	// ErrCodeConflict covers uniqueness violations such as duplicate slugs
	// and out-of-order role-change confirmations (409).
	ErrCodeConflict = "CONFLICT"

	// ErrCodeInternal covers unexpected server-side failures (500).
	ErrCodeInternal = "INTERNAL_ERROR"
)
