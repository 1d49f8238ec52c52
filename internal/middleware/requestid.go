// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

// Package middleware provides HTTP middleware shared by all routes.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/coldspan/coldspan/internal/logging"
)

// RequestID assigns each request a unique ID, echoes it in the
// X-Request-ID response header, and attaches it to the request context so
// every log line and error envelope for the request carries it.
//
// An ID supplied by an upstream proxy is trusted and reused.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
