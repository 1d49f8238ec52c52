// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coldspan/coldspan/internal/middleware"
)

// Routes assembles the full route tree.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/organizations", func(r chi.Router) {
			r.Get("/", h.ListOrganizations)
			r.Post("/", h.CreateOrganization)
			r.Get("/{orgID}", h.GetOrganization)
			r.Put("/{orgID}", h.UpdateOrganization)
			r.Delete("/{orgID}", h.DeleteOrganization)
		})

		r.Route("/sites", func(r chi.Router) {
			r.Get("/", h.ListSites)
			r.Post("/", h.CreateSite)
			r.Get("/{siteID}", h.GetSite)
			r.Put("/{siteID}", h.UpdateSite)
			r.Delete("/{siteID}", h.DeleteSite)
			r.Get("/{siteID}/environments", h.ListEnvironments)
			r.Post("/{siteID}/environments", h.CreateEnvironment)
		})

		r.Route("/environments", func(r chi.Router) {
			r.Get("/{envID}", h.GetEnvironment)
			r.Put("/{envID}", h.UpdateEnvironment)
			r.Delete("/{envID}", h.DeleteEnvironment)
			r.Get("/{envID}/sensors", h.ListSensors)
			r.Post("/{envID}/sensors", h.CreateSensor)
		})

		r.Route("/sensors", func(r chi.Router) {
			r.Get("/{sensorID}", h.GetSensor)
			r.Put("/{sensorID}", h.UpdateSensor)
			r.Delete("/{sensorID}", h.DeleteSensor)
			r.Get("/{sensorID}/readings", h.ListReadings)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{userID}", h.GetUser)
			r.Put("/{userID}", h.UpdateUser)
			r.Delete("/{userID}", h.DeleteUser)
			r.Post("/{userID}/role-changes", h.CreateRoleChange)
		})

		r.Route("/role-changes", func(r chi.Router) {
			r.Post("/{changeID}/confirm", h.ConfirmRoleChange)
			r.Post("/{changeID}/apply", h.ApplyRoleChange)
		})

		r.Get("/audit", h.ListAuditRecords)
	})

	// Device ingest is authenticated by request signature, not bearer
	// credential, so it lives outside /api/v1.
	if h.cfg.Ingest.Enabled {
		r.Post("/api/ingest/readings", h.IngestReadings)
	}

	return r
}
