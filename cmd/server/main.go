// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

// Package main is the entry point for the Coldspan server.
//
// Coldspan is a multi-tenant cold chain monitoring backend. Organizations
// own sites, sites contain environments, environments contain sensors, and
// field devices push signed temperature readings into the hierarchy. Every
// request passes through the authorization core: credential resolution,
// role policy, tenant scope filtering, and cross-tenant ownership checks.
//
// # Startup Order
//
//  1. Configuration: Koanf v2 layered loading (defaults, YAML file,
//     environment variables)
//  2. Logging: zerolog global logger per the logging config
//  3. Stores: the resource store and the BadgerDB audit store
//  4. Audit recorder: async buffered writer for admin action records
//  5. Authorization: JWT manager, principal resolver, gate, validator
//  6. HTTP server: chi router under a suture supervisor tree
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests within server.shutdown_timeout, then the audit
// recorder flushes its buffer, then the stores close.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/coldspan/coldspan/internal/api"
	"github.com/coldspan/coldspan/internal/audit"
	"github.com/coldspan/coldspan/internal/auth"
	"github.com/coldspan/coldspan/internal/authz"
	"github.com/coldspan/coldspan/internal/config"
	"github.com/coldspan/coldspan/internal/logging"
	"github.com/coldspan/coldspan/internal/store"
	"github.com/coldspan/coldspan/internal/supervisor"
	"github.com/coldspan/coldspan/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Bool("ingest", cfg.Ingest.Enabled).
		Msg("Starting Coldspan server")

	// Resource store. In-memory for now; the interface boundary in
	// internal/store is where a database-backed implementation plugs in.
	resourceStore := store.NewMemory()

	// Audit store and recorder.
	auditStore, err := openAuditStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open audit store")
	}
	defer func() {
		if err := auditStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close audit store")
		}
	}()

	recorder := audit.NewRecorder(auditStore, audit.RecorderConfig{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
	})

	// Authorization core.
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	resolver := auth.NewResolver(jwtManager, resourceStore, cfg.Security.CookieName)
	gate := authz.NewGate(resolver)
	validator := authz.NewValidator(resourceStore, cfg.Security.HideCrossTenant)

	// HTTP surface.
	handler := api.NewHandler(cfg, gate, validator, recorder, auditStore, resourceStore)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	// Supervision tree: the audit recorder and the HTTP server restart
	// independently of each other.
	treeConfig := supervisor.DefaultTreeConfig()
	treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), treeConfig)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build supervisor tree")
	}
	tree.AddAuditService(services.NewAuditRecorderService(recorder))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Coldspan server listening")
	if err := tree.Serve(ctx); err != nil && err != context.Canceled {
		logging.Error().Err(err).Msg("Supervisor tree exited with error")
		os.Exit(1)
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", fmt.Sprintf("%v", svc.Service)).Msg("Service did not stop in time")
		}
	}
	logging.Info().Msg("Coldspan server stopped")
}

// openAuditStore opens the configured audit backend.
func openAuditStore(cfg *config.Config) (audit.Store, error) {
	if cfg.Audit.InMemory {
		return audit.NewInMemoryStore()
	}
	return audit.NewBadgerStore(cfg.Audit.StorePath)
}
