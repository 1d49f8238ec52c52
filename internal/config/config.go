// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

// Package config provides layered configuration loading for Coldspan using
// Koanf v2: struct defaults, then an optional YAML file, then environment
// variables.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the root configuration for the Coldspan server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Audit    AuditConfig    `koanf:"audit"`
	Ingest   IngestConfig   `koanf:"ingest"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// SecurityConfig holds authentication and authorization settings.
type SecurityConfig struct {
	// JWTSecret signs and verifies bearer tokens. Minimum 32 characters.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTimeout bounds token lifetime at issuance.
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// CookieName is the fallback credential cookie checked when no
	// Authorization header is present.
	CookieName string `koanf:"cookie_name"`

	// HideCrossTenant switches cross-tenant denials on named resources from
	// 403-with-details to an existence-hiding 404.
	HideCrossTenant bool `koanf:"hide_cross_tenant"`
}

// AuditConfig holds admin action audit settings.
type AuditConfig struct {
	Enabled    bool   `koanf:"enabled"`
	BufferSize int    `koanf:"buffer_size"`
	StorePath  string `koanf:"store_path"`

	// InMemory switches the badger store to an in-memory backend. Used by
	// tests and ephemeral deployments.
	InMemory bool `koanf:"in_memory"`
}

// IngestConfig holds sensor reading ingest settings.
type IngestConfig struct {
	Enabled bool `koanf:"enabled"`

	// ClockSkew is the accepted window around X-Timestamp for HMAC-signed
	// device requests.
	ClockSkew time.Duration `koanf:"clock_skew"`

	// MaxBatchSize caps readings accepted in one request.
	MaxBatchSize int `koanf:"max_batch_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied. These are
// layered first, then overridden by file and environment values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8420,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Security: SecurityConfig{
			JWTSecret:       "",
			SessionTimeout:  24 * time.Hour,
			CookieName:      "coldspan_token",
			HideCrossTenant: false,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1000,
			StorePath:  "/data/audit",
			InMemory:   false,
		},
		Ingest: IngestConfig{
			Enabled:      true,
			ClockSkew:    5 * time.Minute,
			MaxBatchSize: 500,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks invariants that cannot be expressed as type constraints.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Security.JWTSecret == "" {
		return errors.New("security.jwt_secret is required")
	}
	if len(c.Security.JWTSecret) < 32 {
		return errors.New("security.jwt_secret must be at least 32 characters")
	}
	if c.Audit.Enabled && !c.Audit.InMemory && c.Audit.StorePath == "" {
		return errors.New("audit.store_path is required when audit is enabled")
	}
	if c.Ingest.MaxBatchSize <= 0 {
		return fmt.Errorf("ingest.max_batch_size must be positive, got %d", c.Ingest.MaxBatchSize)
	}
	return nil
}
