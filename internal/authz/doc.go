// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

// Package authz is the multi-tenant authorization core: the role policy,
// the scope filter builder, the per-endpoint authorization gate, and the
// cross-tenant resource validator.
//
// Design rules enforced here:
//
//   - The role policy is a set of pure functions, total over the full
//     (role × input) space. No case falls through to a default allow.
//   - The ScopeFilter is the ONLY channel through which list endpoints
//     narrow results; no handler reinvents tenant filtering.
//   - A principal with no tenant binding is denied all tenant-scoped data
//     (DenyAll), never granted everything.
//   - An expired auditor is indistinguishable from an anonymous caller.
//
// The package performs no I/O except the resource lookups delegated to the
// ResourceStore collaborator by the ownership validator.
package authz
