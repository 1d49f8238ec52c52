// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package api

import (
	"errors"

	"github.com/coldspan/coldspan/internal/store"
)

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, store.ErrConflict)
}
