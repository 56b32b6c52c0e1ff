// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

// StorageConfig controls which backend the store factory uses.
type StorageConfig struct {
	Backend string // "memory" or "sqlite"; empty uses "memory".
	Path    string // Data directory for file-backed backends.
}
