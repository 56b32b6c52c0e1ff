// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package sqlite_test

import (
	"path/filepath"
	"testing"
)

// testDir returns a per-test directory removed at cleanup.
func testDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// testDBPath returns a database file path inside a fresh test directory.
func testDBPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(testDir(t), name+".db")
}
