// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package sqlite

import (
	"os"
	"path/filepath"

	"github.com/sigil-dev/graphdl/internal/store"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

// DBFile is the database file name created inside the data directory.
const DBFile = "graphdl.db"

func init() {
	store.RegisterBackend("sqlite", newBackend)
}

func newBackend(dataPath string) (store.Backend, error) {
	if dataPath == "" {
		return nil, graphdlerr.New(graphdlerr.CodeStoreBackendFailure,
			"sqlite backend requires a data directory",
			graphdlerr.FieldBackend("sqlite"))
	}
	if err := os.MkdirAll(dataPath, 0o750); err != nil {
		return nil, graphdlerr.Errorf(graphdlerr.CodeStoreBackendFailure, "creating data directory %s: %w", dataPath, err)
	}
	return Open(filepath.Join(dataPath, DBFile))
}
