// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/sigil-dev/graphdl/internal/config"
	"github.com/sigil-dev/graphdl/internal/graphdb"
	"github.com/sigil-dev/graphdl/internal/store"
	_ "github.com/sigil-dev/graphdl/internal/store/memory" // register memory backend
	_ "github.com/sigil-dev/graphdl/internal/store/sqlite" // register sqlite backend
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadRuntime decodes the resolved configuration and builds the logger.
func loadRuntime(cmd *cobra.Command, v *viper.Viper) (*config.Config, *slog.Logger, error) {
	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, newLogger(cmd.ErrOrStderr(), v.GetBool("verbose")), nil
}

// resolveDataDir picks the data directory for file-backed backends:
// storage.path, then --data-dir, then ~/.local/share/graphdl.
func resolveDataDir(cfg *config.Config, v *viper.Viper) (string, error) {
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path, nil
	}
	if dir := v.GetString("data_dir"); dir != "" {
		return dir, nil
	}
	return config.DefaultDataDir()
}

// OpenStore opens the configured backend and loads the graph held in it.
// The returned DB owns the backend.
func OpenStore(ctx context.Context, cfg *config.Config, v *viper.Viper, logger *slog.Logger) (*graphdb.DB, error) {
	var dataDir string
	if cfg.Storage.Backend != "memory" {
		dir, err := resolveDataDir(cfg, v)
		if err != nil {
			return nil, err
		}
		dataDir = dir
	}

	backend, err := store.NewBackend(&store.StorageConfig{Backend: cfg.Storage.Backend, Path: dataDir})
	if err != nil {
		return nil, err
	}

	db, err := graphdb.Open(ctx, backend, graphdb.Options{
		Logger:            logger,
		OperationTimeout:  cfg.Store.OperationTimeout,
		LinkedDataContext: cfg.Export.Context,
	})
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	logger.Debug("store opened", "backend", cfg.Storage.Backend, "path", dataDir)
	return db, nil
}
