// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sigil-dev/graphdl/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the store over HTTP",
		Long:  "Open the configured store and serve the entity, relationship and export API until interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, v)
		},
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	_ = v.BindPFlag("networking.listen", cmd.Flags().Lookup("listen"))

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, v *viper.Viper) error {
	cfg, logger, err := loadRuntime(cmd, v)
	if err != nil {
		return err
	}

	db, err := OpenStore(ctx, cfg, v, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("closing store", "error", err)
		}
	}()

	srv, err := server.New(server.Config{
		ListenAddr:  cfg.Networking.Listen,
		CORSOrigins: cfg.Networking.CORSOrigins,
		RateLimit: server.RateLimitConfig{
			RequestsPerSecond: cfg.Networking.RateLimit.RequestsPerSecond,
			Burst:             cfg.Networking.RateLimit.Burst,
		},
		Version: version,
		Logger:  logger,
	}, db)
	if err != nil {
		return err
	}

	logger.Info("starting graphdl", "listen", cfg.Networking.Listen, "backend", cfg.Storage.Backend)
	return srv.Start(ctx)
}
