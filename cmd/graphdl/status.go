// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"fmt"

	"github.com/sigil-dev/graphdl/internal/graphdb"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
	"github.com/sigil-dev/graphdl/pkg/health"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of a running server",
		Long:  "Query a running graphdl server's health and stats endpoints.",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}

	cmd.Flags().String("address", "127.0.0.1:8420", "server address to check")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("address")
	out := cmd.OutOrStdout()

	c := newAPIClient(addr)
	var report health.Report
	if err := c.getJSON("/health", &report); err != nil {
		if graphdlerr.HasCode(err, graphdlerr.CodeCLIServerDown) {
			_, _ = fmt.Fprintf(out, "graphdl at %s is not running (connection refused)\n", addr)
			return nil
		}
		_, _ = fmt.Fprintf(out, "graphdl at %s: %s\n", addr, err)
		return nil
	}

	var st graphdb.Stats
	if err := c.getJSON("/api/v1/stats", &st); err != nil {
		_, _ = fmt.Fprintf(out, "graphdl at %s: %s (stats unavailable: %s)\n", addr, report.Status, err)
		return nil
	}

	_, _ = fmt.Fprintf(out, "graphdl at %s: %s (version %s, up %s)\n", addr, report.Status, report.Version, report.Uptime())
	renderStats(out, st)
	return nil
}
