// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func versionString(short bool) string {
	if short {
		return version
	}
	return fmt.Sprintf("graphdl %s (commit: %s, built: %s)", version, commit, date)
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print graphdl version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			short, _ := cmd.Flags().GetBool("short")
			_, err := fmt.Fprintln(cmd.OutOrStdout(), versionString(short))
			return err
		},
	}
	cmd.Flags().Bool("short", false, "print only the version number")
	return cmd
}
