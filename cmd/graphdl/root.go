// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/sigil-dev/graphdl/internal/config"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd creates the root graphdl command with all subcommands
// registered. Each root owns its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "graphdl",
		Short: "Semantic entity and relationship store",
		Long: "graphdl stores typed entities and the labeled relationships between them,\n" +
			"and serves them over an HTTP API or exports them as a graph.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(cmd, v)
		},
	}

	// Global flags, mapped to viper keys in initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("data-dir", "", "path to data directory")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newInitCmd(),
		newServeCmd(v),
		newImportCmd(v),
		newExportCmd(v),
		newStatsCmd(v),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up v with defaults, env bindings, flag bindings, and an
// optional config file so the standard precedence (flag > env > file >
// defaults) is handled uniformly.
func initViper(cmd *cobra.Command, v *viper.Viper) error {
	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return graphdlerr.Errorf(graphdlerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// SetConfigType is omitted on purpose: with it, viper also tries the
		// bare name, which matches a ./graphdl binary.
		v.SetConfigName("graphdl")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/graphdl")
		v.AddConfigPath("/etc/graphdl")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return graphdlerr.Errorf(graphdlerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
		}
	}

	if err := v.BindPFlag("data_dir", cmd.Root().PersistentFlags().Lookup("data-dir")); err != nil {
		return graphdlerr.Errorf(graphdlerr.CodeCLISetupFailure, "binding data-dir flag: %w", err)
	}
	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return graphdlerr.Errorf(graphdlerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}

// newLogger writes text logs to w, at debug level when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
