// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"encoding/json"
	"io"
	"os"

	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newExportCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the store as a graph or linked-data document",
		Long: `Write a snapshot of the store.

  --kind graph        {"nodes": [...], "edges": [...]}; re-importable with "graphdl import"
  --kind linked-data  {"@context": ..., "@graph": [...]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, v)
		},
	}

	cmd.Flags().String("kind", "graph", "document kind: graph or linked-data")
	cmd.Flags().StringP("format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	return cmd
}

func runExport(cmd *cobra.Command, v *viper.Viper) error {
	kind, _ := cmd.Flags().GetString("kind")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	if kind != "graph" && kind != "linked-data" {
		return graphdlerr.Errorf(graphdlerr.CodeCLIInputInvalid, "--kind must be graph or linked-data, got %q", kind)
	}
	if format != "json" && format != "yaml" {
		return graphdlerr.Errorf(graphdlerr.CodeCLIInputInvalid, "--format must be json or yaml, got %q", format)
	}

	cfg, logger, err := loadRuntime(cmd, v)
	if err != nil {
		return err
	}
	db, err := OpenStore(cmd.Context(), cfg, v, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var doc any
	if kind == "graph" {
		doc, err = db.Exporter().ToGraph(cmd.Context())
	} else {
		doc, err = db.Exporter().ToLinkedData(cmd.Context())
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return graphdlerr.Errorf(graphdlerr.CodeCLISetupFailure, "creating %s: %w", output, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := writeDocument(w, format, doc); err != nil {
		return err
	}
	logger.Debug("export written", "kind", kind, "format", format, "output", output)
	return nil
}

func writeDocument(w io.Writer, format string, doc any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return graphdlerr.Errorf(graphdlerr.CodeCLISetupFailure, "encoding yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return graphdlerr.Errorf(graphdlerr.CodeCLISetupFailure, "encoding json: %w", err)
	}
	return nil
}
