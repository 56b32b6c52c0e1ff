// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sigil-dev/graphdl/internal/graphdb"
	"github.com/sigil-dev/graphdl/internal/thing"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newImportCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load entities and relationships from a graph document",
		Long: `Load a graph document ({"nodes": [...], "edges": [...]}, as written by
"graphdl export") into the store. JSON and YAML are both accepted; "-" reads
stdin. Nodes are created first, then edges. Items that fail are reported and
the rest are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, v, args[0])
		},
	}
}

func runImport(cmd *cobra.Command, v *viper.Viper, path string) error {
	g, err := readGraph(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	cfg, logger, err := loadRuntime(cmd, v)
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	logger = logger.With("import_id", runID)
	if cfg.Storage.Backend == "memory" {
		logger.Warn("memory backend does not persist; imported data is discarded on exit")
	}

	ctx := cmd.Context()
	db, err := OpenStore(ctx, cfg, v, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	creates := make([]graphdb.CreateInput, len(g.Nodes))
	for i, n := range g.Nodes {
		data := thing.CloneMap(n.Properties)
		if data == nil {
			data = make(map[string]any, 1)
		}
		data[thing.FieldID] = n.ID
		creates[i] = graphdb.CreateInput{Type: n.Type, Data: data}
	}
	entities := db.Batch().Create(ctx, creates)

	relates := make([]graphdb.TripleInput, len(g.Edges))
	for i, e := range g.Edges {
		relates[i] = graphdb.TripleInput{
			Subject:   e.Source,
			Predicate: e.Predicate,
			Object:    e.Target,
			Metadata:  e.Properties,
		}
	}
	relationships := db.Batch().Relate(ctx, relates)

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "imported %d/%d entities, %d/%d relationships\n",
		entities.Succeeded, len(creates), relationships.Succeeded, len(relates))

	errOut := cmd.ErrOrStderr()
	for _, f := range entities.Failures() {
		_, _ = fmt.Fprintf(errOut, "  node %d (%s): %s\n", f.Index, g.Nodes[f.Index].ID, f.Error)
	}
	for _, f := range relationships.Failures() {
		e := g.Edges[f.Index]
		_, _ = fmt.Fprintf(errOut, "  edge %d (%s -%s-> %s): %s\n", f.Index, e.Source, e.Predicate, e.Target, f.Error)
	}

	logger.Info("import finished",
		"entities", entities.Succeeded,
		"relationships", relationships.Succeeded,
		"failed", entities.Failed+relationships.Failed,
	)
	if failed := entities.Failed + relationships.Failed; failed > 0 {
		return graphdlerr.Errorf(graphdlerr.CodeCLIInputInvalid, "%d of %d items failed to import", failed, len(creates)+len(relates))
	}
	return nil
}

// readGraph decodes a graph document from JSON or YAML.
func readGraph(stdin io.Reader, path string) (graphdb.Graph, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return graphdb.Graph{}, graphdlerr.Errorf(graphdlerr.CodeCLIInputInvalid, "reading %s: %w", path, err)
	}

	var g graphdb.Graph
	if json.Valid(b) {
		err = json.Unmarshal(b, &g)
	} else {
		err = yaml.Unmarshal(b, &g)
	}
	if err != nil {
		return graphdb.Graph{}, graphdlerr.Errorf(graphdlerr.CodeCLIInputInvalid, "decoding %s: %w", path, err)
	}
	return g, nil
}
