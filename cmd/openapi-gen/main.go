// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sigil-dev/graphdl/internal/graphdb"
	"github.com/sigil-dev/graphdl/internal/server"
	"github.com/sigil-dev/graphdl/internal/store/memory"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

func main() {
	spec, err := generateSpec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	outPath := "api/openapi/spec.json"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, spec, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing spec: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OpenAPI spec written to %s\n", outPath)
}

// generateSpec creates a server over an empty in-memory store and extracts
// the OpenAPI document huma builds from the route types.
func generateSpec() ([]byte, error) {
	db, err := graphdb.Open(context.Background(), memory.New(), graphdb.Options{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"}, db)
	if err != nil {
		return nil, graphdlerr.Errorf(graphdlerr.CodeCLISetupFailure, "creating server: %w", err)
	}
	defer func() { _ = srv.Close() }()

	return json.MarshalIndent(srv.API().OpenAPI(), "", "  ")
}
