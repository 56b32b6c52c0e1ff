// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sigil-dev/graphdl/internal/graphdb"
)

func (s *Server) registerGraphRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "export-graph",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/graph",
		Summary:     "Node/edge snapshot of the store",
		Tags:        []string{"export"},
	}, func(ctx context.Context, _ *struct{}) (*graphOutput, error) {
		g, err := s.db.Exporter().ToGraph(ctx)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return &graphOutput{Body: g}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "export-linked-data",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/graph/linked-data",
		Summary:     "Linked-data document of the store",
		Tags:        []string{"export"},
	}, func(ctx context.Context, _ *struct{}) (*linkedDataOutput, error) {
		doc, err := s.db.Exporter().ToLinkedData(ctx)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return &linkedDataOutput{Body: map[string]any(doc)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "stats",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/stats",
		Summary:     "Entity and relationship counts",
		Tags:        []string{"system"},
	}, func(ctx context.Context, _ *struct{}) (*statsOutput, error) {
		st, err := s.db.Stats(ctx)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return &statsOutput{Body: st}, nil
	})
}

type graphOutput struct {
	Body graphdb.Graph
}

type linkedDataOutput struct {
	Body map[string]any
}

type statsOutput struct {
	Body graphdb.Stats
}
