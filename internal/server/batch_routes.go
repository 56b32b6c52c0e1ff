// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sigil-dev/graphdl/internal/graphdb"
)

// Batch endpoints always answer 200; per-item failures are reported in the
// body.
func (s *Server) registerBatchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "batch-create-entities",
		Method:      http.MethodPost,
		Path:        apiPrefix + "/batch/entities",
		Summary:     "Create many entities",
		Tags:        []string{"batch"},
	}, func(ctx context.Context, input *batchCreateInput) (*batchOutput, error) {
		return &batchOutput{Body: s.db.Batch().Create(ctx, input.Body.Items)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "batch-update-entities",
		Method:      http.MethodPatch,
		Path:        apiPrefix + "/batch/entities",
		Summary:     "Update many entities",
		Tags:        []string{"batch"},
	}, func(ctx context.Context, input *batchUpdateInput) (*batchOutput, error) {
		return &batchOutput{Body: s.db.Batch().Update(ctx, input.Body.Items)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "batch-delete-entities",
		Method:      http.MethodDelete,
		Path:        apiPrefix + "/batch/entities",
		Summary:     "Delete many entities",
		Tags:        []string{"batch"},
	}, func(ctx context.Context, input *batchDeleteInput) (*batchOutput, error) {
		return &batchOutput{Body: s.db.Batch().Delete(ctx, input.Body.IDs)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "batch-create-relationships",
		Method:      http.MethodPost,
		Path:        apiPrefix + "/batch/relationships",
		Summary:     "Create many relationships",
		Tags:        []string{"batch"},
	}, func(ctx context.Context, input *batchRelateInput) (*batchOutput, error) {
		return &batchOutput{Body: s.db.Batch().Relate(ctx, input.Body.Items)}, nil
	})
}

type batchCreateInput struct {
	Body struct {
		Items []graphdb.CreateInput `json:"items"`
	}
}

type batchUpdateInput struct {
	Body struct {
		Items []graphdb.UpdateInput `json:"items"`
	}
}

type batchDeleteInput struct {
	Body struct {
		IDs []string `json:"ids"`
	}
}

type batchRelateInput struct {
	Body struct {
		Items []graphdb.TripleInput `json:"items"`
	}
}

type batchOutput struct {
	Body graphdb.BatchResult
}
