// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sigil-dev/graphdl/internal/graphdb"
	"github.com/sigil-dev/graphdl/internal/thing"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

const apiPrefix = "/api/v1"

func (s *Server) registerRoutes() {
	s.registerEntityRoutes()
	s.registerRelationshipRoutes()
	s.registerBatchRoutes()
	s.registerGraphRoutes()
}

func (s *Server) registerEntityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "create-entity",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/entities",
		Summary:       "Create an entity",
		Tags:          []string{"entities"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateEntity)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-entities",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/entities",
		Summary:     "List entities with filtering, ordering and paging",
		Tags:        []string{"entities"},
	}, s.handleListEntities)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-entity",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/entity",
		Summary:     "Get an entity by id",
		Tags:        []string{"entities"},
	}, s.handleGetEntity)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-entity",
		Method:      http.MethodPatch,
		Path:        apiPrefix + "/entity",
		Summary:     "Merge fields into an entity",
		Tags:        []string{"entities"},
	}, s.handleUpdateEntity)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-entity",
		Method:      http.MethodDelete,
		Path:        apiPrefix + "/entity",
		Summary:     "Delete an entity and its relationships",
		Tags:        []string{"entities"},
	}, s.handleDeleteEntity)
}

// --- Request/Response types for huma ---

type createEntityInput struct {
	Body struct {
		Type string         `json:"type" doc:"Entity type, normalized to PascalCase"`
		Data map[string]any `json:"data,omitempty" doc:"Entity fields; an \"id\" field overrides the generated id"`
	}
}

type entityIDInput struct {
	ID string `query:"id" required:"true" doc:"Entity id"`
}

type updateEntityInput struct {
	ID   string `query:"id" required:"true" doc:"Entity id"`
	Body map[string]any
}

type entityOutput struct {
	Body map[string]any
}

type deleteEntityOutput struct {
	Body struct {
		Deleted bool `json:"deleted"`
	}
}

type listEntitiesInput struct {
	Type      string   `query:"type" doc:"Restrict to one entity type"`
	Where     []string `query:"where,explode" doc:"Exact-match filters as field=value; values parse as JSON when possible"`
	OrderBy   string   `query:"orderBy" doc:"Field to sort by"`
	Direction string   `query:"direction" doc:"asc or desc"`
	Limit     int      `query:"limit" doc:"Page size; 0 returns everything"`
	Offset    int      `query:"offset" doc:"Items to skip"`
}

type entityListBody struct {
	Items   []map[string]any `json:"items"`
	Total   int              `json:"total"`
	HasMore bool             `json:"hasMore"`
}

type listEntitiesOutput struct {
	Body entityListBody
}

// --- Handlers ---

func (s *Server) handleCreateEntity(ctx context.Context, input *createEntityInput) (*entityOutput, error) {
	t, err := s.db.Entities().Create(ctx, input.Body.Type, input.Body.Data)
	if err != nil {
		return nil, toAPIError(ctx, err)
	}
	return &entityOutput{Body: t.Map()}, nil
}

func (s *Server) handleGetEntity(ctx context.Context, input *entityIDInput) (*entityOutput, error) {
	t, err := s.db.Entities().Get(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(ctx, err)
	}
	return &entityOutput{Body: t.Map()}, nil
}

func (s *Server) handleUpdateEntity(ctx context.Context, input *updateEntityInput) (*entityOutput, error) {
	t, err := s.db.Entities().Update(ctx, input.ID, input.Body)
	if err != nil {
		return nil, toAPIError(ctx, err)
	}
	return &entityOutput{Body: t.Map()}, nil
}

func (s *Server) handleDeleteEntity(ctx context.Context, input *entityIDInput) (*deleteEntityOutput, error) {
	deleted, err := s.db.Entities().Delete(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(ctx, err)
	}
	out := &deleteEntityOutput{}
	out.Body.Deleted = deleted
	return out, nil
}

func (s *Server) handleListEntities(ctx context.Context, input *listEntitiesInput) (*listEntitiesOutput, error) {
	where, err := parseWhere(input.Where)
	if err != nil {
		return nil, toAPIError(ctx, err)
	}

	opts := graphdb.ListOptions{
		Where:  where,
		Limit:  input.Limit,
		Offset: input.Offset,
	}
	if input.OrderBy != "" {
		dir := graphdb.SortDirection(strings.ToLower(input.Direction))
		switch dir {
		case "", graphdb.Asc, graphdb.Desc:
		default:
			return nil, badRequest(ctx, "direction must be asc or desc, got %q", input.Direction)
		}
		opts.OrderBy = &graphdb.OrderBy{Field: input.OrderBy, Direction: dir}
	}

	res, err := s.db.Query().List(ctx, input.Type, opts)
	if err != nil {
		return nil, toAPIError(ctx, err)
	}
	return &listEntitiesOutput{Body: entityListBody{
		Items:   thingMaps(res.Items),
		Total:   res.Total,
		HasMore: res.HasMore,
	}}, nil
}

// parseWhere turns "field=value" pairs into an exact-match filter. A value
// that is valid JSON is decoded, so age=30 matches the number and
// name="30" the string; anything else is taken as a literal string.
func parseWhere(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	where := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		field, raw, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, graphdlerr.Errorf(graphdlerr.CodeServerRequestInvalid, "where must be field=value, got %q", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		where[field] = v
	}
	return where, nil
}

func thingMaps(things []thing.Thing) []map[string]any {
	out := make([]map[string]any, len(things))
	for i, t := range things {
		out[i] = t.Map()
	}
	return out
}
