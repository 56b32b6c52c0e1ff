// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sigil-dev/graphdl/internal/graphdb"
	"github.com/sigil-dev/graphdl/internal/thing"
)

func (s *Server) registerRelationshipRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "create-relationship",
		Method:      http.MethodPost,
		Path:        apiPrefix + "/relationships",
		Summary:     "Create a relationship; an existing one is returned unchanged",
		Tags:        []string{"relationships"},
	}, s.handleCreateRelationship)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-relationships",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/relationships",
		Summary:     "List relationships matching a filter",
		Tags:        []string{"relationships"},
	}, s.handleListRelationships)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-relationships",
		Method:      http.MethodDelete,
		Path:        apiPrefix + "/relationships",
		Summary:     "Delete every relationship matching a filter",
		Tags:        []string{"relationships"},
	}, s.handleDeleteRelationships)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-related",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/related",
		Summary:     "Entities connected to an entity",
		Tags:        []string{"relationships"},
	}, s.handleGetRelated)
}

type createRelationshipInput struct {
	Body graphdb.TripleInput
}

type relationshipOutput struct {
	Body thing.Triple
}

type filterInput struct {
	Subject   string `query:"subject" doc:"Subject entity id"`
	Predicate string `query:"predicate" doc:"Relationship label"`
	Object    string `query:"object" doc:"Object entity id"`
}

func (f filterInput) filter() graphdb.Filter {
	return graphdb.Filter{Subject: f.Subject, Predicate: f.Predicate, Object: f.Object}
}

type listRelationshipsInput struct {
	filterInput
	Limit  int `query:"limit" doc:"Page size; 0 returns everything"`
	Offset int `query:"offset" doc:"Items to skip"`
}

type listRelationshipsOutput struct {
	Body graphdb.TripleList
}

type deleteRelationshipsOutput struct {
	Body struct {
		Deleted int `json:"deleted"`
	}
}

type getRelatedInput struct {
	ID        string `query:"id" required:"true" doc:"Entity id"`
	Predicate string `query:"predicate" doc:"Only follow this label"`
	Direction string `query:"direction" enum:"outgoing,incoming,both" doc:"Edge direction, outgoing by default"`
}

type relatedOutput struct {
	Body struct {
		Items []map[string]any `json:"items"`
	}
}

func (s *Server) handleCreateRelationship(ctx context.Context, input *createRelationshipInput) (*relationshipOutput, error) {
	in := input.Body
	t, err := s.db.Relationships().Create(ctx, in.Subject, in.Predicate, in.Object, in.Metadata)
	if err != nil {
		return nil, toAPIError(ctx, err)
	}
	return &relationshipOutput{Body: t}, nil
}

func (s *Server) handleListRelationships(ctx context.Context, input *listRelationshipsInput) (*listRelationshipsOutput, error) {
	list, err := s.db.Query().ListRelationships(ctx, input.filter(), graphdb.Page{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, toAPIError(ctx, err)
	}
	return &listRelationshipsOutput{Body: list}, nil
}

func (s *Server) handleDeleteRelationships(ctx context.Context, input *filterInput) (*deleteRelationshipsOutput, error) {
	n, err := s.db.Relationships().DeleteWhere(ctx, input.filter())
	if err != nil {
		return nil, toAPIError(ctx, err)
	}
	out := &deleteRelationshipsOutput{}
	out.Body.Deleted = n
	return out, nil
}

func (s *Server) handleGetRelated(ctx context.Context, input *getRelatedInput) (*relatedOutput, error) {
	related, err := s.db.Relationships().GetRelated(ctx, input.ID, input.Predicate, graphdb.Direction(input.Direction))
	if err != nil {
		return nil, toAPIError(ctx, err)
	}
	out := &relatedOutput{}
	out.Body.Items = thingMaps(related)
	return out, nil
}
