// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package graphdb

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/sigil-dev/graphdl/internal/thing"
)

// Node is an entity reduced for export.
type Node struct {
	ID         string         `json:"id" yaml:"id"`
	Type       string         `json:"type" yaml:"type"`
	Properties map[string]any `json:"properties" yaml:"properties"`
}

// Edge is a relationship reduced for export.
type Edge struct {
	Source     string         `json:"source" yaml:"source"`
	Target     string         `json:"target" yaml:"target"`
	Predicate  string         `json:"predicate" yaml:"predicate"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Graph is a node/edge snapshot. Nodes are ordered by id, edges by insertion.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Exporter produces read-only snapshots of the store.
type Exporter struct {
	db *DB
}

// ToGraph snapshots entities, then relationships, under two separate read
// locks. Edges whose endpoints are not in the entity snapshot are dropped.
func (x *Exporter) ToGraph(ctx context.Context) (Graph, error) {
	ctx, cancel := x.db.opContext(ctx)
	defer cancel()

	nodes, err := x.snapshotNodes(ctx)
	if err != nil {
		return Graph{}, err
	}
	present := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		present[n.ID] = struct{}{}
	}

	if err := x.db.lock.RLock(ctx); err != nil {
		return Graph{}, err
	}
	triples := x.db.triplesLocked(x.db.edges.allSeqs())
	x.db.lock.RUnlock()

	edges := make([]Edge, 0, len(triples))
	dropped := 0
	for _, t := range triples {
		_, okS := present[t.Subject]
		_, okO := present[t.Object]
		if !okS || !okO {
			dropped++
			continue
		}
		edges = append(edges, Edge{
			Source:     t.Subject,
			Target:     t.Object,
			Predicate:  t.Predicate,
			Properties: t.Metadata,
		})
	}
	if dropped > 0 {
		x.db.logger.Debug("dropped dangling edges from export", slog.Int("count", dropped))
	}
	return Graph{Nodes: nodes, Edges: edges}, nil
}

func (x *Exporter) snapshotNodes(ctx context.Context) ([]Node, error) {
	if err := x.db.lock.RLock(ctx); err != nil {
		return nil, err
	}
	defer x.db.lock.RUnlock()

	nodes := make([]Node, 0, len(x.db.entities))
	for _, t := range x.db.entities {
		props := thing.CloneMap(t.Data)
		if props == nil {
			props = map[string]any{}
		}
		nodes = append(nodes, Node{ID: t.ID, Type: t.Type, Properties: props})
	}
	slices.SortFunc(nodes, func(a, b Node) int { return strings.Compare(a.ID, b.ID) })
	return nodes, nil
}

// Document is a linked-data envelope: {"@context": ..., "@graph": [...]}.
type Document map[string]any

// Linked-data keywords.
const (
	ldContext = "@context"
	ldGraph   = "@graph"
	ldID      = "@id"
	ldType    = "@type"
)

// ToLinkedData renders the graph snapshot as a linked-data document. Each
// node carries its properties plus one key per outgoing predicate whose
// value is a {"@id": target} reference, or a list of them when the
// predicate has several targets. A predicate link replaces a property of the
// same name.
func (x *Exporter) ToLinkedData(ctx context.Context) (Document, error) {
	g, err := x.ToGraph(ctx)
	if err != nil {
		return nil, err
	}

	links := make(map[string]map[string][]any, len(g.Nodes))
	for _, e := range g.Edges {
		byPred, ok := links[e.Source]
		if !ok {
			byPred = make(map[string][]any)
			links[e.Source] = byPred
		}
		byPred[e.Predicate] = append(byPred[e.Predicate], map[string]any{ldID: e.Target})
	}

	items := make([]any, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		item := make(map[string]any, len(n.Properties)+2)
		for k, v := range n.Properties {
			item[k] = v
		}
		for pred, refs := range links[n.ID] {
			if len(refs) == 1 {
				item[pred] = refs[0]
			} else {
				item[pred] = refs
			}
		}
		item[ldID] = n.ID
		item[ldType] = n.Type
		items = append(items, item)
	}

	return Document{ldContext: x.db.ldCtx, ldGraph: items}, nil
}
