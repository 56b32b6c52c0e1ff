// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package graphdb_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sigil-dev/graphdl/internal/graphdb"
	"github.com/sigil-dev/graphdl/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedGraph(t *testing.T, db *graphdb.DB) {
	t.Helper()
	mustCreate(t, db, "Person", map[string]any{"id": "alice", "name": "Alice"})
	mustCreate(t, db, "Person", map[string]any{"id": "bob", "name": "Bob"})
	mustCreate(t, db, "Organization", map[string]any{"id": "acme", "name": "Acme"})
	mustRelate(t, db, "alice", "worksFor", "acme")
	mustRelate(t, db, "bob", "worksFor", "acme")
	mustRelate(t, db, "alice", "knows", "bob")
	_, err := db.Relationships().Create(context.Background(), "bob", "knows", "alice", map[string]any{"since": "2019"})
	require.NoError(t, err)
	mustRelate(t, db, "alice", "knows", "acme")
}

func TestExporter_ToGraph(t *testing.T) {
	db := openTestDB(t, nil)
	seedGraph(t, db)

	g, err := db.Exporter().ToGraph(context.Background())
	require.NoError(t, err)

	require.Len(t, g.Nodes, 3)
	assert.Equal(t, "acme", g.Nodes[0].ID)
	assert.Equal(t, "Organization", g.Nodes[0].Type)
	assert.Equal(t, map[string]any{"name": "Acme"}, g.Nodes[0].Properties)

	require.Len(t, g.Edges, 5)
	assert.Equal(t, graphdb.Edge{Source: "alice", Target: "acme", Predicate: "worksFor"}, g.Edges[0])
	assert.Equal(t, map[string]any{"since": "2019"}, g.Edges[3].Properties)
}

func TestExporter_ToGraphEmpty(t *testing.T) {
	db := openTestDB(t, nil)
	g, err := db.Exporter().ToGraph(context.Background())
	require.NoError(t, err)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)

	b, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, string(b))
}

func TestExporter_ToLinkedData(t *testing.T) {
	db := openTestDB(t, nil)
	seedGraph(t, db)

	doc, err := db.Exporter().ToLinkedData(context.Background())
	require.NoError(t, err)

	b, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"@context": "https://schema.org",
		"@graph": [
			{"@id": "acme", "@type": "Organization", "name": "Acme"},
			{"@id": "alice", "@type": "Person", "name": "Alice",
			 "worksFor": {"@id": "acme"},
			 "knows": [{"@id": "bob"}, {"@id": "acme"}]},
			{"@id": "bob", "@type": "Person", "name": "Bob",
			 "worksFor": {"@id": "acme"},
			 "knows": {"@id": "alice"}}
		]
	}`, string(b))
}

func TestExporter_LinkedDataContextOption(t *testing.T) {
	db, err := graphdb.Open(context.Background(), memory.New(), graphdb.Options{LinkedDataContext: "https://example.org/vocab"})
	require.NoError(t, err)

	doc, err := db.Exporter().ToLinkedData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/vocab", doc["@context"])
	assert.Equal(t, []any{}, doc["@graph"])
}
