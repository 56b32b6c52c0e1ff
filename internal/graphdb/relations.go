// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package graphdb

import (
	"context"
	"strings"

	"github.com/sigil-dev/graphdl/internal/store"
	"github.com/sigil-dev/graphdl/internal/thing"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

// Direction selects which edges GetRelated follows.
type Direction string

const (
	Outgoing Direction = "outgoing"
	Incoming Direction = "incoming"
	Both     Direction = "both"
)

// RelationshipIndex is CRUD over directed, labeled edges between entities.
type RelationshipIndex struct {
	db *DB
}

// Create adds the triple (subject, predicate, object). Both endpoints must
// exist. Creating a triple that already exists returns the stored one
// unchanged, metadata included.
func (r *RelationshipIndex) Create(ctx context.Context, subject, predicate, object string, metadata map[string]any) (thing.Triple, error) {
	ctx, cancel := r.db.opContext(ctx)
	defer cancel()

	if err := validateTriple(subject, predicate, object); err != nil {
		return thing.Triple{}, err
	}

	if err := r.db.lock.Lock(ctx); err != nil {
		return thing.Triple{}, err
	}
	defer r.db.lock.Unlock()

	for _, id := range []string{subject, object} {
		if _, ok := r.db.entities[id]; !ok {
			return thing.Triple{}, graphdlerr.New(graphdlerr.CodeStoreRelationshipEndpointAbsent,
				"relationship endpoint "+id+" not found",
				graphdlerr.FieldEntityID(id), graphdlerr.FieldPredicate(predicate))
		}
	}

	t := thing.Triple{Subject: subject, Predicate: predicate, Object: object, Metadata: thing.CloneMap(metadata)}
	if seq, ok := r.db.edges.lookup(t.Key()); ok {
		return r.db.edges.get(seq).Clone(), nil
	}

	seq := r.db.edges.nextSeq
	stored, value, err := encodeTriple(seq, t)
	if err != nil {
		return thing.Triple{}, err
	}
	if err := r.db.apply(ctx, []store.Mutation{store.PutMutation(tripleKey(seq), value)}); err != nil {
		return thing.Triple{}, err
	}
	r.db.edges.insert(seq, stored)
	return stored.Clone(), nil
}

// Query returns the triples matching f in insertion order.
func (r *RelationshipIndex) Query(ctx context.Context, f Filter) ([]thing.Triple, error) {
	ctx, cancel := r.db.opContext(ctx)
	defer cancel()
	if err := r.db.lock.RLock(ctx); err != nil {
		return nil, err
	}
	defer r.db.lock.RUnlock()

	return r.db.triplesLocked(r.db.edges.match(f)), nil
}

// Count returns the number of triples matching f.
func (r *RelationshipIndex) Count(ctx context.Context, f Filter) (int, error) {
	ctx, cancel := r.db.opContext(ctx)
	defer cancel()
	if err := r.db.lock.RLock(ctx); err != nil {
		return 0, err
	}
	defer r.db.lock.RUnlock()

	if f.IsEmpty() {
		return r.db.edges.len(), nil
	}
	return len(r.db.edges.match(f)), nil
}

// DeleteWhere removes every triple matching f and returns how many were
// removed. An empty filter is rejected.
func (r *RelationshipIndex) DeleteWhere(ctx context.Context, f Filter) (int, error) {
	ctx, cancel := r.db.opContext(ctx)
	defer cancel()
	if f.IsEmpty() {
		return 0, graphdlerr.New(graphdlerr.CodeStoreRelationshipInvalid,
			"delete filter must name a subject, predicate or object")
	}

	if err := r.db.lock.Lock(ctx); err != nil {
		return 0, err
	}
	defer r.db.lock.Unlock()

	seqs := r.db.edges.match(f)
	if len(seqs) == 0 {
		return 0, nil
	}
	muts := make([]store.Mutation, len(seqs))
	for i, seq := range seqs {
		muts[i] = store.DeleteMutation(tripleKey(seq))
	}
	if err := r.db.apply(ctx, muts); err != nil {
		return 0, err
	}
	for _, seq := range seqs {
		r.db.edges.remove(seq)
	}
	return len(seqs), nil
}

// GetRelated returns the entities at the other end of id's edges, in edge
// insertion order with duplicates collapsed to their first occurrence.
// An empty predicate follows every edge; an empty direction is Outgoing.
// Endpoints that no longer resolve are skipped.
func (r *RelationshipIndex) GetRelated(ctx context.Context, id, predicate string, dir Direction) ([]thing.Thing, error) {
	ctx, cancel := r.db.opContext(ctx)
	defer cancel()

	if dir == "" {
		dir = Outgoing
	}
	if dir != Outgoing && dir != Incoming && dir != Both {
		return nil, graphdlerr.New(graphdlerr.CodeStoreQueryInvalid,
			"direction must be outgoing, incoming or both",
			graphdlerr.Field("direction", string(dir)))
	}

	if err := r.db.lock.RLock(ctx); err != nil {
		return nil, err
	}
	defer r.db.lock.RUnlock()

	var seqs []uint64
	switch dir {
	case Outgoing:
		seqs = r.db.edges.match(Filter{Subject: id, Predicate: predicate})
	case Incoming:
		seqs = r.db.edges.match(Filter{Object: id, Predicate: predicate})
	case Both:
		seqs = mergeSeqs(
			r.db.edges.match(Filter{Subject: id, Predicate: predicate}),
			r.db.edges.match(Filter{Object: id, Predicate: predicate}),
		)
	}

	seen := make(map[string]struct{}, len(seqs))
	out := make([]thing.Thing, 0, len(seqs))
	for _, seq := range seqs {
		t := r.db.edges.get(seq)
		other := t.Object
		if t.Object == id && (dir == Incoming || t.Subject != id) {
			other = t.Subject
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		if e, ok := r.db.entities[other]; ok {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (db *DB) triplesLocked(seqs []uint64) []thing.Triple {
	out := make([]thing.Triple, len(seqs))
	for i, seq := range seqs {
		out[i] = db.edges.get(seq).Clone()
	}
	return out
}

func validateTriple(subject, predicate, object string) error {
	for _, part := range []struct{ name, value string }{
		{"subject", subject},
		{"predicate", predicate},
		{"object", object},
	} {
		if strings.TrimSpace(part.value) == "" {
			return graphdlerr.New(graphdlerr.CodeStoreRelationshipInvalid,
				part.name+" must be a non-empty string", graphdlerr.Field("field", part.name))
		}
	}
	return nil
}

// mergeSeqs merges two ascending sequence lists, dropping duplicates.
func mergeSeqs(a, b []uint64) []uint64 {
	out := make([]uint64, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j == len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i == len(a) || b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
