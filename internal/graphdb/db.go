// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package graphdb is the entity and relationship store. A DB keeps the
// authoritative entity map and relationship indexes in memory and writes
// every mutation through to a store.Backend before it becomes visible.
package graphdb

import (
	"context"
	"log/slog"
	"time"

	"github.com/sigil-dev/graphdl/internal/store"
	"github.com/sigil-dev/graphdl/internal/thing"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

// DefaultLinkedDataContext is the "@context" of exported linked-data documents.
const DefaultLinkedDataContext = "https://schema.org"

// Options configures a DB. The zero value is usable.
type Options struct {
	Logger *slog.Logger

	// OperationTimeout bounds each operation whose context has no deadline.
	// Zero disables it.
	OperationTimeout time.Duration

	IDGenerator       *thing.IDGenerator
	LinkedDataContext string
	Clock             func() time.Time
}

// DB is a handle on one store. It is safe for concurrent use.
type DB struct {
	backend store.Backend
	logger  *slog.Logger
	ids     *thing.IDGenerator
	now     func() time.Time
	timeout time.Duration
	ldCtx   string

	lock     *rwLock
	entities map[string]thing.Thing
	edges    *edgeIndex

	entityStore   *EntityStore
	relationships *RelationshipIndex
	query         *QueryEngine
	batch         *BatchCoordinator
	exporter      *Exporter
}

// Open loads the state persisted in backend and returns a DB that owns it.
// Records that cannot be decoded, relationships whose endpoints are
// missing and duplicates are skipped with a warning and deleted from the
// backend.
func Open(ctx context.Context, backend store.Backend, opts Options) (*DB, error) {
	if backend == nil {
		return nil, graphdlerr.New(graphdlerr.CodeStoreBackendFailure, "backend is required")
	}

	db := &DB{
		backend:  backend,
		logger:   opts.Logger,
		ids:      opts.IDGenerator,
		now:      opts.Clock,
		timeout:  opts.OperationTimeout,
		ldCtx:    opts.LinkedDataContext,
		lock:     newRWLock(),
		entities: make(map[string]thing.Thing),
		edges:    newEdgeIndex(),
	}
	if db.logger == nil {
		db.logger = slog.Default()
	}
	if db.ids == nil {
		db.ids = thing.NewIDGenerator(nil)
	}
	if db.now == nil {
		db.now = time.Now
	}
	if db.ldCtx == "" {
		db.ldCtx = DefaultLinkedDataContext
	}

	db.entityStore = &EntityStore{db: db}
	db.relationships = &RelationshipIndex{db: db}
	db.query = &QueryEngine{db: db}
	db.batch = &BatchCoordinator{db: db}
	db.exporter = &Exporter{db: db}

	if err := db.load(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *DB) load(ctx context.Context) error {
	// Skipped records are purged so they cannot resurface on a later Open.
	var stale []store.Mutation
	skip := func(key, msg string, attrs ...any) {
		db.logger.Warn(msg, append([]any{slog.String("key", key)}, attrs...)...)
		stale = append(stale, store.DeleteMutation(key))
	}

	things, err := db.backend.Scan(ctx, thingPrefix)
	if err != nil {
		return graphdlerr.Backend(err, "scanning entities")
	}
	for _, e := range things {
		t, err := decodeThing(e.Value)
		if err == nil && len(thing.Validate(t)) > 0 {
			err = graphdlerr.New(graphdlerr.CodeStoreEntityInvalid, "malformed entity record")
		}
		if err != nil {
			skip(e.Key, "skipping unreadable entity record", slog.String("error", err.Error()))
			continue
		}
		if e.Key != thingKey(t.ID) {
			skip(e.Key, "skipping misplaced entity record", slog.String("entity_id", t.ID))
			continue
		}
		db.entities[t.ID] = t
	}

	triples, err := db.backend.Scan(ctx, triplePrefix)
	if err != nil {
		return graphdlerr.Backend(err, "scanning relationships")
	}
	for _, e := range triples {
		seq, t, err := decodeTriple(e.Value)
		if err != nil || seq == 0 || !tripleValid(t) {
			skip(e.Key, "skipping unreadable relationship record")
			continue
		}
		if e.Key != tripleKey(seq) {
			skip(e.Key, "skipping misplaced relationship record", slog.Uint64("seq", seq))
			continue
		}
		if _, ok := db.entities[t.Subject]; !ok {
			skip(e.Key, "skipping dangling relationship", slog.String("entity_id", t.Subject))
			continue
		}
		if _, ok := db.entities[t.Object]; !ok {
			skip(e.Key, "skipping dangling relationship", slog.String("entity_id", t.Object))
			continue
		}
		if _, dup := db.edges.lookup(t.Key()); dup {
			skip(e.Key, "skipping duplicate relationship")
			continue
		}
		db.edges.insert(seq, t)
	}

	if len(stale) > 0 {
		if err := db.apply(ctx, stale); err != nil {
			return graphdlerr.Backend(err, "purging %d skipped records", len(stale))
		}
		db.logger.Warn("purged skipped records", slog.Int("count", len(stale)))
	}

	db.logger.Debug("graph loaded",
		slog.Int("entities", len(db.entities)),
		slog.Int("relationships", db.edges.len()),
	)
	return nil
}

// Close closes the backend.
func (db *DB) Close() error {
	return db.backend.Close()
}

func (db *DB) Entities() *EntityStore            { return db.entityStore }
func (db *DB) Relationships() *RelationshipIndex { return db.relationships }
func (db *DB) Query() *QueryEngine               { return db.query }
func (db *DB) Batch() *BatchCoordinator          { return db.batch }
func (db *DB) Exporter() *Exporter               { return db.exporter }

// Stats summarises the contents of the store.
type Stats struct {
	Entities      int            `json:"entities" yaml:"entities"`
	Relationships int            `json:"relationships" yaml:"relationships"`
	Types         map[string]int `json:"types" yaml:"types"`
	Predicates    map[string]int `json:"predicates" yaml:"predicates"`
}

func (db *DB) Stats(ctx context.Context) (Stats, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	if err := db.lock.RLock(ctx); err != nil {
		return Stats{}, err
	}
	defer db.lock.RUnlock()

	s := Stats{
		Entities:      len(db.entities),
		Relationships: db.edges.len(),
		Types:         db.typeCountsLocked(),
		Predicates:    make(map[string]int, len(db.edges.byPredicate)),
	}
	for p, seqs := range db.edges.byPredicate {
		s.Predicates[p] = len(seqs)
	}
	return s, nil
}

// opContext applies the configured operation timeout when ctx has none.
func (db *DB) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, db.timeout)
}

// apply persists muts. Callers hold the write lock and update memory only
// when it returns nil.
func (db *DB) apply(ctx context.Context, muts []store.Mutation) error {
	return store.Apply(ctx, db.backend, muts, db.logger)
}

func (db *DB) typeCountsLocked() map[string]int {
	out := make(map[string]int)
	for _, t := range db.entities {
		out[t.Type]++
	}
	return out
}
