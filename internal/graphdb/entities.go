// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package graphdb

import (
	"context"
	"log/slog"

	"github.com/sigil-dev/graphdl/internal/store"
	"github.com/sigil-dev/graphdl/internal/thing"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

// EntityStore is typed CRUD over entities keyed by id.
type EntityStore struct {
	db *DB
}

// Create stores a new entity. An "id" in data is used as the identifier,
// otherwise one is generated from the type. The type argument wins over a
// "type" key in data. Other reserved keys in data are ignored.
func (s *EntityStore) Create(ctx context.Context, typ string, data map[string]any) (thing.Thing, error) {
	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	typ = thing.NormalizeType(typ)
	if typ == "" {
		if raw, ok := data[thing.FieldType].(string); ok {
			typ = thing.NormalizeType(raw)
		}
	}
	if typ == "" {
		return thing.Thing{}, thing.ViolationError([]thing.Violation{
			{Field: thing.FieldType, Message: "must be a non-empty string"},
		})
	}

	var id string
	if raw, ok := data[thing.FieldID]; ok {
		if v := thing.ValidateID(raw); len(v) > 0 {
			return thing.Thing{}, thing.ViolationError(v)
		}
		id = raw.(string)
	}

	if err := s.db.lock.Lock(ctx); err != nil {
		return thing.Thing{}, err
	}
	defer s.db.lock.Unlock()

	if id == "" {
		id = s.db.ids.Generate(typ)
	}
	if _, exists := s.db.entities[id]; exists {
		return thing.Thing{}, graphdlerr.New(graphdlerr.CodeStoreEntityConflict,
			"entity "+id+" already exists", graphdlerr.FieldEntityID(id))
	}

	now := s.db.now().UTC()
	t := thing.Thing{
		ID:        id,
		Type:      typ,
		Data:      withoutReserved(data),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if v := thing.Validate(t); len(v) > 0 {
		return thing.Thing{}, thing.ViolationError(v)
	}

	stored, value, err := encodeThing(t)
	if err != nil {
		return thing.Thing{}, err
	}
	if err := s.db.apply(ctx, []store.Mutation{store.PutMutation(thingKey(id), value)}); err != nil {
		return thing.Thing{}, err
	}
	s.db.entities[id] = stored
	return stored.Clone(), nil
}

// Get returns the entity with id.
func (s *EntityStore) Get(ctx context.Context, id string) (thing.Thing, error) {
	ctx, cancel := s.db.opContext(ctx)
	defer cancel()
	if err := s.db.lock.RLock(ctx); err != nil {
		return thing.Thing{}, err
	}
	defer s.db.lock.RUnlock()

	t, ok := s.db.entities[id]
	if !ok {
		return thing.Thing{}, notFound(id)
	}
	return t.Clone(), nil
}

// Update merges partial into the entity. Reserved and system keys are
// dropped; a nil value removes the field.
func (s *EntityStore) Update(ctx context.Context, id string, partial map[string]any) (thing.Thing, error) {
	ctx, cancel := s.db.opContext(ctx)
	defer cancel()
	if err := s.db.lock.Lock(ctx); err != nil {
		return thing.Thing{}, err
	}
	defer s.db.lock.Unlock()

	current, ok := s.db.entities[id]
	if !ok {
		return thing.Thing{}, notFound(id)
	}

	next := current.Clone()
	if next.Data == nil {
		next.Data = make(map[string]any, len(partial))
	}
	for k, v := range partial {
		switch {
		case thing.IsReserved(k):
		case v == nil:
			delete(next.Data, k)
		default:
			next.Data[k] = thing.CloneValue(v)
		}
	}
	if len(next.Data) == 0 {
		next.Data = nil
	}
	next.UpdatedAt = s.db.now().UTC()

	stored, value, err := encodeThing(next)
	if err != nil {
		return thing.Thing{}, err
	}
	if err := s.db.apply(ctx, []store.Mutation{store.PutMutation(thingKey(id), value)}); err != nil {
		return thing.Thing{}, err
	}
	s.db.entities[id] = stored
	return stored.Clone(), nil
}

// Delete removes the entity and every relationship naming it as subject or
// object. It reports false when the entity does not exist.
func (s *EntityStore) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := s.db.opContext(ctx)
	defer cancel()
	if err := s.db.lock.Lock(ctx); err != nil {
		return false, err
	}
	defer s.db.lock.Unlock()

	return s.db.deleteEntityLocked(ctx, id)
}

// deleteEntityLocked is the cascade: the entity record and all its edges are
// written as one backend mutation, then dropped from memory together.
func (db *DB) deleteEntityLocked(ctx context.Context, id string) (bool, error) {
	if _, ok := db.entities[id]; !ok {
		return false, nil
	}

	outgoing := db.edges.match(Filter{Subject: id})
	incoming := db.edges.match(Filter{Object: id})
	seqs := make(map[uint64]struct{}, len(outgoing)+len(incoming))
	muts := []store.Mutation{store.DeleteMutation(thingKey(id))}
	for _, group := range [][]uint64{outgoing, incoming} {
		for _, seq := range group {
			if _, dup := seqs[seq]; dup {
				continue
			}
			seqs[seq] = struct{}{}
			muts = append(muts, store.DeleteMutation(tripleKey(seq)))
		}
	}

	if err := db.apply(ctx, muts); err != nil {
		return false, err
	}

	delete(db.entities, id)
	for seq := range seqs {
		db.edges.remove(seq)
	}
	db.logger.Debug("entity deleted",
		slog.String("entity_id", id),
		slog.Int("relationships_removed", len(seqs)),
	)
	return true, nil
}

// Exists reports whether an entity with id is stored.
func (s *EntityStore) Exists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := s.db.opContext(ctx)
	defer cancel()
	if err := s.db.lock.RLock(ctx); err != nil {
		return false, err
	}
	defer s.db.lock.RUnlock()

	_, ok := s.db.entities[id]
	return ok, nil
}

// Count returns the number of entities of typ, or of all entities when typ
// is empty.
func (s *EntityStore) Count(ctx context.Context, typ string) (int, error) {
	ctx, cancel := s.db.opContext(ctx)
	defer cancel()
	if err := s.db.lock.RLock(ctx); err != nil {
		return 0, err
	}
	defer s.db.lock.RUnlock()

	typ = thing.NormalizeType(typ)
	if typ == "" {
		return len(s.db.entities), nil
	}
	n := 0
	for _, t := range s.db.entities {
		if t.Type == typ {
			n++
		}
	}
	return n, nil
}

// Types returns the entity count per type tag in use.
func (s *EntityStore) Types(ctx context.Context) (map[string]int, error) {
	ctx, cancel := s.db.opContext(ctx)
	defer cancel()
	if err := s.db.lock.RLock(ctx); err != nil {
		return nil, err
	}
	defer s.db.lock.RUnlock()

	return s.db.typeCountsLocked(), nil
}

func notFound(id string) error {
	return graphdlerr.New(graphdlerr.CodeStoreEntityNotFound,
		"entity "+id+" not found", graphdlerr.FieldEntityID(id))
}

func withoutReserved(data map[string]any) map[string]any {
	var out map[string]any
	for k, v := range data {
		if thing.IsReserved(k) {
			continue
		}
		if out == nil {
			out = make(map[string]any, len(data))
		}
		out[k] = thing.CloneValue(v)
	}
	return out
}
