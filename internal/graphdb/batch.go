// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package graphdb

import (
	"context"
	"log/slog"

	"github.com/sigil-dev/graphdl/internal/thing"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

// CreateInput is one item of a batch create.
type CreateInput struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// UpdateInput is one item of a batch update.
type UpdateInput struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// TripleInput is one item of a batch relate.
type TripleInput struct {
	Subject   string         `json:"subject"`
	Predicate string         `json:"predicate"`
	Object    string         `json:"object"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ItemResult reports the outcome of one batch item. Index is the item's
// position in the input.
type ItemResult struct {
	Index   int           `json:"index"`
	Success bool          `json:"success"`
	Entity  *thing.Thing  `json:"entity,omitempty"`
	Triple  *thing.Triple `json:"triple,omitempty"`
	Deleted bool          `json:"deleted,omitempty"`
	Err     error         `json:"-"`
	Code    string        `json:"code,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// BatchResult holds one ItemResult per input item, in input order.
type BatchResult struct {
	Items     []ItemResult `json:"items"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// Failures returns the failed items.
func (r BatchResult) Failures() []ItemResult {
	var out []ItemResult
	for _, it := range r.Items {
		if !it.Success {
			out = append(out, it)
		}
	}
	return out
}

func (r *BatchResult) add(item ItemResult, err error) {
	if err != nil {
		item.Success = false
		item.Err = err
		item.Code = string(graphdlerr.CodeOf(err))
		item.Error = err.Error()
		r.Failed++
	} else {
		item.Success = true
		r.Succeeded++
	}
	r.Items = append(r.Items, item)
}

// BatchCoordinator runs multi-item calls as a sequence of independent
// single-item operations. Each item is atomic on its own; a failure is
// reported in its result and does not undo earlier items.
type BatchCoordinator struct {
	db *DB
}

func (b *BatchCoordinator) Create(ctx context.Context, inputs []CreateInput) BatchResult {
	res := BatchResult{Items: make([]ItemResult, 0, len(inputs))}
	for i, in := range inputs {
		t, err := b.db.entityStore.Create(ctx, in.Type, in.Data)
		item := ItemResult{Index: i}
		if err == nil {
			item.Entity = &t
		}
		res.add(item, err)
	}
	b.log("create", res)
	return res
}

func (b *BatchCoordinator) Update(ctx context.Context, inputs []UpdateInput) BatchResult {
	res := BatchResult{Items: make([]ItemResult, 0, len(inputs))}
	for i, in := range inputs {
		t, err := b.db.entityStore.Update(ctx, in.ID, in.Data)
		item := ItemResult{Index: i}
		if err == nil {
			item.Entity = &t
		}
		res.add(item, err)
	}
	b.log("update", res)
	return res
}

// Delete removes each id. Deleting an id that does not exist succeeds with
// Deleted false.
func (b *BatchCoordinator) Delete(ctx context.Context, ids []string) BatchResult {
	res := BatchResult{Items: make([]ItemResult, 0, len(ids))}
	for i, id := range ids {
		deleted, err := b.db.entityStore.Delete(ctx, id)
		res.add(ItemResult{Index: i, Deleted: deleted}, err)
	}
	b.log("delete", res)
	return res
}

func (b *BatchCoordinator) Relate(ctx context.Context, inputs []TripleInput) BatchResult {
	res := BatchResult{Items: make([]ItemResult, 0, len(inputs))}
	for i, in := range inputs {
		t, err := b.db.relationships.Create(ctx, in.Subject, in.Predicate, in.Object, in.Metadata)
		item := ItemResult{Index: i}
		if err == nil {
			item.Triple = &t
		}
		res.add(item, err)
	}
	b.log("relate", res)
	return res
}

func (b *BatchCoordinator) log(op string, res BatchResult) {
	level := slog.LevelDebug
	if res.Failed > 0 {
		level = slog.LevelWarn
	}
	b.db.logger.Log(context.Background(), level, "batch finished",
		slog.String("op", op),
		slog.Int("succeeded", res.Succeeded),
		slog.Int("failed", res.Failed),
	)
}
