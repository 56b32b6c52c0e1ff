// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package graphdb

import (
	"context"
	"slices"
	"strings"

	"github.com/sigil-dev/graphdl/internal/thing"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

// SortDirection orders List results.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// OrderBy sorts by one field. Header and system fields are addressable.
type OrderBy struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction,omitempty"`
}

// ListOptions filters, sorts and pages a List call. Limit 0 means no limit.
type ListOptions struct {
	Where   map[string]any `json:"where,omitempty"`
	OrderBy *OrderBy       `json:"orderBy,omitempty"`
	Limit   int            `json:"limit,omitempty"`
	Offset  int            `json:"offset,omitempty"`
}

// ListResult is one page of entities.
type ListResult struct {
	Items   []thing.Thing `json:"items"`
	Total   int           `json:"total"`
	HasMore bool          `json:"hasMore"`
}

// Page bounds a relationship listing. Limit 0 means no limit.
type Page struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// TripleList is one page of relationships.
type TripleList struct {
	Items   []thing.Triple `json:"items"`
	Total   int            `json:"total"`
	HasMore bool           `json:"hasMore"`
}

// QueryEngine filters, sorts and paginates entity and relationship
// collections.
type QueryEngine struct {
	db *DB
}

// List returns the entities of typ (all types when empty) that match
// opts.Where exactly, sorted and paged. Ties and the default order are by id
// ascending, so paging over an unchanged store is stable.
func (q *QueryEngine) List(ctx context.Context, typ string, opts ListOptions) (ListResult, error) {
	ctx, cancel := q.db.opContext(ctx)
	defer cancel()
	if err := validateListOptions(opts); err != nil {
		return ListResult{}, err
	}
	where, err := canonicalWhere(opts.Where)
	if err != nil {
		return ListResult{}, err
	}
	typ = thing.NormalizeType(typ)

	if err := q.db.lock.RLock(ctx); err != nil {
		return ListResult{}, err
	}
	defer q.db.lock.RUnlock()

	matched := make([]thing.Thing, 0)
	for _, t := range q.db.entities {
		if typ != "" && t.Type != typ {
			continue
		}
		if !matchesWhere(t, where) {
			continue
		}
		matched = append(matched, t)
	}

	slices.SortFunc(matched, func(a, b thing.Thing) int {
		if ob := opts.OrderBy; ob != nil && ob.Field != "" {
			av, _ := a.Get(ob.Field)
			bv, _ := b.Get(ob.Field)
			c := thing.Compare(av, bv)
			if ob.Direction == Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return strings.Compare(a.ID, b.ID)
	})

	lo, hi, hasMore := pageBounds(len(matched), opts.Limit, opts.Offset)
	items := make([]thing.Thing, 0, hi-lo)
	for _, t := range matched[lo:hi] {
		items = append(items, t.Clone())
	}
	return ListResult{Items: items, Total: len(matched), HasMore: hasMore}, nil
}

// ListRelationships pages the triples matching f in insertion order.
func (q *QueryEngine) ListRelationships(ctx context.Context, f Filter, page Page) (TripleList, error) {
	ctx, cancel := q.db.opContext(ctx)
	defer cancel()
	if err := validatePage(page.Limit, page.Offset); err != nil {
		return TripleList{}, err
	}

	if err := q.db.lock.RLock(ctx); err != nil {
		return TripleList{}, err
	}
	defer q.db.lock.RUnlock()

	seqs := q.db.edges.match(f)
	lo, hi, hasMore := pageBounds(len(seqs), page.Limit, page.Offset)
	return TripleList{
		Items:   q.db.triplesLocked(seqs[lo:hi]),
		Total:   len(seqs),
		HasMore: hasMore,
	}, nil
}

func validateListOptions(opts ListOptions) error {
	if err := validatePage(opts.Limit, opts.Offset); err != nil {
		return err
	}
	for field := range opts.Where {
		if thing.IsReserved(field) {
			return graphdlerr.New(graphdlerr.CodeStoreQueryInvalid,
				"where cannot filter on reserved field "+field+"; use the type argument or Get",
				graphdlerr.Field("field", field))
		}
	}
	if ob := opts.OrderBy; ob != nil && ob.Direction != "" && ob.Direction != Asc && ob.Direction != Desc {
		return graphdlerr.New(graphdlerr.CodeStoreQueryInvalid,
			"order direction must be asc or desc",
			graphdlerr.Field("direction", string(ob.Direction)))
	}
	return nil
}

func validatePage(limit, offset int) error {
	if limit < 0 {
		return graphdlerr.New(graphdlerr.CodeStoreQueryInvalid, "limit must not be negative",
			graphdlerr.Field("limit", limit))
	}
	if offset < 0 {
		return graphdlerr.New(graphdlerr.CodeStoreQueryInvalid, "offset must not be negative",
			graphdlerr.Field("offset", offset))
	}
	return nil
}

// pageBounds returns the slice bounds of a page over total items.
func pageBounds(total, limit, offset int) (lo, hi int, hasMore bool) {
	if offset >= total {
		return total, total, false
	}
	// Compare against the remainder so offset+limit cannot overflow.
	if limit == 0 || limit >= total-offset {
		return offset, total, false
	}
	hi = offset + limit
	return offset, hi, true
}

// matchesWhere reports whether every where field equals the entity's value.
// A nil where value matches an absent field.
func matchesWhere(t thing.Thing, where map[string]any) bool {
	for field, want := range where {
		got, _ := t.Get(field)
		if !thing.Equal(got, want) {
			return false
		}
	}
	return true
}
