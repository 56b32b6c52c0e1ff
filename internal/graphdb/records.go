// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package graphdb

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sigil-dev/graphdl/internal/thing"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

// Backend key layout.
const (
	thingPrefix  = "things/"
	triplePrefix = "triples/"
)

func thingKey(id string) string { return thingPrefix + id }

// tripleKey zero-pads the sequence so key order equals insertion order.
func tripleKey(seq uint64) string { return fmt.Sprintf("%s%020d", triplePrefix, seq) }

type thingRecord struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Data      map[string]any `json:"data,omitempty"`
}

type tripleRecord struct {
	Seq       uint64         `json:"seq"`
	Subject   string         `json:"subject"`
	Predicate string         `json:"predicate"`
	Object    string         `json:"object"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// encodeThing serialises t and returns the value as it will read back from
// the backend, so in-memory state always matches persisted state.
func encodeThing(t thing.Thing) (thing.Thing, []byte, error) {
	b, err := json.Marshal(thingRecord{
		ID:        t.ID,
		Type:      t.Type,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		Data:      t.Data,
	})
	if err != nil {
		return thing.Thing{}, nil, graphdlerr.Wrap(err, graphdlerr.CodeStoreEntityInvalid,
			"entity data is not JSON-encodable", graphdlerr.FieldEntityID(t.ID))
	}
	stored, err := decodeThing(b)
	if err != nil {
		return thing.Thing{}, nil, err
	}
	return stored, b, nil
}

func decodeThing(b []byte) (thing.Thing, error) {
	var rec thingRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return thing.Thing{}, graphdlerr.Wrapf(err, graphdlerr.CodeStoreBackendFailure, "decoding entity record")
	}
	return thing.Thing{
		ID:        rec.ID,
		Type:      rec.Type,
		Data:      rec.Data,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

func encodeTriple(seq uint64, t thing.Triple) (thing.Triple, []byte, error) {
	b, err := json.Marshal(tripleRecord{
		Seq:       seq,
		Subject:   t.Subject,
		Predicate: t.Predicate,
		Object:    t.Object,
		Metadata:  t.Metadata,
	})
	if err != nil {
		return thing.Triple{}, nil, graphdlerr.Wrap(err, graphdlerr.CodeStoreRelationshipInvalid,
			"relationship metadata is not JSON-encodable", graphdlerr.FieldPredicate(t.Predicate))
	}
	_, stored, err := decodeTriple(b)
	if err != nil {
		return thing.Triple{}, nil, err
	}
	return stored, b, nil
}

func decodeTriple(b []byte) (uint64, thing.Triple, error) {
	var rec tripleRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return 0, thing.Triple{}, graphdlerr.Wrapf(err, graphdlerr.CodeStoreBackendFailure, "decoding triple record")
	}
	return rec.Seq, thing.Triple{
		Subject:   rec.Subject,
		Predicate: rec.Predicate,
		Object:    rec.Object,
		Metadata:  rec.Metadata,
	}, nil
}

// tripleValid reports whether a decoded triple has all three parts.
func tripleValid(t thing.Triple) bool {
	return strings.TrimSpace(t.Subject) != "" &&
		strings.TrimSpace(t.Predicate) != "" &&
		strings.TrimSpace(t.Object) != ""
}

// canonicalWhere gives filter values the shape stored data has after the
// JSON round trip, so []string{"a"} matches a stored []any{"a"}.
func canonicalWhere(where map[string]any) (map[string]any, error) {
	if len(where) == 0 {
		return where, nil
	}
	b, err := json.Marshal(where)
	if err != nil {
		return nil, graphdlerr.Wrap(err, graphdlerr.CodeStoreQueryInvalid, "where values are not JSON-encodable")
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, graphdlerr.Wrap(err, graphdlerr.CodeStoreQueryInvalid, "decoding where values")
	}
	return out, nil
}
