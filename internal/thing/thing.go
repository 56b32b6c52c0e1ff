// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package thing

import (
	"encoding/json"
	"time"
)

// Reserved and system field names. Reserved fields form the record header;
// system fields are maintained by the store. Neither is ever stored in Data.
const (
	FieldID        = "id"
	FieldType      = "type"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// IsReserved reports whether key is a header or system field that callers
// cannot write through the data map.
func IsReserved(key string) bool {
	switch key {
	case FieldID, FieldType, FieldCreatedAt, FieldUpdatedAt:
		return true
	default:
		return false
	}
}

// Thing is a uniquely identified, typed record of arbitrary fields.
// ID and Type form the fixed header; Data holds everything else.
type Thing struct {
	ID        string
	Type      string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Get returns a field value. Header fields are addressable by name.
func (t Thing) Get(field string) (any, bool) {
	switch field {
	case FieldID:
		return t.ID, true
	case FieldType:
		return t.Type, true
	case FieldCreatedAt:
		return t.CreatedAt, !t.CreatedAt.IsZero()
	case FieldUpdatedAt:
		return t.UpdatedAt, !t.UpdatedAt.IsZero()
	}
	v, ok := t.Data[field]
	return v, ok
}

// Clone returns a deep copy so callers never share maps with the store.
func (t Thing) Clone() Thing {
	t.Data = CloneMap(t.Data)
	return t
}

// Map flattens the record into its wire shape: {id, type, ...fields}.
func (t Thing) Map() map[string]any {
	out := make(map[string]any, len(t.Data)+4)
	for k, v := range t.Data {
		out[k] = CloneValue(v)
	}
	out[FieldID] = t.ID
	out[FieldType] = t.Type
	if !t.CreatedAt.IsZero() {
		out[FieldCreatedAt] = t.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !t.UpdatedAt.IsZero() {
		out[FieldUpdatedAt] = t.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return out
}

// MarshalJSON writes the flat wire shape.
func (t Thing) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Map())
}

// UnmarshalJSON reads the flat wire shape. Unknown keys land in Data.
func (t *Thing) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*t = FromMap(raw)
	return nil
}

// FromMap splits a flat map into header and data. Header values of the
// wrong type are left empty so Validate can report them.
func FromMap(raw map[string]any) Thing {
	var t Thing
	if id, ok := raw[FieldID].(string); ok {
		t.ID = id
	}
	if typ, ok := raw[FieldType].(string); ok {
		t.Type = typ
	}
	if s, ok := raw[FieldCreatedAt].(string); ok {
		t.CreatedAt, _ = time.Parse(time.RFC3339Nano, s)
	}
	if s, ok := raw[FieldUpdatedAt].(string); ok {
		t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, s)
	}
	for k, v := range raw {
		if IsReserved(k) {
			continue
		}
		if t.Data == nil {
			t.Data = make(map[string]any, len(raw))
		}
		t.Data[k] = v
	}
	return t
}

// Triple is a directed, labeled edge between two entity identifiers.
type Triple struct {
	Subject   string         `json:"subject" yaml:"subject"`
	Predicate string         `json:"predicate" yaml:"predicate"`
	Object    string         `json:"object" yaml:"object"`
	Metadata  map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Clone returns a deep copy of the triple.
func (t Triple) Clone() Triple {
	t.Metadata = CloneMap(t.Metadata)
	return t
}

// Key identifies a triple by its (subject, predicate, object) combination.
type Key struct {
	Subject   string
	Predicate string
	Object    string
}

// Key returns the uniqueness key of the triple.
func (t Triple) Key() Key {
	return Key{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object}
}
