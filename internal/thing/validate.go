// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package thing

import (
	"fmt"
	"strings"
	"unicode"

	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

// Violation describes one failed shape check.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return v.Field + ": " + v.Message
}

// Validate checks the reserved header of an entity. It does not look at
// schema-specific fields. An empty result means the entity is well formed.
func Validate(t Thing) []Violation {
	var out []Violation
	if msg := checkID(t.ID); msg != "" {
		out = append(out, Violation{Field: FieldID, Message: msg})
	}
	if strings.TrimSpace(t.Type) == "" {
		out = append(out, Violation{Field: FieldType, Message: "must be a non-empty string"})
	}
	for k := range t.Data {
		if IsReserved(k) {
			out = append(out, Violation{Field: k, Message: "reserved field must not appear in data"})
		}
	}
	return out
}

// ValidateID checks a caller-supplied identifier value, which may be of any
// type when it arrives inside a data map.
func ValidateID(v any) []Violation {
	id, ok := v.(string)
	if !ok {
		return []Violation{{Field: FieldID, Message: fmt.Sprintf("must be a string, got %T", v)}}
	}
	if msg := checkID(id); msg != "" {
		return []Violation{{Field: FieldID, Message: msg}}
	}
	return nil
}

func checkID(id string) string {
	if strings.TrimSpace(id) == "" {
		return "must be a non-empty string"
	}
	if strings.TrimSpace(id) != id {
		return "must not have leading or trailing whitespace"
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return "must not contain control characters"
		}
	}
	return ""
}

// ViolationError turns violations into a validation error carrying the
// violation list as a structured field.
func ViolationError(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	msgs := make([]string, len(violations))
	for i, v := range violations {
		msgs[i] = v.String()
	}
	return graphdlerr.New(graphdlerr.CodeStoreEntityInvalid,
		"invalid entity: "+strings.Join(msgs, "; "),
		graphdlerr.Field("violations", violations),
	)
}
