// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package thing

import (
	"crypto/rand"
	"io"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
)

// IDGenerator produces "<Type>/<ULID>" identifiers. The monotonic entropy
// source guarantees strictly increasing suffixes within one generator, so ids
// never collide in-process and sort by creation time.
type IDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewIDGenerator creates a generator reading randomness from r
// (crypto/rand when nil).
func NewIDGenerator(r io.Reader) *IDGenerator {
	if r == nil {
		r = rand.Reader
	}
	return &IDGenerator{
		entropy: ulid.Monotonic(r, 0),
		now:     time.Now,
	}
}

// Generate returns a new identifier namespaced by the normalized type.
func (g *IDGenerator) Generate(typ string) string {
	g.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
	g.mu.Unlock()

	prefix := NormalizeType(typ)
	if prefix == "" {
		return id.String()
	}
	return prefix + "/" + id.String()
}

var defaultGenerator = NewIDGenerator(nil)

// GenerateID returns a new identifier from the package-level generator.
func GenerateID(typ string) string {
	return defaultGenerator.Generate(typ)
}

// NormalizeType canonicalises a type tag so "person", "Person " and "Person"
// compare equal. Words separated by whitespace, '_' or '-' are joined in
// PascalCase; the casing of the remaining letters is kept.
func NormalizeType(input string) string {
	words := strings.FieldsFunc(input, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-'
	})
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(w[size:])
	}
	return b.String()
}
