// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import "context"

// Backend is the persistence contract the graph store is written against:
// single-key reads and writes plus an ordered prefix scan. Implementations
// need not offer multi-key transactions.
type Backend interface {
	// Get returns the value stored at key, or an error for which
	// graphdlerr.IsNotFound reports true when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value at key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Scan returns every entry whose key starts with prefix, ordered by key.
	Scan(ctx context.Context, prefix string) ([]Entry, error)

	Close() error
}

// Atomic is implemented by backends that can apply several mutations as one
// unit. Apply uses it when available.
type Atomic interface {
	ApplyAtomic(ctx context.Context, muts []Mutation) error
}

// Entry is a key/value pair returned by Scan.
type Entry struct {
	Key   string
	Value []byte
}

// Mutation is a single write: a Put of Value, or a Delete when Delete is set.
type Mutation struct {
	Key    string
	Value  []byte
	Delete bool
}

// PutMutation builds a put.
func PutMutation(key string, value []byte) Mutation {
	return Mutation{Key: key, Value: value}
}

// DeleteMutation builds a delete.
func DeleteMutation(key string) Mutation {
	return Mutation{Key: key, Delete: true}
}
