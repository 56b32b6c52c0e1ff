// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sigil-dev/graphdl/internal/store"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

func init() {
	store.RegisterBackend("memory", func(_ string) (store.Backend, error) {
		return New(), nil
	})
}

// Compile-time interface checks.
var (
	_ store.Backend = (*Backend)(nil)
	_ store.Atomic  = (*Backend)(nil)
)

// Backend is an in-process store.Backend. Values are copied on the way in and
// out so callers never alias stored bytes.
type Backend struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// New creates an empty memory backend.
func New() *Backend {
	return &Backend{data: make(map[string][]byte)}
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := graphdlerr.FromContext(ctx, "memory get"); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	v, ok := b.data[key]
	if !ok {
		return nil, store.KeyNotFound(key)
	}
	return cloneBytes(v), nil
}

func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	return b.ApplyAtomic(ctx, []store.Mutation{store.PutMutation(key, value)})
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	return b.ApplyAtomic(ctx, []store.Mutation{store.DeleteMutation(key)})
}

// Scan returns entries under prefix sorted by key.
func (b *Backend) Scan(ctx context.Context, prefix string) ([]store.Entry, error) {
	if err := graphdlerr.FromContext(ctx, "memory scan"); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	var out []store.Entry
	for k, v := range b.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, store.Entry{Key: k, Value: cloneBytes(v)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// ApplyAtomic applies all mutations under one write lock.
func (b *Backend) ApplyAtomic(ctx context.Context, muts []store.Mutation) error {
	if err := graphdlerr.FromContext(ctx, "memory apply"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return err
	}
	for _, m := range muts {
		if m.Delete {
			delete(b.data, m.Key)
			continue
		}
		b.data[m.Key] = cloneBytes(m.Value)
	}
	return nil
}

// Len reports the number of stored keys.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Close marks the backend closed; later calls fail.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *Backend) checkOpen() error {
	if b.closed {
		return graphdlerr.New(graphdlerr.CodeStoreBackendFailure, "memory backend is closed")
	}
	return nil
}

func cloneBytes(v []byte) []byte {
	if v == nil {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}
