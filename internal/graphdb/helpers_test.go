// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package graphdb_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sigil-dev/graphdl/internal/graphdb"
	"github.com/sigil-dev/graphdl/internal/store"
	"github.com/sigil-dev/graphdl/internal/store/memory"
	"github.com/sigil-dev/graphdl/internal/thing"
	"github.com/stretchr/testify/require"
)

var errDiskFull = errors.New("disk full")

func openTestDB(t *testing.T, backend store.Backend) *graphdb.DB {
	t.Helper()
	if backend == nil {
		backend = memory.New()
	}
	db, err := graphdb.Open(context.Background(), backend, graphdb.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustCreate(t *testing.T, db *graphdb.DB, typ string, data map[string]any) thing.Thing {
	t.Helper()
	e, err := db.Entities().Create(context.Background(), typ, data)
	require.NoError(t, err)
	return e
}

func mustRelate(t *testing.T, db *graphdb.DB, s, p, o string) thing.Triple {
	t.Helper()
	tr, err := db.Relationships().Create(context.Background(), s, p, o, nil)
	require.NoError(t, err)
	return tr
}

func ids(things []thing.Thing) []string {
	out := make([]string, len(things))
	for i, t := range things {
		out[i] = t.ID
	}
	return out
}

// faultyBackend forwards to a memory backend without exposing its atomic
// apply, and can fail or block writes to chosen keys.
type faultyBackend struct {
	inner *memory.Backend

	mu       sync.Mutex
	failKey  func(key string) bool
	blockPut chan struct{}
	entered  chan struct{}
}

func newFaultyBackend() *faultyBackend {
	return &faultyBackend{inner: memory.New()}
}

func (f *faultyBackend) failWhen(fn func(key string) bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failKey = fn
}

// blockPuts makes Put wait until release is closed or ctx ends. entered
// receives a value each time a Put starts waiting.
func (f *faultyBackend) blockPuts(release chan struct{}) <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blockPut = release
	f.entered = make(chan struct{}, 16)
	return f.entered
}

func (f *faultyBackend) check(ctx context.Context, key string, write bool) error {
	f.mu.Lock()
	fail, block, entered := f.failKey, f.blockPut, f.entered
	f.mu.Unlock()

	if fail != nil && fail(key) {
		return errDiskFull
	}
	if write && block != nil {
		entered <- struct{}{}
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *faultyBackend) Get(ctx context.Context, key string) ([]byte, error) {
	return f.inner.Get(ctx, key)
}

func (f *faultyBackend) Put(ctx context.Context, key string, value []byte) error {
	if err := f.check(ctx, key, true); err != nil {
		return err
	}
	return f.inner.Put(ctx, key, value)
}

func (f *faultyBackend) Delete(ctx context.Context, key string) error {
	if err := f.check(ctx, key, false); err != nil {
		return err
	}
	return f.inner.Delete(ctx, key)
}

func (f *faultyBackend) Scan(ctx context.Context, prefix string) ([]store.Entry, error) {
	return f.inner.Scan(ctx, prefix)
}

func (f *faultyBackend) Close() error { return f.inner.Close() }

func (f *faultyBackend) keys(t *testing.T, prefix string) []string {
	t.Helper()
	entries, err := f.inner.Scan(context.Background(), prefix)
	require.NoError(t, err)
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out
}

func isTripleKey(key string) bool { return strings.HasPrefix(key, "triples/") }

func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}
