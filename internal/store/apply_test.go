// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/sigil-dev/graphdl/internal/store"
	"github.com/sigil-dev/graphdl/internal/store/memory"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is a non-atomic backend that can be told to fail a given key.
type fakeBackend struct {
	mu     sync.Mutex
	data   map[string][]byte
	failOn string
	puts   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: map[string][]byte{}}
}

func (f *fakeBackend) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, store.KeyNotFound(key)
	}
	return v, nil
}

func (f *fakeBackend) Put(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key == f.failOn {
		return errors.New("disk full")
	}
	f.puts++
	f.data[key] = value
	return nil
}

func (f *fakeBackend) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key == f.failOn {
		return errors.New("disk full")
	}
	delete(f.data, key)
	return nil
}

func (f *fakeBackend) Scan(_ context.Context, prefix string) ([]store.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Entry
	for k, v := range f.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, store.Entry{Key: k, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeBackend) Close() error { return nil }

func TestApply_Sequential(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend()
	b.data["old"] = []byte("x")

	err := store.Apply(ctx, b, []store.Mutation{
		store.PutMutation("a", []byte("1")),
		store.PutMutation("b", []byte("2")),
		store.DeleteMutation("old"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, b.data)
}

func TestApply_RevertsOnFailure(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend()
	b.data["a"] = []byte("before")
	b.data["gone"] = []byte("keep")
	b.failOn = "c"

	err := store.Apply(ctx, b, []store.Mutation{
		store.PutMutation("a", []byte("after")),
		store.DeleteMutation("gone"),
		store.PutMutation("new", []byte("n")),
		store.PutMutation("c", []byte("boom")),
	}, nil)
	require.Error(t, err)
	assert.True(t, graphdlerr.IsBackendFailure(err))

	assert.Equal(t, map[string][]byte{
		"a":    []byte("before"),
		"gone": []byte("keep"),
	}, b.data)
}

func TestApply_CancelledContextWritesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, b := range map[string]store.Backend{"fake": newFakeBackend(), "memory": memory.New()} {
		t.Run(name, func(t *testing.T) {
			err := store.Apply(ctx, b, []store.Mutation{store.PutMutation("a", []byte("1"))}, nil)
			require.Error(t, err)
			assert.True(t, graphdlerr.IsTimeout(err))

			entries, err := b.Scan(context.Background(), "")
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestApply_UsesAtomicBackend(t *testing.T) {
	ctx := context.Background()
	b := memory.New()

	err := store.Apply(ctx, b, []store.Mutation{
		store.PutMutation("things/a", []byte("1")),
		store.PutMutation("things/b", []byte("2")),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())
}

func TestApply_Empty(t *testing.T) {
	assert.NoError(t, store.Apply(context.Background(), newFakeBackend(), nil, nil))
}
