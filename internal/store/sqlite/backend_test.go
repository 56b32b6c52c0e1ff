// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/sigil-dev/graphdl/internal/store"
	"github.com/sigil-dev/graphdl/internal/store/sqlite"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestBackend(t *testing.T, name string) *sqlite.Backend {
	t.Helper()
	b, err := sqlite.Open(testDBPath(t, name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackend_GetPutDelete(t *testing.T) {
	ctx := context.Background()
	b := openTestBackend(t, "kv")

	_, err := b.Get(ctx, "missing")
	assert.True(t, graphdlerr.IsNotFound(err))

	require.NoError(t, b.Put(ctx, "things/Person/1", []byte(`{"id":"Person/1"}`)))
	require.NoError(t, b.Put(ctx, "things/Person/1", []byte(`{"id":"Person/1","v":2}`)))

	got, err := b.Get(ctx, "things/Person/1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"Person/1","v":2}`, string(got))

	require.NoError(t, b.Delete(ctx, "things/Person/1"))
	require.NoError(t, b.Delete(ctx, "things/Person/1"))
	_, err = b.Get(ctx, "things/Person/1")
	assert.True(t, graphdlerr.IsNotFound(err))
}

func TestBackend_ScanPrefixRange(t *testing.T) {
	ctx := context.Background()
	b := openTestBackend(t, "scan")

	for i := 3; i >= 1; i-- {
		require.NoError(t, b.Put(ctx, fmt.Sprintf("triples/%020d", i), []byte("t")))
	}
	require.NoError(t, b.Put(ctx, "things/a", []byte("a")))
	require.NoError(t, b.Put(ctx, "things0", []byte("outside")))
	require.NoError(t, b.Put(ctx, "thing", []byte("outside")))

	triples, err := b.Scan(ctx, "triples/")
	require.NoError(t, err)
	require.Len(t, triples, 3)
	assert.Equal(t, fmt.Sprintf("triples/%020d", 1), triples[0].Key)
	assert.Equal(t, fmt.Sprintf("triples/%020d", 3), triples[2].Key)

	things, err := b.Scan(ctx, "things/")
	require.NoError(t, err)
	require.Len(t, things, 1)
	assert.Equal(t, "things/a", things[0].Key)

	all, err := b.Scan(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestBackend_ApplyAtomic(t *testing.T) {
	ctx := context.Background()
	b := openTestBackend(t, "atomic")
	require.NoError(t, b.Put(ctx, "gone", []byte("x")))

	err := b.ApplyAtomic(ctx, []store.Mutation{
		store.PutMutation("a", []byte("1")),
		store.PutMutation("b", nil),
		store.DeleteMutation("gone"),
	})
	require.NoError(t, err)

	n, err := b.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestBackend_ApplyAtomicCancelled(t *testing.T) {
	b := openTestBackend(t, "cancelled")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.ApplyAtomic(ctx, []store.Mutation{store.PutMutation("a", []byte("1"))})
	require.Error(t, err)
	assert.True(t, graphdlerr.IsTimeout(err))

	n, err := b.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBackend_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := testDBPath(t, "reopen")

	b, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, "k", []byte("v")))
	require.NoError(t, b.Close())

	b, err = sqlite.Open(path)
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}
