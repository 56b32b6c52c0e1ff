// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package memory_test

import (
	"context"
	"testing"

	"github.com/sigil-dev/graphdl/internal/store"
	"github.com/sigil-dev/graphdl/internal/store/memory"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend_GetPutDelete(t *testing.T) {
	ctx := context.Background()
	b := memory.New()

	_, err := b.Get(ctx, "missing")
	assert.True(t, graphdlerr.IsNotFound(err))

	require.NoError(t, b.Put(ctx, "k", []byte("v1")))
	require.NoError(t, b.Put(ctx, "k", []byte("v2")))
	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, b.Delete(ctx, "k"))
	require.NoError(t, b.Delete(ctx, "k"))
	_, err = b.Get(ctx, "k")
	assert.True(t, graphdlerr.IsNotFound(err))
}

func TestBackend_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	b := memory.New()

	in := []byte("abc")
	require.NoError(t, b.Put(ctx, "k", in))
	in[0] = 'X'

	out, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)

	out[0] = 'Y'
	again, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestBackend_ScanOrderedByKey(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	for _, k := range []string{"triples/3", "things/b", "triples/1", "things/a", "other"} {
		require.NoError(t, b.Put(ctx, k, []byte(k)))
	}

	entries, err := b.Scan(ctx, "things/")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "things/a", entries[0].Key)
	assert.Equal(t, "things/b", entries[1].Key)

	all, err := b.Scan(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestBackend_ApplyAtomic(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	require.NoError(t, b.Put(ctx, "gone", []byte("x")))

	err := b.ApplyAtomic(ctx, []store.Mutation{
		store.PutMutation("a", []byte("1")),
		store.DeleteMutation("gone"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
}

func TestBackend_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := memory.New()

	err := b.Put(ctx, "k", []byte("v"))
	assert.True(t, graphdlerr.IsTimeout(err))
	assert.Equal(t, 0, b.Len())
}

func TestBackend_Closed(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	require.NoError(t, b.Close())

	err := b.Put(ctx, "k", []byte("v"))
	assert.True(t, graphdlerr.IsBackendFailure(err))
	_, err = b.Scan(ctx, "")
	assert.Error(t, err)
}
