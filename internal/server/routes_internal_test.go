// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"testing"

	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWhere(t *testing.T) {
	where, err := parseWhere([]string{
		"age=30",
		`name="30"`,
		"city=Paris",
		"active=true",
		"manager=null",
		"expr=a=b",
		"tags=[\"x\"]",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"age":     float64(30),
		"name":    "30",
		"city":    "Paris",
		"active":  true,
		"manager": nil,
		"expr":    "a=b",
		"tags":    []any{"x"},
	}, where)

	where, err = parseWhere(nil)
	require.NoError(t, err)
	assert.Nil(t, where)

	for _, bad := range []string{"name", "=value", " =x"} {
		_, err := parseWhere([]string{bad})
		require.Error(t, err, bad)
		assert.True(t, graphdlerr.IsInvalidInput(err))
	}
}
