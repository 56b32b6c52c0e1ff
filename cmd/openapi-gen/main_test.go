// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSpec(t *testing.T) {
	spec, err := generateSpec()
	require.NoError(t, err)
	assert.Contains(t, string(spec), "3.1")
	assert.Contains(t, string(spec), "/api/v1/entities")
	assert.Contains(t, string(spec), "/api/v1/relationships")
	assert.Contains(t, string(spec), "/api/v1/graph/linked-data")
	assert.Contains(t, string(spec), "/health")
}

func TestGenerateSpec_ValidJSON(t *testing.T) {
	spec, err := generateSpec()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(spec, &doc))
	assert.Contains(t, doc, "openapi")
	assert.Contains(t, doc, "paths")
}
