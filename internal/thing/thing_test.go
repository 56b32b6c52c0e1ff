// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package thing_test

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sigil-dev/graphdl/internal/thing"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"person", "Person"},
		{"Person ", "Person"},
		{"Person", "Person"},
		{"  person\t", "Person"},
		{"work item", "WorkItem"},
		{"work_item", "WorkItem"},
		{"software-engineer", "SoftwareEngineer"},
		{"OrgUnit", "OrgUnit"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, thing.NormalizeType(tt.in))
		})
	}
}

func TestGenerateID_NamespacedAndUnique(t *testing.T) {
	gen := thing.NewIDGenerator(nil)

	const workers, perWorker = 8, 250
	var (
		mu   sync.Mutex
		seen = make(map[string]bool, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := gen.Generate("person")
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
	for id := range seen {
		assert.True(t, strings.HasPrefix(id, "Person/"), id)
		break
	}
}

func TestGenerateID_SortsByCreation(t *testing.T) {
	gen := thing.NewIDGenerator(nil)
	prev := gen.Generate("Task")
	for i := 0; i < 100; i++ {
		next := gen.Generate("Task")
		require.Less(t, prev, next)
		prev = next
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		thing  thing.Thing
		fields []string
	}{
		{"valid", thing.Thing{ID: "Person/1", Type: "Person"}, nil},
		{"missing id", thing.Thing{Type: "Person"}, []string{"id"}},
		{"missing type", thing.Thing{ID: "Person/1"}, []string{"type"}},
		{"missing both", thing.Thing{}, []string{"id", "type"}},
		{"padded id", thing.Thing{ID: " Person/1", Type: "Person"}, []string{"id"}},
		{"reserved in data", thing.Thing{ID: "a", Type: "T", Data: map[string]any{"id": "b"}}, []string{"id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := thing.Validate(tt.thing)
			var got []string
			for _, v := range violations {
				got = append(got, v.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestValidateID(t *testing.T) {
	assert.Empty(t, thing.ValidateID("Person/abc"))
	assert.NotEmpty(t, thing.ValidateID(42))
	assert.NotEmpty(t, thing.ValidateID(""))
	assert.NotEmpty(t, thing.ValidateID("bad\nid"))
}

func TestViolationError(t *testing.T) {
	assert.NoError(t, thing.ViolationError(nil))

	err := thing.ViolationError([]thing.Violation{{Field: "type", Message: "must be a non-empty string"}})
	require.Error(t, err)
	assert.True(t, graphdlerr.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "type: must be a non-empty string")
}

func TestThing_JSONWireShape(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	in := thing.Thing{
		ID:        "Person/1",
		Type:      "Person",
		Data:      map[string]any{"name": "Ada", "tags": []any{"a", "b"}},
		CreatedAt: created,
		UpdatedAt: created,
	}

	b, err := json.Marshal(in)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(b, &flat))
	assert.Equal(t, "Person/1", flat["id"])
	assert.Equal(t, "Person", flat["type"])
	assert.Equal(t, "Ada", flat["name"])
	assert.Equal(t, "2026-01-02T03:04:05Z", flat["createdAt"])

	var out thing.Thing
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Type, out.Type)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, "Ada", out.Data["name"])
	assert.NotContains(t, out.Data, "id")
	assert.NotContains(t, out.Data, "createdAt")
}

func TestThing_CloneIsDeep(t *testing.T) {
	orig := thing.Thing{ID: "a", Type: "T", Data: map[string]any{
		"nested": map[string]any{"k": "v"},
		"list":   []any{"x"},
	}}
	cp := orig.Clone()
	cp.Data["nested"].(map[string]any)["k"] = "changed"
	cp.Data["list"].([]any)[0] = "y"

	assert.Equal(t, "v", orig.Data["nested"].(map[string]any)["k"])
	assert.Equal(t, "x", orig.Data["list"].([]any)[0])
}

func TestEqual(t *testing.T) {
	assert.True(t, thing.Equal(3, 3.0))
	assert.True(t, thing.Equal(int64(7), float32(7)))
	assert.True(t, thing.Equal("a", "a"))
	assert.True(t, thing.Equal([]any{"a"}, []any{"a"}))
	assert.False(t, thing.Equal("3", 3))
	assert.False(t, thing.Equal(nil, 0))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, thing.Compare(nil, nil))
	assert.Equal(t, -1, thing.Compare(nil, "a"))
	assert.Equal(t, -1, thing.Compare(false, true))
	assert.Equal(t, -1, thing.Compare(2, 10.5))
	assert.Equal(t, 1, thing.Compare("b", "a"))
	assert.Equal(t, -1, thing.Compare(true, 0))
	assert.Equal(t, -1, thing.Compare(1, "1"))

	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, -1, thing.Compare(early, early.Add(time.Second)))
}
