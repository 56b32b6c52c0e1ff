// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sigil-dev/graphdl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigYAML_LoadsAsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphdl.yaml")
	require.NoError(t, os.WriteFile(path, config.DefaultConfigYAML, 0o600))

	fromFile, err := config.Load(path)
	require.NoError(t, err)
	defaults, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, defaults, fromFile)
}

func TestWriteConfig_AppliesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "graphdl.yaml")

	written, err := config.WriteConfig(path, config.Overrides{
		Listen:  "0.0.0.0:9000",
		Backend: "sqlite",
		Path:    "/srv/graphdl",
	}, false)
	require.NoError(t, err)
	assert.True(t, written)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "# graphdl configuration.")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Networking.Listen)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/srv/graphdl", cfg.Storage.Path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteConfig_KeepsExistingUnlessForced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphdl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keep: me\n"), 0o600))

	written, err := config.WriteConfig(path, config.Overrides{}, false)
	require.NoError(t, err)
	assert.False(t, written)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep: me\n", string(raw))

	written, err = config.WriteConfig(path, config.Overrides{Backend: "sqlite"}, true)
	require.NoError(t, err)
	assert.True(t, written)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
}
