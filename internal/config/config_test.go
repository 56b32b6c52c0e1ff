// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sigil-dev/graphdl/internal/config"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *config.Config {
	return &config.Config{
		Networking: config.NetworkingConfig{Listen: "127.0.0.1:8420"},
		Storage:    config.StorageConfig{Backend: "memory"},
		Store:      config.StoreConfig{OperationTimeout: time.Second},
		Export:     config.ExportConfig{Context: "https://schema.org"},
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8420", cfg.Networking.Listen)
	assert.Empty(t, cfg.Networking.CORSOrigins)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 30*time.Second, cfg.Store.OperationTimeout)
	assert.Equal(t, "https://schema.org", cfg.Export.Context)
	assert.Zero(t, cfg.Networking.RateLimit.RequestsPerSecond)
	assert.Equal(t, 20, cfg.Networking.RateLimit.Burst)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "graphdl.yaml")

	content := `
networking:
  listen: "0.0.0.0:9999"
  cors_origins: ["https://app.example.com"]
storage:
  backend: sqlite
  path: /var/lib/graphdl
store:
  operation_timeout: 250ms
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", cfg.Networking.Listen)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Networking.CORSOrigins)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/graphdl", cfg.Storage.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Store.OperationTimeout)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GRAPHDL_NETWORKING_LISTEN", "10.0.0.1:8080")
	t.Setenv("GRAPHDL_STORAGE_BACKEND", "sqlite")
	t.Setenv("GRAPHDL_STORE_OPERATION_TIMEOUT", "5s")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:8080", cfg.Networking.Listen)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, 5*time.Second, cfg.Store.OperationTimeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, graphdlerr.HasCode(err, graphdlerr.CodeConfigLoadReadFailure))
}

func TestLoad_InvalidConfigFailsFast(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "graphdl.yaml")

	content := `
networking:
  listen: "not-valid"
storage:
  backend: "mysql"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	_, err := config.Load(cfgPath)
	require.Error(t, err, "Load should fail with invalid config")
	assert.Contains(t, err.Error(), "validating config")
	assert.Contains(t, err.Error(), "networking.listen")
	assert.Contains(t, err.Error(), "storage.backend")
}

func TestFromViper_FlagStyleOverride(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("storage.backend", "sqlite")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.Empty(t, validConfig().Validate())
}

func TestValidate_NetworkingListen(t *testing.T) {
	tests := []struct {
		name    string
		listen  string
		wantErr bool
	}{
		{"valid address", "127.0.0.1:8080", false},
		{"valid all interfaces", ":9999", false},
		{"valid ipv6", "[::1]:8080", false},
		{"empty listen", "", true},
		{"missing port", "127.0.0.1", true},
		{"invalid port zero", "127.0.0.1:0", true},
		{"port too high", "127.0.0.1:70000", true},
		{"not a number", "127.0.0.1:abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Networking.Listen = tt.listen
			errs := cfg.Validate()
			if tt.wantErr {
				require.NotEmpty(t, errs)
				assert.Contains(t, errs[0].Error(), "networking.listen")
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestValidate_CORSOrigins(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		wantErr bool
	}{
		{"none", nil, false},
		{"wildcard", []string{"*"}, false},
		{"origin", []string{"https://app.example.com", "http://localhost:3000"}, false},
		{"bare host", []string{"app.example.com"}, true},
		{"empty", []string{""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Networking.CORSOrigins = tt.origins
			errs := cfg.Validate()
			if tt.wantErr {
				require.Len(t, errs, 1)
				assert.Contains(t, errs[0].Error(), "networking.cors_origins")
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestValidate_StorageBackend(t *testing.T) {
	for _, backend := range []string{"memory", "sqlite"} {
		cfg := validConfig()
		cfg.Storage.Backend = backend
		assert.Empty(t, cfg.Validate(), backend)
	}

	for _, backend := range []string{"", "postgres"} {
		cfg := validConfig()
		cfg.Storage.Backend = backend
		errs := cfg.Validate()
		require.Len(t, errs, 1, backend)
		assert.Contains(t, errs[0].Error(), "storage.backend")
		assert.True(t, graphdlerr.IsInvalidInput(errs[0]))
	}
}

func TestValidate_OperationTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Store.OperationTimeout = 0
	assert.Empty(t, cfg.Validate())

	cfg.Store.OperationTimeout = -time.Second
	errs := cfg.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "store.operation_timeout")
}

func TestValidate_RateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Networking.RateLimit = config.RateLimitConfig{RequestsPerSecond: 5, Burst: 10}
	assert.Empty(t, cfg.Validate())

	cfg.Networking.RateLimit = config.RateLimitConfig{RequestsPerSecond: 5}
	errs := cfg.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "rate_limit.burst")

	cfg.Networking.RateLimit = config.RateLimitConfig{RequestsPerSecond: -1}
	errs = cfg.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "requests_per_second")
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &config.Config{
		Networking: config.NetworkingConfig{Listen: "", CORSOrigins: []string{"nope"}},
		Storage:    config.StorageConfig{Backend: "postgres"},
		Store:      config.StoreConfig{OperationTimeout: -1},
	}

	errs := cfg.Validate()
	// Should collect every error, not stop at the first one.
	assert.Len(t, errs, 5, "got %v", errs)
}
