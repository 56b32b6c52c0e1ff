// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package config

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the top-level graphdl configuration.
type Config struct {
	Networking NetworkingConfig `mapstructure:"networking"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Store      StoreConfig      `mapstructure:"store"`
	Export     ExportConfig     `mapstructure:"export"`
}

// NetworkingConfig controls how the API server listens for connections.
type NetworkingConfig struct {
	Listen      string          `mapstructure:"listen"`
	CORSOrigins []string        `mapstructure:"cors_origins"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig throttles mutating API requests per client address.
// A zero rate disables throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// StoreConfig tunes the graph store.
type StoreConfig struct {
	// OperationTimeout bounds operations whose caller set no deadline.
	// Zero disables it.
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

// ExportConfig controls exported documents.
type ExportConfig struct {
	Context string `mapstructure:"context"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("networking.listen", "127.0.0.1:8420")
	v.SetDefault("networking.cors_origins", []string{})
	v.SetDefault("networking.rate_limit.requests_per_second", 0)
	v.SetDefault("networking.rate_limit.burst", 20)
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.path", "")
	v.SetDefault("store.operation_timeout", "30s")
	v.SetDefault("export.context", "https://schema.org")
}

// SetupEnv binds GRAPHDL_* environment variables, e.g.
// GRAPHDL_STORAGE_BACKEND for storage.backend.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("GRAPHDL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix GRAPHDL_).
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, graphdlerr.Errorf(graphdlerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, graphdlerr.Errorf(graphdlerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, graphdlerr.Errorf(graphdlerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateNetworking()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateStore()...)
	errs = append(errs, c.validateExport()...)

	return errs
}

// ValidateListenAddr checks that addr is a host:port with a usable port.
func ValidateListenAddr(addr string) error {
	if addr == "" {
		return graphdlerr.Errorf(graphdlerr.CodeConfigValidateInvalidValue, "config: networking.listen must not be empty")
	}
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return graphdlerr.Errorf(graphdlerr.CodeConfigValidateInvalidValue,
			"config: networking.listen must be a valid host:port address, got %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return graphdlerr.Errorf(graphdlerr.CodeConfigValidateInvalidValue,
			"config: networking.listen port must be a number, got %q", portStr)
	}
	if port < 1 || port > 65535 {
		return graphdlerr.Errorf(graphdlerr.CodeConfigValidateInvalidValue,
			"config: networking.listen port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func (c *Config) validateNetworking() []error {
	var errs []error

	if err := ValidateListenAddr(c.Networking.Listen); err != nil {
		errs = append(errs, err)
	}

	for i, origin := range c.Networking.CORSOrigins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, graphdlerr.Errorf(graphdlerr.CodeConfigValidateInvalidValue,
				"config: networking.cors_origins[%d] must be \"*\" or an absolute origin, got %q",
				i, origin,
			))
		}
	}

	rl := c.Networking.RateLimit
	if rl.RequestsPerSecond < 0 {
		errs = append(errs, graphdlerr.Errorf(graphdlerr.CodeConfigValidateInvalidValue,
			"config: networking.rate_limit.requests_per_second must not be negative, got %g",
			rl.RequestsPerSecond,
		))
	}
	if rl.RequestsPerSecond > 0 && rl.Burst <= 0 {
		errs = append(errs, graphdlerr.Errorf(graphdlerr.CodeConfigValidateInvalidValue,
			"config: networking.rate_limit.burst must be positive when a rate is set, got %d",
			rl.Burst,
		))
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	validBackends := map[string]bool{"memory": true, "sqlite": true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, graphdlerr.Errorf(graphdlerr.CodeConfigValidateInvalidValue,
			"config: storage.backend must be one of [memory, sqlite], got %q",
			c.Storage.Backend,
		))
	}

	return errs
}

func (c *Config) validateStore() []error {
	var errs []error

	if c.Store.OperationTimeout < 0 {
		errs = append(errs, graphdlerr.Errorf(graphdlerr.CodeConfigValidateInvalidValue,
			"config: store.operation_timeout must not be negative, got %s",
			c.Store.OperationTimeout,
		))
	}

	return errs
}

func (c *Config) validateExport() []error {
	var errs []error

	if strings.TrimSpace(c.Export.Context) == "" {
		errs = append(errs, graphdlerr.Errorf(graphdlerr.CodeConfigValidateInvalidValue, "config: export.context must not be empty"))
	}

	return errs
}
