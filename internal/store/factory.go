// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import (
	"sort"
	"sync"

	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

// BackendFactory opens a backend rooted at the given data directory.
type BackendFactory func(dataPath string) (Backend, error)

var (
	backendFactories = map[string]BackendFactory{}
	factoriesMu      sync.RWMutex
)

// RegisterBackend registers a factory for a named storage backend.
// Backend packages call this from init(). This function is goroutine-safe.
func RegisterBackend(name string, factory BackendFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	backendFactories[name] = factory
}

// Backends lists the registered backend names in sorted order.
func Backends() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(backendFactories))
	for name := range backendFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveBackend returns the effective backend name, defaulting to "memory".
func resolveBackend(cfg *StorageConfig) string {
	if cfg == nil || cfg.Backend == "" {
		return "memory"
	}
	return cfg.Backend
}

// NewBackend opens the backend selected by cfg.
func NewBackend(cfg *StorageConfig) (Backend, error) {
	backend := resolveBackend(cfg)

	factoriesMu.RLock()
	factory, ok := backendFactories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, graphdlerr.New(graphdlerr.CodeStoreBackendUnsupported,
			"unsupported storage backend: \""+backend+"\"",
			graphdlerr.FieldBackend(backend))
	}

	var path string
	if cfg != nil {
		path = cfg.Path
	}
	return factory(path)
}
