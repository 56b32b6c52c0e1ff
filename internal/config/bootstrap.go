// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package config

import (
	_ "embed"
	"os"
	"path/filepath"

	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed graphdl.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns ~/.config/graphdl/graphdl.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", graphdlerr.Errorf(graphdlerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "graphdl", "graphdl.yaml"), nil
}

// DefaultDataDir returns ~/.local/share/graphdl.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", graphdlerr.Errorf(graphdlerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "graphdl"), nil
}

// Overrides are values written over the defaults by WriteConfig.
type Overrides struct {
	Listen  string
	Backend string
	Path    string
}

// WriteConfig writes the commented default config to path with overrides
// applied. An existing file is kept unless force is set; the returned bool
// reports whether the file was written.
func WriteConfig(path string, o Overrides, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	}

	out, err := renderConfig(o)
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, graphdlerr.Errorf(graphdlerr.CodeConfigLoadReadFailure, "creating config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return false, graphdlerr.Errorf(graphdlerr.CodeConfigLoadReadFailure, "writing config %s: %w", path, err)
	}
	return true, nil
}

// renderConfig edits the default document as a YAML node tree so its
// comments survive.
func renderConfig(o Overrides) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(DefaultConfigYAML, &doc); err != nil {
		return nil, graphdlerr.Errorf(graphdlerr.CodeConfigLoadReadFailure, "parsing default config: %w", err)
	}

	set := func(section, key, value string) {
		if value == "" {
			return
		}
		if n := lookup(&doc, section, key); n != nil {
			n.Value = value
		}
	}
	set("networking", "listen", o.Listen)
	set("storage", "backend", o.Backend)
	set("storage", "path", o.Path)

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, graphdlerr.Errorf(graphdlerr.CodeConfigLoadReadFailure, "encoding config: %w", err)
	}
	return out, nil
}

// lookup finds the scalar node at section.key in a document node.
func lookup(doc *yaml.Node, section, key string) *yaml.Node {
	if len(doc.Content) == 0 {
		return nil
	}
	find := func(m *yaml.Node, name string) *yaml.Node {
		if m == nil || m.Kind != yaml.MappingNode {
			return nil
		}
		for i := 0; i+1 < len(m.Content); i += 2 {
			if m.Content[i].Value == name {
				return m.Content[i+1]
			}
		}
		return nil
	}
	n := find(find(doc.Content[0], section), key)
	if n == nil || n.Kind != yaml.ScalarNode {
		return nil
	}
	return n
}
