// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config loads and hot-reloads a node's per-profile TOML
// configuration: its interface list and a handful of daemon-startup
// flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ConfigRootEnvVar overrides the profile-root directory, primarily for
// tests that don't want to touch the real OS config directory.
const ConfigRootEnvVar = "LXMF_CONFIG_ROOT"

// ConfigFileName is the file name of a profile's config file, located
// under its profile root.
const ConfigFileName = "config.toml"

// InterfaceConfig is one `[[interfaces]]` table entry.
type InterfaceConfig struct {
	Type    string `toml:"type"`
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host,omitempty"`
	Port    int    `toml:"port,omitempty"`
	Name    string `toml:"name"`
}

// Profile is the parsed contents of one profile's config.toml.
type Profile struct {
	// Managed indicates the profile expects an externally-supervised
	// daemon (e.g. under systemd); for such a profile the `daemon`
	// command refuses to proceed unless --managed is passed (§6.1).
	Managed bool `toml:"managed"`

	Interfaces []InterfaceConfig `toml:"interfaces"`
}

// EnabledInterfaces returns only the interfaces with enabled = true,
// the set bound at startup.
func (p *Profile) EnabledInterfaces() []InterfaceConfig {
	out := make([]InterfaceConfig, 0, len(p.Interfaces))
	for _, iface := range p.Interfaces {
		if iface.Enabled {
			out = append(out, iface)
		}
	}
	return out
}

// ProfileRoot resolves the directory a named profile's state lives
// under: $LXMF_CONFIG_ROOT/<name> if set, else the OS user config
// directory's "lxmf/<name>".
func ProfileRoot(name string) (string, error) {
	if override := os.Getenv(ConfigRootEnvVar); override != "" {
		return filepath.Join(override, name), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user config dir: %w", err)
	}
	return filepath.Join(base, "lxmf", name), nil
}

// LoadProfile reads and parses root's config.toml.
func LoadProfile(root string) (*Profile, error) {
	path := filepath.Join(root, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var p Profile
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &p, nil
}
