// Copyright 2024 The Nixd-sub001 Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config implements the live LSP configuration schema of spec
// §6: a JSON document, either seeded once from --config or pushed by the
// client via workspace/configuration, read-copied per request behind its
// own lock per spec §5 ("Configuration is guarded by its own lock; it is
// read-copied per request").
package config

import (
	"encoding/json"
	"sync"
)

// OptionSet is one entry of the "options.<name>.expr" map: a
// human-readable name paired with the Nix expression that produces its
// option tree, each of which spawns its own option worker (spec §4.7).
type OptionSet struct {
	Name string `json:"name"`
	Expr string `json:"expr"`
}

// Config is the recognised subset of workspace/configuration, per spec
// §6. Unknown keys are ignored by json.Unmarshal rather than rejected,
// since an LSP client may legitimately send configuration for other
// servers under the same settings object.
type Config struct {
	Formatting struct {
		// Command is the external formatter's argv. The wire format
		// allows either a bare string or a string array; Command is
		// normalised to the array form by Parse (via decodeCommand).
		Command []string `json:"command"`
	} `json:"formatting"`

	Nixpkgs struct {
		Expr string `json:"expr"`
	} `json:"nixpkgs"`

	Options map[string]OptionSet `json:"-"`

	Diagnostic struct {
		Suppress []string `json:"suppress"`
	} `json:"diagnostic"`
}

// wireConfig mirrors Config's JSON shape before Command/Options are
// normalised: Command may arrive as a string or []string on the wire,
// and Options arrives as "options.<name>.expr" flattened by the LSP
// client into a map keyed by name with an "expr" field, rather than as
// Config.Options's Go-friendly []OptionSet-equivalent map.
type wireConfig struct {
	Formatting struct {
		Command json.RawMessage `json:"command"`
	} `json:"formatting"`
	Nixpkgs struct {
		Expr string `json:"expr"`
	} `json:"nixpkgs"`
	Options map[string]struct {
		Expr string `json:"expr"`
	} `json:"options"`
	Diagnostic struct {
		Suppress []string `json:"suppress"`
	} `json:"diagnostic"`
}

// Parse decodes raw JSON into a Config, normalising formatting.command
// and options.<name>.expr into their Go-friendly shapes.
func Parse(raw []byte) (*Config, error) {
	if len(raw) == 0 {
		return &Config{}, nil
	}
	var w wireConfig
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	cfg := &Config{}
	cfg.Nixpkgs.Expr = w.Nixpkgs.Expr
	cfg.Diagnostic.Suppress = w.Diagnostic.Suppress
	if len(w.Formatting.Command) > 0 {
		cfg.Formatting.Command = decodeCommand(w.Formatting.Command)
	}
	if len(w.Options) > 0 {
		cfg.Options = make(map[string]OptionSet, len(w.Options))
		for name, o := range w.Options {
			cfg.Options[name] = OptionSet{Name: name, Expr: o.Expr}
		}
	}
	return cfg, nil
}

func decodeCommand(raw json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr
	}
	return nil
}

// SuppressSet returns Diagnostic.Suppress as a lookup set for
// diag.List.Filter.
func (c *Config) SuppressSet() map[string]bool {
	if c == nil || len(c.Diagnostic.Suppress) == 0 {
		return nil
	}
	set := make(map[string]bool, len(c.Diagnostic.Suppress))
	for _, s := range c.Diagnostic.Suppress {
		set[s] = true
	}
	return set
}

// Store holds the controller's live configuration behind a single
// sync.RWMutex. Get returns a shallow copy so callers never race against
// a concurrent Set.
type Store struct {
	mu  sync.RWMutex
	cur *Config
}

// NewStore returns a Store seeded with cfg (which may be nil, meaning
// the zero Config).
func NewStore(cfg *Config) *Store {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Store{cur: cfg}
}

// Get returns a copy of the current configuration.
func (s *Store) Get() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := *s.cur
	return &cp
}

// Set atomically replaces the current configuration.
func (s *Store) Set(cfg *Config) {
	if cfg == nil {
		cfg = &Config{}
	}
	s.mu.Lock()
	s.cur = cfg
	s.mu.Unlock()
}
