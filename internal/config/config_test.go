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

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCommandAsString(t *testing.T) {
	cfg, err := Parse([]byte(`{"formatting":{"command":"nixpkgs-fmt"}}`))
	require.NoError(t, err)
	require.Equal(t, []string{"nixpkgs-fmt"}, cfg.Formatting.Command)
}

func TestParseCommandAsArray(t *testing.T) {
	cfg, err := Parse([]byte(`{"formatting":{"command":["alejandra","-q"]}}`))
	require.NoError(t, err)
	require.Equal(t, []string{"alejandra", "-q"}, cfg.Formatting.Command)
}

func TestParseOptionsMap(t *testing.T) {
	cfg, err := Parse([]byte(`{"options":{"nixos":{"expr":"import <nixpkgs/nixos> {}"}}}`))
	require.NoError(t, err)
	require.Equal(t, "import <nixpkgs/nixos> {}", cfg.Options["nixos"].Expr)
	require.Equal(t, "nixos", cfg.Options["nixos"].Name)
}

func TestSuppressSet(t *testing.T) {
	cfg, err := Parse([]byte(`{"diagnostic":{"suppress":["or-identifier"]}}`))
	require.NoError(t, err)
	require.True(t, cfg.SuppressSet()["or-identifier"])
	require.False(t, cfg.SuppressSet()["expected"])
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := NewStore(&Config{})
	c1 := s.Get()
	c1.Nixpkgs.Expr = "mutated"
	c2 := s.Get()
	require.Empty(t, c2.Nixpkgs.Expr)
}
