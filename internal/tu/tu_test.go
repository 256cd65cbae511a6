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

package tu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPopulatesAllAnalyses(t *testing.T) {
	got := Build("file:///a.nix", 1, "let x = 1; in x")
	require.NotNil(t, got.AST)
	require.NotNil(t, got.ParentMap)
	require.NotNil(t, got.VLA)
	require.Empty(t, got.Diagnostics)
}

func TestUndefinedVariableDiagnostics(t *testing.T) {
	got := Build("file:///a.nix", 1, "foo")
	diags := got.UndefinedVariableDiagnostics()
	require.Len(t, diags, 1)
	require.Equal(t, "undefined-variable", diags[0].ShortName())
}

func TestStoreOpenUpdateCloseLifecycle(t *testing.T) {
	s := NewStore()
	t1 := s.Open("file:///a.nix", 1, "1")
	got, ok := s.Get("file:///a.nix")
	require.True(t, ok)
	require.Same(t, t1, got)

	t2 := s.Update("file:///a.nix", 2, "2")
	got, ok = s.Get("file:///a.nix")
	require.True(t, ok)
	require.Same(t, t2, got)
	require.NotSame(t, t1, t2, "Update must install a new TU, not mutate the old one")

	s.Close("file:///a.nix")
	_, ok = s.Get("file:///a.nix")
	require.False(t, ok)
}

func TestAllDiagnosticsAppliesSuppress(t *testing.T) {
	got := Build("file:///a.nix", 1, "foo")
	suppressed := got.AllDiagnostics(map[string]bool{"undefined-variable": true})
	require.Empty(t, suppressed)
	kept := got.AllDiagnostics(nil)
	require.Len(t, kept, 1)
}
