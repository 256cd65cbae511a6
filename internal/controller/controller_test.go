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

package controller

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/nix-community/nixd-sub001/internal/parentmap"
	"github.com/nix-community/nixd-sub001/internal/syntax"
	"github.com/nix-community/nixd-sub001/internal/tu"
)

func TestLineIndexOffsetConvertsPosition(t *testing.T) {
	src := "let\n  x = 1;\nin x"
	li := newLineIndex(src)
	// "x" on line 1 (0-based) sits at column 2.
	off := li.Offset(protocol.Position{Line: 1, Character: 2})
	require.Equal(t, 6, off)
}

func TestNamesInScopeIncludesLetBindingsAndBuiltins(t *testing.T) {
	got := tu.Build("file:///a.nix", 1, "let x = 1; in x")
	body := got.AST.(*syntax.Let).Body
	names := namesInScope(got, body)
	require.Contains(t, names, "x")
	require.Contains(t, names, "true")
}

func TestStaticSelectPathBuildsFullChain(t *testing.T) {
	got := tu.Build("file:///a.nix", 1, "a.b.c")
	sel := got.AST.(*syntax.Select)
	path, ok := staticSelectPath(sel)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b", "c"}, path)
}

func TestAttrCompletionContextScopesToNamesBeforeCursor(t *testing.T) {
	got := tu.Build("file:///a.nix", 1, "a.b.c")
	sel := got.AST.(*syntax.Select)
	// Cursor on "c" (index 1 of the flat AttrPath ["b", "c"]): the scope
	// to complete against is ["a", "b"], the names already typed.
	scope, prefix, ok := attrCompletionContext(got.ParentMap, sel.Path.Names[1])
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, scope)
	require.Equal(t, "c", prefix)
}

func TestAttrNamePathIncludesHoveredSegment(t *testing.T) {
	got := tu.Build("file:///a.nix", 1, "a.b.c")
	sel := got.AST.(*syntax.Select)
	path, ok := attrNamePath(got.ParentMap, sel.Path.Names[0])
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, path)
}

func TestLeftmostIsLibDetectsChain(t *testing.T) {
	got := tu.Build("file:///a.nix", 1, "lib.strings.toUpper")
	require.True(t, leftmostIsLib(got.AST))

	other := tu.Build("file:///a.nix", 1, "pkgs.hello")
	require.False(t, leftmostIsLib(other.AST))
}

func TestSymbolsForRendersStaticAttrs(t *testing.T) {
	got := tu.Build("file:///a.nix", 1, "{ a = 1; b = { c = 2; }; }")
	syms := symbolsFor(got.AST)
	require.Len(t, syms, 2)
	require.Equal(t, "a", syms[0].Name)
	require.Equal(t, "b", syms[1].Name)
	require.Len(t, syms[1].Children, 1)
	require.Equal(t, "c", syms[1].Children[0].Name)
}

func TestToProtocolDiagnosticCarriesFormattedMessage(t *testing.T) {
	got := tu.Build("file:///a.nix", 1, "foo")
	all := got.AllDiagnostics(nil)
	require.Len(t, all, 1)
	pd := toProtocolDiagnostic(all[0])
	require.Equal(t, protocol.DiagnosticSeverityWarning, pd.Severity)
	require.Contains(t, pd.Message, "foo")
}

func TestParentMapUpExprUsedByControllerSkipsHolderNodes(t *testing.T) {
	got := tu.Build("file:///a.nix", 1, "{ a.b = 1; }")
	attrs := got.AST.(*syntax.Attrs)
	binding := attrs.Binds[0].(*syntax.Binding)
	name := binding.Path.Names[1]
	up, ok := parentmap.Build(got.AST).UpExpr(name)
	require.True(t, ok)
	require.Same(t, attrs, up)
}
