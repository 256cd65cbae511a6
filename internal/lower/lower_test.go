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

package lower

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nix-community/nixd-sub001/internal/parser"
	"github.com/nix-community/nixd-sub001/internal/syntax"
)

func parseAttrs(t *testing.T, src string) *syntax.Attrs {
	t.Helper()
	n, diags := parser.Parse([]byte(src))
	require.Empty(t, diags)
	a, ok := n.(*syntax.Attrs)
	require.True(t, ok)
	return a
}

func TestLowerNestedAttrPath(t *testing.T) {
	a := parseAttrs(t, "{ a.b.c = 1; }")
	sema, diags := Lower(a)
	require.Empty(t, diags)
	ab, ok := sema.Static["a"]
	require.True(t, ok)
	require.NotNil(t, ab.Nested)
	bb, ok := ab.Nested.Static["b"]
	require.True(t, ok)
	require.NotNil(t, bb.Nested)
	cb, ok := bb.Nested.Static["c"]
	require.True(t, ok)
	require.NotNil(t, cb.Value)
}

func TestLowerDuplicateAttrEmitsDiagnostic(t *testing.T) {
	a := parseAttrs(t, "{ a = 1; a = 2; }")
	_, diags := Lower(a)
	require.Len(t, diags, 1)
	require.Equal(t, "attr-duplicated", diags[0].ShortName())
	require.Len(t, diags[0].Notes, 1)
}

func TestLowerMergesNestedPathsAcrossBindings(t *testing.T) {
	a := parseAttrs(t, "{ a.b = 1; a.c = 2; }")
	sema, diags := Lower(a)
	require.Empty(t, diags)
	ab := sema.Static["a"]
	require.NotNil(t, ab.Nested)
	require.Contains(t, ab.Nested.Static, "b")
	require.Contains(t, ab.Nested.Static, "c")
}

func TestLowerInheritPlain(t *testing.T) {
	a := parseAttrs(t, "{ inherit a b; }")
	sema, diags := Lower(a)
	require.Empty(t, diags)
	require.True(t, sema.Static["a"].Inherited)
	require.True(t, sema.Static["b"].Inherited)
}

func TestLowerInheritFromExpr(t *testing.T) {
	a := parseAttrs(t, "{ inherit (pkgs) hello; }")
	sema, diags := Lower(a)
	require.Empty(t, diags)
	ab := sema.Static["hello"]
	require.True(t, ab.Inherited)
	sel, ok := ab.Value.(*syntax.Select)
	require.True(t, ok)
	require.Equal(t, "pkgs", sel.Target.(*syntax.Var).Name)
}

func TestLowerIsIdempotent(t *testing.T) {
	a := parseAttrs(t, "{ a.b = 1; c = { d = 2; }; }")
	first, diags1 := Lower(a)
	second, diags2 := Lower(a)
	require.Equal(t, len(diags1), len(diags2))
	require.Equal(t, len(first.Static), len(second.Static))
	require.Equal(t, first.Static["a"].Nested.Static["b"].Value, second.Static["a"].Nested.Static["b"].Value)
	require.Same(t, first.Static["c"].Nested, second.Static["c"].Nested)
}

func TestLowerTreeDedentsIndentedString(t *testing.T) {
	n, diags := parser.Parse([]byte("''\n  hello\n    world\n''"))
	require.Empty(t, diags)
	LowerTree(n)
	s, ok := n.(*syntax.String)
	require.True(t, ok)
	require.Equal(t, "\nhello\n  world", s.Parts[0].Escaped)
}

func TestLowerTreeDedentsIndentedStringAcrossInterpolation(t *testing.T) {
	n, diags := parser.Parse([]byte("''\n  foo\n  ${bar}\n  baz\n''"))
	require.Empty(t, diags)
	LowerTree(n)
	s, ok := n.(*syntax.String)
	require.True(t, ok)
	require.Len(t, s.Parts, 3)
	require.Equal(t, "\nfoo\n", s.Parts[0].Escaped)
	require.NotNil(t, s.Parts[1].Interp)
	require.Equal(t, "\nbaz", s.Parts[2].Escaped)
}

func TestLowerTreeDedentsIndentedStringWithLeadingInterpolation(t *testing.T) {
	n, diags := parser.Parse([]byte("''${pkgs.foo}/bin''"))
	require.Empty(t, diags)
	LowerTree(n)
	s, ok := n.(*syntax.String)
	require.True(t, ok)
	require.Len(t, s.Parts, 2)
	require.NotNil(t, s.Parts[0].Interp)
	require.Equal(t, "/bin", s.Parts[1].Escaped)
}

func TestLowerTreeDedentsIndentedStringWithIndentedInterpolationLine(t *testing.T) {
	// The interpolated line's indent (4) is larger than the plain line's
	// (2), so the minimum across all lines is still 2.
	n, diags := parser.Parse([]byte("''\n  a\n    ${x}''"))
	require.Empty(t, diags)
	LowerTree(n)
	s, ok := n.(*syntax.String)
	require.True(t, ok)
	require.Equal(t, "\na\n  ", s.Parts[0].Escaped)
	require.NotNil(t, s.Parts[1].Interp)
}

func TestLowerTreeLowersNestedAttrsOnlyOnce(t *testing.T) {
	n, diags := parser.Parse([]byte("{ a = { b = 1; b = 2; }; }"))
	require.Empty(t, diags)
	ds := LowerTree(n)
	require.Len(t, ds, 1)
	require.Equal(t, "attr-duplicated", ds[0].ShortName())
}
