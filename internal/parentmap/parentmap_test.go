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

package parentmap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nix-community/nixd-sub001/internal/parser"
	"github.com/nix-community/nixd-sub001/internal/syntax"
)

func parseOne(t *testing.T, src string) syntax.Node {
	t.Helper()
	n, diags := parser.Parse([]byte(src))
	require.Empty(t, diags)
	return n
}

func TestBuildIsTotal(t *testing.T) {
	root := parseOne(t, "let a = 1; b = { c = 2; }; in a.b.c")
	m := Build(root)
	syntax.Walk(root, syntax.Visitor{Pre: func(n syntax.Node) bool {
		_, ok := m.Query(n)
		require.True(t, ok, "node %v missing from parent map", n)
		return true
	}})
	p, ok := m.Query(root)
	require.True(t, ok)
	require.Same(t, root, p)
}

func TestUpExprSkipsNonExpressionNodes(t *testing.T) {
	root := parseOne(t, "a.b.c")
	m := Build(root)
	sel := root.(*syntax.Select)
	name := sel.Path.Names[1] // "b": an AttrName, not an expression
	require.False(t, name.Kind().IsExpr())

	up, ok := m.UpExpr(name)
	require.True(t, ok)
	require.Same(t, sel, up)
}

func TestUpToFindsEnclosingLet(t *testing.T) {
	root := parseOne(t, "let x = 1; in x")
	m := Build(root)
	let := root.(*syntax.Let)
	v := let.Body
	up, ok := m.UpTo(v, syntax.KindLet)
	require.True(t, ok)
	require.Same(t, let, up)
}

func TestNodeAtLocatesInnermostNode(t *testing.T) {
	root := parseOne(t, "a.b.c")
	sel := root.(*syntax.Select)
	// Offset into "b" in the attr path.
	bOffset := sel.Path.Names[1].Range().Start.Offset
	n := NodeAt(root, bOffset)
	require.Equal(t, sel.Path.Names[1], n)
}
