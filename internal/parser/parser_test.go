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

package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nix-community/nixd-sub001/internal/syntax"
)

func TestParseSimpleAttrPath(t *testing.T) {
	n, diags := Parse([]byte("{ a.b.c = 1; }"))
	require.Empty(t, diags)
	attrs, ok := n.(*syntax.Attrs)
	require.True(t, ok)
	require.Len(t, attrs.Binds, 1)
	b, ok := attrs.Binds[0].(*syntax.Binding)
	require.True(t, ok)
	require.Len(t, b.Path.Names, 3)
	require.Equal(t, "a", b.Path.Names[0].StaticName())
	require.Equal(t, "c", b.Path.Names[2].StaticName())
}

func TestParseUnterminatedRecAttrs(t *testing.T) {
	n, diags := Parse([]byte("rec { a = 1;"))
	require.NotEmpty(t, diags)
	attrs, ok := n.(*syntax.Attrs)
	require.True(t, ok)
	require.True(t, attrs.Recursive)
	require.Len(t, attrs.Binds, 1)
}

func TestParseDuplicateBindingsParseCleanly(t *testing.T) {
	// Duplicate detection is a lowering-pass concern, not a parser one; the
	// parser must accept this without complaint.
	n, diags := Parse([]byte("{ a = 1; a = 2; }"))
	require.Empty(t, diags)
	attrs := n.(*syntax.Attrs)
	require.Len(t, attrs.Binds, 2)
}

func TestParseLetIn(t *testing.T) {
	n, diags := Parse([]byte("let x = 1; in x"))
	require.Empty(t, diags)
	let, ok := n.(*syntax.Let)
	require.True(t, ok)
	require.Len(t, let.Binds, 1)
	v, ok := let.Body.(*syntax.Var)
	require.True(t, ok)
	require.Equal(t, "x", v.Name)
}

func TestParseWithScope(t *testing.T) {
	n, diags := Parse([]byte("with pkgs; hello"))
	require.Empty(t, diags)
	w, ok := n.(*syntax.With)
	require.True(t, ok)
	require.Equal(t, "pkgs", w.Scope.(*syntax.Var).Name)
	require.Equal(t, "hello", w.Body.(*syntax.Var).Name)
}

func TestParseLambdaIdent(t *testing.T) {
	n, _ := Parse([]byte("x: x + 1"))
	l, ok := n.(*syntax.Lambda)
	require.True(t, ok)
	require.Equal(t, "x", l.Param)
	require.Nil(t, l.Formals)
}

func TestParseLambdaFormals(t *testing.T) {
	n, diags := Parse([]byte("{ a, b ? 2, ... }@args: a"))
	require.Empty(t, diags)
	l, ok := n.(*syntax.Lambda)
	require.True(t, ok)
	require.Equal(t, "args", l.AtName)
	require.True(t, l.Ellipsis)
	require.Len(t, l.Formals, 2)
	require.Equal(t, "a", l.Formals[0].Name)
	require.Nil(t, l.Formals[0].Default)
	require.Equal(t, "b", l.Formals[1].Name)
	require.NotNil(t, l.Formals[1].Default)
}

func TestParseAttrsLiteralNotConfusedWithFormals(t *testing.T) {
	n, diags := Parse([]byte("{ a = 1; b = 2; }"))
	require.Empty(t, diags)
	_, ok := n.(*syntax.Attrs)
	require.True(t, ok)
}

func TestParsePrecedenceArithmetic(t *testing.T) {
	n, diags := Parse([]byte("1 + 2 * 3"))
	require.Empty(t, diags)
	add, ok := n.(*syntax.BinOp)
	require.True(t, ok)
	require.Equal(t, syntax.OpAdd, add.Op)
	mul, ok := add.Right.(*syntax.BinOp)
	require.True(t, ok)
	require.Equal(t, syntax.OpMul, mul.Op)
}

func TestParseUpdateIsRightAssociative(t *testing.T) {
	n, diags := Parse([]byte("a // b // c"))
	require.Empty(t, diags)
	top, ok := n.(*syntax.BinOp)
	require.True(t, ok)
	require.Equal(t, syntax.OpUpdate, top.Op)
	require.Equal(t, "a", top.Left.(*syntax.Var).Name)
	rhs, ok := top.Right.(*syntax.BinOp)
	require.True(t, ok)
	require.Equal(t, syntax.OpUpdate, rhs.Op)
}

func TestParseSelectWithDefault(t *testing.T) {
	n, diags := Parse([]byte("a.b.c or 1"))
	require.Empty(t, diags)
	sel, ok := n.(*syntax.Select)
	require.True(t, ok)
	require.NotNil(t, sel.Default)
	require.Len(t, sel.Path.Names, 2)
}

func TestParseHasAttr(t *testing.T) {
	n, diags := Parse([]byte("a ? b.c"))
	require.Empty(t, diags)
	has, ok := n.(*syntax.BinOp)
	require.True(t, ok)
	require.Equal(t, syntax.OpHasAttr, has.Op)
	_, ok = has.Right.(*syntax.AttrPath)
	require.True(t, ok)
}

func TestParseApplicationIsLeftAssociative(t *testing.T) {
	n, diags := Parse([]byte("f a b"))
	require.Empty(t, diags)
	outer, ok := n.(*syntax.Call)
	require.True(t, ok)
	require.Equal(t, "b", outer.Arg.(*syntax.Var).Name)
	inner, ok := outer.Fn.(*syntax.Call)
	require.True(t, ok)
	require.Equal(t, "f", inner.Fn.(*syntax.Var).Name)
	require.Equal(t, "a", inner.Arg.(*syntax.Var).Name)
}

func TestParseIfThenElse(t *testing.T) {
	n, diags := Parse([]byte("if a then b else c"))
	require.Empty(t, diags)
	i, ok := n.(*syntax.If)
	require.True(t, ok)
	require.Equal(t, "a", i.Cond.(*syntax.Var).Name)
}

func TestParseAssert(t *testing.T) {
	n, diags := Parse([]byte("assert a; b"))
	require.Empty(t, diags)
	a, ok := n.(*syntax.Assert)
	require.True(t, ok)
	require.Equal(t, "a", a.Cond.(*syntax.Var).Name)
	require.Equal(t, "b", a.Body.(*syntax.Var).Name)
}

func TestParseInheritPlain(t *testing.T) {
	n, diags := Parse([]byte("{ inherit a b; }"))
	require.Empty(t, diags)
	attrs := n.(*syntax.Attrs)
	require.Len(t, attrs.Binds, 1)
	in, ok := attrs.Binds[0].(*syntax.Inherit)
	require.True(t, ok)
	require.Nil(t, in.Expr)
	require.Len(t, in.Names, 2)
}

func TestParseInheritFromExpr(t *testing.T) {
	n, diags := Parse([]byte("{ inherit (pkgs) hello world; }"))
	require.Empty(t, diags)
	attrs := n.(*syntax.Attrs)
	in := attrs.Binds[0].(*syntax.Inherit)
	require.NotNil(t, in.Expr)
	require.Len(t, in.Names, 2)
}

func TestParseEmptyInheritWarns(t *testing.T) {
	_, diags := Parse([]byte("{ inherit; }"))
	require.NotEmpty(t, diags)
	require.Equal(t, "empty-inherit", diags[len(diags)-1].ShortName())
}

func TestParseMissingClosingBraceNotesOpenDelimiter(t *testing.T) {
	_, diags := Parse([]byte("{ a = 1;"))
	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if len(d.Notes) > 0 {
			found = true
		}
	}
	require.True(t, found, "expected a diagnostic with a note pointing at the unclosed '{'")
}

func TestParseOrUsedAsIdentifierHints(t *testing.T) {
	n, diags := Parse([]byte("{ or = 1; }"))
	require.Len(t, diags, 1)
	require.Equal(t, "or-identifier", diags[0].ShortName())
	attrs := n.(*syntax.Attrs)
	b := attrs.Binds[0].(*syntax.Binding)
	require.Equal(t, "or", b.Path.Names[0].StaticName())
}

func TestParseStringInterpolation(t *testing.T) {
	n, diags := Parse([]byte(`"hi ${x}!"`))
	require.Empty(t, diags)
	s, ok := n.(*syntax.String)
	require.True(t, ok)
	require.Len(t, s.Parts, 3)
	require.Equal(t, "hi ", s.Parts[0].Escaped)
	require.Equal(t, "x", s.Parts[1].Interp.(*syntax.Var).Name)
	require.Equal(t, "!", s.Parts[2].Escaped)
}

func TestParsePathWithInterpolation(t *testing.T) {
	n, diags := Parse([]byte("./foo/${bar}/baz")) // path with a dynamic segment
	require.Empty(t, diags)
	p, ok := n.(*syntax.Path)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(p.Parts), 2)
}

func TestParseSearchPath(t *testing.T) {
	n, diags := Parse([]byte("<nixpkgs>"))
	require.Empty(t, diags)
	_, ok := n.(*syntax.Path)
	require.True(t, ok)
}

func TestParseListOfApplications(t *testing.T) {
	n, diags := Parse([]byte("[ 1 2 (f 3) ]"))
	require.Empty(t, diags)
	l, ok := n.(*syntax.List)
	require.True(t, ok)
	require.Len(t, l.Elems, 3)
}
