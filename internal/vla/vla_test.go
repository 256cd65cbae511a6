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

package vla

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

func TestAnalyzeLetBindingResolves(t *testing.T) {
	n := parseOne(t, "let x = 1; in x")
	a := Analyze(n)
	let := n.(*syntax.Let)
	v := let.Body.(*syntax.Var)
	res := v.Lookup.(*LookupResult)
	require.Equal(t, Defined, res.Kind)
	require.Equal(t, DefLet, res.Def.Kind)
	require.Same(t, res, a.Vars[v])
}

func TestAnalyzeWithScopeFromWith(t *testing.T) {
	n := parseOne(t, "with pkgs; hello")
	w := n.(*syntax.With)
	Analyze(n)
	pkgs := w.Scope.(*syntax.Var)
	hello := w.Body.(*syntax.Var)
	require.Equal(t, Undefined, pkgs.Lookup.(*LookupResult).Kind)
	require.Equal(t, FromWith, hello.Lookup.(*LookupResult).Kind)
}

func TestAnalyzeBuiltinResolves(t *testing.T) {
	n := parseOne(t, "true")
	Analyze(n)
	v := n.(*syntax.Var)
	require.Equal(t, Defined, v.Lookup.(*LookupResult).Kind)
	require.Equal(t, DefBuiltin, v.Lookup.(*LookupResult).Def.Kind)
}

func TestAnalyzeLambdaParamShadowsOuter(t *testing.T) {
	n := parseOne(t, "let x = 1; in (x: x) 2")
	Analyze(n)
	let := n.(*syntax.Let)
	call := let.Body.(*syntax.Call)
	lambda := call.Fn.(*syntax.ParenExpr).Inner.(*syntax.Lambda)
	inner := lambda.Body.(*syntax.Var)
	require.Equal(t, Defined, inner.Lookup.(*LookupResult).Kind)
	require.Equal(t, DefArg, inner.Lookup.(*LookupResult).Def.Kind)
}

func TestAnalyzeRecAttrsSeesSiblings(t *testing.T) {
	n := parseOne(t, "rec { a = 1; b = a; }")
	Analyze(n)
	attrs := n.(*syntax.Attrs)
	b := attrs.Binds[1].(*syntax.Binding)
	v := b.Value.(*syntax.Var)
	require.Equal(t, Defined, v.Lookup.(*LookupResult).Kind)
	require.Equal(t, DefRecAttr, v.Lookup.(*LookupResult).Def.Kind)
}

func TestAnalyzePlainAttrsDoesNotSeeSiblings(t *testing.T) {
	n := parseOne(t, "{ a = 1; b = a; }")
	Analyze(n)
	attrs := n.(*syntax.Attrs)
	b := attrs.Binds[1].(*syntax.Binding)
	v := b.Value.(*syntax.Var)
	require.Equal(t, Undefined, v.Lookup.(*LookupResult).Kind)
}

func TestLookupIsAFunction(t *testing.T) {
	scope := &Scope{Kind: ScopeLet, Defs: map[string]*Definition{"x": {Name: "x", Kind: DefLet}}}
	r1 := Lookup("x", scope)
	r2 := Lookup("x", scope)
	require.Equal(t, r1.Kind, r2.Kind)
	require.Equal(t, r1.Def, r2.Def)
}

func TestAnalyzeUndefinedVariable(t *testing.T) {
	n := parseOne(t, "thisIsNotBound")
	Analyze(n)
	v := n.(*syntax.Var)
	require.Equal(t, Undefined, v.Lookup.(*LookupResult).Kind)
}
