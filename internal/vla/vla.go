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

// Package vla performs variable-lookup analysis: a top-down walk that
// builds the static scope stack and resolves every Var node to a Definition, a dynamic with-scope, or
// "undefined", per spec §4.4.
package vla

import "github.com/nix-community/nixd-sub001/internal/syntax"

// DefKind classifies where a Definition came from.
type DefKind int

const (
	DefLet DefKind = iota
	DefRecAttr
	DefFormal
	DefArg
	DefBuiltin
	// DefWith exists for completeness; VLA itself never constructs a
	// Definition of this kind, since with-scope names are not known until
	// evaluation (see LookupResult.Kind == FromWith instead).
	DefWith
)

// Definition is a name bound by a let, a rec attribute set, a lambda
// formal or @-pattern, or a builtin.
type Definition struct {
	Name string
	Site syntax.Node
	Kind DefKind
}

// ScopeKind distinguishes a with-scope (whose names are unknown until
// evaluation) from every statically-resolvable scope kind.
type ScopeKind int

const (
	ScopeRoot ScopeKind = iota
	ScopeLet
	ScopeAttrs
	ScopeLambda
	ScopeWith
)

// Scope is one level of the static scope stack.
type Scope struct {
	Parent *Scope
	Kind   ScopeKind
	Defs   map[string]*Definition
}

// ResultKind is the outcome of resolving a name.
type ResultKind int

const (
	Defined ResultKind = iota
	FromWith
	Undefined
	// NoSuchVariable is not produced by Lookup or by the tree walk; both
	// report a name with no definition and no enclosing with-scope as
	// Undefined.
	NoSuchVariable
)

// LookupResult is attached to every syntax.Var node (via its Lookup
// field) and can be recomputed for an arbitrary name/scope pair with
// Lookup.
type LookupResult struct {
	Kind      ResultKind
	Def       *Definition
	WithScope *Scope
}

// Analysis is the result of analyzing one translation unit's tree.
type Analysis struct {
	Root *Scope
	Vars map[*syntax.Var]*LookupResult
}

// Analyze walks root's tree and resolves every Var node. The root scope
// is preloaded with Builtins().
func Analyze(root syntax.Node) *Analysis {
	a := &Analysis{
		Root: &Scope{Kind: ScopeRoot, Defs: builtinDefs()},
		Vars: map[*syntax.Var]*LookupResult{},
	}
	a.walk(root, a.Root)
	return a
}

// Lookup resolves name starting at scope, walking outward. Non-with
// scopes are checked first at each level; if no static binding is found
// anywhere, the nearest enclosing with-scope (if any) wins.
func Lookup(name string, scope *Scope) *LookupResult {
	var nearestWith *Scope
	for s := scope; s != nil; s = s.Parent {
		if s.Kind == ScopeWith {
			if nearestWith == nil {
				nearestWith = s
			}
			continue
		}
		if d, ok := s.Defs[name]; ok {
			return &LookupResult{Kind: Defined, Def: d}
		}
	}
	if nearestWith != nil {
		return &LookupResult{Kind: FromWith, WithScope: nearestWith}
	}
	return &LookupResult{Kind: Undefined}
}

func (a *Analysis) walk(n syntax.Node, scope *Scope) {
	if n == nil {
		return
	}
	switch v := n.(type) {
	case *syntax.Var:
		res := Lookup(v.Name, scope)
		v.Lookup = res
		a.Vars[v] = res
	case *syntax.Let:
		inner := &Scope{Parent: scope, Kind: ScopeLet, Defs: defsFromBinds(v.Binds, DefLet)}
		a.walkBinds(v.Binds, scope, inner)
		a.walk(v.Body, inner)
	case *syntax.With:
		a.walk(v.Scope, scope)
		withScope := &Scope{Parent: scope, Kind: ScopeWith, Defs: map[string]*Definition{}}
		a.walk(v.Body, withScope)
	case *syntax.Lambda:
		defs := map[string]*Definition{}
		if v.Param != "" {
			defs[v.Param] = &Definition{Name: v.Param, Site: v, Kind: DefArg}
		}
		if v.AtName != "" {
			defs[v.AtName] = &Definition{Name: v.AtName, Site: v, Kind: DefArg}
		}
		for _, f := range v.Formals {
			defs[f.Name] = &Definition{Name: f.Name, Site: f, Kind: DefFormal}
		}
		inner := &Scope{Parent: scope, Kind: ScopeLambda, Defs: defs}
		for _, f := range v.Formals {
			a.walk(f.Default, inner)
		}
		a.walk(v.Body, inner)
	case *syntax.Attrs:
		target := scope
		if v.Recursive {
			target = &Scope{Parent: scope, Kind: ScopeAttrs, Defs: defsFromBinds(v.Binds, DefRecAttr)}
		}
		a.walkBinds(v.Binds, scope, target)
	default:
		for _, c := range n.Children() {
			a.walk(c, scope)
		}
	}
}

// walkBinds walks each binding's value (and any dynamic attr-name
// expressions) in valueScope, but an inherit's source expression
// ("inherit (E) ...") in outerScope: E is never recursively visible to
// the bindings it is feeding.
func (a *Analysis) walkBinds(binds []syntax.BindingOrInherit, outerScope, valueScope *Scope) {
	for _, b := range binds {
		switch n := b.(type) {
		case *syntax.Binding:
			a.walk(n, valueScope)
		case *syntax.Inherit:
			if n.Expr != nil {
				a.walk(n.Expr, outerScope)
			}
		}
	}
}

func defsFromBinds(binds []syntax.BindingOrInherit, kind DefKind) map[string]*Definition {
	defs := map[string]*Definition{}
	for _, b := range binds {
		switch n := b.(type) {
		case *syntax.Binding:
			if len(n.Path.Names) == 0 {
				continue
			}
			name := n.Path.Names[0]
			if !name.IsStatic() {
				continue
			}
			key := name.StaticName()
			defs[key] = &Definition{Name: key, Site: name, Kind: kind}
		case *syntax.Inherit:
			for _, name := range n.Names {
				if !name.IsStatic() {
					continue
				}
				key := name.StaticName()
				defs[key] = &Definition{Name: key, Site: name, Kind: kind}
			}
		}
	}
	return defs
}

// builtinNames is the fixed table of names preloaded into the root
// scope: Nix constants and a representative slice of builtins.* primops
// and top-level aliases, enough to resolve common expressions without
// flagging them "undefined".
var builtinNames = []string{
	"true", "false", "null", "builtins", "import", "abort", "throw",
	"map", "filter", "foldl'", "toString", "isNull", "isString", "isInt",
	"isBool", "isFloat", "isList", "isAttrs", "isFunction", "isPath",
	"length", "head", "tail", "elemAt", "elem", "concatLists", "genList",
	"attrNames", "attrValues", "getAttr", "hasAttr", "removeAttrs",
	"listToAttrs", "derivation", "fetchTarball", "fetchGit", "toFile",
	"toJSON", "fromJSON", "toXML", "readFile", "readDir", "pathExists",
	"dirOf", "baseNameOf", "placeholder", "trace", "seq", "deepSeq",
	"scopedImport", "typeOf", "compareVersions", "splitVersion",
	"substring", "stringLength", "replaceStrings", "split", "match",
	"concatStringsSep", "add", "sub", "mul", "div", "lessThan",
}

func builtinDefs() map[string]*Definition {
	defs := make(map[string]*Definition, len(builtinNames))
	for _, name := range builtinNames {
		defs[name] = &Definition{Name: name, Kind: DefBuiltin}
	}
	return defs
}
