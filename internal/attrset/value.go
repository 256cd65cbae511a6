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

// Package attrset implements the attribute-set worker's evaluation
// core (spec §4.7). Spec §1 treats "the Nix evaluator library that the
// attribute-set worker embeds" as an external, opaque collaborator
// ("evaluate expression -> value, traverse attributes, read
// positions"); no such library is importable from pure Go (the pack
// carries no cgo-bound Nix evaluator), so this package plays that role
// itself, directly, as a small self-contained evaluator over
// internal/syntax's CST and internal/lower's SemaAttrs. It supports the
// literal, composable subset of Nix an editor completion/hover session
// actually walks — attribute sets, lists, selects, let, strings, paths,
// arithmetic and comparison — and reports a typed evaluation error for
// anything that needs real primops (imports, fetchers, derivation
// builds), which is consistent with spec §1's Non-goal of "executing Nix
// code inside the controller/worker" for anything beyond value
// inspection.
package attrset

import (
	"fmt"
	"sort"
)

// Kind discriminates a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindPath
	KindList
	KindAttrs
	KindLambda
	KindPrimop
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindPath:
		return "path"
	case KindList:
		return "list"
	case KindAttrs:
		return "attrs"
	case KindLambda:
		return "lambda"
	case KindPrimop:
		return "primop"
	default:
		return "unknown"
	}
}

// Value is the runtime representation this evaluator produces. Only one
// of the typed fields is meaningful, selected by Kind; this mirrors the
// tagged-union discipline internal/syntax.Node already uses for CST
// nodes (spec §9's "deep inheritance" redesign note applies equally
// here).
type Value struct {
	Kind Kind

	Bool   bool
	Int    int64
	Float  float64
	Str    string
	List   []*Value
	Attrs  map[string]*Value
	// Position is the best-known source location the value was produced
	// at, formatted "line:col", used by attrpathInfo's "position" field.
	Position string
	// Doc/Arity/Args describe a Lambda or Primop, consumed by
	// attrpathInfo's primop/lambda metadata (spec §4.7).
	Doc   string
	Arity int
	Args  []string
}

func Null() *Value                  { return &Value{Kind: KindNull} }
func Bool(b bool) *Value            { return &Value{Kind: KindBool, Bool: b} }
func Int(i int64) *Value            { return &Value{Kind: KindInt, Int: i} }
func Float(f float64) *Value        { return &Value{Kind: KindFloat, Float: f} }
func Str(s string) *Value           { return &Value{Kind: KindString, Str: s} }
func Path(s string) *Value          { return &Value{Kind: KindPath, Str: s} }
func List(items []*Value) *Value    { return &Value{Kind: KindList, List: items} }
func Attrs(m map[string]*Value) *Value {
	if m == nil {
		m = map[string]*Value{}
	}
	return &Value{Kind: KindAttrs, Attrs: m}
}

// SortedAttrNames returns v's attribute names in lexicographic order,
// the ordering attrpathComplete/optionComplete must return (spec §8
// scenario 7: "in lexicographic order").
func (v *Value) SortedAttrNames() []string {
	if v == nil || v.Kind != KindAttrs {
		return nil
	}
	names := make([]string, 0, len(v.Attrs))
	for k := range v.Attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// TypeName renders the Nix-visible type name for v, used by
// attrpathInfo's ValueMeta.Type.
func (v *Value) TypeName() string {
	if v == nil {
		return "null"
	}
	return v.Kind.String()
}

func (v *Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindString:
		return v.Str
	case KindPath:
		return v.Str
	default:
		return fmt.Sprintf("<%s>", v.Kind)
	}
}
