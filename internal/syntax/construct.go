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

package syntax

import "github.com/nix-community/nixd-sub001/internal/position"

// This file collects the exported constructors internal/parser uses to
// build CST nodes. base's field stays unexported so that every node's
// Range is fixed at construction time.

func NewInt(rng position.Range, value int64) *Int {
	return &Int{base: base{Rng: rng}, Value: value}
}

func NewFloat(rng position.Range, value float64) *Float {
	return &Float{base: base{Rng: rng}, Value: value}
}

func NewString(rng position.Range, parts []InterpPart, indented bool) *String {
	return &String{base: base{Rng: rng}, Parts: parts, Indented: indented}
}

func NewPath(rng position.Range, parts []InterpPart) *Path {
	return &Path{base: base{Rng: rng}, Parts: parts}
}

func NewURI(rng position.Range, value string) *URI {
	return &URI{base: base{Rng: rng}, Value: value}
}

func NewAttrNameIdent(rng position.Range, ident string) *AttrName {
	return &AttrName{base: base{Rng: rng}, NameKind: AttrNameID, Ident: ident}
}

func NewAttrNameString(rng position.Range, str *String) *AttrName {
	return &AttrName{base: base{Rng: rng}, NameKind: AttrNameString, Str: str}
}

func NewAttrNameInterp(rng position.Range, dyn Node) *AttrName {
	return &AttrName{base: base{Rng: rng}, NameKind: AttrNameInterp, Dyn: dyn}
}

func NewAttrPath(rng position.Range, names []*AttrName) *AttrPath {
	return &AttrPath{base: base{Rng: rng}, Names: names}
}

func NewBinding(rng position.Range, path *AttrPath, value Node) *Binding {
	return &Binding{base: base{Rng: rng}, Path: path, Value: value}
}

func NewInherit(rng position.Range, expr Node, names []*AttrName) *Inherit {
	return &Inherit{base: base{Rng: rng}, Expr: expr, Names: names}
}

func NewVar(rng position.Range, name string) *Var {
	return &Var{base: base{Rng: rng}, Name: name}
}

func NewSelect(rng position.Range, target Node, path *AttrPath, def Node) *Select {
	return &Select{base: base{Rng: rng}, Target: target, Path: path, Default: def}
}

func NewCall(rng position.Range, fn, arg Node) *Call {
	return &Call{base: base{Rng: rng}, Fn: fn, Arg: arg}
}

func NewList(rng position.Range, elems []Node) *List {
	return &List{base: base{Rng: rng}, Elems: elems}
}

func NewAttrs(rng position.Range, rec bool, binds []BindingOrInherit) *Attrs {
	return &Attrs{base: base{Rng: rng}, Recursive: rec, Binds: binds}
}

func NewFormal(rng position.Range, name string, def Node) *Formal {
	return &Formal{base: base{Rng: rng}, Name: name, Default: def}
}

func NewLambda(rng position.Range, param string, formals []*Formal, ellipsis bool, atName string, body Node) *Lambda {
	return &Lambda{base: base{Rng: rng}, Param: param, Formals: formals, Ellipsis: ellipsis, AtName: atName, Body: body}
}

func NewLet(rng position.Range, binds []BindingOrInherit, body Node) *Let {
	return &Let{base: base{Rng: rng}, Binds: binds, Body: body}
}

func NewWith(rng position.Range, scope, body Node) *With {
	return &With{base: base{Rng: rng}, Scope: scope, Body: body}
}

func NewIf(rng position.Range, cond, then, els Node) *If {
	return &If{base: base{Rng: rng}, Cond: cond, Then: then, Else: els}
}

func NewAssert(rng position.Range, cond, body Node) *Assert {
	return &Assert{base: base{Rng: rng}, Cond: cond, Body: body}
}

func NewParenExpr(rng position.Range, lparen position.Range, inner Node, rparen *position.Range) *ParenExpr {
	return &ParenExpr{base: base{Rng: rng}, LParen: lparen, Inner: inner, RParen: rparen}
}

func NewBinOp(rng position.Range, op BinOpKind, left, right Node) *BinOp {
	return &BinOp{base: base{Rng: rng}, Op: op, Left: left, Right: right}
}

func NewUnaryOp(rng position.Range, op UnaryOpKind, operand Node) *UnaryOp {
	return &UnaryOp{base: base{Rng: rng}, Op: op, Operand: operand}
}

func NewBad(rng position.Range) *Bad {
	return &Bad{base: base{Rng: rng}}
}
