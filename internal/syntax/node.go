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

// Package syntax declares the concrete syntax tree (CST) produced by
// internal/parser. Every node carries a position.Range and exposes its
// children in document order, per spec §3; kinds are modelled as a tagged
// enum with per-variant struct payload rather than a class hierarchy, per
// spec §9's "deep inheritance of expression kinds" redesign note.
package syntax

import "github.com/nix-community/nixd-sub001/internal/position"

// Kind discriminates a Node.
type Kind int

const (
	// KindInvalid is returned by Kind() for node types that are not
	// themselves expressions (AttrName, AttrPath, Binding, Inherit,
	// Formal): they carry a range and children like every Node, but have
	// no expression kind of their own, so ParentMap.UpExpr must skip past
	// them. Unlike KindBad (a recovered expression placeholder), a
	// KindInvalid node is never the answer to "nearest enclosing
	// expression".
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindString
	KindPath
	KindURI
	KindVar
	KindSelect
	KindCall
	KindList
	KindAttrs
	KindLambda
	KindLet
	KindWith
	KindIf
	KindAssert
	KindParenExpr
	KindBinOp
	KindUnaryOp
	KindBad
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindPath:
		return "Path"
	case KindURI:
		return "URI"
	case KindVar:
		return "Var"
	case KindSelect:
		return "Select"
	case KindCall:
		return "Call"
	case KindList:
		return "List"
	case KindAttrs:
		return "Attrs"
	case KindLambda:
		return "Lambda"
	case KindLet:
		return "Let"
	case KindWith:
		return "With"
	case KindIf:
		return "If"
	case KindAssert:
		return "Assert"
	case KindParenExpr:
		return "ParenExpr"
	case KindBinOp:
		return "BinOp"
	case KindUnaryOp:
		return "UnaryOp"
	case KindBad:
		return "Bad"
	default:
		return "Unknown"
	}
}

// IsExpr reports whether k is one of the expression kinds; used by
// ParentMap.UpExpr (spec §4.5). KindBad counts (it stands in for an
// expression the parser could not recover); KindInvalid does not.
func (k Kind) IsExpr() bool { return k != KindInvalid }

// Node is implemented by every CST node. Lifetime is owned by the node's
// parent; the root owns the whole tree (spec §3).
type Node interface {
	Kind() Kind
	Range() position.Range
	Children() []Node
}

type base struct {
	Rng position.Range
}

func (b base) Range() position.Range { return b.Rng }

// ---- Literals ----

type Int struct {
	base
	Value int64
}

func (*Int) Kind() Kind          { return KindInt }
func (*Int) Children() []Node    { return nil }

type Float struct {
	base
	Value float64
}

func (*Float) Kind() Kind       { return KindFloat }
func (*Float) Children() []Node { return nil }

// InterpPart is one element of an interpolable sequence (spec §3): either
// a literal escaped run of text, or an embedded expression.
type InterpPart struct {
	Escaped string // valid iff Interp == nil
	Interp  Node   // valid iff non-nil; always an expression Node
}

type String struct {
	base
	Parts []InterpPart
	// Indented marks a ''...'' string, whose leading whitespace is folded
	// by internal/lower per spec §4.3.
	Indented bool
}

func (*String) Kind() Kind { return KindString }
func (s *String) Children() []Node {
	var out []Node
	for _, p := range s.Parts {
		if p.Interp != nil {
			out = append(out, p.Interp)
		}
	}
	return out
}

type Path struct {
	base
	Parts []InterpPart
}

func (*Path) Kind() Kind { return KindPath }
func (p *Path) Children() []Node {
	var out []Node
	for _, part := range p.Parts {
		if part.Interp != nil {
			out = append(out, part.Interp)
		}
	}
	return out
}

type URI struct {
	base
	Value string
}

func (*URI) Kind() Kind       { return KindURI }
func (*URI) Children() []Node { return nil }

// ---- Names / attr paths ----

// AttrNameKind discriminates an AttrName.
type AttrNameKind int

const (
	AttrNameID AttrNameKind = iota
	AttrNameString
	AttrNameInterp
)

// AttrName is one element of an AttrPath: an identifier, a literal string,
// or a non-literal (dynamic) interpolation.
type AttrName struct {
	base
	NameKind AttrNameKind
	Ident    string // valid iff NameKind == AttrNameID
	Str      *String
	Dyn      Node // valid iff NameKind == AttrNameInterp; a non-literal expr
}

func (n *AttrName) Kind() Kind { return KindInvalid } // not itself an expression
func (n *AttrName) Children() []Node {
	switch n.NameKind {
	case AttrNameString:
		if n.Str != nil {
			return []Node{n.Str}
		}
	case AttrNameInterp:
		if n.Dyn != nil {
			return []Node{n.Dyn}
		}
	}
	return nil
}

// IsStatic reports whether the name is known without evaluation: an
// identifier, or a string literal with no interpolations (spec §3).
func (n *AttrName) IsStatic() bool {
	switch n.NameKind {
	case AttrNameID:
		return true
	case AttrNameString:
		if n.Str == nil {
			return false
		}
		for _, p := range n.Str.Parts {
			if p.Interp != nil {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// StaticName returns the literal name for a static AttrName; it panics if
// !IsStatic(), since callers are expected to check first.
func (n *AttrName) StaticName() string {
	switch n.NameKind {
	case AttrNameID:
		return n.Ident
	case AttrNameString:
		var b []byte
		for _, p := range n.Str.Parts {
			b = append(b, p.Escaped...)
		}
		return string(b)
	default:
		panic("syntax: StaticName called on dynamic AttrName")
	}
}

// AttrPath is an ordered, non-empty sequence of AttrName.
type AttrPath struct {
	base
	Names []*AttrName
}

func (p *AttrPath) Kind() Kind { return KindInvalid }
func (p *AttrPath) Children() []Node {
	out := make([]Node, len(p.Names))
	for i, n := range p.Names {
		out[i] = n
	}
	return out
}

// ---- Bindings ----

// Binding is a "path = value;" entry. Value is nil for a binding whose
// value failed to parse (error recovery left a hole).
type Binding struct {
	base
	Path  *AttrPath
	Value Node
}

func (b *Binding) Kind() Kind { return KindInvalid }
func (b *Binding) Children() []Node {
	out := []Node{b.Path}
	if b.Value != nil {
		out = append(out, b.Value)
	}
	return out
}

// Inherit is an "inherit [(expr)] names...;" entry.
type Inherit struct {
	base
	Expr  Node // nil if there is no source expression
	Names []*AttrName
}

func (in *Inherit) Kind() Kind { return KindInvalid }
func (in *Inherit) Children() []Node {
	var out []Node
	if in.Expr != nil {
		out = append(out, in.Expr)
	}
	for _, n := range in.Names {
		out = append(out, n)
	}
	return out
}

// BindingOrInherit is implemented by *Binding and *Inherit.
type BindingOrInherit interface {
	Node
	bindingOrInherit()
}

func (*Binding) bindingOrInherit() {}
func (*Inherit) bindingOrInherit() {}

// ---- Expressions ----

type Var struct {
	base
	Name string
	// Lookup is populated by internal/vla with a *vla.LookupResult; any to
	// avoid an import cycle, mirroring Attrs.Sema.
	Lookup any
}

func (*Var) Kind() Kind       { return KindVar }
func (*Var) Children() []Node { return nil }

type Select struct {
	base
	Target  Node
	Path    *AttrPath
	Default Node // non-nil iff "expr.path or default"
}

func (*Select) Kind() Kind { return KindSelect }
func (s *Select) Children() []Node {
	out := []Node{s.Target, s.Path}
	if s.Default != nil {
		out = append(out, s.Default)
	}
	return out
}

type Call struct {
	base
	Fn  Node
	Arg Node
}

func (*Call) Kind() Kind          { return KindCall }
func (c *Call) Children() []Node { return []Node{c.Fn, c.Arg} }

type List struct {
	base
	Elems []Node
}

func (*List) Kind() Kind        { return KindList }
func (l *List) Children() []Node { return l.Elems }

// Attrs is a { ... } or rec { ... } literal. Sema is populated by
// internal/lower and is the back-pointer spec §3 requires.
type Attrs struct {
	base
	Recursive bool
	Binds     []BindingOrInherit
	Sema      any // *lower.SemaAttrs; any to avoid an import cycle
}

func (*Attrs) Kind() Kind { return KindAttrs }
func (a *Attrs) Children() []Node {
	out := make([]Node, len(a.Binds))
	for i, b := range a.Binds {
		out[i] = b
	}
	return out
}

// Formal is one "name" or "name ? default" entry in a lambda's formals.
type Formal struct {
	base
	Name    string
	Default Node // non-nil iff there is a default
}

func (f *Formal) Kind() Kind { return KindInvalid }
func (f *Formal) Children() []Node {
	if f.Default != nil {
		return []Node{f.Default}
	}
	return nil
}

// Lambda covers all three Nix parameter forms: a plain identifier, a
// "{ formals }" pattern, and the combined "name@{ formals }"/"{ formals
// }@name" form. AtName is "" when there is no '@' binding.
type Lambda struct {
	base
	Param      string // simple identifier form; "" if Formals != nil
	Formals    []*Formal
	Ellipsis   bool
	AtName     string
	Body       Node
}

func (*Lambda) Kind() Kind { return KindLambda }
func (l *Lambda) Children() []Node {
	var out []Node
	for _, f := range l.Formals {
		out = append(out, f)
	}
	if l.Body != nil {
		out = append(out, l.Body)
	}
	return out
}

type Let struct {
	base
	Binds []BindingOrInherit
	Body  Node
}

func (*Let) Kind() Kind { return KindLet }
func (l *Let) Children() []Node {
	out := make([]Node, len(l.Binds))
	for i, b := range l.Binds {
		out[i] = b
	}
	if l.Body != nil {
		out = append(out, l.Body)
	}
	return out
}

type With struct {
	base
	Scope Node
	Body  Node
}

func (*With) Kind() Kind { return KindWith }
func (w *With) Children() []Node {
	out := []Node{w.Scope}
	if w.Body != nil {
		out = append(out, w.Body)
	}
	return out
}

type If struct {
	base
	Cond, Then, Else Node
}

func (*If) Kind() Kind { return KindIf }
func (i *If) Children() []Node {
	out := []Node{i.Cond}
	if i.Then != nil {
		out = append(out, i.Then)
	}
	if i.Else != nil {
		out = append(out, i.Else)
	}
	return out
}

type Assert struct {
	base
	Cond Node
	Body Node
}

func (*Assert) Kind() Kind { return KindAssert }
func (a *Assert) Children() []Node {
	out := []Node{a.Cond}
	if a.Body != nil {
		out = append(out, a.Body)
	}
	return out
}

// ParenExpr retains both delimiter positions, per spec §4.2; RParen is
// nil when recovery never found a closing paren.
type ParenExpr struct {
	base
	LParen position.Range
	Inner  Node
	RParen *position.Range // nil if missing
}

func (*ParenExpr) Kind() Kind { return KindParenExpr }
func (p *ParenExpr) Children() []Node {
	if p.Inner != nil {
		return []Node{p.Inner}
	}
	return nil
}

// BinOpKind names a binary operator. Its values are independent of
// token.Kind; the parser maps each operator token to its BinOpKind.
type BinOpKind int

const (
	OpOr BinOpKind = iota
	OpAnd
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpUpdate
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpConcat
	OpImplies // ->
	OpHasAttr // ?
)

type BinOp struct {
	base
	Op          BinOpKind
	Left, Right Node
}

func (*BinOp) Kind() Kind { return KindBinOp }
func (b *BinOp) Children() []Node {
	var out []Node
	if b.Left != nil {
		out = append(out, b.Left)
	}
	if b.Right != nil {
		out = append(out, b.Right)
	}
	return out
}

type UnaryOpKind int

const (
	OpNeg UnaryOpKind = iota
	OpNot
)

type UnaryOp struct {
	base
	Op      UnaryOpKind
	Operand Node
}

func (*UnaryOp) Kind() Kind { return KindUnaryOp }
func (u *UnaryOp) Children() []Node {
	if u.Operand != nil {
		return []Node{u.Operand}
	}
	return nil
}

// Bad is a placeholder for a syntax region the parser could not make
// sense of at all; it always carries at least one diagnostic.
type Bad struct {
	base
}

func (*Bad) Kind() Kind       { return KindBad }
func (*Bad) Children() []Node { return nil }
