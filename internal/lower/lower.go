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

// Package lower desugars an Attrs CST node into a SemaAttrs: nested
// attribute paths are folded into a tree, duplicate static names are
// flagged, and indented-string literals are dedented. It is a pure
// function of the CST plus diagnostics; it never mutates Binds.
package lower

import (
	"strings"

	"github.com/nix-community/nixd-sub001/internal/diag"
	"github.com/nix-community/nixd-sub001/internal/syntax"
)

// DynamicAttr is a binding whose name could not be resolved statically,
// either because it is a string interpolation or because a prefix
// element of its attribute path is dynamic.
type DynamicAttr struct {
	Key   syntax.Node // the dynamic AttrName (or the AttrPath, for a dynamic prefix)
	Value syntax.Node
}

// AttrBody is the value half of a static attribute: either a leaf
// expression or a nested attribute set produced by folding a multi-part
// attribute path (or a literal nested Attrs) into this one.
type AttrBody struct {
	Inherited bool
	NameNode  *syntax.AttrName
	Value     syntax.Node // nil when Nested != nil
	Nested    *SemaAttrs  // nil when Value != nil
}

// SemaAttrs is the lowered form of a syntax.Attrs node, per spec §3/§4.3.
type SemaAttrs struct {
	Recursive bool
	Static    map[string]*AttrBody
	Dynamic   []DynamicAttr
}

// Lower desugars attrs into a SemaAttrs, collecting diagnostics for
// duplicate and malformed bindings. Nested Attrs literals reachable as a
// binding's value (or the fold target of a multi-segment attribute
// path) are lowered too and linked via AttrBody.Nested; if such a node
// was already lowered (its Sema field is set), that result is reused
// rather than recomputed, so repeated lowering of a tree is idempotent
// and does not duplicate diagnostics.
func Lower(attrs *syntax.Attrs) (*SemaAttrs, diag.List) {
	sema := &SemaAttrs{Recursive: attrs.Recursive, Static: map[string]*AttrBody{}}
	var diags diag.List
	for _, b := range attrs.Binds {
		switch n := b.(type) {
		case *syntax.Binding:
			lowerBinding(sema, n, &diags)
		case *syntax.Inherit:
			lowerInherit(sema, n, &diags)
		}
	}
	return sema, diags
}

// LowerTree walks the whole expression tree and lowers every Attrs node
// it finds, in post-order so nested literals are lowered before the
// Attrs that contains them, and dedents every indented string. Nodes
// that already carry a Sema value are left alone.
func LowerTree(root syntax.Node) diag.List {
	var diags diag.List
	syntax.Walk(root, syntax.Visitor{Post: func(n syntax.Node) {
		switch v := n.(type) {
		case *syntax.Attrs:
			if v.Sema == nil {
				sema, ds := Lower(v)
				v.Sema = sema
				diags = append(diags, ds...)
			}
		case *syntax.String:
			dedentIndentedString(v)
		}
	}})
	return diags
}

func lowerOrReuse(a *syntax.Attrs, diags *diag.List) *SemaAttrs {
	if existing, ok := a.Sema.(*SemaAttrs); ok && existing != nil {
		return existing
	}
	sema, ds := Lower(a)
	a.Sema = sema
	*diags = append(*diags, ds...)
	return sema
}

func lowerBinding(sema *SemaAttrs, b *syntax.Binding, diags *diag.List) {
	names := b.Path.Names
	cur := sema
	for i := 0; i < len(names)-1; i++ {
		name := names[i]
		if !name.IsStatic() {
			sema.Dynamic = append(sema.Dynamic, DynamicAttr{Key: b.Path, Value: b.Value})
			return
		}
		key := name.StaticName()
		existing, ok := cur.Static[key]
		switch {
		case !ok:
			nested := &SemaAttrs{Static: map[string]*AttrBody{}}
			cur.Static[key] = &AttrBody{NameNode: name, Nested: nested}
			cur = nested
		case existing.Nested != nil:
			cur = existing.Nested
		default:
			d := diag.New(diag.KindAttrDuplicated, name.Range(), key)
			d.WithNote(existing.NameNode.Range(), "previously defined here")
			*diags = append(*diags, d)
			nested := &SemaAttrs{Static: map[string]*AttrBody{}}
			cur.Static[key] = &AttrBody{NameNode: name, Nested: nested}
			cur = nested
		}
	}

	last := names[len(names)-1]
	if !last.IsStatic() {
		sema.Dynamic = append(sema.Dynamic, DynamicAttr{Key: last, Value: b.Value})
		return
	}
	key := last.StaticName()
	existing, ok := cur.Static[key]
	if nestedLit, isAttrs := b.Value.(*syntax.Attrs); ok && isAttrs && existing != nil && existing.Nested != nil {
		merged := lowerOrReuse(nestedLit, diags)
		for k, v := range merged.Static {
			if _, dup := existing.Nested.Static[k]; dup {
				d := diag.New(diag.KindAttrDuplicated, v.NameNode.Range(), k)
				*diags = append(*diags, d)
				continue
			}
			existing.Nested.Static[k] = v
		}
		existing.Nested.Dynamic = append(existing.Nested.Dynamic, merged.Dynamic...)
		if nestedLit.Recursive {
			existing.Nested.Recursive = true
		}
		return
	}
	if ok {
		d := diag.New(diag.KindAttrDuplicated, last.Range(), key)
		d.WithNote(existing.NameNode.Range(), "previously defined here")
		*diags = append(*diags, d)
	}
	if nestedLit, isAttrs := b.Value.(*syntax.Attrs); isAttrs {
		cur.Static[key] = &AttrBody{NameNode: last, Nested: lowerOrReuse(nestedLit, diags)}
		return
	}
	cur.Static[key] = &AttrBody{NameNode: last, Value: b.Value}
}

func lowerInherit(sema *SemaAttrs, in *syntax.Inherit, diags *diag.List) {
	for _, name := range in.Names {
		if !name.IsStatic() {
			*diags = append(*diags, diag.New(diag.KindDynamicInherit, name.Range()))
			continue
		}
		key := name.StaticName()
		var value syntax.Node
		if in.Expr != nil {
			// Select from the expression inside "(...)", not the parens.
			src := in.Expr
			if p, ok := src.(*syntax.ParenExpr); ok && p.Inner != nil {
				src = p.Inner
			}
			value = syntax.NewSelect(name.Range(), src, syntax.NewAttrPath(name.Range(), []*syntax.AttrName{name}), nil)
		} else {
			value = syntax.NewVar(name.Range(), key)
		}
		if existing, ok := sema.Static[key]; ok {
			d := diag.New(diag.KindAttrDuplicated, name.Range(), key)
			d.WithNote(existing.NameNode.Range(), "previously defined here")
			*diags = append(*diags, d)
		}
		sema.Static[key] = &AttrBody{Inherited: true, NameNode: name, Value: value}
	}
}

// dedentIndentedString folds the common leading-space prefix out of a
// ''...'' string's literal fragments, per spec §4.3. It walks the whole
// Parts sequence as one character stream: an interpolation counts as
// ordinary non-whitespace content for the purpose of ending a line's
// contribution to the minimum indent, exactly as an escaped character
// or any other non-space byte would, so a string is dedented the same
// way whether or not it contains interpolations. A wholly blank
// trailing line is dropped, mirroring Nix's own stripIndentation.
func dedentIndentedString(s *syntax.String) {
	if !s.Indented || len(s.Parts) == 0 {
		return
	}

	const noIndent = -1
	minIndent := noIndent
	atStartOfLine := true
	curIndent := 0
	for _, p := range s.Parts {
		if p.Interp != nil {
			if atStartOfLine {
				atStartOfLine = false
				if minIndent == noIndent || curIndent < minIndent {
					minIndent = curIndent
				}
			}
			continue
		}
		for _, c := range p.Escaped {
			switch {
			case atStartOfLine && c == ' ':
				curIndent++
			case atStartOfLine && c == '\n':
				curIndent = 0
			case atStartOfLine:
				atStartOfLine = false
				if minIndent == noIndent || curIndent < minIndent {
					minIndent = curIndent
				}
			case c == '\n':
				atStartOfLine = true
				curIndent = 0
			}
		}
	}
	if minIndent == noIndent {
		minIndent = 0
	}

	atStartOfLine = true
	curDropped := 0
	for i := range s.Parts {
		p := &s.Parts[i]
		if p.Interp != nil {
			atStartOfLine = false
			curDropped = 0
			continue
		}
		var out strings.Builder
		for _, c := range p.Escaped {
			switch {
			case atStartOfLine && c == ' ':
				if curDropped >= minIndent {
					out.WriteRune(c)
				}
				curDropped++
			case atStartOfLine && c == '\n':
				curDropped = 0
				out.WriteRune(c)
			case atStartOfLine:
				atStartOfLine = false
				curDropped = 0
				out.WriteRune(c)
			default:
				out.WriteRune(c)
				if c == '\n' {
					atStartOfLine = true
				}
			}
		}
		p.Escaped = out.String()
	}

	// The final line is dropped if it is wholly blank, but only the
	// string's last fragment can hold that line: if the string ends in
	// an interpolation there is no trailing literal line to drop.
	last := &s.Parts[len(s.Parts)-1]
	if last.Interp == nil {
		if nl := strings.LastIndexByte(last.Escaped, '\n'); nl != -1 {
			if strings.Trim(last.Escaped[nl+1:], " ") == "" {
				last.Escaped = last.Escaped[:nl]
			}
		}
	}
}
