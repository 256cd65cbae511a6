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
	"sort"

	"github.com/nix-community/nixd-sub001/internal/parentmap"
	"github.com/nix-community/nixd-sub001/internal/syntax"
	"github.com/nix-community/nixd-sub001/internal/tu"
)

// namesInScope climbs from n to the root of t's tree, collecting every
// statically-known name a completion at n could reference: builtins (via
// the VLA root scope already computed for t), and the binders of every
// enclosing let, rec attribute set and lambda it passes through. A
// with-scope contributes nothing, since its names are not known without
// evaluation (spec §4.4's FromWith case).
func namesInScope(t *tu.TU, n syntax.Node) []string {
	seen := map[string]bool{}
	if t.VLA != nil && t.VLA.Root != nil {
		for name := range t.VLA.Root.Defs {
			seen[name] = true
		}
	}
	cur := n
	for cur != nil {
		parent, ok := t.ParentMap.Query(cur)
		if !ok || parent == cur {
			break
		}
		switch p := parent.(type) {
		case *syntax.Let:
			addBindNames(p.Binds, seen)
		case *syntax.Lambda:
			if p.Param != "" {
				seen[p.Param] = true
			}
			if p.AtName != "" {
				seen[p.AtName] = true
			}
			for _, f := range p.Formals {
				seen[f.Name] = true
			}
		case *syntax.Attrs:
			if p.Recursive {
				addBindNames(p.Binds, seen)
			}
		}
		cur = parent
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func addBindNames(binds []syntax.BindingOrInherit, seen map[string]bool) {
	for _, b := range binds {
		switch bb := b.(type) {
		case *syntax.Binding:
			if len(bb.Path.Names) == 0 {
				continue
			}
			if name := bb.Path.Names[0]; name.IsStatic() {
				seen[name.StaticName()] = true
			}
		case *syntax.Inherit:
			for _, name := range bb.Names {
				if name.IsStatic() {
					seen[name.StaticName()] = true
				}
			}
		}
	}
}

// staticSelectPath reports the full chain of static attribute names a
// Select node spells out, e.g. parsing "a.b.c" produces a single Select
// whose Target is the Var "a" and whose Path holds both "b" and "c" in
// one AttrPath (internal/parser's parseAttrPath consumes an entire
// dotted run in one loop; a further Select only appears when Target is
// itself a parenthesised or otherwise non-trivial Select expression,
// e.g. "(a.b).c"). staticSelectPath resolves sel.Target via
// staticTargetPath, then appends sel.Path's own names. It returns
// ok=false as soon as it meets a dynamic attribute name or a Target
// that isn't a plain variable or Select chain, since either makes the
// rest of the path unknowable without evaluation.
func staticSelectPath(sel *syntax.Select) ([]string, bool) {
	prefix, ok := staticTargetPath(sel.Target)
	if !ok {
		return nil, false
	}
	for _, name := range sel.Path.Names {
		if !name.IsStatic() {
			return nil, false
		}
		prefix = append(prefix, name.StaticName())
	}
	return prefix, true
}

// staticTargetPath resolves the static path rooted at a Select's Target:
// a bare variable is a one-element path naming itself, and a nested
// Select recurses via staticSelectPath. Anything else (a function call,
// a with-body, ...) isn't staticly known.
func staticTargetPath(n syntax.Node) ([]string, bool) {
	switch t := n.(type) {
	case *syntax.Var:
		return []string{t.Name}, true
	case *syntax.Select:
		return staticSelectPath(t)
	default:
		return nil, false
	}
}

// selectContext locates an AttrName within the AttrPath and Select it
// belongs to, along with its index in Path.Names, so callers can tell
// the names already typed before it (the scope to complete or hover
// against) from the name itself (the segment under the cursor).
type selectContext struct {
	sel   *syntax.Select
	path  *syntax.AttrPath
	index int
}

func findSelectContext(pm *parentmap.Map, an *syntax.AttrName) (selectContext, bool) {
	ap, ok := pm.Query(an)
	if !ok {
		return selectContext{}, false
	}
	path, ok := ap.(*syntax.AttrPath)
	if !ok {
		return selectContext{}, false
	}
	gp, ok := pm.Query(path)
	if !ok {
		return selectContext{}, false
	}
	sel, ok := gp.(*syntax.Select)
	if !ok {
		return selectContext{}, false
	}
	for i, name := range path.Names {
		if name == an {
			return selectContext{sel: sel, path: path, index: i}, true
		}
	}
	return selectContext{}, false
}

// pathUpTo returns the static attribute path reaching (but not
// including) path.Names[idx], rooted at sel.Target's own static path.
func (ctx selectContext) pathUpTo(idx int) ([]string, bool) {
	names, ok := staticTargetPath(ctx.sel.Target)
	if !ok {
		return nil, false
	}
	for i := 0; i < idx; i++ {
		if !ctx.path.Names[i].IsStatic() {
			return nil, false
		}
		names = append(names, ctx.path.Names[i].StaticName())
	}
	return names, true
}

// nearestAttrName climbs from n until it reaches an AttrName, or
// n itself if it already is one. Completion and hover both locate the
// cursor's node with parentmap.NodeAt, which may land inside a
// dynamic-name sub-expression rather than on the AttrName directly.
func nearestAttrName(pm *parentmap.Map, n syntax.Node) (*syntax.AttrName, bool) {
	if an, ok := n.(*syntax.AttrName); ok {
		return an, true
	}
	cur := n
	for {
		p, ok := pm.Query(cur)
		if !ok || p == cur {
			return nil, false
		}
		if an, ok := p.(*syntax.AttrName); ok {
			return an, true
		}
		cur = p
	}
}

// attrCompletionContext resolves n (the node under the completion
// cursor) to the nixpkgs attribute scope it should be completed
// against and the partial identifier text already typed, per spec
// §4.7's attrpathComplete. For "pkgs.hel" with the cursor after "hel",
// it returns (["pkgs"], "hel").
func attrCompletionContext(pm *parentmap.Map, n syntax.Node) (scope []string, prefix string, ok bool) {
	an, ok := nearestAttrName(pm, n)
	if !ok {
		return nil, "", false
	}
	ctx, ok := findSelectContext(pm, an)
	if !ok {
		return nil, "", false
	}
	scope, ok = ctx.pathUpTo(ctx.index)
	if !ok {
		return nil, "", false
	}
	if an.NameKind == syntax.AttrNameID {
		prefix = an.Ident
	}
	return scope, prefix, true
}

// leftmostIsLib reports whether the leftmost leaf of expr's Target/Fn/Left
// chain is the variable "lib", the trigger spec §4.8's "noogle
// documentation" code action checks for.
func leftmostIsLib(n syntax.Node) bool {
	for n != nil {
		if v, ok := n.(*syntax.Var); ok {
			return v.Name == "lib"
		}
		children := n.Children()
		if len(children) == 0 {
			return false
		}
		n = children[0]
	}
	return false
}
