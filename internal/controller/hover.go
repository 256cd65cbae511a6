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
	"context"
	"fmt"

	"go.lsp.dev/protocol"

	"github.com/nix-community/nixd-sub001/internal/evalrpc"
	"github.com/nix-community/nixd-sub001/internal/parentmap"
	"github.com/nix-community/nixd-sub001/internal/syntax"
	"github.com/nix-community/nixd-sub001/internal/vla"
)

func (c *Controller) hover(ctx context.Context, p protocol.HoverParams) (*protocol.Hover, error) {
	t, ok := c.tus.Get(pathOf(p.TextDocument.URI))
	if !ok || t.AST == nil {
		return nil, nil
	}
	li := newLineIndex(t.Source)
	n := parentmap.NodeAt(t.AST, li.Offset(p.Position))
	if n == nil {
		return nil, nil
	}

	if v, ok := n.(*syntax.Var); ok {
		rng := rangeToProtocol(v.Range())
		return &protocol.Hover{
			Contents: protocol.MarkupContent{Kind: protocol.PlainText, Value: describeVar(v)},
			Range:    &rng,
		}, nil
	}

	if an, ok := n.(*syntax.AttrName); ok {
		if path, ok := attrNamePath(t.ParentMap, an); ok {
			if info, err := c.nixpkgsAttrpathInfo(ctx, path); err == nil {
				rng := rangeToProtocol(an.Range())
				return &protocol.Hover{
					Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: formatAttrpathInfo(info)},
					Range:    &rng,
				}, nil
			}
		}
	}
	return nil, nil
}

// attrNamePath reaches up from an AttrName to its enclosing Select and
// returns the static path reaching through and including an itself, e.g.
// hovering "b" in "a.b.c" yields ["a", "b"], not the full ["a", "b", "c"].
func attrNamePath(pm *parentmap.Map, an *syntax.AttrName) ([]string, bool) {
	ctx, ok := findSelectContext(pm, an)
	if !ok {
		return nil, false
	}
	base, ok := ctx.pathUpTo(ctx.index)
	if !ok {
		return nil, false
	}
	if !an.IsStatic() {
		return nil, false
	}
	return append(base, an.StaticName()), true
}

func describeVar(v *syntax.Var) string {
	res, ok := v.Lookup.(*vla.LookupResult)
	if !ok {
		return v.Name
	}
	switch res.Kind {
	case vla.Defined:
		switch res.Def.Kind {
		case vla.DefBuiltin:
			return fmt.Sprintf("%s: builtin", v.Name)
		case vla.DefFormal, vla.DefArg:
			return fmt.Sprintf("%s: function parameter", v.Name)
		case vla.DefRecAttr:
			return fmt.Sprintf("%s: recursive attribute", v.Name)
		default:
			return fmt.Sprintf("%s: let binding", v.Name)
		}
	case vla.FromWith:
		return fmt.Sprintf("%s: brought into scope by an enclosing 'with'", v.Name)
	default:
		return fmt.Sprintf("%s: undefined variable", v.Name)
	}
}

func formatAttrpathInfo(info evalrpc.AttrpathInfoResponse) string {
	if info.PackageDesc != nil {
		d := info.PackageDesc
		s := fmt.Sprintf("**%s**", d.PName)
		if d.Version != "" {
			s += " " + d.Version
		}
		if d.Description != "" {
			s += "\n\n" + d.Description
		}
		if d.Homepage != "" {
			s += "\n\n" + d.Homepage
		}
		return s
	}
	if info.ValueDesc != "" {
		return fmt.Sprintf("`%s` (%s)", info.ValueDesc, info.Meta.Type)
	}
	return info.Meta.Type
}

func (c *Controller) nixpkgsAttrpathInfo(ctx context.Context, path []string) (evalrpc.AttrpathInfoResponse, error) {
	c.mu.Lock()
	client := c.nixpkgs
	c.mu.Unlock()
	if client == nil {
		return evalrpc.AttrpathInfoResponse{}, fmt.Errorf("controller: no nixpkgs worker configured")
	}
	return client.AttrpathInfo(ctx, path)
}

func (c *Controller) nixpkgsAttrpathComplete(ctx context.Context, scope []string, prefix string) (evalrpc.AttrpathCompleteResponse, error) {
	c.mu.Lock()
	client := c.nixpkgs
	c.mu.Unlock()
	if client == nil {
		return evalrpc.AttrpathCompleteResponse{}, fmt.Errorf("controller: no nixpkgs worker configured")
	}
	return client.AttrpathComplete(ctx, evalrpc.AttrpathCompleteParams{Scope: scope, Prefix: prefix})
}
