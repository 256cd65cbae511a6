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

	"go.lsp.dev/protocol"

	"github.com/nix-community/nixd-sub001/internal/syntax"
)

func (c *Controller) documentSymbol(ctx context.Context, p protocol.DocumentSymbolParams) ([]protocol.DocumentSymbol, error) {
	t, ok := c.tus.Get(pathOf(p.TextDocument.URI))
	if !ok || t.AST == nil {
		return nil, nil
	}
	return symbolsFor(t.AST), nil
}

// symbolsFor renders the static attribute names of every Attrs and Let
// node reachable from n as a DocumentSymbol tree, per spec §4.8's
// "structural outline of static bindings". Dynamic names and with-scopes
// contribute no symbol, since neither has a name known without
// evaluation.
func symbolsFor(n syntax.Node) []protocol.DocumentSymbol {
	switch v := n.(type) {
	case *syntax.Attrs:
		return symbolsForBinds(v.Binds)
	case *syntax.Let:
		out := symbolsForBinds(v.Binds)
		if v.Body != nil {
			out = append(out, symbolsFor(v.Body)...)
		}
		return out
	case *syntax.Lambda:
		if v.Body != nil {
			return symbolsFor(v.Body)
		}
	case *syntax.With:
		if v.Body != nil {
			return symbolsFor(v.Body)
		}
	case *syntax.If:
		var out []protocol.DocumentSymbol
		if v.Then != nil {
			out = append(out, symbolsFor(v.Then)...)
		}
		if v.Else != nil {
			out = append(out, symbolsFor(v.Else)...)
		}
		return out
	}
	return nil
}

func symbolsForBinds(binds []syntax.BindingOrInherit) []protocol.DocumentSymbol {
	var out []protocol.DocumentSymbol
	for _, b := range binds {
		switch bb := b.(type) {
		case *syntax.Binding:
			if len(bb.Path.Names) == 0 || !bb.Path.Names[0].IsStatic() {
				continue
			}
			sym := protocol.DocumentSymbol{
				Name:           bb.Path.Names[0].StaticName(),
				Kind:           protocol.SymbolKindField,
				Range:          rangeToProtocol(bb.Range()),
				SelectionRange: rangeToProtocol(bb.Path.Names[0].Range()),
			}
			if bb.Value != nil {
				sym.Children = symbolsFor(bb.Value)
			}
			out = append(out, sym)
		case *syntax.Inherit:
			for _, name := range bb.Names {
				if !name.IsStatic() {
					continue
				}
				out = append(out, protocol.DocumentSymbol{
					Name:           name.StaticName(),
					Kind:           protocol.SymbolKindField,
					Range:          rangeToProtocol(name.Range()),
					SelectionRange: rangeToProtocol(name.Range()),
				})
			}
		}
	}
	return out
}
