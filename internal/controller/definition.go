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

	"github.com/nix-community/nixd-sub001/internal/parentmap"
	"github.com/nix-community/nixd-sub001/internal/syntax"
	"github.com/nix-community/nixd-sub001/internal/vla"
)

func (c *Controller) definition(ctx context.Context, p protocol.DefinitionParams) ([]protocol.Location, error) {
	t, ok := c.tus.Get(pathOf(p.TextDocument.URI))
	if !ok || t.AST == nil {
		return nil, nil
	}
	li := newLineIndex(t.Source)
	n := parentmap.NodeAt(t.AST, li.Offset(p.Position))
	v, ok := n.(*syntax.Var)
	if !ok {
		return nil, nil
	}
	res, ok := v.Lookup.(*vla.LookupResult)
	if !ok || res.Kind != vla.Defined || res.Def.Site == nil {
		// A with-bound or undefined variable, or a builtin with no source
		// site, has no static definition location (spec §4.4/§4.8).
		return nil, nil
	}
	return []protocol.Location{{
		URI:   p.TextDocument.URI,
		Range: rangeToProtocol(res.Def.Site.Range()),
	}}, nil
}
