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

// documentLink surfaces every literal URI expression (e.g.
// "https://example.com/x.tar.gz" used as a fetch source) as a clickable
// link, per spec §4.8.
func (c *Controller) documentLink(ctx context.Context, p protocol.DocumentLinkParams) ([]protocol.DocumentLink, error) {
	t, ok := c.tus.Get(pathOf(p.TextDocument.URI))
	if !ok || t.AST == nil {
		return nil, nil
	}
	var out []protocol.DocumentLink
	syntax.Walk(t.AST, syntax.Visitor{Pre: func(n syntax.Node) bool {
		if u, ok := n.(*syntax.URI); ok {
			target := protocol.DocumentURI(u.Value)
			out = append(out, protocol.DocumentLink{
				Range:  rangeToProtocol(u.Range()),
				Target: &target,
			})
		}
		return true
	}})
	return out, nil
}
