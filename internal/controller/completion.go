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
)

func (c *Controller) completion(ctx context.Context, p protocol.CompletionParams) (*protocol.CompletionList, error) {
	t, ok := c.tus.Get(pathOf(p.TextDocument.URI))
	if !ok || t.AST == nil {
		return &protocol.CompletionList{}, nil
	}
	li := newLineIndex(t.Source)
	n := parentmap.NodeAt(t.AST, li.Offset(p.Position))

	if scope, prefix, ok := attrCompletionContext(t.ParentMap, n); ok {
		resp, err := c.nixpkgsAttrpathComplete(ctx, scope, prefix)
		if err == nil {
			items := make([]protocol.CompletionItem, 0, len(resp.Items))
			for _, name := range resp.Items {
				items = append(items, protocol.CompletionItem{
					Label: name,
					Kind:  protocol.CompletionItemKindField,
				})
			}
			return &protocol.CompletionList{Items: items}, nil
		}
	}

	names := namesInScope(t, n)
	items := make([]protocol.CompletionItem, 0, len(names))
	for _, name := range names {
		items = append(items, protocol.CompletionItem{
			Label: name,
			Kind:  protocol.CompletionItemKindVariable,
		})
	}
	return &protocol.CompletionList{Items: items}, nil
}
