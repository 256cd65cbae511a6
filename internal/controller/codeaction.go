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

	"github.com/nix-community/nixd-sub001/internal/diag"
	"github.com/nix-community/nixd-sub001/internal/parentmap"
	"github.com/nix-community/nixd-sub001/internal/tu"
)

func (c *Controller) codeAction(ctx context.Context, p protocol.CodeActionParams) ([]protocol.CodeAction, error) {
	t, ok := c.tus.Get(pathOf(p.TextDocument.URI))
	if !ok || t.AST == nil {
		return nil, nil
	}

	var actions []protocol.CodeAction
	suppress := c.cfg.Get().SuppressSet()
	for _, pd := range p.Context.Diagnostics {
		for _, fix := range matchingFixes(t, suppress, pd) {
			actions = append(actions, protocol.CodeAction{
				Title:       fix.Message,
				Kind:        protocol.QuickFix,
				Diagnostics: []protocol.Diagnostic{pd},
				Edit: &protocol.WorkspaceEdit{
					Changes: map[protocol.DocumentURI][]protocol.TextEdit{
						p.TextDocument.URI: editsToProtocol(fix.Edits),
					},
				},
			})
		}
	}

	li := newLineIndex(t.Source)
	n := parentmap.NodeAt(t.AST, li.Offset(p.Range.Start))
	expr := n
	if up, ok := t.ParentMap.UpExpr(n); ok {
		expr = up
	}
	if expr != nil && leftmostIsLib(expr) {
		actions = append(actions, protocol.CodeAction{
			Title: "Open noogle documentation for lib",
			Kind:  codeActionKindNoogleDoc,
		})
	}
	return actions, nil
}

// matchingFixes recomputes t's diagnostics and returns the Fixes of
// whichever one matches pd by range and short name, since the wire
// Diagnostic the client echoes back in CodeActionParams does not itself
// carry the Fix values attached in internal/diag.
func matchingFixes(t *tu.TU, suppress map[string]bool, pd protocol.Diagnostic) []diag.Fix {
	for _, d := range t.AllDiagnostics(suppress) {
		if fmt.Sprint(pd.Code) == d.ShortName() && rangeToProtocol(d.Range) == pd.Range {
			return d.Fixes
		}
	}
	return nil
}

func editsToProtocol(edits []diag.Edit) []protocol.TextEdit {
	out := make([]protocol.TextEdit, 0, len(edits))
	for _, e := range edits {
		out = append(out, protocol.TextEdit{
			Range:   rangeToProtocol(e.OldRange),
			NewText: e.NewText,
		})
	}
	return out
}
