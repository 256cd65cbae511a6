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
	"sort"

	"go.lsp.dev/protocol"

	"github.com/nix-community/nixd-sub001/internal/syntax"
	"github.com/nix-community/nixd-sub001/internal/vla"
)

// semanticTokenTypeLegend/semanticTokenModifierLegend are advertised in
// InitializeResult and indexed by the type/modifier values the encoder
// below emits, per the LSP semantic tokens delta encoding (the same
// scheme _examples/other_examples's buflsp server implements).
var (
	semanticTokenTypeLegend    = []string{"variable", "parameter", "keyword"}
	semanticTokenModifierLegend = []string{"definition"}
)

const (
	semTokVariable uint32 = iota
	semTokParameter
	semTokKeyword
)

func (c *Controller) semanticTokensFull(ctx context.Context, p protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	t, ok := c.tus.Get(pathOf(p.TextDocument.URI))
	if !ok || t.AST == nil {
		return &protocol.SemanticTokens{}, nil
	}

	type rawTok struct {
		line, col, length, typ uint32
	}
	var toks []rawTok
	syntax.Walk(t.AST, syntax.Visitor{Pre: func(n syntax.Node) bool {
		v, ok := n.(*syntax.Var)
		if !ok {
			return true
		}
		typ := semTokVariable
		if res, ok := v.Lookup.(*vla.LookupResult); ok && res.Kind == vla.Defined {
			if res.Def.Kind == vla.DefFormal || res.Def.Kind == vla.DefArg {
				typ = semTokParameter
			}
		}
		start := v.Range().Start
		toks = append(toks, rawTok{
			line:   uint32(start.Line),
			col:    uint32(start.Column),
			length: uint32(len([]rune(v.Name))),
			typ:    typ,
		})
		return true
	}})
	sort.Slice(toks, func(i, j int) bool {
		if toks[i].line != toks[j].line {
			return toks[i].line < toks[j].line
		}
		return toks[i].col < toks[j].col
	})

	data := make([]uint32, 0, len(toks)*5)
	var prevLine, prevCol uint32
	for _, tok := range toks {
		deltaLine := tok.line - prevLine
		deltaCol := tok.col
		if deltaLine == 0 {
			deltaCol = tok.col - prevCol
		}
		data = append(data, deltaLine, deltaCol, tok.length, tok.typ, 0)
		prevLine, prevCol = tok.line, tok.col
	}
	return &protocol.SemanticTokens{Data: data}, nil
}
