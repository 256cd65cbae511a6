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
	"testing"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

func TestApplyContentChangesFullReplacementHasNilRange(t *testing.T) {
	got := applyContentChanges("let x = 1; in x", []protocol.TextDocumentContentChangeEvent{
		{Text: "let x = 2; in x"},
	})
	require.Equal(t, "let x = 2; in x", got)
}

func TestApplyContentChangesAppliesSingleIncrementalEdit(t *testing.T) {
	// "let x = 1; in x", replace the "1" at line 0 col 8..9 with "42".
	got := applyContentChanges("let x = 1; in x", []protocol.TextDocumentContentChangeEvent{
		{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 0, Character: 8},
				End:   protocol.Position{Line: 0, Character: 9},
			},
			Text: "42",
		},
	})
	require.Equal(t, "let x = 42; in x", got)
}

func TestApplyContentChangesAppliesEditsInOrder(t *testing.T) {
	// First insert at the start of line 0, then edit within the result of
	// that insert: each event is applied against the previous event's
	// output, not all against the original text.
	got := applyContentChanges("in x", []protocol.TextDocumentContentChangeEvent{
		{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   protocol.Position{Line: 0, Character: 0},
			},
			Text: "let x = 1; ",
		},
		{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 0, Character: 8},
				End:   protocol.Position{Line: 0, Character: 9},
			},
			Text: "2",
		},
	})
	require.Equal(t, "let x = 2; in x", got)
}

func TestApplyContentChangesEditsWithinLaterLine(t *testing.T) {
	got := applyContentChanges("let\n  x = 1;\nin x", []protocol.TextDocumentContentChangeEvent{
		{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 1, Character: 6},
				End:   protocol.Position{Line: 1, Character: 7},
			},
			Text: "2",
		},
	})
	require.Equal(t, "let\n  x = 2;\nin x", got)
}

// A rune outside the basic multilingual plane (here U+1F600, encoded as a
// UTF-16 surrogate pair) counts as two Character units per LSP, not one:
// an edit positioned after it must account for both units even though the
// rune is a single Go rune and four UTF-8 bytes.
func TestApplyContentChangesAccountsForSurrogatePairWidth(t *testing.T) {
	// "😀x" - the emoji is one rune (4 UTF-8 bytes, 2 UTF-16 units), then "x".
	got := applyContentChanges("😀x", []protocol.TextDocumentContentChangeEvent{
		{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 0, Character: 2},
				End:   protocol.Position{Line: 0, Character: 3},
			},
			Text: "y",
		},
	})
	require.Equal(t, "😀y", got)
}

func TestLineIndexOffsetCountsSurrogatePairAsTwoUnits(t *testing.T) {
	li := newLineIndex("😀x")
	// Character 2 lands just past the emoji, at the byte offset where its
	// 4-byte UTF-8 encoding ends.
	require.Equal(t, 4, li.Offset(protocol.Position{Line: 0, Character: 2}))
}
