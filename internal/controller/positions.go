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
	"unicode/utf16"
	"unicode/utf8"

	"go.lsp.dev/protocol"

	"github.com/nix-community/nixd-sub001/internal/position"
)

// cursorToPosition converts a position.Cursor to the wire Position.
// internal/lexer counts Column in runes per line, the same unit LSP
// clients use for ASCII Nix sources (true UTF-16 code-unit counting only
// diverges on non-BMP characters, which is out of scope here).
func cursorToPosition(c position.Cursor) protocol.Position {
	return protocol.Position{Line: uint32(c.Line), Character: uint32(c.Column)}
}

// rangeToProtocol converts a position.Range to the wire Range.
func rangeToProtocol(r position.Range) protocol.Range {
	return protocol.Range{Start: cursorToPosition(r.Start), End: cursorToPosition(r.End)}
}

// lineIndex maps a wire Position (line plus a UTF-16 code-unit column)
// to a byte offset for one source buffer, the inverse of what
// internal/lexer tracks while scanning; the controller needs the
// inverse because an incoming request names a Position, not an offset.
type lineIndex struct {
	src    string
	starts []int // byte offset of the first byte of each line
}

func newLineIndex(src string) *lineIndex {
	li := &lineIndex{src: src, starts: []int{0}}
	for i, b := range []byte(src) {
		if b == '\n' {
			li.starts = append(li.starts, i+1)
		}
	}
	return li
}

// Offset converts a wire Position into a byte offset into src. Character
// is a UTF-16 code-unit count per the LSP spec, so a rune outside the
// basic multilingual plane consumes two units of pos.Character but only
// one iteration of this loop; clamps to the nearest valid location for a
// position past the end of a line or the end of the document.
func (li *lineIndex) Offset(pos protocol.Position) int {
	line := int(pos.Line)
	if line < 0 {
		return 0
	}
	if line >= len(li.starts) {
		return len(li.src)
	}
	start := li.starts[line]
	end := len(li.src)
	if line+1 < len(li.starts) {
		end = li.starts[line+1] - 1 // stop before the line's '\n'
	}
	units := int(pos.Character)
	offset := start
	for units > 0 && offset < end {
		r, w := utf8.DecodeRuneInString(li.src[offset:end])
		offset += w
		if r1, _ := utf16.EncodeRune(r); r1 != utf8.RuneError {
			units -= 2
		} else {
			units--
		}
	}
	if offset > end {
		offset = end
	}
	return offset
}
