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
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.lsp.dev/protocol"
)

// formatting shells out to the externally configured formatter (spec
// §6's formatting.command), feeding it the document on stdin and
// replacing the whole document with its stdout when that differs from
// the current text (no edit otherwise), the same
// whole-file-replacement shape _examples/other_examples's buflsp server
// uses for its own (in-process) formatter.
func (c *Controller) formatting(ctx context.Context, p protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	t, ok := c.tus.Get(pathOf(p.TextDocument.URI))
	if !ok || t.AST == nil {
		return nil, nil
	}
	cfg := c.cfg.Get()
	if len(cfg.Formatting.Command) == 0 {
		return nil, nil
	}

	cmd := exec.CommandContext(ctx, cfg.Formatting.Command[0], cfg.Formatting.Command[1:]...)
	cmd.Stdin = strings.NewReader(t.Source)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("controller: run formatter: %w: %s", err, errOut.String())
	}
	if out.String() == t.Source {
		return nil, nil
	}

	return []protocol.TextEdit{{
		Range:   fullDocumentRange(t.Source),
		NewText: out.String(),
	}}, nil
}

func fullDocumentRange(src string) protocol.Range {
	li := newLineIndex(src)
	lastLineStart := li.starts[len(li.starts)-1]
	lastCol := uint32(len([]rune(src[lastLineStart:])))
	return protocol.Range{
		Start: protocol.Position{},
		End:   protocol.Position{Line: uint32(len(li.starts) - 1), Character: lastCol},
	}
}
