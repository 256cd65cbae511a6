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

	"github.com/nix-community/nixd-sub001/internal/diag"
	"github.com/nix-community/nixd-sub001/internal/tu"
)

func (c *Controller) didOpen(ctx context.Context, params protocol.DidOpenTextDocumentParams) error {
	path := pathOf(params.TextDocument.URI)
	t := c.tus.Open(path, params.TextDocument.Version, params.TextDocument.Text)
	c.publishDiagnostics(ctx, params.TextDocument.URI, t)
	return nil
}

func (c *Controller) didChange(ctx context.Context, params protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	path := pathOf(params.TextDocument.URI)
	cur, ok := c.tus.Get(path)
	if !ok {
		return nil
	}
	text := applyContentChanges(cur.Source, params.ContentChanges)
	t := c.tus.Update(path, params.TextDocument.Version, text)
	c.publishDiagnostics(ctx, params.TextDocument.URI, t)
	return nil
}

// applyContentChanges folds one didChange notification's content-change
// events onto src in order, per spec §4.6 step 1. A change with a nil
// Range is a whole-document replacement; otherwise Range names the span
// to replace, with Start/End given as UTF-16 code-unit positions per LSP,
// which lineIndex.Offset translates to byte offsets into the
// progressively-updated text.
func applyContentChanges(src string, changes []protocol.TextDocumentContentChangeEvent) string {
	text := src
	for _, ch := range changes {
		if ch.Range == nil {
			text = ch.Text
			continue
		}
		li := newLineIndex(text)
		start := li.Offset(ch.Range.Start)
		end := li.Offset(ch.Range.End)
		if end < start {
			start, end = end, start
		}
		text = text[:start] + ch.Text + text[end:]
	}
	return text
}

func (c *Controller) didClose(ctx context.Context, params protocol.DidCloseTextDocumentParams) error {
	path := pathOf(params.TextDocument.URI)
	c.tus.Close(path)
	return c.conn.Notify(ctx, "textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
}

func (c *Controller) publishDiagnostics(ctx context.Context, uri protocol.DocumentURI, t *tu.TU) {
	suppress := c.cfg.Get().SuppressSet()
	all := t.AllDiagnostics(suppress)
	out := make([]protocol.Diagnostic, 0, len(all))
	for _, d := range all {
		out = append(out, toProtocolDiagnostic(d))
	}
	if c.conn == nil {
		return
	}
	_ = c.conn.Notify(ctx, "textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:     uri,
		Version: uint32(t.Version),
		Diagnostics: out,
	})
}

func toProtocolDiagnostic(d *diag.Diagnostic) protocol.Diagnostic {
	out := protocol.Diagnostic{
		Range:    rangeToProtocol(d.Range),
		Severity: toProtocolSeverity(d.Severity),
		Source:   "nixd",
		Message:  d.Format(),
		Code:     d.ShortName(),
	}
	for _, n := range d.Notes {
		out.RelatedInformation = append(out.RelatedInformation, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{Range: rangeToProtocol(n.Range)},
			Message:  n.Message,
		})
	}
	return out
}

func toProtocolSeverity(s diag.Severity) protocol.DiagnosticSeverity {
	switch s {
	case diag.Error:
		return protocol.DiagnosticSeverityError
	case diag.Warning:
		return protocol.DiagnosticSeverityWarning
	case diag.Info:
		return protocol.DiagnosticSeverityInformation
	case diag.Hint:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}
