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

// Package parser implements a recursive-descent parser for the Nix
// expression language over internal/lexer's token stream. It never
// aborts: every mandatory terminal that is missing yields a diagnostic
// and a best-effort AST node, so that a single syntax error never loses
// the rest of the document (spec §4.2).
package parser

import (
	"github.com/nix-community/nixd-sub001/internal/diag"
	"github.com/nix-community/nixd-sub001/internal/lexer"
	"github.com/nix-community/nixd-sub001/internal/position"
	"github.com/nix-community/nixd-sub001/internal/syntax"
	"github.com/nix-community/nixd-sub001/internal/token"
)

// Parse parses src and returns the root expression node together with
// every diagnostic accumulated by the lexer and parser. The root is
// never nil: a completely unparseable input still yields a *syntax.Bad.
func Parse(src []byte) (syntax.Node, diag.List) {
	p := &parser{lex: lexer.New(src), src: src}
	p.fill(2)
	root := p.parseExprOrBad()
	if p.tok().Kind != token.EOF {
		// Trailing garbage after a complete expression: record it but keep
		// the expression we already have.
		start := p.tok().Range.Start
		for p.tok().Kind != token.EOF {
			p.advance()
		}
		end := p.tok().Range.Start
		p.errf(position.NewRange(start, end), diag.KindUnexpectedToken, "end of input")
	}
	all := append(diag.List{}, p.lex.Diagnostics...)
	all = append(all, p.diags...)
	return root, all
}

type parser struct {
	lex *lexer.Lexer
	src []byte

	buf    []token.Token
	diags  diag.List

	syncPos position.Cursor
	syncCnt int
}

func (p *parser) fill(n int) {
	for len(p.buf) < n {
		p.buf = append(p.buf, p.lex.Scan())
	}
}

func (p *parser) tok() token.Token {
	p.fill(1)
	return p.buf[0]
}

func (p *parser) peek() token.Token {
	p.fill(2)
	return p.buf[1]
}

func (p *parser) advance() token.Token {
	p.fill(1)
	t := p.buf[0]
	p.buf = p.buf[1:]
	return t
}

// switchMode changes the lexer's mode and discards the lookahead buffer,
// re-lexing from the current cursor under the new mode, per spec §4.2.
func (p *parser) switchMode(push bool, m lexer.Mode) {
	var cursor position.Cursor
	if len(p.buf) > 0 {
		cursor = p.buf[0].Range.Start
	} else {
		cursor = p.lex.Cursor()
	}
	if push {
		p.lex.PushMode(m)
	} else {
		p.lex.PopMode()
	}
	p.lex.SetCursor(cursor)
	p.buf = nil
}

func (p *parser) pushMode(m lexer.Mode) { p.switchMode(true, m) }
func (p *parser) popMode()              { p.switchMode(false, 0) }

func (p *parser) errf(rng position.Range, kind diag.Kind, args ...any) *diag.Diagnostic {
	d := diag.New(kind, rng, args...)
	p.diags.Add(d)
	return d
}

func (p *parser) errorExpected(rng position.Range, what string) {
	found := p.tok().String()
	p.errf(rng, diag.KindExpected, what, found)
}

// expect consumes tok if present; otherwise it records an "expected"
// diagnostic with a fix that inserts the missing text, and does not
// consume anything (so the caller's caller can still resynchronise).
func (p *parser) expect(tok token.Kind, text string) position.Range {
	cur := p.tok()
	if cur.Kind == tok {
		p.advance()
		return cur.Range
	}
	at := cur.Range.Start
	rng := position.NewRange(at, at)
	d := p.errf(rng, diag.KindExpected, text, cur.String())
	d.WithFix(diag.Fix{
		Message: "insert " + text,
		Edits:   []diag.Edit{{OldRange: rng, NewText: text}},
	})
	return rng
}

// expectClosing is like expect but also records a note pointing back at
// the opening delimiter, per spec §4.2's "open delimiter that never
// closes" rule.
func (p *parser) expectClosing(tok token.Kind, text string, open position.Range) position.Range {
	cur := p.tok()
	if cur.Kind == tok {
		p.advance()
		return cur.Range
	}
	at := cur.Range.Start
	rng := position.NewRange(at, at)
	d := p.errf(rng, diag.KindExpected, text, cur.String())
	d.WithNote(open, "unclosed delimiter here")
	d.WithFix(diag.Fix{
		Message: "insert " + text,
		Edits:   []diag.Edit{{OldRange: rng, NewText: text}},
	})
	return rng
}

// syncTo advances past tokens until one of the synchronising kinds (or
// EOF) is reached, matching spec §4.2's "skip ahead to the next
// synchronising token" policy for unknown binds-list syntax. It refuses
// to spin forever on a stuck cursor, the same guard cue/parser.syncExpr
// uses.
func (p *parser) syncTo(kinds ...token.Kind) {
	for {
		cur := p.tok()
		if cur.Kind == token.EOF {
			return
		}
		for _, k := range kinds {
			if cur.Kind == k {
				if cur.Range.Start == p.syncPos && p.syncCnt < 10 {
					p.syncCnt++
					return
				}
				if cur.Range.Start != p.syncPos {
					p.syncPos = cur.Range.Start
					p.syncCnt = 0
					return
				}
				// Stuck on this token too many times: skip past it.
				break
			}
		}
		p.advance()
	}
}

