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

// Package lexer implements a context-switched scanner for the Nix
// expression language. Unlike a conventional single-mode scanner (compare
// cuelang.org/go/cue/scanner, which always reads the same grammar), this
// one is explicitly modal: the parser tells it whether it is inside a
// plain expression, a double-quoted string, an indented string, or a
// path literal, and the active Mode selects which scan method the next
// token comes from.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/nix-community/nixd-sub001/internal/diag"
	"github.com/nix-community/nixd-sub001/internal/position"
	"github.com/nix-community/nixd-sub001/internal/token"
)

// Mode selects the active lexical grammar. The parser pushes and pops
// modes at token boundaries; see Lexer.PushMode/PopMode.
type Mode int

const (
	ModeExpr Mode = iota
	ModeString
	ModeIndString
	ModePath
)

// Lexer turns a source buffer into a token stream for the parser in
// internal/parser. It never signals end-of-input via panic/error return:
// it always produces an token.EOF token, per spec §4.1.
type Lexer struct {
	src []byte

	offset   int // current rune's byte offset
	rdOffset int // offset of the next rune to read
	line     int
	col      int
	ch       rune

	modeStack []Mode

	Diagnostics diag.List
}

// New creates a Lexer positioned at the start of src in ModeExpr.
func New(src []byte) *Lexer {
	l := &Lexer{src: src, modeStack: []Mode{ModeExpr}}
	l.next()
	return l
}

// Mode reports the currently active mode.
func (l *Lexer) Mode() Mode { return l.modeStack[len(l.modeStack)-1] }

// PushMode enters a new mode, remembering the previous one.
func (l *Lexer) PushMode(m Mode) { l.modeStack = append(l.modeStack, m) }

// ModeDepth reports how many modes are currently on the stack. Used by the
// parser to checkpoint/restore state across a tentative parse (see
// internal/parser's lambda-formals-vs-attrs disambiguation).
func (l *Lexer) ModeDepth() int { return len(l.modeStack) }

// TruncateModeTo restores the mode stack to depth n, discarding any modes
// pushed after a checkpoint was taken.
func (l *Lexer) TruncateModeTo(n int) {
	if n < 1 || n > len(l.modeStack) {
		panic("lexer: TruncateModeTo out of range")
	}
	l.modeStack = l.modeStack[:n]
}

// PopMode leaves the current mode, restoring the previous one. Popping the
// last remaining mode is a parser bug and panics, mirroring the way
// cue/scanner.Scanner.Init panics on caller misuse rather than silently
// limping on.
func (l *Lexer) PopMode() {
	if len(l.modeStack) <= 1 {
		panic("lexer: PopMode called with empty mode stack")
	}
	l.modeStack = l.modeStack[:len(l.modeStack)-1]
}

// Cursor returns the lexer's current read position.
func (l *Lexer) Cursor() position.Cursor {
	return position.Cursor{Line: l.line, Column: l.col, Offset: l.offset}
}

// SetCursor rewinds (or fast-forwards) the lexer to c. The parser calls
// this after a mode change to re-lex tokens the lookahead buffer had
// already produced under the old mode, per spec §4.2.
func (l *Lexer) SetCursor(c position.Cursor) {
	l.offset = c.Offset
	l.rdOffset = c.Offset
	l.line = c.Line
	l.col = c.Column
	l.ch = 0
	l.next()
	l.col = c.Column // next() counted one column for the rune it just read
}

func (l *Lexer) next() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else if l.rdOffset > 0 {
		l.col++
	}
	if l.rdOffset >= len(l.src) {
		l.offset = len(l.src)
		l.ch = -1
		return
	}
	l.offset = l.rdOffset
	r, w := rune(l.src[l.rdOffset]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(l.src[l.rdOffset:])
	}
	l.rdOffset += w
	l.ch = r
}

func (l *Lexer) peekByte() byte {
	if l.rdOffset < len(l.src) {
		return l.src[l.rdOffset]
	}
	return 0
}

func (l *Lexer) errf(rng position.Range, kind diag.Kind, args ...any) {
	l.Diagnostics.Add(diag.New(kind, rng, args...))
}

// Scan returns the next token under the active mode.
func (l *Lexer) Scan() token.Token {
	switch l.Mode() {
	case ModeString:
		return l.scanQuoted()
	case ModeIndString:
		return l.scanIndented()
	case ModePath:
		return l.scanPathBody()
	default:
		return l.scanExpr()
	}
}

func (l *Lexer) skipTrivia() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.next()
		}
		switch {
		case l.ch == '#':
			for l.ch != '\n' && l.ch != -1 {
				l.next()
			}
		case l.ch == '/' && l.peekByte() == '*':
			start := l.Cursor()
			l.next()
			l.next()
			closed := false
			for l.ch != -1 {
				if l.ch == '*' && l.peekByte() == '/' {
					l.next()
					l.next()
					closed = true
					break
				}
				l.next()
			}
			if !closed {
				end := l.Cursor()
				d := diag.New(diag.KindUnterminatedBlockComment, position.NewRange(end, end)).
					WithNote(position.NewRange(start, start), "comment opened here").
					WithFix(diag.Fix{
						Message: "insert */",
						Edits:   []diag.Edit{{OldRange: position.NewRange(end, end), NewText: "*/"}},
					})
				l.Diagnostics.Add(d)
			}
			continue
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return r == '_' || r == '\'' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isPathChar(r rune) bool {
	return isIdentCont(r) || r == '.' || r == '~'
}

func (l *Lexer) makeTok(kind token.Kind, start position.Cursor) token.Token {
	end := l.Cursor()
	rng := position.NewRange(start, end)
	return token.Token{Kind: kind, Range: rng, View: string(l.src[start.Offset:end.Offset])}
}

func (l *Lexer) scanExpr() token.Token {
	l.skipTrivia()
	start := l.Cursor()
	if l.ch == -1 {
		return l.makeTok(token.EOF, start)
	}

	switch {
	case isIdentStart(l.ch):
		return l.scanIdentOrPathOrURI(start)
	case unicode.IsDigit(l.ch):
		return l.scanNumberOrPath(start)
	case l.ch == '/' && l.peekByte() == '/':
		l.next()
		l.next()
		return l.makeTok(token.UPDATE, start)
	case l.ch == '/':
		if looksLikePathStart(l.src[l.offset:]) {
			return l.scanPathToken(start)
		}
		l.next()
		return l.makeTok(token.SLASH, start)
	case l.ch == '.':
		if l.peekByte() == '.' && l.offset+2 < len(l.src) && l.src[l.offset+2] == '.' {
			l.next()
			l.next()
			l.next()
			return l.makeTok(token.ELLIPSIS, start)
		}
		if looksLikePathStart(l.src[l.offset:]) {
			return l.scanPathToken(start)
		}
		l.next()
		return l.makeTok(token.DOT, start)
	case l.ch == '"':
		l.next()
		return l.makeTok(token.DQUOTE, start)
	case l.ch == '$' && l.peekByte() == '{':
		l.next()
		l.next()
		return l.makeTok(token.INTERP_OPEN, start)
	case l.ch == '\'' && l.peekByte() == '\'':
		l.next()
		l.next()
		return l.makeTok(token.IND_QUOTE, start)
	case l.ch == '<':
		if n := searchPathLen(l.src[l.offset:]); n > 0 {
			for i := 0; i < n; i++ {
				l.next()
			}
			return l.makeTok(token.SPATH, start)
		}
	}

	return l.scanOperator(start)
}

// searchPathLen reports the byte length of a "<nixpkgs>"-style search-path
// token starting at rest[0] == '<', or 0 if rest does not hold one (in
// which case '<' is the comparison operator instead).
func searchPathLen(rest []byte) int {
	i := 1
	for i < len(rest) {
		c := rest[i]
		if c == '>' {
			if i == 1 {
				return 0
			}
			return i + 1
		}
		if isPathChar(rune(c)) || c == '/' {
			i++
			continue
		}
		return 0
	}
	return 0
}

// looksLikePathStart implements the path heuristic from spec §4.1: a path
// token exists iff the lookahead contains path characters plus at least
// one '/' followed by another path character or an interpolation.
func looksLikePathStart(rest []byte) bool {
	i := 0
	for i < len(rest) && (isPathChar(rune(rest[i])) || rest[i] == '/') {
		if rest[i] == '/' {
			if i+1 >= len(rest) {
				return false
			}
			next := rest[i+1]
			if next == '/' {
				return false // "//" is the update operator
			}
			if isPathChar(rune(next)) || (next == '$' && i+2 < len(rest) && rest[i+2] == '{') {
				return true
			}
			return false
		}
		i++
	}
	return false
}

func (l *Lexer) scanPathToken(start position.Cursor) token.Token {
	for isPathChar(l.ch) || l.ch == '/' {
		if l.ch == '/' && l.peekByte() == '/' {
			break
		}
		l.next()
	}
	return l.makeTok(token.PATH, start)
}

// scanPathBody continues scanning a path once the parser has pushed
// ModePath, e.g. after an interpolation segment inside a path literal.
func (l *Lexer) scanPathBody() token.Token {
	start := l.Cursor()
	if l.ch == '$' && l.peekByte() == '{' {
		l.next()
		l.next()
		return l.makeTok(token.INTERP_OPEN, start)
	}
	for isPathChar(l.ch) || l.ch == '/' {
		if l.ch == '$' && l.peekByte() == '{' {
			break
		}
		l.next()
	}
	if l.offset == start.Offset {
		return l.makeTok(token.EOF, start)
	}
	return l.makeTok(token.PATH, start)
}

func (l *Lexer) scanIdentOrPathOrURI(start position.Cursor) token.Token {
	for isIdentCont(l.ch) {
		l.next()
	}
	// URI: scheme:uri-chars+, takes precedence over identifier interpretation.
	if l.ch == ':' && isURISchemeTail(l.src[start.Offset:l.offset]) {
		save := l.Cursor()
		l.next()
		if isURICharsStart(l.ch) {
			for isURIChar(l.ch) {
				l.next()
			}
			return l.makeTok(token.URI, start)
		}
		l.SetCursor(save)
	}
	if looksLikePathStart(l.src[l.offset:]) && l.ch == '/' {
		return l.scanPathToken(start)
	}
	text := string(l.src[start.Offset:l.offset])
	if kw, ok := token.Keywords[text]; ok {
		return l.makeTok(kw, start)
	}
	return l.makeTok(token.IDENT, start)
}

func isURISchemeTail(scheme []byte) bool {
	if len(scheme) == 0 {
		return false
	}
	for _, b := range scheme {
		if !(unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b)) || b == '+' || b == '-' || b == '.') {
			return false
		}
	}
	return true
}

func isURICharsStart(r rune) bool { return isURIChar(r) }

func isURIChar(r rune) bool {
	if r == -1 || unicode.IsSpace(r) {
		return false
	}
	switch r {
	case '"', '\'', '(', ')', '{', '}', ';', ',':
		return false
	}
	return true
}

func (l *Lexer) scanNumberOrPath(start position.Cursor) token.Token {
	for unicode.IsDigit(l.ch) {
		l.next()
	}
	if l.ch == '/' && looksLikePathStart(l.src[l.offset:]) {
		return l.scanPathToken(start)
	}
	intEnd := l.offset
	isFloat := false
	if l.ch == '.' && l.peekByte() != '.' {
		isFloat = true
		l.next()
		for unicode.IsDigit(l.ch) {
			l.next()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		save := l.Cursor()
		l.next()
		if l.ch == '+' || l.ch == '-' {
			l.next()
		}
		if unicode.IsDigit(l.ch) {
			isFloat = true
			for unicode.IsDigit(l.ch) {
				l.next()
			}
		} else {
			isFloat = true
			end := l.Cursor()
			l.errf(position.NewRange(save, end), diag.KindMissingExponent)
		}
	}
	if !isFloat {
		return l.makeTok(token.INT, start)
	}
	lit := l.src[start.Offset:intEnd]
	if len(lit) > 1 && lit[0] == '0' && !(intEnd > start.Offset+1 && l.src[start.Offset+1] == '.') {
		end := l.Cursor()
		l.errf(position.NewRange(start, end), diag.KindLeadingZero)
	}
	return l.makeTok(token.FLOAT, start)
}

func (l *Lexer) scanOperator(start position.Cursor) token.Token {
	switch l.ch {
	case '(':
		l.next()
		return l.makeTok(token.LPAREN, start)
	case ')':
		l.next()
		return l.makeTok(token.RPAREN, start)
	case '{':
		l.next()
		return l.makeTok(token.LBRACE, start)
	case '}':
		l.next()
		return l.makeTok(token.RBRACE, start)
	case '[':
		l.next()
		return l.makeTok(token.LBRACKET, start)
	case ']':
		l.next()
		return l.makeTok(token.RBRACKET, start)
	case ';':
		l.next()
		return l.makeTok(token.SEMI, start)
	case ',':
		l.next()
		return l.makeTok(token.COMMA, start)
	case ':':
		l.next()
		return l.makeTok(token.COLON, start)
	case '@':
		l.next()
		return l.makeTok(token.AT, start)
	case '?':
		l.next()
		return l.makeTok(token.QUESTION, start)
	case '=':
		l.next()
		if l.ch == '=' {
			l.next()
			return l.makeTok(token.EQ, start)
		}
		return l.makeTok(token.ASSIGN, start)
	case '!':
		l.next()
		if l.ch == '=' {
			l.next()
			return l.makeTok(token.NEQ, start)
		}
		return l.makeTok(token.NOT, start)
	case '<':
		l.next()
		if l.ch == '=' {
			l.next()
			return l.makeTok(token.LE, start)
		}
		return l.makeTok(token.LT, start)
	case '>':
		l.next()
		if l.ch == '=' {
			l.next()
			return l.makeTok(token.GE, start)
		}
		return l.makeTok(token.GT, start)
	case '-':
		l.next()
		if l.ch == '>' {
			l.next()
			return l.makeTok(token.ARROW, start)
		}
		return l.makeTok(token.MINUS, start)
	case '+':
		l.next()
		if l.ch == '+' {
			l.next()
			return l.makeTok(token.CONCAT, start)
		}
		return l.makeTok(token.PLUS, start)
	case '*':
		l.next()
		return l.makeTok(token.STAR, start)
	case '|':
		l.next()
		if l.ch == '|' {
			l.next()
			return l.makeTok(token.OR_OR, start)
		}
	case '&':
		l.next()
		if l.ch == '&' {
			l.next()
			return l.makeTok(token.AND_AND, start)
		}
	}
	end := l.Cursor()
	l.errf(position.NewRange(start, end), diag.KindIllegalCharacter, string(l.ch))
	l.next()
	return l.makeTok(token.ILLEGAL, start)
}

// scanQuoted lexes the body of a double-quoted string (ModeString).
func (l *Lexer) scanQuoted() token.Token {
	start := l.Cursor()
	switch {
	case l.ch == '"':
		l.next()
		return l.makeTok(token.DQUOTE, start)
	case l.ch == '$' && l.peekByte() == '{':
		l.next()
		l.next()
		return l.makeTok(token.INTERP_OPEN, start)
	case l.ch == '\\':
		l.next()
		if l.ch != -1 {
			l.next()
		}
		return l.makeTok(token.STRING_ESCAPE, start)
	case l.ch == -1:
		end := l.Cursor()
		l.errf(position.NewRange(end, end), diag.KindUnterminatedString)
		return l.makeTok(token.EOF, start)
	default:
		for l.ch != -1 && l.ch != '"' && l.ch != '\\' && !(l.ch == '$' && l.peekByte() == '{') {
			l.next()
		}
		return l.makeTok(token.STRING_PART, start)
	}
}

// scanIndented lexes the body of an indented ('' ... '') string.
func (l *Lexer) scanIndented() token.Token {
	start := l.Cursor()
	switch {
	case l.ch == '\'' && l.peekByte() == '\'':
		// "''" can be the closing delimiter, an escaped "''${"/"'''" sequence,
		// or an escape like ''\n -- disambiguate by looking one rune further.
		if l.offset+2 < len(l.src) {
			third := l.src[l.offset+2]
			if third == '$' || third == '\'' || third == '\\' {
				l.next()
				l.next()
				l.next()
				if third == '$' && l.ch == '{' {
					l.next()
				}
				return l.makeTok(token.STRING_ESCAPE, start)
			}
		}
		l.next()
		l.next()
		return l.makeTok(token.IND_QUOTE, start)
	case l.ch == '$' && l.peekByte() == '{':
		l.next()
		l.next()
		return l.makeTok(token.INTERP_OPEN, start)
	case l.ch == -1:
		end := l.Cursor()
		l.errf(position.NewRange(end, end), diag.KindUnterminatedString)
		return l.makeTok(token.EOF, start)
	default:
		for l.ch != -1 {
			if l.ch == '\'' && l.peekByte() == '\'' {
				break
			}
			if l.ch == '$' && l.peekByte() == '{' {
				break
			}
			l.next()
		}
		return l.makeTok(token.STRING_PART, start)
	}
}
