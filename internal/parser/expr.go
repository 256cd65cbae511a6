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

package parser

import (
	"strconv"

	"github.com/nix-community/nixd-sub001/internal/diag"
	"github.com/nix-community/nixd-sub001/internal/lexer"
	"github.com/nix-community/nixd-sub001/internal/position"
	"github.com/nix-community/nixd-sub001/internal/syntax"
	"github.com/nix-community/nixd-sub001/internal/token"
)

// checkpoint captures enough parser state to retry a tentative parse,
// used only for the lambda-formals-vs-attrs-literal ambiguity ("{" can
// start either).
type checkpoint struct {
	cursor   position.Cursor
	buf      []token.Token
	diagsLen int
	modeDep  int
}

func (p *parser) save() checkpoint {
	p.fill(1)
	return checkpoint{
		cursor:   p.buf[0].Range.Start,
		buf:      append([]token.Token{}, p.buf...),
		diagsLen: len(p.diags),
		modeDep:  p.lex.ModeDepth(),
	}
}

func (p *parser) restore(c checkpoint) {
	p.lex.TruncateModeTo(c.modeDep)
	p.lex.SetCursor(c.cursor)
	// c.cursor is the start of c.buf[0]: re-lex from there rather than
	// reinstating c.buf, whose tokens the lexer would otherwise produce twice.
	p.buf = nil
	p.diags = p.diags[:c.diagsLen]
}

func rangeOf(start, end position.Cursor) position.Range { return position.NewRange(start, end) }

func spanOf(a, b syntax.Node) position.Range {
	return position.NewRange(a.Range().Start, b.Range().End)
}

func (p *parser) here() position.Cursor { return p.tok().Range.Start }

// lastEnd stands in for the end cursor of the token most recently
// consumed by advance: it returns the start of whatever is now at the
// front of the buffer (or the lexer's live cursor if the buffer is
// empty), so a range ending there includes any trivia between that token
// and the next one.
func (p *parser) lastEnd() position.Cursor {
	if len(p.buf) == 0 {
		return p.lex.Cursor()
	}
	return p.buf[0].Range.Start
}

func (p *parser) parseExprOrBad() syntax.Node {
	n := p.parseExpr()
	if n == nil {
		start := p.here()
		p.errorExpected(rangeOf(start, start), "expression")
		return syntax.NewBad(rangeOf(start, start))
	}
	return n
}

// parseExpr is the single entry point for the full expression grammar,
// implementing the precedence table of spec §4.2 from lowest to highest.
func (p *parser) parseExpr() syntax.Node {
	switch p.tok().Kind {
	case token.LET:
		return p.parseLet()
	case token.IF:
		return p.parseIf()
	case token.ASSERT:
		return p.parseAssert()
	case token.WITH:
		return p.parseWith()
	case token.IDENT:
		if p.peek().Kind == token.COLON {
			return p.parseLambdaIdent()
		}
		if p.peek().Kind == token.AT {
			return p.parseLambdaAtFormals()
		}
	case token.LBRACE:
		if n, ok := p.tryParseLambdaFormals(); ok {
			return n
		}
	}
	return p.parseImplies()
}

func (p *parser) parseLet() syntax.Node {
	start := p.here()
	p.advance() // let
	binds := p.parseBinds(token.IN)
	p.expect(token.IN, "in")
	body := p.parseExprOrBad()
	return syntax.NewLet(rangeOf(start, body.Range().End), binds, body)
}

func (p *parser) parseIf() syntax.Node {
	start := p.here()
	p.advance() // if
	cond := p.parseExprOrBad()
	p.expect(token.THEN, "then")
	then := p.parseExprOrBad()
	p.expect(token.ELSE, "else")
	els := p.parseExprOrBad()
	return syntax.NewIf(rangeOf(start, els.Range().End), cond, then, els)
}

func (p *parser) parseAssert() syntax.Node {
	start := p.here()
	p.advance() // assert
	cond := p.parseExprOrBad()
	p.expect(token.SEMI, ";")
	body := p.parseExprOrBad()
	return syntax.NewAssert(rangeOf(start, body.Range().End), cond, body)
}

func (p *parser) parseWith() syntax.Node {
	start := p.here()
	p.advance() // with
	scope := p.parseExprOrBad()
	p.expect(token.SEMI, ";")
	body := p.parseExprOrBad()
	return syntax.NewWith(rangeOf(start, body.Range().End), scope, body)
}

func (p *parser) parseLambdaIdent() syntax.Node {
	start := p.here()
	name := p.advance() // ident
	p.advance()         // colon
	body := p.parseExprOrBad()
	return syntax.NewLambda(rangeOf(start, body.Range().End), name.View, nil, false, "", body)
}

func (p *parser) parseLambdaAtFormals() syntax.Node {
	start := p.here()
	name := p.advance() // ident
	p.advance()         // '@'
	p.expect(token.LBRACE, "{")
	formals, ellipsis := p.parseFormalsBody()
	p.expect(token.RBRACE, "}")
	p.expect(token.COLON, ":")
	body := p.parseExprOrBad()
	return syntax.NewLambda(rangeOf(start, body.Range().End), "", formals, ellipsis, name.View, body)
}

// tryParseLambdaFormals attempts to parse "{ formals } [@ name] : body".
// It restores the parser if the tentative parse does not end in ':' (and
// the optional '@'), in which case the caller falls back to parsing an
// Attrs literal, since both start with '{'.
func (p *parser) tryParseLambdaFormals() (syntax.Node, bool) {
	cp := p.save()
	start := p.here()
	p.advance() // '{'
	formals, ellipsis := p.parseFormalsBody()
	if p.tok().Kind != token.RBRACE {
		p.restore(cp)
		return nil, false
	}
	p.advance() // '}'
	atName := ""
	if p.tok().Kind == token.AT {
		p.advance()
		if p.tok().Kind == token.IDENT {
			atName = p.advance().View
		}
	}
	if p.tok().Kind != token.COLON {
		p.restore(cp)
		return nil, false
	}
	p.advance() // ':'
	body := p.parseExprOrBad()
	return syntax.NewLambda(rangeOf(start, body.Range().End), "", formals, ellipsis, atName, body), true
}

func (p *parser) parseFormalsBody() ([]*syntax.Formal, bool) {
	var formals []*syntax.Formal
	ellipsis := false
	for p.tok().Kind != token.RBRACE && p.tok().Kind != token.EOF {
		if p.tok().Kind == token.ELLIPSIS {
			p.advance()
			ellipsis = true
			if p.tok().Kind == token.COMMA {
				p.advance()
			}
			continue
		}
		if p.tok().Kind != token.IDENT {
			p.errorExpected(rangeOf(p.here(), p.here()), "formal parameter")
			p.syncTo(token.COMMA, token.RBRACE)
			if p.tok().Kind == token.COMMA {
				p.advance()
			}
			continue
		}
		fstart := p.here()
		name := p.advance().View
		var def syntax.Node
		if p.tok().Kind == token.QUESTION {
			p.advance()
			def = p.parseExprOrBad()
		}
		end := p.lastEnd()
		if def != nil {
			end = def.Range().End
		}
		formals = append(formals, syntax.NewFormal(rangeOf(fstart, end), name, def))
		if p.tok().Kind == token.COMMA {
			p.advance()
		} else if p.tok().Kind != token.RBRACE {
			break
		}
	}
	return formals, ellipsis
}

// ---- Binary precedence chain (spec §4.2) ----

func (p *parser) parseImplies() syntax.Node { // ->
	x := p.parseOr()
	if p.tok().Kind == token.ARROW {
		p.advance()
		y := p.parseImplies() // right-associative
		return syntax.NewBinOp(spanOf(x, y), syntax.OpImplies, x, y)
	}
	return x
}

func (p *parser) parseOr() syntax.Node { // ||
	x := p.parseAnd()
	for p.tok().Kind == token.OR_OR {
		p.advance()
		y := p.parseAnd()
		x = syntax.NewBinOp(spanOf(x, y), syntax.OpOr, x, y)
	}
	return x
}

func (p *parser) parseAnd() syntax.Node { // &&
	x := p.parseEquality()
	for p.tok().Kind == token.AND_AND {
		p.advance()
		y := p.parseEquality()
		x = syntax.NewBinOp(spanOf(x, y), syntax.OpAnd, x, y)
	}
	return x
}

func (p *parser) parseEquality() syntax.Node { // == !=
	x := p.parseComparison()
	for p.tok().Kind == token.EQ || p.tok().Kind == token.NEQ {
		op := syntax.OpEq
		if p.tok().Kind == token.NEQ {
			op = syntax.OpNeq
		}
		p.advance()
		y := p.parseComparison()
		x = syntax.NewBinOp(spanOf(x, y), op, x, y)
	}
	return x
}

func (p *parser) parseComparison() syntax.Node { // < <= > >=
	x := p.parseUpdate()
	for {
		var op syntax.BinOpKind
		switch p.tok().Kind {
		case token.LT:
			op = syntax.OpLt
		case token.LE:
			op = syntax.OpLe
		case token.GT:
			op = syntax.OpGt
		case token.GE:
			op = syntax.OpGe
		default:
			return x
		}
		p.advance()
		y := p.parseUpdate()
		x = syntax.NewBinOp(spanOf(x, y), op, x, y)
	}
}

func (p *parser) parseUpdate() syntax.Node { // //
	x := p.parseNot()
	if p.tok().Kind == token.UPDATE {
		p.advance()
		y := p.parseUpdate() // right-associative
		return syntax.NewBinOp(spanOf(x, y), syntax.OpUpdate, x, y)
	}
	return x
}

func (p *parser) parseNot() syntax.Node { // !
	if p.tok().Kind == token.NOT {
		start := p.here()
		p.advance()
		operand := p.parseNot()
		return syntax.NewUnaryOp(rangeOf(start, operand.Range().End), syntax.OpNot, operand)
	}
	return p.parseAdditive()
}

func (p *parser) parseAdditive() syntax.Node { // + -
	x := p.parseMultiplicative()
	for p.tok().Kind == token.PLUS || p.tok().Kind == token.MINUS {
		op := syntax.OpAdd
		if p.tok().Kind == token.MINUS {
			op = syntax.OpSub
		}
		p.advance()
		y := p.parseMultiplicative()
		x = syntax.NewBinOp(spanOf(x, y), op, x, y)
	}
	return x
}

func (p *parser) parseMultiplicative() syntax.Node { // * /
	x := p.parseConcat()
	for p.tok().Kind == token.STAR || p.tok().Kind == token.SLASH {
		op := syntax.OpMul
		if p.tok().Kind == token.SLASH {
			op = syntax.OpDiv
		}
		p.advance()
		y := p.parseConcat()
		x = syntax.NewBinOp(spanOf(x, y), op, x, y)
	}
	return x
}

func (p *parser) parseConcat() syntax.Node { // ++
	x := p.parseHasAttr()
	if p.tok().Kind == token.CONCAT {
		p.advance()
		y := p.parseConcat() // right-associative
		return syntax.NewBinOp(spanOf(x, y), syntax.OpConcat, x, y)
	}
	return x
}

func (p *parser) parseHasAttr() syntax.Node { // ?
	x := p.parseUnaryMinus()
	for p.tok().Kind == token.QUESTION {
		p.advance()
		path := p.parseAttrPath()
		x = syntax.NewBinOp(rangeOf(x.Range().Start, path.Range().End), syntax.OpHasAttr, x, path)
	}
	return x
}

func (p *parser) parseUnaryMinus() syntax.Node { // unary -
	if p.tok().Kind == token.MINUS {
		start := p.here()
		p.advance()
		operand := p.parseUnaryMinus()
		return syntax.NewUnaryOp(rangeOf(start, operand.Range().End), syntax.OpNeg, operand)
	}
	return p.parseApplication()
}

func startsAtom(k token.Kind) bool {
	switch k {
	case token.IDENT, token.INT, token.FLOAT, token.PATH, token.URI, token.SPATH,
		token.DQUOTE, token.IND_QUOTE, token.LPAREN, token.LBRACE, token.LBRACKET,
		token.REC, token.LET, token.MINUS, token.NOT:
		return true
	default:
		return false
	}
}

func (p *parser) parseApplication() syntax.Node {
	x := p.parseSelect()
	// A '-' after an operand is binary subtraction (parseAdditive), not
	// the start of an argument.
	for startsAtom(p.tok().Kind) && p.tok().Kind != token.MINUS {
		arg := p.parseSelect()
		x = syntax.NewCall(spanOf(x, arg), x, arg)
	}
	return x
}

func (p *parser) parseSelect() syntax.Node {
	x := p.parsePrimary()
	for p.tok().Kind == token.DOT {
		p.advance()
		path := p.parseAttrPath()
		var def syntax.Node
		if p.tok().Kind == token.OR {
			p.advance()
			def = p.parseSelect()
		}
		end := path.Range().End
		if def != nil {
			end = def.Range().End
		}
		x = syntax.NewSelect(rangeOf(x.Range().Start, end), x, path, def)
	}
	return x
}

// parseAttrName parses one AttrName: an identifier (including the
// contextual keyword "or", which emits an or-identifier hint per spec
// §4.2), a string literal, or a "${" interpolation.
func (p *parser) parseAttrName() *syntax.AttrName {
	start := p.here()
	switch p.tok().Kind {
	case token.OR:
		p.errf(p.tok().Range, diag.KindOrIdentifier)
		p.advance()
		return syntax.NewAttrNameIdent(rangeOf(start, p.lastEnd()), "or")
	case token.IDENT:
		name := p.advance().View
		return syntax.NewAttrNameIdent(rangeOf(start, p.lastEnd()), name)
	case token.DQUOTE, token.IND_QUOTE:
		str := p.parseString()
		return syntax.NewAttrNameString(rangeOf(start, p.lastEnd()), str)
	case token.INTERP_OPEN:
		open := p.tok().Range
		p.advance()
		p.pushMode(lexer.ModeExpr)
		expr := p.parseExprOrBad()
		p.expectClosing(token.RBRACE, "}", open)
		p.popMode()
		return syntax.NewAttrNameInterp(rangeOf(start, p.lastEnd()), expr)
	default:
		p.errorExpected(rangeOf(start, start), "attribute name")
		return syntax.NewAttrNameIdent(rangeOf(start, start), "")
	}
}

// parseAttrPath parses a dotted attr path, recovering from the "extra
// dot" case called out in spec §4.2: an attr path that repeats with a
// stray '.' produces a remove-dot diagnostic with two alternative fixes.
func (p *parser) parseAttrPath() *syntax.AttrPath {
	start := p.here()
	var names []*syntax.AttrName
	names = append(names, p.parseAttrName())
	for p.tok().Kind == token.DOT && p.nextIsAttrNameStart() {
		p.advance()
		names = append(names, p.parseAttrName())
	}
	if p.tok().Kind == token.DOT {
		dotRng := p.tok().Range
		d := p.errf(dotRng, diag.KindRemoveDot)
		d.WithFix(diag.Fix{Message: "remove '.'", Edits: []diag.Edit{{OldRange: dotRng, NewText: ""}}})
		d.WithFix(diag.Fix{Message: `insert "dummy"`, Edits: []diag.Edit{{OldRange: rangeOf(dotRng.End, dotRng.End), NewText: `"dummy"`}}})
		p.advance()
	}
	return syntax.NewAttrPath(rangeOf(start, p.lastEnd()), names)
}

func (p *parser) nextIsAttrNameStart() bool {
	switch p.peek().Kind {
	case token.IDENT, token.OR, token.DQUOTE, token.IND_QUOTE, token.INTERP_OPEN:
		return true
	default:
		return false
	}
}

func (p *parser) parsePrimary() syntax.Node {
	start := p.here()
	switch p.tok().Kind {
	case token.INT:
		lit := p.advance()
		v, _ := strconv.ParseInt(lit.View, 10, 64)
		return syntax.NewInt(lit.Range, v)
	case token.FLOAT:
		lit := p.advance()
		v, _ := strconv.ParseFloat(lit.View, 64)
		return syntax.NewFloat(lit.Range, v)
	case token.IDENT:
		lit := p.advance()
		return syntax.NewVar(lit.Range, lit.View)
	case token.URI:
		lit := p.advance()
		return syntax.NewURI(lit.Range, lit.View)
	case token.SPATH:
		lit := p.advance()
		return syntax.NewPath(lit.Range, []syntax.InterpPart{{Escaped: lit.View}})
	case token.PATH:
		return p.parsePath()
	case token.DQUOTE, token.IND_QUOTE:
		return p.parseString()
	case token.LPAREN:
		return p.parseParen()
	case token.LBRACKET:
		return p.parseList()
	case token.LBRACE:
		return p.parseAttrsLit(false)
	case token.REC:
		p.advance()
		open := p.tok().Range
		p.expect(token.LBRACE, "{")
		return p.parseAttrsBody(start, true, open)
	case token.LET:
		return p.parseLet()
	default:
		p.errorExpected(rangeOf(start, start), "expression")
		p.advance()
		return syntax.NewBad(rangeOf(start, p.lastEnd()))
	}
}

// parsePath parses a path literal. The initial PATH token is
// re-lexed under ModePath (pushing the mode discards and re-scans the
// lookahead buffer): ModeExpr's scanner has no notion of "${" inside a
// path, so every token following the first must come from ModePath.
func (p *parser) parsePath() syntax.Node {
	start := p.here()
	p.pushMode(lexer.ModePath)
	var parts []syntax.InterpPart
	for {
		if p.tok().Kind == token.PATH {
			lit := p.advance()
			parts = append(parts, syntax.InterpPart{Escaped: lit.View})
			continue
		}
		if p.tok().Kind == token.INTERP_OPEN {
			open := p.tok().Range
			p.advance()
			p.pushMode(lexer.ModeExpr)
			expr := p.parseExprOrBad()
			p.expectClosing(token.RBRACE, "}", open)
			p.popMode() // back to ModePath
			parts = append(parts, syntax.InterpPart{Interp: expr})
			continue
		}
		break
	}
	p.popMode() // leave ModePath
	return syntax.NewPath(rangeOf(start, p.lastEnd()), parts)
}

func (p *parser) parseParen() syntax.Node {
	start := p.here()
	lparen := p.advance().Range
	inner := p.parseExprOrBad()
	if p.tok().Kind != token.RPAREN {
		p.expectClosing(token.RPAREN, ")", lparen)
		return syntax.NewParenExpr(rangeOf(start, p.lastEnd()), lparen, inner, nil)
	}
	rparen := p.advance().Range
	return syntax.NewParenExpr(rangeOf(start, rparen.End), lparen, inner, &rparen)
}

func (p *parser) parseList() syntax.Node {
	start := p.here()
	lbrack := p.tok().Range
	p.advance()
	var elems []syntax.Node
	for p.tok().Kind != token.RBRACKET && p.tok().Kind != token.EOF {
		elems = append(elems, p.parseSelect())
	}
	p.expectClosing(token.RBRACKET, "]", lbrack)
	return syntax.NewList(rangeOf(start, p.lastEnd()), elems)
}

func (p *parser) parseAttrsLit(rec bool) syntax.Node {
	start := p.here()
	lbrace := p.tok().Range
	p.advance() // '{'
	return p.parseAttrsBody(start, rec, lbrace)
}

func (p *parser) parseAttrsBody(start position.Cursor, rec bool, open position.Range) syntax.Node {
	binds := p.parseBinds(token.RBRACE)
	p.expectClosing(token.RBRACE, "}", open)
	return syntax.NewAttrs(rangeOf(start, p.lastEnd()), rec, binds)
}

// parseBinds parses a ';'-terminated sequence of Binding/Inherit entries
// until the closing token (RBRACE or IN) is reached, skipping unknown
// syntax up to the next synchronising token per spec §4.2.
func (p *parser) parseBinds(closing token.Kind) []syntax.BindingOrInherit {
	var out []syntax.BindingOrInherit
	for p.tok().Kind != closing && p.tok().Kind != token.EOF {
		switch p.tok().Kind {
		case token.INHERIT:
			out = append(out, p.parseInherit())
		case token.IDENT, token.OR, token.DQUOTE, token.IND_QUOTE, token.INTERP_OPEN:
			out = append(out, p.parseBinding())
		default:
			p.errf(p.tok().Range, diag.KindUnknownBinding, "';'")
			p.syncTo(token.SEMI, token.RBRACE, token.RBRACKET, token.RPAREN)
			if p.tok().Kind == token.SEMI {
				p.advance()
			}
		}
	}
	return out
}

func (p *parser) parseBinding() syntax.BindingOrInherit {
	start := p.here()
	path := p.parseAttrPath()
	p.expect(token.ASSIGN, "=")
	var value syntax.Node
	if startsAtom(p.tok().Kind) || p.tok().Kind == token.LET {
		value = p.parseExpr()
	} else {
		p.errorExpected(rangeOf(p.here(), p.here()), "expression")
	}
	p.expect(token.SEMI, ";")
	return syntax.NewBinding(rangeOf(start, p.lastEnd()), path, value)
}

func (p *parser) parseInherit() syntax.BindingOrInherit {
	start := p.here()
	p.advance() // inherit
	var expr syntax.Node
	if p.tok().Kind == token.LPAREN {
		expr = p.parseParen()
	}
	var names []*syntax.AttrName
	for p.tok().Kind == token.IDENT || p.tok().Kind == token.OR ||
		p.tok().Kind == token.DQUOTE || p.tok().Kind == token.IND_QUOTE || p.tok().Kind == token.INTERP_OPEN {
		n := p.parseAttrName()
		if n.NameKind == syntax.AttrNameInterp {
			rng := n.Range()
			d := p.errf(rng, diag.KindDynamicInherit)
			d.WithFix(diag.Fix{Message: "remove dynamic name", Edits: []diag.Edit{{OldRange: rng, NewText: ""}}})
			continue
		}
		names = append(names, n)
	}
	semi := p.expect(token.SEMI, ";")
	if len(names) == 0 {
		rng := rangeOf(start, semi.End)
		d := p.errf(rng, diag.KindEmptyInherit)
		d.WithFix(diag.Fix{Message: "remove empty inherit", Edits: []diag.Edit{{OldRange: rng, NewText: ""}}})
	}
	return syntax.NewInherit(rangeOf(start, p.lastEnd()), expr, names)
}

// ---- strings ----

func (p *parser) parseString() *syntax.String {
	start := p.here()
	indented := p.tok().Kind == token.IND_QUOTE
	open := p.advance().Range // DQUOTE or IND_QUOTE
	mode := lexer.ModeString
	if indented {
		mode = lexer.ModeIndString
	}
	// Re-lex from just after the opening quote: a token already in the
	// lookahead buffer was lexed in Expr mode and skipped leading whitespace.
	p.lex.PushMode(mode)
	p.lex.SetCursor(open.End)
	p.buf = nil
	var parts []syntax.InterpPart
loop:
	for {
		switch p.tok().Kind {
		case token.STRING_PART:
			parts = append(parts, syntax.InterpPart{Escaped: p.advance().View})
		case token.STRING_ESCAPE:
			parts = append(parts, syntax.InterpPart{Escaped: unescapeSequence(p.advance().View, indented)})
		case token.INTERP_OPEN:
			p.advance()
			p.pushMode(lexer.ModeExpr)
			expr := p.parseExprOrBad()
			p.expectClosing(token.RBRACE, "}", open)
			p.popMode()
			parts = append(parts, syntax.InterpPart{Interp: expr})
		default:
			break loop
		}
	}
	if p.tok().Kind == token.DQUOTE || p.tok().Kind == token.IND_QUOTE {
		p.advance()
	} else {
		p.expectClosing(closingKind(indented), closingText(indented), open)
	}
	p.popMode()
	return syntax.NewString(rangeOf(start, p.lastEnd()), parts, indented)
}

func closingKind(indented bool) token.Kind {
	if indented {
		return token.IND_QUOTE
	}
	return token.DQUOTE
}

func closingText(indented bool) string {
	if indented {
		return "''"
	}
	return `"`
}

// unescapeSequence decodes one escape token's View into its literal text.
// Double-quoted escapes are "\X"; indented-string escapes are "''X", "'''"
// or "''\X" (spec §4.1).
func unescapeSequence(view string, indented bool) string {
	if !indented {
		if len(view) < 2 {
			return ""
		}
		switch view[1] {
		case 'n':
			return "\n"
		case 't':
			return "\t"
		case 'r':
			return "\r"
		default:
			return view[1:]
		}
	}
	if len(view) >= 3 && view[2] == '\'' {
		return "''"
	}
	if len(view) >= 3 && view[2] == '$' {
		return "$"
	}
	if len(view) >= 4 && view[2] == '\\' {
		switch view[3] {
		case 'n':
			return "\n"
		case 't':
			return "\t"
		case 'r':
			return "\r"
		default:
			return view[3:]
		}
	}
	return view
}
