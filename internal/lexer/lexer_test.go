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

package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nix-community/nixd-sub001/internal/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l := New([]byte(src))
	var toks []token.Token
	for {
		tok := l.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestScanKeywordsAndIdents(t *testing.T) {
	toks := scanAll(t, "let x = rec in")
	require.Equal(t, []token.Kind{token.LET, token.IDENT, token.ASSIGN, token.REC, token.IN, token.EOF}, kinds(toks))
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll(t, "1 1.5 1e10 01.5")
	require.Equal(t, []token.Kind{token.INT, token.FLOAT, token.FLOAT, token.FLOAT, token.EOF}, kinds(toks))
}

func TestScanLeadingZeroWarns(t *testing.T) {
	l := New([]byte("01.5"))
	tok := l.Scan()
	require.Equal(t, token.FLOAT, tok.Kind)
	require.Len(t, l.Diagnostics, 1)
}

func TestScanMissingExponent(t *testing.T) {
	l := New([]byte("1e"))
	tok := l.Scan()
	require.Equal(t, token.FLOAT, tok.Kind)
	require.Len(t, l.Diagnostics, 1)
}

func TestScanOperatorsPrecedenceTable(t *testing.T) {
	toks := scanAll(t, "-> || && == != < <= > >= // ! + - * / ++")
	want := []token.Kind{
		token.ARROW, token.OR_OR, token.AND_AND, token.EQ, token.NEQ,
		token.LT, token.LE, token.GT, token.GE, token.UPDATE,
		token.NOT, token.PLUS, token.MINUS, token.STAR, token.SLASH, token.CONCAT,
		token.EOF,
	}
	require.Equal(t, want, kinds(toks))
}

func TestScanUnterminatedBlockComment(t *testing.T) {
	l := New([]byte("/* hello"))
	tok := l.Scan()
	require.Equal(t, token.EOF, tok.Kind)
	require.Len(t, l.Diagnostics, 1)
	require.Equal(t, "unterminated-comment", l.Diagnostics[0].ShortName())
}

func TestScanPathToken(t *testing.T) {
	toks := scanAll(t, "./foo/bar.nix")
	require.Equal(t, []token.Kind{token.PATH, token.EOF}, kinds(toks))
	require.Equal(t, "./foo/bar.nix", toks[0].View)
}

func TestScanURITakesPrecedenceOverIdent(t *testing.T) {
	toks := scanAll(t, "https://example.com/foo")
	require.Equal(t, []token.Kind{token.URI, token.EOF}, kinds(toks))
}

func TestScanSearchPath(t *testing.T) {
	toks := scanAll(t, "<nixpkgs/lib>")
	require.Equal(t, []token.Kind{token.SPATH, token.EOF}, kinds(toks))
	require.Equal(t, "<nixpkgs/lib>", toks[0].View)
}

func TestScanLessThanNotConfusedWithSearchPath(t *testing.T) {
	toks := scanAll(t, "a < b")
	require.Equal(t, []token.Kind{token.IDENT, token.LT, token.IDENT, token.EOF}, kinds(toks))
}

func TestScanUpdateOperatorNotConfusedWithPath(t *testing.T) {
	toks := scanAll(t, "a // b")
	require.Equal(t, []token.Kind{token.IDENT, token.UPDATE, token.IDENT, token.EOF}, kinds(toks))
}

func TestScanStringMode(t *testing.T) {
	l := New([]byte(`"hi ${x}!"`))
	l.PushMode(ModeExpr) // DQUOTE is scanned in expr mode
	tok := l.Scan()
	require.Equal(t, token.DQUOTE, tok.Kind)
	l.PushMode(ModeString)
	tok = l.Scan()
	require.Equal(t, token.STRING_PART, tok.Kind)
	require.Equal(t, "hi ", tok.View)
	tok = l.Scan()
	require.Equal(t, token.INTERP_OPEN, tok.Kind)
	l.PushMode(ModeExpr)
	tok = l.Scan()
	require.Equal(t, token.IDENT, tok.Kind)
	tok = l.Scan()
	require.Equal(t, token.RBRACE, tok.Kind)
	l.PopMode()
	tok = l.Scan()
	require.Equal(t, token.STRING_PART, tok.Kind)
	require.Equal(t, "!", tok.View)
	tok = l.Scan()
	require.Equal(t, token.DQUOTE, tok.Kind)
}
