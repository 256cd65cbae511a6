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

// Package token enumerates the lexical tokens of the Nix expression
// language and the Token value the lexer produces for each.
package token

import "github.com/nix-community/nixd-sub001/internal/position"

// Kind discriminates a Token. The ordering below is purely cosmetic; code
// must never rely on relative Kind values beyond the explicit predicates
// (IsKeyword, IsLiteral).
type Kind int

const (
	ILLEGAL Kind = iota
	EOF

	// Literals.
	IDENT
	INT
	FLOAT
	PATH
	URI
	SPATH // <search-path>

	// String/indented-string structure. STRING_PART and STRING_ESCAPE are
	// emitted only in String or IndString mode; INTERP_OPEN also comes
	// from Path mode and, for a dynamic attribute name, Expr mode; DQUOTE
	// and IND_QUOTE open a string in Expr mode. See internal/lexer.
	STRING_PART
	STRING_ESCAPE
	INTERP_OPEN // "${"
	DQUOTE      // '"'
	IND_QUOTE   // "''"

	// Punctuation.
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	SEMI
	COMMA
	DOT
	COLON
	AT
	QUESTION
	ELLIPSIS // "..."

	// Operators, grouped by the precedence table in spec §4.2, low to high.
	ARROW   // ->
	OR_OR   // ||
	AND_AND // &&
	EQ      // ==
	NEQ     // !=
	LT      // <
	LE      // <=
	GT      // >
	GE      // >=
	UPDATE  // //
	NOT     // !
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	CONCAT  // ++
	ASSIGN  // =

	// Keywords.
	IF
	THEN
	ELSE
	ASSERT
	WITH
	LET
	IN
	REC
	INHERIT
	OR // contextual keyword, only after a '.' in an attr path / catch-all

	// Trivia. The lexer skips comments and never produces this kind.
	COMMENT
)

var names = map[Kind]string{
	ILLEGAL:       "illegal",
	EOF:           "eof",
	IDENT:         "identifier",
	INT:           "integer",
	FLOAT:         "float",
	PATH:          "path",
	URI:           "uri",
	SPATH:         "search-path",
	STRING_PART:   "string-part",
	STRING_ESCAPE: "string-escape",
	INTERP_OPEN:   "${",
	DQUOTE:        `"`,
	IND_QUOTE:     "''",
	LPAREN:        "(",
	RPAREN:        ")",
	LBRACE:        "{",
	RBRACE:        "}",
	LBRACKET:      "[",
	RBRACKET:      "]",
	SEMI:          ";",
	COMMA:         ",",
	DOT:           ".",
	COLON:         ":",
	AT:            "@",
	QUESTION:      "?",
	ELLIPSIS:      "...",
	ARROW:         "->",
	OR_OR:         "||",
	AND_AND:       "&&",
	EQ:            "==",
	NEQ:           "!=",
	LT:            "<",
	LE:            "<=",
	GT:            ">",
	GE:            ">=",
	UPDATE:        "//",
	NOT:           "!",
	PLUS:          "+",
	MINUS:         "-",
	STAR:          "*",
	SLASH:         "/",
	CONCAT:        "++",
	ASSIGN:        "=",
	IF:            "if",
	THEN:          "then",
	ELSE:          "else",
	ASSERT:        "assert",
	WITH:          "with",
	LET:           "let",
	IN:            "in",
	REC:           "rec",
	INHERIT:       "inherit",
	OR:            "or",
	COMMENT:       "comment",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "unknown"
}

// Keywords maps a lexed identifier's text to its keyword Kind. Identifiers
// not present here remain IDENT.
var Keywords = map[string]Kind{
	"if":      IF,
	"then":    THEN,
	"else":    ELSE,
	"assert":  ASSERT,
	"with":    WITH,
	"let":     LET,
	"in":      IN,
	"rec":     REC,
	"inherit": INHERIT,
	"or":      OR,
}

// IsKeyword reports whether k is one of the reserved words above.
func (k Kind) IsKeyword() bool {
	switch k {
	case IF, THEN, ELSE, ASSERT, WITH, LET, IN, REC, INHERIT, OR:
		return true
	default:
		return false
	}
}

// IsLiteral reports whether k carries its own textual identity (as opposed
// to fixed punctuation/operator spelling), matching the distinction
// cue/token.Token.IsLiteral draws for error messages.
func (k Kind) IsLiteral() bool {
	switch k {
	case IDENT, INT, FLOAT, PATH, URI, SPATH, STRING_PART, STRING_ESCAPE:
		return true
	default:
		return false
	}
}

// Token is the unit the lexer produces. View is always exactly the source
// substring covered by Range, per spec §3.
type Token struct {
	Kind  Kind
	Range position.Range
	View  string
}

func (t Token) String() string {
	if t.Kind.IsLiteral() {
		return t.View
	}
	return t.Kind.String()
}
