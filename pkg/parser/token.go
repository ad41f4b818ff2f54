package parser

import (
	"fmt"

	"github.com/CommonsSwarm/evmscripter/pkg/token"
)

// Position is an alias for token.Position.
type Position = token.Position

// TokenType represents the type of a lexical token.
type TokenType int

//nolint:revive // TOKEN_* names follow the lexer convention used across the parser
const (
	TOKEN_EOF TokenType = iota
	TOKEN_ILLEGAL

	TOKEN_NEWLINE
	TOKEN_WORD   // bare word: command names, numbers, identifiers, addresses
	TOKEN_STRING // "text" or 'text'
	TOKEN_HELPER // @name
	TOKEN_OPTION // --name

	TOKEN_LPAREN   // (
	TOKEN_RPAREN   // )
	TOKEN_LBRACKET // [
	TOKEN_RBRACKET // ]
	TOKEN_COMMA    // ,
)

var tokenNames = map[TokenType]string{
	TOKEN_EOF:      "EOF",
	TOKEN_ILLEGAL:  "ILLEGAL",
	TOKEN_NEWLINE:  "NEWLINE",
	TOKEN_WORD:     "WORD",
	TOKEN_STRING:   "STRING",
	TOKEN_HELPER:   "HELPER",
	TOKEN_OPTION:   "OPTION",
	TOKEN_LPAREN:   "(",
	TOKEN_RPAREN:   ")",
	TOKEN_LBRACKET: "[",
	TOKEN_RBRACKET: "]",
	TOKEN_COMMA:    ",",
}

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// Token represents a lexical token with position information.
// End is the position just past the last byte of the token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
	End     Position
}

// Span returns the source span covered by the token.
func (t Token) Span() token.Span {
	return token.Span{Start: t.Pos, End: t.End}
}

// describe renders the token for error messages.
func (t Token) describe() string {
	switch t.Type {
	case TOKEN_EOF, TOKEN_NEWLINE:
		return "end of line"
	case TOKEN_WORD, TOKEN_HELPER, TOKEN_OPTION:
		return fmt.Sprintf("%q", t.Literal)
	case TOKEN_STRING:
		return "string literal"
	default:
		return fmt.Sprintf("%q", t.Type.String())
	}
}
