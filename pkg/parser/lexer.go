package parser

import "strings"

// Lexer tokenizes script input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // line of ch (1-based)
	col     int  // column of ch (1-based)
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.pos < len(l.input) && l.readPos > 0 && l.input[l.pos] == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// atEOF reports whether the whole input has been consumed. A NUL byte
// inside the input is not EOF.
func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the position of the current character.
func (l *Lexer) currentPos() Position {
	return Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipBlanksAndComments()

	pos := l.currentPos()

	if l.atEOF() {
		return Token{Type: TOKEN_EOF, Pos: pos, End: pos}
	}

	switch l.ch {
	case 0:
		l.readChar()
		return Token{Type: TOKEN_ILLEGAL, Literal: ErrNulByte, Pos: pos, End: l.currentPos()}
	case '\n':
		return l.single(TOKEN_NEWLINE, pos)
	case '(':
		return l.single(TOKEN_LPAREN, pos)
	case ')':
		return l.single(TOKEN_RPAREN, pos)
	case '[':
		return l.single(TOKEN_LBRACKET, pos)
	case ']':
		return l.single(TOKEN_RBRACKET, pos)
	case ',':
		return l.single(TOKEN_COMMA, pos)
	case '"', '\'':
		lit, ok := l.readString()
		if !ok {
			return Token{Type: TOKEN_ILLEGAL, Literal: ErrUnterminatedString, Pos: pos, End: l.currentPos()}
		}
		return Token{Type: TOKEN_STRING, Literal: lit, Pos: pos, End: l.currentPos()}
	case '@':
		l.readChar() // skip '@'
		name := l.readName()
		if name == "" {
			return Token{Type: TOKEN_ILLEGAL, Literal: ErrMissingHelperName, Pos: pos, End: l.currentPos()}
		}
		return Token{Type: TOKEN_HELPER, Literal: name, Pos: pos, End: l.currentPos()}
	}

	if l.ch == '-' && l.peekChar() == '-' {
		l.readChar() // skip first '-'
		l.readChar() // skip second '-'
		name := l.readName()
		if name == "" {
			return Token{Type: TOKEN_ILLEGAL, Literal: ErrMissingOptionName, Pos: pos, End: l.currentPos()}
		}
		return Token{Type: TOKEN_OPTION, Literal: name, Pos: pos, End: l.currentPos()}
	}

	word, ok := l.readWord()
	if !ok {
		return Token{Type: TOKEN_ILLEGAL, Literal: ErrUnbalancedWord, Pos: pos, End: l.currentPos()}
	}
	return Token{Type: TOKEN_WORD, Literal: word, Pos: pos, End: l.currentPos()}
}

// single consumes one character and returns it as a token.
func (l *Lexer) single(t TokenType, pos Position) Token {
	lit := string(l.ch)
	l.readChar()
	return Token{Type: t, Literal: lit, Pos: pos, End: l.currentPos()}
}

// skipBlanksAndComments skips spaces, tabs, carriage returns and # comments.
// Newlines are significant and are left for NextToken.
func (l *Lexer) skipBlanksAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '#' {
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
			continue
		}
		return
	}
}

// readString reads a quoted string literal with backslash escapes.
func (l *Lexer) readString() (string, bool) {
	quote := l.ch
	l.readChar() // skip opening quote

	var result strings.Builder
	for !l.atEOF() {
		switch l.ch {
		case quote:
			l.readChar() // skip closing quote
			return result.String(), true
		case '\\':
			l.readChar()
			if l.atEOF() {
				return "", false
			}
			switch l.ch {
			case 'n':
				result.WriteByte('\n')
			case 't':
				result.WriteByte('\t')
			default:
				result.WriteByte(l.ch)
			}
			l.readChar()
		default:
			result.WriteByte(l.ch)
			l.readChar()
		}
	}
	return "", false
}

// readName reads a helper or option name.
func (l *Lexer) readName() string {
	start := l.pos
	for isNameChar(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readWord reads a bare word. Parentheses opened inside the word nest, so
// function fragments such as transfer(address,uint256):(bool) stay whole.
func (l *Lexer) readWord() (string, bool) {
	start := l.pos
	depth := 0
	for !l.atEOF() && l.ch != '\n' && l.ch != 0 {
		if depth == 0 && isWordTerminator(l.ch) {
			break
		}
		switch l.ch {
		case '(':
			depth++
		case ')':
			depth--
		}
		l.readChar()
	}
	return l.input[start:l.pos], depth == 0 && l.pos > start
}

func isWordTerminator(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', ')', ',', ']', '[':
		return true
	}
	return false
}

func isNameChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_' || ch == '-' || ch == '.' || ch == ':'
}

// isLetter returns true if ch is an ASCII letter.
func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens from the input.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TOKEN_EOF || tok.Type == TOKEN_ILLEGAL {
			break
		}
	}
	return tokens
}
