// Package parser turns script text into an immutable AST.
//
// # Usage
//
//	script, err := parser.Parse(src)
//	if err != nil {
//	    var syntaxErr *parser.SyntaxError
//	    // errors.As(err, &syntaxErr) gives the offending span
//	}
//
// # Grammar Overview
//
// The parser is a single-pass recursive descent parser:
//
//	script   → NEWLINE* (command (NEWLINE+ | EOF))*
//	command  → WORD arg*                    (WORD may be "alias:name")
//	arg      → expr | block | OPTION expr
//	expr     → WORD | STRING | helper | array
//	helper   → HELPER "(" [expr ("," expr)*] ")"
//	array    → "[" [expr ("," expr)*] "]"
//	block    → "(" NEWLINE* (command NEWLINE*)* ")"
//
// Bare words are classified at parse time into numbers, booleans, addresses,
// 32-byte hashes or probable identifiers. Numbers must be integral once their
// exponent is applied; a dotted word without exponent that is not integral
// (1.2) is kept as a probable identifier. Probable identifiers are resolved
// against bindings only when the script is interpreted.
package parser

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/CommonsSwarm/evmscripter/pkg/token"
	"github.com/ethereum/go-ethereum/common"
)

var (
	numberPattern      = regexp.MustCompile(`^(-?)(\d+)(?:\.(\d+))?(?:[eE](\d+))?$`)
	commandNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)
)

// Parser parses script input into an AST.
type Parser struct {
	lexer   *Lexer
	token   Token // current token
	peek    Token // lookahead token
	prevEnd Position
	errors  []error
}

// NewParser creates a new parser for the given script input.
func NewParser(src string) *Parser {
	p := &Parser{lexer: NewLexer(src)}
	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses the script and returns its AST. Parsing never partially
// succeeds: on error the returned script is nil.
func Parse(src string) (*Script, error) {
	p := NewParser(src)
	script := p.parseScript()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return script, nil
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.prevEnd = p.token.End
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t TokenType) bool {
	return p.token.Type == t
}

// failed reports whether an error has been recorded.
func (p *Parser) failed() bool {
	return len(p.errors) > 0
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.unexpected(fmt.Sprintf("%q", t.String()))
	return false
}

// unexpected records an error for the current token.
func (p *Parser) unexpected(expected string) {
	if p.check(TOKEN_ILLEGAL) {
		p.addError(p.token.Span(), p.token.Literal)
		return
	}
	p.addError(p.token.Span(), fmt.Sprintf(ErrUnexpectedToken, p.token.describe(), expected))
}

// addError adds a syntax error.
func (p *Parser) addError(span token.Span, msg string) {
	p.errors = append(p.errors, &SyntaxError{Span: span, Message: msg})
}

// skipNewlines consumes any run of NEWLINE tokens.
func (p *Parser) skipNewlines() {
	for p.check(TOKEN_NEWLINE) {
		p.nextToken()
	}
}

// spanFrom builds a span from start to the end of the last consumed token.
func (p *Parser) spanFrom(start Position) token.Span {
	return token.Span{Start: start, End: p.prevEnd}
}

// ---------- Statements ----------

func (p *Parser) parseScript() *Script {
	script := &Script{}
	start := p.token.Pos

	p.skipNewlines()
	for !p.check(TOKEN_EOF) && !p.failed() {
		cmd := p.parseCommand()
		if p.failed() {
			break
		}
		script.Body = append(script.Body, cmd)

		if !p.check(TOKEN_NEWLINE) && !p.check(TOKEN_EOF) {
			p.unexpected("end of line")
			break
		}
		p.skipNewlines()
	}

	script.Span = token.Span{Start: start, End: p.token.End}
	return script
}

// parseCommand parses: WORD arg*
func (p *Parser) parseCommand() *CommandExpression {
	if !p.check(TOKEN_WORD) {
		p.unexpected("command name")
		return nil
	}

	cmd := &CommandExpression{}
	start := p.token.Pos
	nameTok := p.token

	module, name, hasPrefix := strings.Cut(nameTok.Literal, ":")
	if !hasPrefix {
		module, name = "", module
	}
	if !commandNamePattern.MatchString(name) || (hasPrefix && !commandNamePattern.MatchString(module)) {
		p.addError(nameTok.Span(), fmt.Sprintf(ErrInvalidCommandName, nameTok.Literal))
		return nil
	}
	cmd.Module = module
	cmd.Name = name
	p.nextToken()

	for !p.failed() {
		switch p.token.Type {
		case TOKEN_NEWLINE, TOKEN_EOF, TOKEN_RPAREN:
			cmd.Span = p.spanFrom(start)
			return cmd
		case TOKEN_OPTION:
			opt := p.parseOption()
			if opt == nil {
				return nil
			}
			if cmd.Opt(opt.Name) != nil {
				p.addError(opt.Span, fmt.Sprintf(ErrDuplicateOption, opt.Name))
				return nil
			}
			cmd.Opts = append(cmd.Opts, opt)
		case TOKEN_LPAREN:
			block := p.parseBlock()
			if block == nil {
				return nil
			}
			cmd.Args = append(cmd.Args, block)
		default:
			arg := p.parseExpression()
			if arg == nil {
				return nil
			}
			cmd.Args = append(cmd.Args, arg)
		}
	}
	return nil
}

// parseOption parses: OPTION expr
func (p *Parser) parseOption() *OptionExpression {
	start := p.token.Pos
	name := p.token.Literal
	p.nextToken()

	value := p.parseExpression()
	if value == nil {
		return nil
	}
	return &OptionExpression{
		NodeInfo: NodeInfo{Span: p.spanFrom(start)},
		Name:     name,
		Value:    value,
	}
}

// parseBlock parses: "(" NEWLINE* (command NEWLINE*)* ")"
func (p *Parser) parseBlock() *BlockExpression {
	start := p.token.Pos
	p.nextToken() // skip '('

	block := &BlockExpression{}
	p.skipNewlines()
	for !p.check(TOKEN_RPAREN) {
		if p.check(TOKEN_EOF) {
			p.unexpected(`")"`)
			return nil
		}
		cmd := p.parseCommand()
		if cmd == nil {
			return nil
		}
		block.Body = append(block.Body, cmd)
		p.skipNewlines()
	}
	p.nextToken() // skip ')'

	block.Span = p.spanFrom(start)
	return block
}

// ---------- Expressions ----------

// parseExpression parses: WORD | STRING | helper | array
func (p *Parser) parseExpression() Node {
	switch p.token.Type {
	case TOKEN_WORD:
		return p.parseWord()
	case TOKEN_STRING:
		lit := &StringLiteral{NodeInfo: NodeInfo{Span: p.token.Span()}, Value: p.token.Literal}
		p.nextToken()
		return lit
	case TOKEN_HELPER:
		return p.parseHelper()
	case TOKEN_LBRACKET:
		return p.parseArray()
	default:
		p.unexpected("expression")
		return nil
	}
}

// parseHelper parses: HELPER ["(" [expr ("," expr)*] ")"]. The argument
// list must follow the name directly; "@me (" is a bare helper followed by
// a block.
func (p *Parser) parseHelper() Node {
	start := p.token.Pos
	nameEnd := p.token.End
	name := p.token.Literal
	p.nextToken()

	if !p.check(TOKEN_LPAREN) || p.token.Pos.Offset != nameEnd.Offset {
		return &HelperFunctionExpression{
			NodeInfo: NodeInfo{Span: token.Span{Start: start, End: nameEnd}},
			Name:     name,
		}
	}
	p.nextToken() // skip '('
	args, ok := p.parseList(TOKEN_RPAREN)
	if !ok {
		return nil
	}
	return &HelperFunctionExpression{
		NodeInfo: NodeInfo{Span: p.spanFrom(start)},
		Name:     name,
		Args:     args,
	}
}

// parseArray parses: "[" [expr ("," expr)*] "]"
func (p *Parser) parseArray() Node {
	start := p.token.Pos
	p.nextToken() // skip '['

	elems, ok := p.parseList(TOKEN_RBRACKET)
	if !ok {
		return nil
	}
	return &ArrayExpression{
		NodeInfo: NodeInfo{Span: p.spanFrom(start)},
		Elements: elems,
	}
}

// parseList parses comma-separated expressions up to and including the
// closing token. Newlines inside the list are ignored.
func (p *Parser) parseList(closing TokenType) ([]Node, bool) {
	var items []Node

	p.skipNewlines()
	if p.check(closing) {
		p.nextToken()
		return items, true
	}

	for {
		p.skipNewlines()
		item := p.parseExpression()
		if item == nil {
			return nil, false
		}
		items = append(items, item)
		p.skipNewlines()

		switch {
		case p.check(TOKEN_COMMA):
			p.nextToken()
		case p.check(closing):
			p.nextToken()
			return items, true
		default:
			p.unexpected(fmt.Sprintf(`"," or %q`, closing.String()))
			return nil, false
		}
	}
}

// parseWord classifies a bare word into a literal or probable identifier.
func (p *Parser) parseWord() Node {
	tok := p.token
	info := NodeInfo{Span: tok.Span()}
	word := tok.Literal
	p.nextToken()

	switch word {
	case "true":
		return &BoolLiteral{NodeInfo: info, Value: true}
	case "false":
		return &BoolLiteral{NodeInfo: info, Value: false}
	}

	if hex, ok := cutHexPrefix(word); ok && hex != "" && isHex(hex) {
		switch len(hex) {
		case 2 * common.AddressLength:
			return &AddressLiteral{NodeInfo: info, Raw: word, Value: common.HexToAddress(word)}
		case 2 * common.HashLength:
			return &Bytes32Literal{NodeInfo: info, Value: common.HexToHash(word)}
		default:
			n, _ := new(big.Int).SetString(hex, 16)
			return &NumberLiteral{NodeInfo: info, Raw: word, Value: n}
		}
	}

	if m := numberPattern.FindStringSubmatch(word); m != nil {
		n, msg := parseDecimal(m[1], m[2], m[3], m[4])
		switch {
		case n != nil:
			return &NumberLiteral{NodeInfo: info, Raw: word, Value: n}
		case m[4] == "" && msg == ErrFractionalNumber:
			// Dotted words such as 1.2 are left to the command, which
			// may read them as versions.
			return &ProbableIdentifier{NodeInfo: info, Value: word}
		default:
			p.addError(tok.Span(), fmt.Sprintf(msg, word))
			return nil
		}
	}

	return &ProbableIdentifier{NodeInfo: info, Value: word}
}

// parseDecimal builds sign·(int.frac)·10^exp, which must be integral. On
// failure it returns nil and the error message format.
func parseDecimal(sign, intPart, fracPart, expPart string) (*big.Int, string) {
	exp := 0
	if expPart != "" {
		e, ok := new(big.Int).SetString(expPart, 10)
		if !ok || !e.IsInt64() || e.Int64() > 256 {
			return nil, ErrInvalidNumber
		}
		exp = int(e.Int64())
	}

	fracPart = strings.TrimRight(fracPart, "0")
	if len(fracPart) > exp {
		return nil, ErrFractionalNumber
	}

	n, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return nil, ErrInvalidNumber
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp-len(fracPart))), nil)
	n.Mul(n, scale)
	if sign == "-" {
		n.Neg(n)
	}
	return n, ""
}

func cutHexPrefix(s string) (string, bool) {
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:], true
	}
	return "", false
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isDigit(c) && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
