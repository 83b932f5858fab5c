package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/sandrolain/goremap/pkg/types"
)

// Parser implements a recursive descent parser for remap programs.
// It uses Pratt's "Top Down Operator Precedence" algorithm to handle
// operator precedence correctly.
type Parser struct {
	lexer   *Lexer
	current Token
	prev    Token
	errors  []error
	opts    ParseOptions
	arena   *types.NodeArena
	depth   int
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...ParseOption) *Parser {
	options := ParseOptions{
		MaxDepth: 128,
	}
	for _, opt := range opts {
		opt(&options)
	}

	p := &Parser{
		lexer: NewLexer(input),
		opts:  options,
		arena: types.NewNodeArena(),
	}

	// Read the first token
	p.advance()

	return p
}

// Parse parses the entire program and returns the root AST node.
func (p *Parser) Parse() (*types.ASTNode, error) {
	root := p.arena.Alloc(types.NodeProgram, 0)

	stmts, err := p.parseStatements(TokenEOF)
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenEOF {
		return nil, p.error(types.ErrSyntaxError, fmt.Sprintf("unexpected token: %s", p.describe(p.current)))
	}

	root.Expressions = stmts
	root.End = p.lexer.length
	return root, nil
}

// Errors returns every error recorded while parsing.
func (p *Parser) Errors() []error {
	return p.errors
}

// Operator precedence table (binding power)
// Higher values bind more tightly
var precedence = map[TokenType]int{
	TokenAssign:       5,  // =
	TokenCoalesce:     10, // ??
	TokenOr:           20, // ||
	TokenAnd:          30, // &&
	TokenEqual:        40, // ==
	TokenNotEqual:     40, // !=
	TokenLess:         45, // <
	TokenLessEqual:    45, // <=
	TokenGreater:      45, // >
	TokenGreaterEqual: 45, // >=
	TokenPlus:         50, // +
	TokenMinus:        50, // -
	TokenMult:         60, // *
	TokenDiv:          60, // /
	TokenPercent:      60, // %
}

// unaryPrecedence binds prefix ! and - tighter than any infix operator.
const unaryPrecedence = 70

// getPrecedence returns the precedence of a token type.
func (p *Parser) getPrecedence(tt TokenType) int {
	if prec, ok := precedence[tt]; ok {
		return prec
	}
	return 0
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.prev = p.current
	p.current = p.lexer.Next()
}

// adjacent reports whether the current token directly follows the previous
// one, with no blank in between.
func (p *Parser) adjacent() bool {
	return p.current.Position == p.prev.End
}

// skipNewlines skips newline tokens where they are not significant.
func (p *Parser) skipNewlines() {
	for p.current.Type == TokenNewline {
		p.advance()
	}
}

// peekPastNewlines returns the first token type after the current newlines
// without consuming anything.
func (p *Parser) peekPastNewlines() TokenType {
	if p.current.Type != TokenNewline {
		return p.current.Type
	}
	l := *p.lexer
	tok := l.Next()
	for tok.Type == TokenNewline {
		tok = l.Next()
	}
	return tok.Type
}

// expect checks if the current token matches the expected type and advances.
func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		return p.error(types.ErrExpectedToken, fmt.Sprintf("expected %s but got %s", tt.String(), p.describe(p.current)))
	}
	p.advance()
	return nil
}

func (p *Parser) describe(t Token) string {
	switch t.Type {
	case TokenIdent, TokenInteger, TokenFloat:
		return strconv.Quote(t.Value)
	}
	return t.Type.String()
}

// error creates a parser error. A pending lexer error takes precedence,
// since it explains why the token stream stopped making sense.
func (p *Parser) error(code types.ErrorCode, message string) error {
	if p.current.Type == TokenError && p.lexer.Error() != nil {
		err := p.lexer.Error()
		p.errors = append(p.errors, err)
		return err
	}
	err := &types.Error{
		Code:     code,
		Message:  message,
		Position: p.current.Position,
		Token:    p.current.Value,
	}
	p.errors = append(p.errors, err)
	return err
}

func (p *Parser) node(nodeType types.NodeType, position int) *types.ASTNode {
	return p.arena.Alloc(nodeType, position)
}

// parseStatements parses statements separated by newlines or semicolons
// until end (or EOF) is reached. The end token is not consumed.
func (p *Parser) parseStatements(end TokenType) ([]*types.ASTNode, error) {
	var stmts []*types.ASTNode
	for {
		for p.current.Type == TokenNewline || p.current.Type == TokenSemicolon {
			p.advance()
		}
		if p.current.Type == end || p.current.Type == TokenEOF {
			return stmts, nil
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)

		switch p.current.Type {
		case TokenNewline, TokenSemicolon, end, TokenEOF:
		default:
			return nil, p.error(types.ErrSyntaxError, fmt.Sprintf("unexpected token: %s, expected end of statement", p.describe(p.current)))
		}
	}
}

// parseStatement parses an expression, or an error assignment
// "ok, err = expr".
func (p *Parser) parseStatement() (*types.ASTNode, error) {
	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if p.current.Type == TokenComma && isAssignable(expr) {
		return p.parseErrorAssignment(expr)
	}
	return expr, nil
}

func isAssignable(n *types.ASTNode) bool {
	switch n.Type {
	case types.NodeVariable:
		return true
	case types.NodeQuery:
		return n.Root != types.QueryExpression
	}
	return false
}

// parseExpression parses an expression with operator precedence.
// rbp is the right binding power (minimum precedence).
func (p *Parser) parseExpression(rbp int) (*types.ASTNode, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		return nil, p.error(types.ErrSyntaxError, fmt.Sprintf("nesting deeper than %d levels", p.opts.MaxDepth))
	}

	// Parse prefix expression (nud - null denotation)
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	// Parse infix expressions while precedence allows (led - left denotation)
	for rbp < p.getPrecedence(p.current.Type) {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// parsePrefix parses a prefix expression (nud - null denotation).
// These are expressions that don't require a left-hand side.
func (p *Parser) parsePrefix() (*types.ASTNode, error) {
	token := p.current

	switch token.Type {
	case TokenString:
		return p.parseString()
	case TokenRawString:
		return p.parseRaw(types.NodeString)
	case TokenRegex:
		return p.parseRaw(types.NodeRegex)
	case TokenTimestamp:
		return p.parseRaw(types.NodeTimestamp)
	case TokenInteger:
		return p.parseInteger()
	case TokenFloat:
		return p.parseFloat()
	case TokenBoolean:
		return p.parseBoolean()
	case TokenNull:
		return p.parseNull()
	case TokenIdent:
		return p.parseIdent()
	case TokenDot:
		return p.parseEventPath()
	case TokenPercent:
		return p.parseMetadataPath()
	case TokenBang, TokenMinus:
		return p.parseUnary()
	case TokenParenOpen:
		return p.parseGrouping()
	case TokenBracketOpen:
		return p.parseArrayConstructor()
	case TokenBraceOpen:
		if p.isObjectStart() {
			return p.parseObjectConstructor()
		}
		return p.parseBlock()
	case TokenIf:
		return p.parseIf()
	case TokenAbort:
		return p.parseAbort()
	default:
		return nil, p.error(types.ErrSyntaxError, fmt.Sprintf("unexpected token: %s", p.describe(token)))
	}
}

// parseInfix parses an infix expression (led - left denotation).
// These are expressions that require a left-hand side.
func (p *Parser) parseInfix(left *types.ASTNode) (*types.ASTNode, error) {
	token := p.current

	switch token.Type {
	case TokenAssign:
		return p.parseAssignment(left)
	case TokenPlus, TokenMinus, TokenMult, TokenDiv, TokenPercent,
		TokenEqual, TokenNotEqual, TokenLess, TokenLessEqual,
		TokenGreater, TokenGreaterEqual,
		TokenAnd, TokenOr, TokenCoalesce:
		return p.parseBinaryOp(left)
	default:
		return nil, p.error(types.ErrSyntaxError, fmt.Sprintf("unexpected infix token: %s", token.Type.String()))
	}
}

// unescapeString processes escape sequences in a string literal.
// Handles standard escapes (\n, \t, etc.) and Unicode escapes (\uXXXX).
// Also handles UTF-16 surrogate pairs for characters outside the BMP.
func unescapeString(s string) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil // Fast path: no escapes
	}

	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			result.WriteByte(s[i])
			continue
		}

		i++ // Skip backslash
		if i >= len(s) {
			return "", fmt.Errorf("invalid escape sequence at end of string")
		}

		switch s[i] {
		case 'n':
			result.WriteByte('\n')
		case 't':
			result.WriteByte('\t')
		case 'r':
			result.WriteByte('\r')
		case '0':
			result.WriteByte(0)
		case '\\':
			result.WriteByte('\\')
		case '"':
			result.WriteByte('"')
		case '\'':
			result.WriteByte('\'')
		case 'u':
			// Unicode escape: \uXXXX
			if i+4 >= len(s) {
				return "", fmt.Errorf("invalid \\u escape: not enough characters")
			}
			hex := s[i+1 : i+5]
			codePoint, err := strconv.ParseUint(hex, 16, 16)
			if err != nil {
				return "", fmt.Errorf("invalid \\u escape: %s", hex)
			}
			i += 4

			r := rune(codePoint)

			// High surrogate: expect a low surrogate next
			if r >= 0xD800 && r <= 0xDBFF && i+6 < len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
				low, err := strconv.ParseUint(s[i+3:i+7], 16, 16)
				if err == nil && low >= 0xDC00 && low <= 0xDFFF {
					decoded := utf16.Decode([]uint16{uint16(r), uint16(low)})
					result.WriteRune(decoded[0])
					i += 6
					continue
				}
			}
			result.WriteRune(r)
		default:
			return "", fmt.Errorf("invalid escape sequence: \\%c", s[i])
		}
	}

	return result.String(), nil
}

// parseString parses a double-quoted string literal.
func (p *Parser) parseString() (*types.ASTNode, error) {
	node := p.node(types.NodeString, p.current.Position)

	unescaped, err := unescapeString(p.current.Value)
	if err != nil {
		return nil, p.error(types.ErrUnsupportedEscape, fmt.Sprintf("invalid string literal: %v", err))
	}

	node.StrValue = unescaped
	node.Value = unescaped
	p.advance()
	node.End = p.prev.End
	return node, nil
}

// parseRaw parses s'...', r'...' and t'...' literals. Only \' is an escape.
func (p *Parser) parseRaw(nodeType types.NodeType) (*types.ASTNode, error) {
	node := p.node(nodeType, p.current.Position)
	node.StrValue = strings.ReplaceAll(p.current.Value, `\'`, `'`)
	node.Value = node.StrValue
	p.advance()
	node.End = p.prev.End
	return node, nil
}

// parseInteger parses an integer literal.
func (p *Parser) parseInteger() (*types.ASTNode, error) {
	node := p.node(types.NodeInteger, p.current.Position)

	val, err := strconv.ParseInt(p.current.Value, 10, 64)
	if err != nil {
		return nil, p.error(types.ErrNumberOutOfRange, fmt.Sprintf("integer out of range: %s", p.current.Value))
	}

	node.Value = val
	p.advance()
	node.End = p.prev.End
	return node, nil
}

// parseFloat parses a float literal.
func (p *Parser) parseFloat() (*types.ASTNode, error) {
	node := p.node(types.NodeFloat, p.current.Position)

	val, err := strconv.ParseFloat(p.current.Value, 64)
	if err != nil {
		return nil, p.error(types.ErrNumberOutOfRange, fmt.Sprintf("invalid float: %s", p.current.Value))
	}

	node.Value = val
	p.advance()
	node.End = p.prev.End
	return node, nil
}

// parseBoolean parses a boolean literal.
func (p *Parser) parseBoolean() (*types.ASTNode, error) {
	node := p.node(types.NodeBoolean, p.current.Position)
	node.Value = p.current.Value == "true"
	p.advance()
	node.End = p.prev.End
	return node, nil
}

// parseNull parses a null literal.
func (p *Parser) parseNull() (*types.ASTNode, error) {
	node := p.node(types.NodeNull, p.current.Position)
	p.advance()
	node.End = p.prev.End
	return node, nil
}

// parseIdent parses a variable, a variable query or a function call.
func (p *Parser) parseIdent() (*types.ASTNode, error) {
	name := p.current
	p.advance()

	if p.adjacent() && (p.current.Type == TokenParenOpen || p.current.Type == TokenBang) {
		return p.parseFunctionCall(name)
	}

	node := p.node(types.NodeVariable, name.Position)
	node.StrValue = name.Value
	node.End = name.End

	path, err := p.parsePathSegments(nil)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return node, nil
	}

	query := p.node(types.NodeQuery, name.Position)
	query.Root = types.QueryVariable
	query.StrValue = name.Value
	query.Path = path
	query.End = p.prev.End
	return query, nil
}

// parseFunctionCall parses "name(args)" or "name!(args)". The name has
// already been consumed.
func (p *Parser) parseFunctionCall(name Token) (*types.ASTNode, error) {
	node := p.node(types.NodeFunction, name.Position)
	node.StrValue = name.Value

	if p.current.Type == TokenBang {
		node.Abort = true
		p.advance()
		if !p.adjacent() || p.current.Type != TokenParenOpen {
			return nil, p.error(types.ErrExpectedToken, fmt.Sprintf("expected ( after %s!", name.Value))
		}
	}
	p.advance() // Skip '('
	p.skipNewlines()

	for p.current.Type != TokenParenClose {
		arg, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		node.Arguments = append(node.Arguments, arg)
		p.skipNewlines()

		if p.current.Type != TokenComma {
			break
		}
		p.advance()
		p.skipNewlines()
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	node.End = p.prev.End

	return p.parsePostfixQuery(node)
}

// parseEventPath parses "." followed by optional path segments.
func (p *Parser) parseEventPath() (*types.ASTNode, error) {
	return p.parseRootPath(types.QueryEvent)
}

// parseMetadataPath parses "%" followed by optional path segments.
func (p *Parser) parseMetadataPath() (*types.ASTNode, error) {
	return p.parseRootPath(types.QueryMetadata)
}

func (p *Parser) parseRootPath(root types.QueryRoot) (*types.ASTNode, error) {
	node := p.node(types.NodeQuery, p.current.Position)
	node.Root = root
	p.advance() // Skip '.' or '%'

	var path types.Path
	if p.adjacent() {
		if field, ok := p.fieldName(); ok {
			path = append(path, types.FieldSegment(field))
			p.advance()
		}
	}

	path, err := p.parsePathSegments(path)
	if err != nil {
		return nil, err
	}

	node.Path = path
	if node.Path == nil {
		node.Path = types.Path{}
	}
	node.End = p.prev.End
	return node, nil
}

// fieldName returns the field named by the current token, if it can name
// one. Keywords are valid field names in paths.
func (p *Parser) fieldName() (string, bool) {
	switch p.current.Type {
	case TokenIdent, TokenIf, TokenElse, TokenAbort, TokenBoolean, TokenNull, TokenInteger:
		return p.current.Value, true
	case TokenString:
		s, err := unescapeString(p.current.Value)
		if err != nil {
			return "", false
		}
		return s, true
	}
	return "", false
}

// parsePathSegments parses ".field", `."quoted"` and "[index]" segments
// that directly follow the previous token.
func (p *Parser) parsePathSegments(path types.Path) (types.Path, error) {
	for p.adjacent() {
		switch p.current.Type {
		case TokenDot:
			p.advance()
			field, ok := p.fieldName()
			if !p.adjacent() || !ok {
				return nil, p.error(types.ErrInvalidPath, "expected field name after .")
			}
			path = append(path, types.FieldSegment(field))
			p.advance()
		case TokenBracketOpen:
			p.advance()
			neg := false
			if p.current.Type == TokenMinus {
				neg = true
				p.advance()
			}
			if p.current.Type != TokenInteger {
				return nil, p.error(types.ErrInvalidPath, "expected integer index")
			}
			idx, err := strconv.Atoi(p.current.Value)
			if err != nil {
				return nil, p.error(types.ErrNumberOutOfRange, fmt.Sprintf("index out of range: %s", p.current.Value))
			}
			if neg {
				idx = -idx
			}
			p.advance()
			if err := p.expect(TokenBracketClose); err != nil {
				return nil, err
			}
			path = append(path, types.IndexSegment(idx))
		default:
			return path, nil
		}
	}
	return path, nil
}

// parsePostfixQuery wraps base in a query when path segments follow it,
// as in f(x).a or [1, 2][0].
func (p *Parser) parsePostfixQuery(base *types.ASTNode) (*types.ASTNode, error) {
	path, err := p.parsePathSegments(nil)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return base, nil
	}
	query := p.node(types.NodeQuery, base.Position)
	query.Root = types.QueryExpression
	query.LHS = base
	query.Path = path
	query.End = p.prev.End
	return query, nil
}

// parseUnary parses "!expr" and "-expr".
func (p *Parser) parseUnary() (*types.ASTNode, error) {
	node := p.node(types.NodeUnary, p.current.Position)
	node.StrValue = p.current.Value
	p.advance()

	expr, err := p.parseExpression(unaryPrecedence)
	if err != nil {
		return nil, err
	}

	node.RHS = expr
	node.End = p.prev.End
	return node, nil
}

// parseGrouping parses a parenthesized expression.
func (p *Parser) parseGrouping() (*types.ASTNode, error) {
	p.advance() // Skip '('
	p.skipNewlines()

	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	p.skipNewlines()

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}

	return p.parsePostfixQuery(expr)
}

// parseArrayConstructor parses "[a, b, ...]".
func (p *Parser) parseArrayConstructor() (*types.ASTNode, error) {
	node := p.node(types.NodeArray, p.current.Position)
	p.advance() // Skip '['
	p.skipNewlines()

	for p.current.Type != TokenBracketClose {
		elem, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		node.Arguments = append(node.Arguments, elem)
		p.skipNewlines()

		if p.current.Type != TokenComma {
			break
		}
		p.advance()
		p.skipNewlines()
	}

	if err := p.expect(TokenBracketClose); err != nil {
		return nil, err
	}
	node.End = p.prev.End

	return p.parsePostfixQuery(node)
}

// isObjectStart reports whether the current '{' opens an object literal
// rather than a block: either "{}" or a string key followed by ':'.
func (p *Parser) isObjectStart() bool {
	l := *p.lexer
	tok := l.Next()
	for tok.Type == TokenNewline {
		tok = l.Next()
	}
	switch tok.Type {
	case TokenBraceClose:
		return true
	case TokenString, TokenRawString:
		return l.Next().Type == TokenColon
	}
	return false
}

// parseObjectConstructor parses `{"key": value, ...}`.
func (p *Parser) parseObjectConstructor() (*types.ASTNode, error) {
	node := p.node(types.NodeObject, p.current.Position)
	p.advance() // Skip '{'
	p.skipNewlines()

	seen := map[string]bool{}
	for p.current.Type != TokenBraceClose {
		var key string
		switch p.current.Type {
		case TokenString:
			k, err := unescapeString(p.current.Value)
			if err != nil {
				return nil, p.error(types.ErrUnsupportedEscape, fmt.Sprintf("invalid object key: %v", err))
			}
			key = k
		case TokenRawString:
			key = strings.ReplaceAll(p.current.Value, `\'`, `'`)
		default:
			return nil, p.error(types.ErrExpectedToken, fmt.Sprintf("expected object key but got %s", p.describe(p.current)))
		}
		if seen[key] {
			return nil, p.error(types.ErrSyntaxError, fmt.Sprintf("duplicate object key %q", key))
		}
		seen[key] = true
		p.advance()

		if err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		p.skipNewlines()

		val, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		node.Keys = append(node.Keys, key)
		node.Expressions = append(node.Expressions, val)
		p.skipNewlines()

		if p.current.Type != TokenComma {
			break
		}
		p.advance()
		p.skipNewlines()
	}

	if err := p.expect(TokenBraceClose); err != nil {
		return nil, err
	}
	node.End = p.prev.End

	return p.parsePostfixQuery(node)
}

// parseBlock parses "{ stmt; stmt }".
func (p *Parser) parseBlock() (*types.ASTNode, error) {
	node := p.node(types.NodeBlock, p.current.Position)
	if err := p.expect(TokenBraceOpen); err != nil {
		return nil, err
	}

	stmts, err := p.parseStatements(TokenBraceClose)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenBraceClose); err != nil {
		return nil, err
	}

	node.Expressions = stmts
	node.End = p.prev.End
	return node, nil
}

// parseIf parses "if pred { } [else if pred { }] [else { }]".
func (p *Parser) parseIf() (*types.ASTNode, error) {
	node := p.node(types.NodeIf, p.current.Position)
	p.advance() // Skip 'if'

	pred, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	node.LHS = pred

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node.RHS = body

	if p.peekPastNewlines() == TokenElse {
		p.skipNewlines()
		p.advance() // Skip 'else'
		if p.current.Type == TokenIf {
			node.Else, err = p.parseIf()
		} else {
			node.Else, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
	}

	node.End = p.prev.End
	return node, nil
}

// parseAbort parses "abort" with an optional message expression.
func (p *Parser) parseAbort() (*types.ASTNode, error) {
	node := p.node(types.NodeAbort, p.current.Position)
	p.advance() // Skip 'abort'

	switch p.current.Type {
	case TokenNewline, TokenSemicolon, TokenBraceClose, TokenEOF,
		TokenParenClose, TokenBracketClose, TokenComma:
	default:
		msg, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		node.RHS = msg
	}

	node.End = p.prev.End
	return node, nil
}

// parseAssignment parses "target = value". Assignment is right
// associative.
func (p *Parser) parseAssignment(left *types.ASTNode) (*types.ASTNode, error) {
	if !isAssignable(left) {
		return nil, p.error(types.ErrSyntaxError, "left side of assignment must be a variable or a path")
	}
	node := p.node(types.NodeAssign, left.Position)
	p.advance() // Skip '='
	p.skipNewlines()

	rhs, err := p.parseExpression(precedence[TokenAssign] - 1)
	if err != nil {
		return nil, err
	}

	node.LHS = left
	node.RHS = rhs
	node.End = p.prev.End
	return node, nil
}

// parseErrorAssignment parses "ok, err = value". The ok target has already
// been parsed.
func (p *Parser) parseErrorAssignment(ok *types.ASTNode) (*types.ASTNode, error) {
	p.advance() // Skip ','

	errTarget, err := p.parseExpression(precedence[TokenAssign])
	if err != nil {
		return nil, err
	}
	if !isAssignable(errTarget) {
		return nil, p.error(types.ErrSyntaxError, "error target must be a variable or a path")
	}

	if err := p.expect(TokenAssign); err != nil {
		return nil, err
	}
	p.skipNewlines()

	rhs, err := p.parseExpression(precedence[TokenAssign] - 1)
	if err != nil {
		return nil, err
	}

	node := p.node(types.NodeAssign, ok.Position)
	node.LHS = ok
	node.ErrTarget = errTarget
	node.RHS = rhs
	node.End = p.prev.End
	return node, nil
}

// parseBinaryOp parses a binary operator expression.
func (p *Parser) parseBinaryOp(left *types.ASTNode) (*types.ASTNode, error) {
	op := p.current
	prec := p.getPrecedence(op.Type)
	p.advance()
	p.skipNewlines()

	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}

	node := p.node(types.NodeBinary, left.Position)
	node.StrValue = op.Value
	node.LHS = left
	node.RHS = right
	node.End = p.prev.End
	return node, nil
}
