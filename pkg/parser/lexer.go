package parser

import (
	"fmt"
	"unicode/utf8"

	"github.com/sandrolain/goremap/pkg/types"
)

const eof = -1

// Lexer converts a remap program into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
//
// Lexer is a plain value: copying it snapshots the scan position, which the
// parser uses for lookahead.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
	err     error  // First error encountered
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all subsequent calls.
//
// Newlines are returned as TokenNewline because they separate statements;
// the parser skips them where they are not significant.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	if ch == '\n' {
		return l.newToken(TokenNewline)
	}

	// Check for two-character symbols first (e.g., !=, <=, ??)
	if rts := lookupSymbol2(ch); rts != nil {
		for _, rt := range rts {
			if l.acceptRune(rt.r) {
				return l.newToken(rt.tt)
			}
		}
	}

	// Check for single-character symbols
	if tt := lookupSymbol1(ch); tt > 0 {
		return l.newToken(tt)
	}

	// String literals
	if ch == '"' {
		return l.scanString()
	}

	// Number literals
	if isDigit(ch) {
		l.backup()
		return l.scanNumber()
	}

	// Identifiers, keywords and prefixed literals
	if isIdentStart(ch) {
		l.backup()
		return l.scanName()
	}

	return l.error(types.ErrSyntaxError, fmt.Sprintf("unexpected character %q", ch))
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	return l.err
}

// scanString reads a double-quoted string literal. The opening quote has
// already been consumed. Escapes are kept in the token value and decoded by
// the parser.
func (l *Lexer) scanString() Token {
	open := l.start
Loop:
	for {
		switch l.nextRune() {
		case '"':
			break Loop
		case '\\':
			if r := l.nextRune(); r != eof {
				break
			}
			fallthrough
		case eof:
			return l.error(types.ErrStringNotClosed, "unterminated string literal")
		}
	}

	t := Token{
		Type:     TokenString,
		Value:    l.input[open+1 : l.current-1],
		Position: open,
		End:      l.current,
	}
	l.width = 0
	l.start = l.current
	return t
}

// scanRaw reads a single-quoted literal such as s'...', r'...' or t'...'.
// The prefix letter and the opening quote have already been consumed. Only
// \' is an escape; everything else is kept verbatim.
func (l *Lexer) scanRaw(tt TokenType) Token {
	open := l.start
	body := l.current
Loop:
	for {
		switch l.nextRune() {
		case '\'':
			break Loop
		case '\\':
			if r := l.nextRune(); r != eof {
				break
			}
			fallthrough
		case eof:
			return l.error(types.ErrStringNotClosed, fmt.Sprintf("unterminated %s literal", tt))
		}
	}

	t := Token{
		Type:     tt,
		Value:    l.input[body : l.current-1],
		Position: open,
		End:      l.current,
	}
	l.width = 0
	l.start = l.current
	return t
}

// scanNumber reads a number literal from the current position.
// Format: [0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?
func (l *Lexer) scanNumber() Token {
	tt := TokenInteger
	l.acceptAll(isDigit)

	// Decimal part
	dot := l.current
	if l.acceptRune('.') {
		if !l.acceptAll(isDigit) {
			// "1." is the integer 1 followed by a dot.
			l.current = dot
			return l.newToken(TokenInteger)
		}
		tt = TokenFloat
	}

	// Exponent part
	if l.acceptRunes2('e', 'E') {
		l.acceptRunes2('+', '-')
		if !l.acceptAll(isDigit) {
			return l.error(types.ErrInvalidLiteral, "invalid number exponent")
		}
		tt = TokenFloat
	}

	if isIdentStart(l.peek()) {
		l.nextRune()
		return l.error(types.ErrInvalidLiteral, "invalid number literal")
	}

	return l.newToken(tt)
}

// scanName reads an identifier or keyword from the current position.
// Identifiers contain letters, digits and underscores. The identifiers s, r
// and t directly followed by a quote start a raw string, regex or timestamp
// literal.
func (l *Lexer) scanName() Token {
	l.acceptAll(isIdentPart)

	if l.current-l.start == 1 && l.peek() == '\'' {
		var tt TokenType
		switch l.input[l.start] {
		case 's':
			tt = TokenRawString
		case 'r':
			tt = TokenRegex
		case 't':
			tt = TokenTimestamp
		}
		if tt != 0 {
			l.nextRune()
			return l.scanRaw(tt)
		}
	}

	t := l.newToken(TokenIdent)
	if tt := lookupKeyword(t.Value); tt > 0 {
		t.Type = tt
	}
	return t
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
		End:      l.current,
	}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenError)
	l.err = &types.Error{
		Code:     code,
		Message:  message,
		Position: t.Position,
		Token:    t.Value,
	}
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
		End:      l.current,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) peek() rune {
	if l.current >= l.length {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.current:])
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool {
		return c == r1 || c == r2
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

// skipWhitespace skips blanks and # comments, stopping before a newline.
func (l *Lexer) skipWhitespace() {
	for {
		l.acceptAll(isBlank)
		if l.peek() != '#' {
			break
		}
		for r := l.peek(); r != '\n' && r != eof; r = l.peek() {
			l.nextRune()
		}
	}
	l.ignore()
}

// Character classification functions

func isBlank(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}
