// Package parser implements the lexer and parser of the remap language.
//
// The parser is a hand-written Pratt parser producing a [types.ASTNode]
// tree rooted at a NodeProgram. It does no type checking: the compiler in
// package compiler consumes the tree, and a parse failure reaches the host
// as a single diagnostic.
//
// # Example
//
//	ast, err := parser.Parse(`.message = upcase!(.message)`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Syntax
//
// A program is a list of statements separated by newlines or semicolons.
// Comments start with # and run to the end of the line.
//
//	.status = to_int(.status) ?? 0
//	if .status >= 500 { .level = "error" } else { .level = "info" }
//	parsed, err = parse_int(.code)
//	%tenant = "acme"
//	abort "dropped"
package parser

import (
	"github.com/sandrolain/goremap/pkg/types"
)

// Parse parses a remap program and returns its root node.
//
// If parsing fails, it returns a *types.Error with position information.
//
// Example:
//
//	ast, err := parser.Parse(".a = 1")
//	if err != nil {
//	    var perr *types.Error
//	    if errors.As(err, &perr) {
//	        fmt.Printf("Parse error at position %d\n", perr.Position)
//	    }
//	    return
//	}
func Parse(source string, opts ...ParseOption) (*types.ASTNode, error) {
	p := NewParser(source, opts...)
	return p.Parse()
}

// ParseOption configures parsing behavior.
type ParseOption func(*ParseOptions)

// ParseOptions holds parser configuration.
type ParseOptions struct {
	// MaxDepth limits nesting depth to prevent stack overflow.
	MaxDepth int
}

// WithMaxDepth sets the maximum nesting depth.
func WithMaxDepth(depth int) ParseOption {
	return func(opts *ParseOptions) {
		opts.MaxDepth = depth
	}
}
