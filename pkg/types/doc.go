// Package types defines the core type system for goremap.
//
// This package contains type definitions for:
//   - Kind: the lattice of value shapes, with array and object collections
//   - TypeDef: a Kind plus a fallibility flag
//   - Path, TargetPath: locations inside the event, its metadata or a variable
//   - ASTNode: Abstract Syntax Tree nodes produced by the parser
//   - Error types: structured parser and runtime errors with codes
package types
