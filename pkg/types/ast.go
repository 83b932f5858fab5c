package types

// NodeType identifies the type of an AST node.
type NodeType string

// AST node types of the Remap language.
const (
	NodeProgram NodeType = "program" // top-level statement list

	// Literals
	NodeString    NodeType = "string"    // "..." or s'...'
	NodeInteger   NodeType = "integer"   // 42
	NodeFloat     NodeType = "float"     // 4.2
	NodeBoolean   NodeType = "boolean"   // true/false
	NodeNull      NodeType = "null"      // null
	NodeRegex     NodeType = "regex"     // r'...'
	NodeTimestamp NodeType = "timestamp" // t'...'

	// Constructors
	NodeArray  NodeType = "array"  // [...]
	NodeObject NodeType = "object" // {"k": v}

	// Access
	NodeVariable NodeType = "variable" // foo
	NodeQuery    NodeType = "query"    // .a.b, %m, foo.a, f(x).a

	// Operators
	NodeBinary NodeType = "binary" // +, -, ==, ??, ...
	NodeUnary  NodeType = "unary"  // !, -

	// Functions
	NodeFunction NodeType = "function" // f(...) / f!(...)

	// Control flow
	NodeIf     NodeType = "if"     // if p { } else { }
	NodeBlock  NodeType = "block"  // { ...; ... }
	NodeAssign NodeType = "assign" // target = expr / ok, err = expr
	NodeAbort  NodeType = "abort"  // abort / abort "msg"
)

// QueryRoot is the value a query path is applied to.
type QueryRoot uint8

const (
	QueryEvent      QueryRoot = iota // .path
	QueryMetadata                    // %path
	QueryVariable                    // name.path
	QueryExpression                  // (expr).path, LHS holds the expression
)

// ASTNode represents a node in the Abstract Syntax Tree.
type ASTNode struct {
	Type     NodeType
	Value    interface{} // int64, float64 or bool for literal nodes
	StrValue string      // string/regex/timestamp literal, operator, function or variable name
	Position int         // byte offset of the first character
	End      int         // byte offset after the last character

	// Relations
	LHS         *ASTNode   // binary left operand, if predicate, assignment target, query base
	RHS         *ASTNode   // binary right operand, unary operand, if body, assigned value, abort message
	Else        *ASTNode   // else branch (block or nested if)
	ErrTarget   *ASTNode   // error target of "ok, err = expr"
	Arguments   []*ASTNode // function arguments, array elements
	Expressions []*ASTNode // block statements, object values

	// Attributes
	Keys  []string  // object keys, parallel to Expressions
	Path  Path      // query path
	Root  QueryRoot // query root
	Abort bool      // function called with "!"

	// Error recovery
	Errors []error
}

// NewASTNode creates a new AST node of the specified type.
// Prefer NodeArena.Alloc when parsing to reduce per-node heap allocations.
func NewASTNode(nodeType NodeType, position int) *ASTNode {
	return &ASTNode{
		Type:     nodeType,
		Position: position,
	}
}

// arenaChunkSize is the number of ASTNode values pre-allocated per arena chunk.
// Most remap programs fit in a single chunk.
const arenaChunkSize = 64

// NodeArena is a bump-pointer allocator for ASTNode values.
//
// Instead of allocating each node individually on the heap (one GC-tracked
// object per node), the arena pre-allocates fixed-size chunks of ASTNode
// structs and returns pointers into them.
//
// # Lifetime
//
// The arena MUST stay alive as long as any pointer returned by Alloc is
// reachable. The root node keeps its chunk reachable; the compiler drops
// the whole tree once the program has been built.
//
// # Thread safety
//
// NodeArena is NOT thread-safe. Each parser owns its own arena and the
// arena is never shared across goroutines.
type NodeArena struct {
	chunks [][]ASTNode
	pos    int // next free index in the last chunk
}

// NewNodeArena allocates an arena pre-warmed with one initial chunk.
func NewNodeArena() *NodeArena {
	return &NodeArena{
		chunks: [][]ASTNode{make([]ASTNode, arenaChunkSize)},
		pos:    0,
	}
}

// Alloc returns a pointer to a zero-valued ASTNode inside the arena,
// with Type and Position set.
func (a *NodeArena) Alloc(nodeType NodeType, position int) *ASTNode {
	if a.pos >= arenaChunkSize {
		a.chunks = append(a.chunks, make([]ASTNode, arenaChunkSize))
		a.pos = 0
	}
	n := &a.chunks[len(a.chunks)-1][a.pos]
	a.pos++
	n.Type = nodeType
	n.Position = position
	return n
}

// String returns a string representation of the node type.
func (n *ASTNode) String() string {
	return string(n.Type)
}
