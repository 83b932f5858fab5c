// Package diagnostic holds the compile-time messages produced while
// type-checking a program.
//
// Diagnostics are accumulated, never thrown: the compiler records every
// problem it finds in a List and keeps going. A compilation fails iff the
// list contains at least one Error.
package diagnostic

import (
	"fmt"
	"strings"
)

// Severity ranks a Diagnostic.
type Severity uint8

const (
	Error Severity = iota
	Warning
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "note"
	}
}

// Code identifies the class of a Diagnostic.
type Code int

// Diagnostic codes.
const (
	CodeParse                Code = 100
	CodeUndefinedVariable    Code = 101
	CodeNonBooleanPredicate  Code = 102
	CodeUnhandledFallible    Code = 103
	CodeUnnecessaryErrAssign Code = 104
	CodeUndefinedFunction    Code = 105
	CodeArity                Code = 107
	CodeArgumentType         Code = 110
	CodeFunctionResolve      Code = 111
	CodeInvalidLiteral       Code = 202
	CodeReadOnlyPath         Code = 315
	CodeInvalidOperand       Code = 620
	CodeUnnecessaryCoalesce  Code = 651
	CodeSchemaChange         Code = 660
	CodeDeprecated           Code = 801
)

// Span is a half-open byte range [Start, End) of the source.
type Span struct {
	Start int
	End   int
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Label attaches a message to a span, pointing at the source of a problem.
type Label struct {
	Message string
	Span    Span
	Primary bool
}

// Diagnostic is one compile-time message.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Span     Span
	Labels   []Label
	Notes    []string
}

// New returns a Diagnostic with a primary label on span.
func New(sev Severity, code Code, span Span, format string, args ...interface{}) Diagnostic {
	msg := fmt.Sprintf(format, args...)
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Span:     span,
		Labels:   []Label{{Message: msg, Span: span, Primary: true}},
	}
}

// WithLabel returns a copy of d with a secondary label appended.
func (d Diagnostic) WithLabel(msg string, span Span) Diagnostic {
	d.Labels = append(append([]Label(nil), d.Labels...), Label{Message: msg, Span: span})
	return d
}

// WithNote returns a copy of d with a note appended.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(append([]string(nil), d.Notes...), note)
	return d
}

// IsError reports whether d has Error severity.
func (d Diagnostic) IsError() bool { return d.Severity == Error }

// Error implements the error interface.
func (d Diagnostic) Error() string { return d.String() }

// String renders d on one line: "error[101] at 0..3: undefined variable: foo".
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d] at %s: %s", d.Severity, d.Code, d.Span, d.Message)
	for _, n := range d.Notes {
		b.WriteString("; note: ")
		b.WriteString(n)
	}
	return b.String()
}
