package types

import "fmt"

// ErrorCode identifies the class of a parser or runtime error.
type ErrorCode string

const (
	// S0xxx: Parser/Syntax errors
	ErrStringNotClosed   ErrorCode = "S0101"
	ErrNumberOutOfRange  ErrorCode = "S0102"
	ErrUnsupportedEscape ErrorCode = "S0103"
	ErrUnexpectedEnd     ErrorCode = "S0104"
	ErrSyntaxError       ErrorCode = "S0201"
	ErrExpectedToken     ErrorCode = "S0202"
	ErrInvalidLiteral    ErrorCode = "S0204"
	ErrInvalidPath       ErrorCode = "S0205"

	// T0xxx: Type errors found at runtime
	ErrArgumentType   ErrorCode = "T0410"
	ErrCastFailed     ErrorCode = "T1002"
	ErrInvalidOperand ErrorCode = "T1003"

	// D0xxx: Evaluation errors
	ErrNumberTooLarge ErrorCode = "D1001"
	ErrDivideByZero   ErrorCode = "D1003"
	ErrPathNotFound   ErrorCode = "D2002"
	ErrFunction       ErrorCode = "D3000"
	ErrAborted        ErrorCode = "D3100"
	ErrRuntime        ErrorCode = "D3200"
)

// Error is a coded error from the lexer or parser.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new parser error.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// ExpressionError is a failure raised while evaluating a program against a
// specific event. Position and End locate the failing expression in the
// source.
type ExpressionError struct {
	Code     ErrorCode
	Message  string
	Position int
	End      int
	Err      error
}

// NewExpressionError creates a runtime error.
func NewExpressionError(code ErrorCode, message string) *ExpressionError {
	return &ExpressionError{Code: code, Message: message, Position: -1, End: -1}
}

// Errorf creates a runtime error with a formatted message.
func Errorf(code ErrorCode, format string, args ...interface{}) *ExpressionError {
	return NewExpressionError(code, fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *ExpressionError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *ExpressionError) Unwrap() error {
	return e.Err
}

// WithSpan records the source location if none has been set yet, so the
// innermost failing expression wins.
func (e *ExpressionError) WithSpan(start, end int) *ExpressionError {
	if e.Position < 0 {
		e.Position = start
		e.End = end
	}
	return e
}

// WithCause wraps another error.
func (e *ExpressionError) WithCause(err error) *ExpressionError {
	e.Err = err
	return e
}
