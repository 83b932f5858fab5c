package runtime

import (
	"errors"
	"strings"
)

// Strategy selects how a compiled program is executed.
type Strategy uint8

const (
	// AST walks the compiled expression tree.
	AST Strategy = iota
)

// DefaultStrategy is the strategy used when none is configured.
const DefaultStrategy = AST

// ErrUnknownStrategy is returned by ParseStrategy for unsupported names.
var ErrUnknownStrategy = errors.New("runtime must be ast")

// ParseStrategy parses a strategy name. The only accepted name is "ast".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.TrimSpace(s) {
	case "ast":
		return AST, nil
	}
	return 0, ErrUnknownStrategy
}

func (s Strategy) String() string {
	switch s {
	case AST:
		return "ast"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
