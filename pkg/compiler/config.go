package compiler

import (
	"slices"

	"github.com/sandrolain/goremap/pkg/types"
)

// CompileConfig configures a compilation. The compiler copies it once when
// compilation starts, so later changes by the caller have no effect.
type CompileConfig struct {
	// DeprecationsAsErrors reports calls to deprecated functions as errors
	// instead of warnings.
	DeprecationsAsErrors bool
	// StrictSchema reports writes that change the declared type of a
	// target path as errors instead of warnings.
	StrictSchema bool
	// ReadOnlyPaths lists target paths programs may not assign to.
	ReadOnlyPaths []ReadOnlyPath
}

// ReadOnlyPath is a target path protected from assignment.
type ReadOnlyPath struct {
	Path types.TargetPath
	// Recursive also protects every path below Path.
	Recursive bool
}

// CompileOption configures a CompileConfig.
type CompileOption func(*CompileConfig)

// NewConfig returns a CompileConfig with opts applied.
func NewConfig(opts ...CompileOption) CompileConfig {
	var cfg CompileConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithDeprecationsAsErrors sets CompileConfig.DeprecationsAsErrors.
func WithDeprecationsAsErrors(enabled bool) CompileOption {
	return func(c *CompileConfig) {
		c.DeprecationsAsErrors = enabled
	}
}

// WithStrictSchema sets CompileConfig.StrictSchema.
func WithStrictSchema(enabled bool) CompileOption {
	return func(c *CompileConfig) {
		c.StrictSchema = enabled
	}
}

// WithReadOnlyPath protects path from assignment. When recursive is true,
// every path below it is protected as well.
func WithReadOnlyPath(path types.TargetPath, recursive bool) CompileOption {
	return func(c *CompileConfig) {
		c.ReadOnlyPaths = append(c.ReadOnlyPaths, ReadOnlyPath{Path: path, Recursive: recursive})
	}
}

// Clone returns a copy of c that shares nothing with it.
func (c CompileConfig) Clone() CompileConfig {
	c.ReadOnlyPaths = slices.Clone(c.ReadOnlyPaths)
	return c
}

// IsReadOnly reports whether assigning to p would overwrite a protected
// path. Assigning to a parent of a protected path overwrites it too.
func (c CompileConfig) IsReadOnly(p types.TargetPath) bool {
	for _, ro := range c.ReadOnlyPaths {
		if ro.Path.Prefix != p.Prefix {
			continue
		}
		if ro.Path.Path.HasPrefix(p.Path) {
			return true
		}
		if ro.Recursive && p.Path.HasPrefix(ro.Path.Path) {
			return true
		}
	}
	return false
}
