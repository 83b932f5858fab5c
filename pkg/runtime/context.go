// Package runtime holds the per-evaluation state of a remap program and the
// selection of the execution strategy.
package runtime

import (
	"fmt"
	"maps"
	"time"

	"github.com/sandrolain/goremap/pkg/value"
)

// Context is the ambient state of one evaluation: the target being
// transformed, the runtime variables and the timezone. A Context must not be
// used by two evaluations at the same time; Clear prepares it for reuse.
type Context struct {
	// target is the event the program reads from and writes to
	target value.Target

	// locals stores variable assignments
	locals map[string]value.Value

	// timezone is used by functions that format or parse local times
	timezone *time.Location

	// now returns the current time; replaceable in tests
	now func() time.Time
}

// NewContext creates a new evaluation context over target. A nil timezone
// means UTC.
func NewContext(target value.Target, timezone *time.Location) *Context {
	if timezone == nil {
		timezone = time.UTC
	}
	return &Context{
		target:   target,
		locals:   make(map[string]value.Value),
		timezone: timezone,
		now:      time.Now,
	}
}

// Target returns the target bound to the evaluation.
func (c *Context) Target() value.Target {
	return c.target
}

// SetTarget binds a new target.
func (c *Context) SetTarget(t value.Target) {
	c.target = t
}

// Timezone returns the timezone of the evaluation.
func (c *Context) Timezone() *time.Location {
	return c.timezone
}

// Now returns the current time in UTC.
func (c *Context) Now() time.Time {
	return c.now().UTC()
}

// SetClock replaces the clock used by Now.
func (c *Context) SetClock(now func() time.Time) {
	c.now = now
}

// SetLocal sets a variable.
func (c *Context) SetLocal(name string, v value.Value) {
	c.locals[name] = v
}

// Local returns a variable. Variables that were never assigned read as
// null, so ok only reports whether an assignment happened.
func (c *Context) Local(name string) (v value.Value, ok bool) {
	if v, ok := c.locals[name]; ok {
		return v, true
	}
	return value.NullValue, false
}

// Locals returns a copy of every variable.
func (c *Context) Locals() map[string]value.Value {
	return maps.Clone(c.locals)
}

// Clear drops every variable so the context can serve the next event.
func (c *Context) Clear() {
	clear(c.locals)
}

// Clone creates a copy of the context with the same variables.
func (c *Context) Clone() *Context {
	return &Context{
		target:   c.target,
		locals:   maps.Clone(c.locals),
		timezone: c.timezone,
		now:      c.now,
	}
}

// String returns a string representation of the context.
func (c *Context) String() string {
	return fmt.Sprintf("Context{timezone=%s, locals=%d}", c.timezone, len(c.locals))
}
