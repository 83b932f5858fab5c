package diagnostic

import (
	"fmt"
	"strings"
)

// List is an ordered collection of diagnostics. It implements error so a
// failed compilation can be returned directly.
type List []Diagnostic

// Add appends d.
func (l *List) Add(d Diagnostic) {
	*l = append(*l, d)
}

// Extend appends every diagnostic of o.
func (l *List) Extend(o List) {
	*l = append(*l, o...)
}

// HasErrors reports whether any diagnostic has Error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Errors returns the Error-severity diagnostics.
func (l List) Errors() List {
	return l.filter(Error)
}

// Warnings returns the Warning-severity diagnostics.
func (l List) Warnings() List {
	return l.filter(Warning)
}

func (l List) filter(sev Severity) List {
	var out List
	for _, d := range l {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// Err returns l as an error if it contains an Error, and nil otherwise.
func (l List) Err() error {
	if !l.HasErrors() {
		return nil
	}
	return l
}

// Error implements the error interface.
func (l List) Error() string {
	errs := l.Errors()
	switch len(errs) {
	case 0:
		return "no errors"
	case 1:
		return errs[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", errs[0], len(errs)-1)
}

// Unwrap exposes the Error-severity diagnostics to errors.Is and errors.As.
func (l List) Unwrap() []error {
	errs := l.Errors()
	out := make([]error, len(errs))
	for i, d := range errs {
		out[i] = d
	}
	return out
}

// Messages returns the message of every diagnostic, in order.
func (l List) Messages() []string {
	out := make([]string, len(l))
	for i, d := range l {
		out[i] = d.Message
	}
	return out
}

// String renders every diagnostic, one per line.
func (l List) String() string {
	var b strings.Builder
	for i, d := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.String())
	}
	return b.String()
}
