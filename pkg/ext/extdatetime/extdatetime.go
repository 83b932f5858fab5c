// Package extdatetime provides extended date/time functions for remap.
//
// Calendar units are "year", "month", "day", "hour", "minute", "second"
// and "millisecond". All arithmetic happens in UTC.
package extdatetime

import (
	"strings"
	"time"

	"github.com/sandrolain/goremap/pkg/ext/extutil"
	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// Units lists the accepted unit names.
var Units = []string{"year", "month", "day", "hour", "minute", "second", "millisecond"}

var durations = map[string]time.Duration{
	"hour":        time.Hour,
	"minute":      time.Minute,
	"second":      time.Second,
	"millisecond": time.Millisecond,
}

// All returns all extended date/time function definitions.
func All() []functions.Function {
	return []functions.Function{
		DateAdd(),
		DateDiff(),
		StartOf(),
		Components(),
	}
}

func unitArg(args *functions.Arguments) (string, error) {
	unit, err := args.String("unit")
	if err != nil {
		return "", err
	}
	if err := extutil.CheckOneOf("unit", unit, Units); err != nil {
		return "", err
	}
	return strings.ToLower(unit), nil
}

// DateAdd returns the definition for date_add(value, amount, unit).
// Negative amounts subtract.
func DateAdd() *functions.Def {
	return &functions.Def{
		Name:        "date_add",
		Signature:   "<t-i-s:t>",
		Keywords:    []string{"value", "amount", "unit"},
		ResolveFunc: extutil.OneOf("unit", Units, types.Timestamp()),
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			t, err := args.Timestamp("value")
			if err != nil {
				return nil, err
			}
			n, err := args.Integer("amount")
			if err != nil {
				return nil, err
			}
			unit, err := unitArg(args)
			if err != nil {
				return nil, err
			}
			t = t.UTC()
			switch unit {
			case "year":
				t = t.AddDate(int(n), 0, 0)
			case "month":
				t = t.AddDate(0, int(n), 0)
			case "day":
				t = t.AddDate(0, 0, int(n))
			default:
				t = t.Add(time.Duration(n) * durations[unit])
			}
			return value.Timestamp{Time: t}, nil
		},
	}
}

// DateDiff returns the definition for date_diff(from, to, unit): the number
// of whole units from from to to.
func DateDiff() *functions.Def {
	return &functions.Def{
		Name:        "date_diff",
		Signature:   "<t-t-s:i>",
		Keywords:    []string{"from", "to", "unit"},
		ResolveFunc: extutil.OneOf("unit", Units, types.Integer()),
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			from, err := args.Timestamp("from")
			if err != nil {
				return nil, err
			}
			to, err := args.Timestamp("to")
			if err != nil {
				return nil, err
			}
			unit, err := unitArg(args)
			if err != nil {
				return nil, err
			}
			switch unit {
			case "year":
				return value.Integer(monthsBetween(from.UTC(), to.UTC()) / 12), nil
			case "month":
				return value.Integer(monthsBetween(from.UTC(), to.UTC())), nil
			case "day":
				return value.Integer(to.Sub(from) / (24 * time.Hour)), nil
			}
			return value.Integer(to.Sub(from) / durations[unit]), nil
		},
	}
}

// monthsBetween counts whole calendar months, truncating toward zero.
func monthsBetween(from, to time.Time) int {
	if to.Before(from) {
		return -monthsBetween(to, from)
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if months > 0 && from.AddDate(0, months, 0).After(to) {
		months--
	}
	return months
}

// StartOf returns the definition for start_of(value, unit): value
// truncated to the start of its unit.
func StartOf() *functions.Def {
	return &functions.Def{
		Name:        "start_of",
		Signature:   "<t-s:t>",
		Keywords:    []string{"value", "unit"},
		ResolveFunc: extutil.OneOf("unit", Units, types.Timestamp()),
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			t, err := args.Timestamp("value")
			if err != nil {
				return nil, err
			}
			unit, err := unitArg(args)
			if err != nil {
				return nil, err
			}
			t = t.UTC()
			switch unit {
			case "year":
				t = time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
			case "month":
				t = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
			case "day":
				t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			default:
				t = t.Truncate(durations[unit])
			}
			return value.Timestamp{Time: t}, nil
		},
	}
}

// Components returns the definition for date_components(value): an object
// with the UTC calendar fields of value. weekday counts from 0 on Sunday.
func Components() *functions.Def {
	fields := []string{"year", "month", "day", "hour", "minute", "second", "millisecond", "weekday"}
	return &functions.Def{
		Name:      "date_components",
		Signature: "<t:o>",
		Keywords:  []string{"value"},
		ResolveFunc: func(*functions.ArgumentTypes) (types.TypeDef, error) {
			known := make(map[string]types.Kind, len(fields))
			for _, f := range fields {
				known[f] = types.Integer()
			}
			return types.Infallible(types.ObjectOf(known)), nil
		},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			t, err := args.Timestamp("value")
			if err != nil {
				return nil, err
			}
			t = t.UTC()
			return value.Object{
				"year":        value.Integer(t.Year()),
				"month":       value.Integer(t.Month()),
				"day":         value.Integer(t.Day()),
				"hour":        value.Integer(t.Hour()),
				"minute":      value.Integer(t.Minute()),
				"second":      value.Integer(t.Second()),
				"millisecond": value.Integer(t.Nanosecond() / int(time.Millisecond)),
				"weekday":     value.Integer(t.Weekday()),
			}, nil
		},
	}
}
