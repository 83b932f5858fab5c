package value

import (
	"github.com/sandrolain/goremap/pkg/types"
)

// Target is the mutable event a program runs against. Implementations are
// used by a single evaluation at a time.
type Target interface {
	// Get returns the value at p, or null when nothing is there.
	Get(p types.TargetPath) (Value, error)
	// Insert writes v at p, creating intermediate containers as needed.
	Insert(p types.TargetPath, v Value) error
	// Remove deletes the value at p and returns it.
	Remove(p types.TargetPath) (Value, error)
}

// Event is the standard Target: an event value and its metadata object.
type Event struct {
	Value    Value
	Metadata Object
}

var _ Target = (*Event)(nil)

// NewEvent returns an Event holding v with empty metadata.
func NewEvent(v Value) *Event {
	if v == nil {
		v = Object{}
	}
	return &Event{Value: v, Metadata: Object{}}
}

// Get implements Target.
func (e *Event) Get(p types.TargetPath) (Value, error) {
	if p.Prefix == types.PrefixMetadata {
		return Get(e.Metadata, p.Path), nil
	}
	return Get(e.Value, p.Path), nil
}

// Insert implements Target.
func (e *Event) Insert(p types.TargetPath, v Value) error {
	if p.Prefix == types.PrefixMetadata {
		if p.Path.IsRoot() {
			obj, err := AsObject(v)
			if err != nil {
				return types.Errorf(types.ErrArgumentType, "metadata root must be an object, got %s", kindName(v))
			}
			e.Metadata = obj
			return nil
		}
		if p.Path[0].IsIndex() {
			return types.Errorf(types.ErrPathNotFound, "metadata root is an object, cannot index %s", p)
		}
		out, err := Insert(e.metadata(), p.Path, v)
		if err != nil {
			return err
		}
		e.Metadata = out.(Object)
		return nil
	}
	out, err := Insert(e.Value, p.Path, v)
	if err != nil {
		return err
	}
	e.Value = out
	return nil
}

// Remove implements Target.
func (e *Event) Remove(p types.TargetPath) (Value, error) {
	if p.Prefix == types.PrefixMetadata {
		if p.Path.IsRoot() {
			old := e.metadata()
			e.Metadata = Object{}
			return old, nil
		}
		out, removed := Remove(e.metadata(), p.Path)
		e.Metadata = out.(Object)
		return removed, nil
	}
	if p.Path.IsRoot() {
		old := e.Value
		e.Value = Object{}
		return old, nil
	}
	out, removed := Remove(e.Value, p.Path)
	e.Value = out
	return removed, nil
}

func (e *Event) metadata() Object {
	if e.Metadata == nil {
		e.Metadata = Object{}
	}
	return e.Metadata
}
