package value

import (
	"github.com/sandrolain/goremap/pkg/types"
)

// Get returns the value at path p inside v. Missing fields, out of range
// indices and non-container intermediates all yield null.
func Get(v Value, p types.Path) Value {
	cur := v
	for _, seg := range p {
		switch x := cur.(type) {
		case Object:
			if seg.IsIndex() {
				return NullValue
			}
			next, ok := x[seg.Field]
			if !ok {
				return NullValue
			}
			cur = next
		case Array:
			if !seg.IsIndex() {
				return NullValue
			}
			i, ok := resolveIndex(len(x), seg.Index)
			if !ok {
				return NullValue
			}
			cur = x[i]
		default:
			return NullValue
		}
	}
	if cur == nil {
		return NullValue
	}
	return cur
}

// Insert writes nv at path p inside root and returns the new root. Objects
// are updated in place; arrays may be reallocated when they grow.
// Intermediates that are not the right container are replaced by a new one,
// and arrays written past their end are padded with nulls, up to
// types.MaxArrayPadding of them. A negative index that does not select an
// existing element is an error.
func Insert(root Value, p types.Path, nv Value) (Value, error) {
	if len(p) == 0 {
		return nv, nil
	}
	seg, rest := p[0], p[1:]

	if !seg.IsIndex() {
		obj, ok := root.(Object)
		if !ok {
			obj = Object{}
		}
		child, err := Insert(obj[seg.Field], rest, nv)
		if err != nil {
			return nil, err
		}
		obj[seg.Field] = child
		return obj, nil
	}

	arr, ok := root.(Array)
	if !ok {
		arr = Array{}
	}
	i := seg.Index
	if i < 0 {
		var found bool
		if i, found = resolveIndex(len(arr), seg.Index); !found {
			return nil, types.Errorf(types.ErrPathNotFound, "index %d out of range for array of length %d", seg.Index, len(arr))
		}
	}
	if i-len(arr) > types.MaxArrayPadding {
		return nil, types.Errorf(types.ErrPathNotFound, "index %d too far past the end of array of length %d", i, len(arr))
	}
	for len(arr) <= i {
		arr = append(arr, NullValue)
	}
	child, err := Insert(arr[i], rest, nv)
	if err != nil {
		return nil, err
	}
	arr[i] = child
	return arr, nil
}

// Remove deletes the value at path p inside root. It returns the new root
// and the removed value, or null when nothing was there. Removing an array
// element shifts the following elements down.
func Remove(root Value, p types.Path) (Value, Value) {
	if len(p) == 0 {
		return NullValue, root
	}
	seg, rest := p[0], p[1:]

	switch x := root.(type) {
	case Object:
		if seg.IsIndex() {
			return root, NullValue
		}
		child, ok := x[seg.Field]
		if !ok {
			return root, NullValue
		}
		if len(rest) == 0 {
			delete(x, seg.Field)
			return x, child
		}
		newChild, removed := Remove(child, rest)
		x[seg.Field] = newChild
		return x, removed
	case Array:
		if !seg.IsIndex() {
			return root, NullValue
		}
		i, ok := resolveIndex(len(x), seg.Index)
		if !ok {
			return root, NullValue
		}
		if len(rest) == 0 {
			removed := x[i]
			return append(x[:i], x[i+1:]...), removed
		}
		newChild, removed := Remove(x[i], rest)
		x[i] = newChild
		return x, removed
	}
	return root, NullValue
}

func resolveIndex(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}
