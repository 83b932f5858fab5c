package functions

import (
	"fmt"
	"sync"

	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// Impl is the runtime body of a Def.
type Impl func(ctx *runtime.Context, args *Arguments) (value.Value, error)

// ResolveFunc computes the result type of a Def from its argument types.
type ResolveFunc func(args *ArgumentTypes) (types.TypeDef, error)

// Def is the struct implementation of Function used by the standard
// library. Parameters come from Signature and Keywords; the result type is
// the signature's return kind, made fallible by Fallible, unless
// ResolveFunc overrides it.
//
// # Example
//
//	upcase := &functions.Def{
//	    Name:      "upcase",
//	    Signature: "<s:s>",
//	    Keywords:  []string{"value"},
//	    Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
//	        s, err := args.String("value")
//	        if err != nil {
//	            return nil, err
//	        }
//	        return value.String(strings.ToUpper(s)), nil
//	    },
//	}
type Def struct {
	// Name is the function name as it appears inside programs.
	Name string
	// Signature declares parameter and return kinds, e.g. "<s-i?:s>".
	Signature string
	// Keywords names the parameters, in signature order.
	Keywords []string
	// Defaults holds values for omitted optional parameters, by keyword.
	Defaults map[string]value.Value
	// Fallible marks every call as possibly failing.
	Fallible bool
	// Deprecated, when non-empty, is the deprecation note.
	Deprecated string
	// ResolveFunc overrides the static result type.
	ResolveFunc ResolveFunc
	// Impl is the implementation.
	Impl Impl

	once   sync.Once
	params []Parameter
	ret    types.Kind
	err    error
}

var (
	_ Function   = (*Def)(nil)
	_ Deprecated = (*Def)(nil)
)

func (d *Def) init() error {
	d.once.Do(func() {
		sig, err := ParseSignature(d.Signature)
		if err != nil {
			d.err = fmt.Errorf("function %s: %w", d.Name, err)
			return
		}
		if len(sig.Params) != len(d.Keywords) {
			d.err = fmt.Errorf("function %s: signature has %d parameters but %d keywords", d.Name, len(sig.Params), len(d.Keywords))
			return
		}
		d.params = make([]Parameter, len(sig.Params))
		for i, p := range sig.Params {
			d.params[i] = Parameter{
				Keyword:  d.Keywords[i],
				Kind:     p.Kind,
				Required: !p.Optional,
				Default:  d.Defaults[d.Keywords[i]],
			}
		}
		d.ret = sig.Return
		if d.Impl == nil {
			d.err = fmt.Errorf("function %s: missing implementation", d.Name)
		}
	})
	return d.err
}

// Validate checks the signature and implementation.
func (d *Def) Validate() error {
	return d.init()
}

// Identifier implements Function.
func (d *Def) Identifier() string {
	return d.Name
}

// Parameters implements Function.
func (d *Def) Parameters() []Parameter {
	if d.init() != nil {
		return nil
	}
	return d.params
}

// Resolve implements Function.
func (d *Def) Resolve(args *ArgumentTypes) (types.TypeDef, error) {
	if err := d.init(); err != nil {
		return types.TypeDef{}, err
	}
	if d.ResolveFunc != nil {
		return d.ResolveFunc(args)
	}
	return types.TypeDef{}.WithKind(d.ret).WithFallible(d.Fallible), nil
}

// Call implements Function.
func (d *Def) Call(ctx *runtime.Context, args *Arguments) (value.Value, error) {
	return d.Impl(ctx, args)
}

// Deprecation implements Deprecated.
func (d *Def) Deprecation() string {
	return d.Deprecated
}
