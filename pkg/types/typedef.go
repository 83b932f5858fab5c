package types

// TypeDef is the static type of an expression: the kinds its value may take
// and whether evaluating it may fail at runtime.
type TypeDef struct {
	kind     Kind
	fallible bool
}

// Infallible returns a TypeDef of kind k that cannot fail.
func Infallible(k Kind) TypeDef { return TypeDef{kind: k} }

// Fallible returns a TypeDef of kind k that may fail.
func Fallible(k Kind) TypeDef { return TypeDef{kind: k, fallible: true} }

// AnyTypeDef is the infallible TypeDef accepting every value. It stands in
// for expressions that failed to compile.
func AnyTypeDef() TypeDef { return Infallible(Any()) }

// Kind returns the kinds the value may take.
func (t TypeDef) Kind() Kind { return t.kind }

// IsFallible reports whether evaluation may fail.
func (t TypeDef) IsFallible() bool { return t.fallible }

// IsInfallible reports whether evaluation cannot fail.
func (t TypeDef) IsInfallible() bool { return !t.fallible }

// WithFallible returns a copy of t with its fallibility set to f.
func (t TypeDef) WithFallible(f bool) TypeDef {
	t.fallible = f
	return t
}

// AsInfallible returns a copy of t that cannot fail.
func (t TypeDef) AsInfallible() TypeDef { return t.WithFallible(false) }

// AsFallible returns a copy of t that may fail.
func (t TypeDef) AsFallible() TypeDef { return t.WithFallible(true) }

// WithKind returns a copy of t with kind k.
func (t TypeDef) WithKind(k Kind) TypeDef {
	t.kind = k
	return t
}

// OrNull adds null to the kinds of t.
func (t TypeDef) OrNull() TypeDef {
	t.kind = t.kind.Union(Null())
	return t
}

// Union joins the kinds of t and o. The result is fallible if either is.
func (t TypeDef) Union(o TypeDef) TypeDef {
	return TypeDef{kind: t.kind.Union(o.kind), fallible: t.fallible || o.fallible}
}

// At returns the TypeDef of reading path p from a value of type t.
func (t TypeDef) At(p Path) TypeDef {
	return TypeDef{kind: t.kind.At(p), fallible: t.fallible}
}

// IsSuperset reports whether t accepts every value o may produce. A fallible
// o is only accepted by a fallible t.
func (t TypeDef) IsSuperset(o TypeDef) bool {
	if o.fallible && !t.fallible {
		return false
	}
	return t.kind.IsSuperset(o.kind)
}

// Finalize replaces an empty kind by any, so that no TypeDef leaving the
// compiler is empty.
func (t TypeDef) Finalize() TypeDef {
	if t.kind.IsNever() {
		t.kind = Any()
	}
	return t
}

// Equal reports whether t and o are identical.
func (t TypeDef) Equal(o TypeDef) bool {
	return t.fallible == o.fallible && t.kind.Equal(o.kind)
}

func (t TypeDef) String() string {
	if t.fallible {
		return "fallible " + t.kind.String()
	}
	return t.kind.String()
}
