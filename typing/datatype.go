package typing

import (
	"math/big"
)

// Type is the descriptor for one Ada type or subtype.  All sizes in the
// lattice are byte quantities; bit widths exist only inside the IR emitter.
type Type struct {
	Kind int
	Name string

	// Decl is the defining symbol (*sem.Symbol); typed loosely because types
	// and symbols reference each other and both live in the arena anyway
	Decl interface{}

	Size  int // bytes
	Align int // bytes

	// Scalar bounds
	Low  Bound
	High Bound

	// Base is the nearest anonymous base type; a type with no separate base
	// points at itself
	Base *Type

	// Parent is the parent of a derived type, nil otherwise
	Parent *Type

	// Array payload
	Indexes       []*Type
	Elem          *Type
	Unconstrained bool

	// Record payload
	Fields      []*Field
	HasVariants bool
	Packed      bool

	// Limited marks a limited view; the full declaration overwrites Kind but
	// leaves this set
	Limited bool

	// Access payload; patched after the designated type resolves so that
	// recursive access types can be built
	Designated *Type

	// Enumeration payload
	Literals []string

	// Modular payload
	Modulus uint64

	// Frozen locks the layout; no field above may change once set
	Frozen bool

	// EqName is the deterministic name of the implicit equality function
	// registered when a composite type freezes
	EqName string

	// SuppressedChecks is the pragma Suppress bitmask for this type
	SuppressedChecks uint32
}

// Field is one record component with its resolved byte offset
type Field struct {
	Name   string
	Type   *Type
	Offset int

	// Default is the component default expression (*syntax.Node), nil if none
	Default interface{}

	// Discriminant marks discriminant components
	Discriminant bool
}

// Enumeration of type kinds
const (
	KindBoolean = iota
	KindCharacter
	KindInteger
	KindModular
	KindEnum
	KindFloat
	KindFixed
	KindArray
	KindRecord
	KindString
	KindAccess
	KindUniversalInt
	KindUniversalReal
	KindTask
	KindSubprogram
	KindPrivate
	KindLimitedPrivate
	KindIncomplete
	KindPackage
)

// Bound is one scalar bound: a static integer, a static float, or an
// expression whose value is not known until run time
type Bound struct {
	Kind  int
	Int   *big.Int
	Float float64

	// Expr is the deferred bound expression (*syntax.Node)
	Expr interface{}
}

// Enumeration of bound kinds
const (
	BoundNone = iota
	BoundInt
	BoundFloat
	BoundExpr
)

// IntBound creates a static integer bound
func IntBound(v int64) Bound {
	return Bound{Kind: BoundInt, Int: big.NewInt(v)}
}

// BigBound creates a static integer bound from a big value
func BigBound(v *big.Int) Bound {
	return Bound{Kind: BoundInt, Int: v}
}

// FloatBound creates a static float bound
func FloatBound(v float64) Bound {
	return Bound{Kind: BoundFloat, Float: v}
}

// ExprBound creates a deferred bound
func ExprBound(e interface{}) Bound {
	return Bound{Kind: BoundExpr, Expr: e}
}

// StaticInt reports the bound's integer value when it is statically known
func (b Bound) StaticInt() (int64, bool) {
	if b.Kind == BoundInt && b.Int.IsInt64() {
		return b.Int.Int64(), true
	}
	return 0, false
}

// NewType allocates a descriptor whose base points at itself
func NewType(kind int, name string) *Type {
	t := &Type{Kind: kind, Name: name}
	t.Base = t
	return t
}

// Root returns the ultimate base of the type, walking derived parents
func (t *Type) Root() *Type {
	r := t
	for {
		if r.Base != r && r.Base != nil {
			r = r.Base
			continue
		}
		if r.Parent != nil {
			r = r.Parent
			continue
		}
		return r
	}
}

// Clone copies a descriptor for subtype and derived-type construction.  The
// copy starts unfrozen and unregistered.
func (t *Type) Clone(name string) *Type {
	c := *t
	c.Name = name
	c.Frozen = false
	c.EqName = ""
	if t.Base == t {
		c.Base = t
	}
	return &c
}
