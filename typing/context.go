package typing

import (
	"fmt"

	"adac/common"
)

// Context owns the per-compilation type state: the predefined types, the
// universal literal placeholders, and the ordered list of frozen composite
// types awaiting implicit-equality emission.  Nothing in this package is
// process-global; hosts running compilations concurrently give each its own
// Context.
type Context struct {
	// Frozen is the ordered list of composite types that have frozen; the
	// emitter generates one equality function per entry, in this order
	Frozen []*Type

	eqCount int

	UniversalInt  *Type
	UniversalReal *Type

	Boolean     *Type
	Character   *Type
	Integer     *Type
	LongInteger *Type
	Natural     *Type
	Positive    *Type
	Float       *Type
	Duration    *Type
	String      *Type
}

// NewContext creates a context with the predefined types built and laid out
func NewContext() *Context {
	ctx := &Context{}

	ctx.UniversalInt = NewType(KindUniversalInt, "universal_integer")
	ctx.UniversalReal = NewType(KindUniversalReal, "universal_real")

	ctx.Boolean = NewType(KindBoolean, "boolean")
	ctx.Boolean.Size, ctx.Boolean.Align = 1, 1
	ctx.Boolean.Low, ctx.Boolean.High = IntBound(0), IntBound(1)
	ctx.Boolean.Literals = []string{"false", "true"}

	ctx.Character = NewType(KindCharacter, "character")
	ctx.Character.Size, ctx.Character.Align = 1, 1
	ctx.Character.Low, ctx.Character.High = IntBound(0), IntBound(255)

	ctx.Integer = NewType(KindInteger, "integer")
	ctx.Integer.Size, ctx.Integer.Align = 4, 4
	ctx.Integer.Low, ctx.Integer.High = IntBound(-2147483648), IntBound(2147483647)

	ctx.LongInteger = NewType(KindInteger, "long_integer")
	ctx.LongInteger.Size, ctx.LongInteger.Align = 8, 8
	ctx.LongInteger.Low = IntBound(-9223372036854775808)
	ctx.LongInteger.High = IntBound(9223372036854775807)

	ctx.Natural = ctx.Integer.Clone("natural")
	ctx.Natural.Base = ctx.Integer
	ctx.Natural.Low = IntBound(0)

	ctx.Positive = ctx.Integer.Clone("positive")
	ctx.Positive.Base = ctx.Integer
	ctx.Positive.Low = IntBound(1)

	ctx.Float = NewType(KindFloat, "float")
	ctx.Float.Size, ctx.Float.Align = 8, 8

	ctx.Duration = NewType(KindFixed, "duration")
	ctx.Duration.Size, ctx.Duration.Align = 8, 8

	ctx.String = NewType(KindString, "string")
	ctx.String.Elem = ctx.Character
	ctx.String.Indexes = []*Type{ctx.Positive}
	ctx.String.Unconstrained = true
	ctx.String.Align = 1

	return ctx
}

// Freeze finalizes a type's representation.  Freezing recurses into array
// element and index types and record component types, but never through an
// access type, so mutually recursive pointer structures terminate.  Marking
// before recursion keeps cycles from looping.
func (ctx *Context) Freeze(t *Type) {
	if t == nil || t.Frozen {
		return
	}
	t.Frozen = true

	switch t.Kind {
	case KindArray, KindString:
		ctx.Freeze(t.Elem)
		for _, idx := range t.Indexes {
			ctx.Freeze(idx)
		}
	case KindRecord:
		for _, f := range t.Fields {
			ctx.Freeze(f.Type)
		}
	case KindAccess:
		// the designated type is deliberately not frozen
	}

	computeLayout(t)

	if ctx.wantsEquality(t) {
		t.EqName = fmt.Sprintf("__eq.%s.%d", sanitize(common.FoldName(t.Name)), ctx.eqCount)
		ctx.eqCount++
		ctx.Frozen = append(ctx.Frozen, t)
	}
}

// wantsEquality reports whether a freshly frozen type needs an implicit
// equality function: records and constrained arrays do
func (ctx *Context) wantsEquality(t *Type) bool {
	switch t.Kind {
	case KindRecord:
		return true
	case KindArray, KindString:
		return !t.Unconstrained && t.Size > 0
	}
	return false
}

// sanitize rewrites a type name into LLVM-identifier-safe bytes
func sanitize(name string) string {
	buf := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		b := name[i]
		if b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_' {
			buf = append(buf, b)
		} else {
			buf = append(buf, fmt.Sprintf("$%02x", b)...)
		}
	}
	return string(buf)
}
