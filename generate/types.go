package generate

import (
	"fmt"

	"adac/typing"
)

// Representation conventions.  Scalar computation is carried in i64 (double
// for the real family) and narrowed at store and return sites; composites
// travel as pointers; unconstrained arrays as fat pointers.

// valType is the IR type a value of t has while being computed
func valType(t *typing.Type) string {
	if t == nil {
		return "i64"
	}
	r := t.Root()
	switch {
	case typing.IsReal(r):
		return "double"
	case r.Kind == typing.KindAccess:
		return "ptr"
	case typing.IsArrayLike(r) && r.Unconstrained:
		return "%fat"
	case typing.IsComposite(r):
		return "ptr"
	case typing.IsDiscrete(r):
		return "i64"
	}
	return "i64"
}

// memType is the IR type of t's storage
func memType(t *typing.Type) string {
	if t == nil {
		return "i64"
	}
	r := t.Root()
	switch {
	case typing.IsReal(r):
		return "double"
	case r.Kind == typing.KindAccess:
		return "ptr"
	case typing.IsArrayLike(r) && r.Unconstrained:
		return "%fat"
	case typing.IsComposite(r):
		size := t.Size
		if size < 1 {
			size = 1
		}
		return fmt.Sprintf("[%d x i8]", size)
	}
	return intType(t)
}

// intType picks the narrow integer type matching the byte size
func intType(t *typing.Type) string {
	size := t.Size
	if size == 0 {
		size = t.Root().Size
	}
	switch size {
	case 1:
		return "i8"
	case 2:
		return "i16"
	case 4:
		return "i32"
	}
	return "i64"
}

// signedLoad reports whether widening a stored value sign-extends
func signedLoad(t *typing.Type) bool {
	return t.Root().Kind == typing.KindInteger
}

// isByRef reports whether objects of the type are addressed, not copied into
// registers
func isByRef(t *typing.Type) bool {
	if t == nil {
		return false
	}
	r := t.Root()
	return typing.IsComposite(r) && !(typing.IsArrayLike(r) && r.Unconstrained)
}

// isFat reports the fat-pointer representation
func isFat(t *typing.Type) bool {
	if t == nil {
		return false
	}
	r := t.Root()
	return typing.IsArrayLike(r) && r.Unconstrained
}

// load reads storage at addr and widens the result to the computation type
func (g *Generator) load(addr string, t *typing.Type) string {
	vt, mt := valType(t), memType(t)

	if isByRef(t) {
		return addr // composites compute as their own address
	}

	v := g.temp()
	g.emit("%s = load %s, ptr %s", v, mt, addr)
	if vt == "i64" && mt != "i64" {
		w := g.temp()
		op := "zext"
		if signedLoad(t) {
			op = "sext"
		}
		g.emit("%s = %s %s %s to i64", w, op, mt, v)
		return w
	}
	return v
}

// store narrows a computed value to storage width and writes it
func (g *Generator) store(val string, addr string, t *typing.Type) {
	vt, mt := valType(t), memType(t)

	if isByRef(t) {
		// block copy; val is the source address
		g.emit("call void @llvm.memcpy.p0.p0.i64(ptr %s, ptr %s, i64 %d, i1 false)",
			addr, val, t.Size)
		return
	}

	if vt == "i64" && mt != "i64" {
		n := g.temp()
		g.emit("%s = trunc i64 %s to %s", n, val, mt)
		g.emit("store %s %s, ptr %s", mt, n, addr)
		return
	}
	g.emit("store %s %s, ptr %s", mt, val, addr)
}

// staticBounds reads a discrete subtype's bounds when both are static
func staticBounds(t *typing.Type) (int64, int64, bool) {
	low, okL := t.Low.StaticInt()
	high, okH := t.High.StaticInt()
	return low, high, okL && okH
}

// elemStride is the byte distance between adjacent elements
func elemStride(t *typing.Type) int {
	r := t.Root()
	if r.Elem == nil {
		return 1
	}
	s := r.Elem.Size
	if s < 1 {
		s = 1
	}
	return s
}
