package typing

// The type predicates form a small lattice: discrete is a subset of scalar,
// numeric splits into integer-like and real, composite covers arrays,
// records, and strings.  Universal kinds are literal placeholders that
// coerce to any compatible specific type.

// IsIntegerLike covers signed integers, modular types, and universal integer
func IsIntegerLike(t *Type) bool {
	switch t.Kind {
	case KindInteger, KindModular, KindUniversalInt:
		return true
	}
	return false
}

// IsReal covers floating point, fixed point, and universal real
func IsReal(t *Type) bool {
	switch t.Kind {
	case KindFloat, KindFixed, KindUniversalReal:
		return true
	}
	return false
}

// IsNumeric is the union of the integer-like and real families
func IsNumeric(t *Type) bool {
	return IsIntegerLike(t) || IsReal(t)
}

// IsDiscrete covers every type with an enumerable value sequence
func IsDiscrete(t *Type) bool {
	switch t.Kind {
	case KindBoolean, KindCharacter, KindInteger, KindModular, KindEnum, KindUniversalInt:
		return true
	}
	return false
}

// IsScalar is discrete plus the real family
func IsScalar(t *Type) bool {
	return IsDiscrete(t) || IsReal(t)
}

// IsComposite covers arrays, records, and strings
func IsComposite(t *Type) bool {
	switch t.Kind {
	case KindArray, KindRecord, KindString:
		return true
	}
	return false
}

// IsArrayLike covers arrays and strings (strings are character arrays)
func IsArrayLike(t *Type) bool {
	return t.Kind == KindArray || t.Kind == KindString
}

// IsUniversal reports whether the type is a literal placeholder
func IsUniversal(t *Type) bool {
	return t.Kind == KindUniversalInt || t.Kind == KindUniversalReal
}

// IsLimited reports whether objects of the type cannot be copied
func IsLimited(t *Type) bool {
	return t.Kind == KindLimitedPrivate || t.Kind == KindTask || t.Limited
}

// IsBoolean resolves through derivation to the predefined Boolean
func IsBoolean(t *Type) bool {
	return t.Root().Kind == KindBoolean
}

// Compatible implements the type compatibility rule: shared base type,
// universal coercion, or element-compatible array/string types
func Compatible(a, b *Type) bool {
	if a == nil || b == nil {
		return false
	}
	if a == b || a.Root() == b.Root() {
		return true
	}

	// universal integer coerces to any integer type, universal real to any
	// real type (and literal mixing the other way around)
	if a.Kind == KindUniversalInt && IsIntegerLike(b) || b.Kind == KindUniversalInt && IsIntegerLike(a) {
		return true
	}
	if a.Kind == KindUniversalReal && IsReal(b) || b.Kind == KindUniversalReal && IsReal(a) {
		return true
	}

	// arrays and strings are compatible when their element types are; string
	// lengths are checked dynamically, not here
	if IsArrayLike(a) && IsArrayLike(b) {
		ea, eb := a.Root().Elem, b.Root().Elem
		if ea == nil || eb == nil {
			return a.Kind == KindString && b.Kind == KindString
		}
		return Compatible(ea, eb)
	}

	return false
}
