package typing

// Layout computation.  Sizes are computed bottom-up from element and
// component sizes; every quantity here is bytes.

// WidthForRange picks the smallest signed byte width covering low..high
func WidthForRange(low, high int64) int {
	switch {
	case low >= -128 && high <= 127:
		return 1
	case low >= -32768 && high <= 32767:
		return 2
	case low >= -2147483648 && high <= 2147483647:
		return 4
	}
	return 8
}

// WidthForModulus picks the smallest width in {1, 2, 4, 8, 16} bytes that
// represents 0 .. modulus-1
func WidthForModulus(m uint64) int {
	switch {
	case m == 0:
		// modulus 2**64 wraps to zero; it needs the full 16-byte width
		return 16
	case m <= 1<<8:
		return 1
	case m <= 1<<16:
		return 2
	case m <= 1<<32:
		return 4
	}
	return 8
}

// Span returns the element count of a discrete subtype when its bounds are
// static
func (t *Type) Span() (int64, bool) {
	low, okL := t.Low.StaticInt()
	high, okH := t.High.StaticInt()
	if !okL || !okH {
		return 0, false
	}
	if high < low {
		return 0, true // null range
	}
	return high - low + 1, true
}

// computeLayout fills in Size and Align.  It runs exactly once, at freezing,
// after every element and component type has itself been frozen.
func computeLayout(t *Type) {
	if t.Size != 0 && t.Align != 0 {
		return // predefined types carry their layout from birth
	}

	switch t.Kind {
	case KindBoolean:
		t.Size, t.Align = 1, 1

	case KindCharacter:
		t.Size, t.Align = 1, 1

	case KindEnum:
		n := int64(len(t.Literals))
		if n < 1 {
			n = 1
		}
		t.Size = WidthForRange(0, n-1)
		t.Align = t.Size

	case KindInteger:
		low, okL := t.Low.StaticInt()
		high, okH := t.High.StaticInt()
		if okL && okH {
			t.Size = WidthForRange(low, high)
		} else {
			t.Size = 8
		}
		t.Align = t.Size

	case KindModular:
		t.Size = WidthForModulus(t.Modulus)
		t.Align = t.Size
		if t.Align > 8 {
			t.Align = 8
		}

	case KindFloat, KindFixed:
		t.Size, t.Align = 8, 8

	case KindAccess:
		t.Size, t.Align = 8, 8

	case KindArray, KindString:
		if t.Elem == nil {
			return
		}
		t.Align = t.Elem.Align
		if t.Unconstrained {
			// no static size; objects of this subtype travel as fat pointers
			return
		}

		count := int64(1)
		for _, idx := range t.Indexes {
			span, ok := idx.Span()
			if !ok {
				return // dynamic bounds; size known only at run time
			}
			count *= span
		}
		t.Size = int(count) * t.Elem.Size

	case KindRecord:
		offset := 0
		align := 1
		for _, f := range t.Fields {
			fa := f.Type.Align
			if fa < 1 {
				fa = 1
			}
			if !t.Packed {
				offset = alignUp(offset, fa)
				if fa > align {
					align = fa
				}
			}
			f.Offset = offset
			offset += f.Type.Size
		}
		if !t.Packed {
			offset = alignUp(offset, align)
		}
		t.Size = offset
		t.Align = align
		if len(t.Fields) == 0 {
			// `record null; end record` freezes to size 0, minimum alignment
			t.Size, t.Align = 0, 1
		}

	case KindTask, KindPackage, KindSubprogram, KindIncomplete:
		// no object layout

	default:
		t.Size, t.Align = 8, 8
	}

	if t.Align == 0 {
		t.Align = 1
	}
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}
