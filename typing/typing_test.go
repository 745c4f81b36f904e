package typing

import "testing"

func makeRecord(name string, fieldTypes map[string]*Type, order []string) *Type {
	t := NewType(KindRecord, name)
	for _, fname := range order {
		t.Fields = append(t.Fields, &Field{Name: fname, Type: fieldTypes[fname]})
	}
	return t
}

func TestRecordLayout(t *testing.T) {
	ctx := NewContext()

	point := makeRecord("point", map[string]*Type{
		"x": ctx.Integer, "y": ctx.Integer,
	}, []string{"x", "y"})
	ctx.Freeze(point)

	if point.Size != 8 || point.Align != 4 {
		t.Errorf("point: size=%d align=%d, want 8/4", point.Size, point.Align)
	}
	if point.Fields[0].Offset != 0 || point.Fields[1].Offset != 4 {
		t.Errorf("point offsets: %d, %d", point.Fields[0].Offset, point.Fields[1].Offset)
	}
}

func TestRecordPadding(t *testing.T) {
	ctx := NewContext()

	mixed := makeRecord("mixed", map[string]*Type{
		"flag": ctx.Boolean, "count": ctx.Integer,
	}, []string{"flag", "count"})
	ctx.Freeze(mixed)

	if mixed.Fields[1].Offset != 4 {
		t.Errorf("count offset = %d, want 4 (padded)", mixed.Fields[1].Offset)
	}
	if mixed.Size != 8 {
		t.Errorf("size = %d, want 8", mixed.Size)
	}

	packed := makeRecord("packed", map[string]*Type{
		"flag": ctx.Boolean, "count": ctx.Integer,
	}, []string{"flag", "count"})
	packed.Packed = true
	ctx.Freeze(packed)

	if packed.Fields[1].Offset != 1 || packed.Size != 5 {
		t.Errorf("packed: offset=%d size=%d, want 1/5", packed.Fields[1].Offset, packed.Size)
	}
}

func TestEmptyRecord(t *testing.T) {
	ctx := NewContext()
	null := NewType(KindRecord, "unit")
	ctx.Freeze(null)

	if null.Size != 0 || null.Align != 1 {
		t.Errorf("empty record: size=%d align=%d", null.Size, null.Align)
	}
}

func TestFreezeIdempotent(t *testing.T) {
	ctx := NewContext()
	point := makeRecord("point", map[string]*Type{"x": ctx.Integer}, []string{"x"})

	ctx.Freeze(point)
	name := point.EqName
	frozen := len(ctx.Frozen)

	ctx.Freeze(point)
	if point.EqName != name || len(ctx.Frozen) != frozen {
		t.Error("freezing twice had additional effects")
	}
	if name == "" {
		t.Error("equality name empty after freeze")
	}
}

func TestFreezeOrderThroughComponents(t *testing.T) {
	ctx := NewContext()

	point := makeRecord("point", map[string]*Type{
		"x": ctx.Integer, "y": ctx.Integer,
	}, []string{"x", "y"})
	line := makeRecord("line", map[string]*Type{
		"a": point, "b": point,
	}, []string{"a", "b"})

	// freezing the outer record must freeze the component type first
	ctx.Freeze(line)

	if !point.Frozen {
		t.Fatal("component type not frozen")
	}
	if len(ctx.Frozen) != 2 || ctx.Frozen[0] != point || ctx.Frozen[1] != line {
		t.Fatalf("frozen order wrong: %d entries", len(ctx.Frozen))
	}
	if ctx.Frozen[0].EqName == ctx.Frozen[1].EqName {
		t.Error("equality names not unique")
	}
	if line.Size != 16 {
		t.Errorf("line size = %d, want 16", line.Size)
	}
}

func TestAccessDoesNotRecurse(t *testing.T) {
	ctx := NewContext()

	// type Node; type Ref is access Node; type Node is record Next : Ref; ...
	node := NewType(KindRecord, "node")
	ref := NewType(KindAccess, "ref")
	ref.Designated = node
	node.Fields = []*Field{
		{Name: "value", Type: ctx.Integer},
		{Name: "next", Type: ref},
	}

	ctx.Freeze(node)
	if !ref.Frozen {
		t.Fatal("access component not frozen")
	}
	if node.Size != 16 {
		t.Errorf("node size = %d, want 16", node.Size)
	}
}

func TestModularWidths(t *testing.T) {
	tests := []struct {
		modulus uint64
		want    int
	}{
		{256, 1},
		{257, 2},
		{65536, 2},
		{1 << 32, 4},
		{1<<32 + 1, 8},
		{0, 16}, // 2**64
	}

	for _, tt := range tests {
		if got := WidthForModulus(tt.modulus); got != tt.want {
			t.Errorf("WidthForModulus(%d) = %d, want %d", tt.modulus, got, tt.want)
		}
	}
}

func TestIntegerWidths(t *testing.T) {
	tests := []struct {
		low, high int64
		want      int
	}{
		{0, 1, 1},
		{-128, 127, 1},
		{0, 255, 2},
		{-32768, 32767, 2},
		{1, 100000, 4},
		{0, 1 << 40, 8},
	}

	for _, tt := range tests {
		if got := WidthForRange(tt.low, tt.high); got != tt.want {
			t.Errorf("WidthForRange(%d, %d) = %d, want %d", tt.low, tt.high, got, tt.want)
		}
	}
}

func TestCompatibility(t *testing.T) {
	ctx := NewContext()

	if !Compatible(ctx.UniversalInt, ctx.Integer) {
		t.Error("universal integer must coerce to integer")
	}
	if !Compatible(ctx.Natural, ctx.Integer) {
		t.Error("subtypes of one base must be compatible")
	}
	if Compatible(ctx.Integer, ctx.Float) {
		t.Error("integer and float must not be compatible")
	}
	if !Compatible(ctx.UniversalReal, ctx.Float) {
		t.Error("universal real must coerce to float")
	}
	if Compatible(ctx.UniversalInt, ctx.Boolean) {
		t.Error("universal integer must not coerce to boolean")
	}

	arr := NewType(KindArray, "chars")
	arr.Elem = ctx.Character
	arr.Indexes = []*Type{ctx.Positive}
	if !Compatible(arr, ctx.String) {
		t.Error("character array must be compatible with string")
	}
}

func TestArrayLayout(t *testing.T) {
	ctx := NewContext()

	idx := ctx.Integer.Clone("")
	idx.Base = ctx.Integer
	idx.Low, idx.High = IntBound(1), IntBound(5)

	arr := NewType(KindArray, "vec")
	arr.Elem = ctx.Integer
	arr.Indexes = []*Type{idx}
	ctx.Freeze(arr)

	if arr.Size != 20 {
		t.Errorf("array size = %d, want 20", arr.Size)
	}
}
