package sem

import (
	"testing"

	"adac/typing"
)

func TestInsertThenLookup(t *testing.T) {
	m := NewManager()
	ctx := typing.NewContext()

	x := m.Define(&Symbol{Name: "X", Kind: SymVariable, Type: ctx.Integer})

	if got := m.Lookup("x"); got != x {
		t.Fatal("folded-case lookup did not return the inserted symbol")
	}
	if got := m.Lookup("X"); got != x {
		t.Fatal("lookup did not return the inserted symbol")
	}
	if m.Lookup("y") != nil {
		t.Fatal("lookup invented a symbol")
	}
}

func TestUniqueIDs(t *testing.T) {
	m := NewManager()

	seen := make(map[int]bool)
	for _, name := range []string{"a", "b", "c", "d"} {
		sym := m.Define(&Symbol{Name: name, Kind: SymConstant})
		if seen[sym.UniqueID] {
			t.Fatalf("duplicate unique id %d", sym.UniqueID)
		}
		seen[sym.UniqueID] = true
	}
}

func TestDefiningScopeContainsSymbol(t *testing.T) {
	m := NewManager()
	sym := m.Define(&Symbol{Name: "v", Kind: SymVariable})

	found := false
	for _, s := range sym.DefScope.Symbols {
		if s == sym {
			found = true
		}
	}
	if !found {
		t.Fatal("defining scope does not contain the symbol")
	}
}

func TestOverloadChain(t *testing.T) {
	m := NewManager()
	ctx := typing.NewContext()

	f1 := m.Define(&Symbol{Name: "F", Kind: SymFunction, ReturnType: ctx.Integer,
		Params: []*Param{{Name: "a", Type: ctx.Integer}}})
	f2 := m.Define(&Symbol{Name: "F", Kind: SymFunction, ReturnType: ctx.Float,
		Params: []*Param{{Name: "a", Type: ctx.Float}}})

	chain := m.LookupAll("f")
	if len(chain) != 2 {
		t.Fatalf("overload chain length = %d, want 2", len(chain))
	}
	if chain[0] != f1 || chain[1] != f2 {
		t.Fatal("overload chain order wrong")
	}
	if f1.UniqueID == f2.UniqueID {
		t.Fatal("overloads share a unique id")
	}
}

func TestShadowing(t *testing.T) {
	m := NewManager()
	ctx := typing.NewContext()

	outer := m.Define(&Symbol{Name: "X", Kind: SymVariable, Type: ctx.Integer})
	m.Push(&Symbol{Name: "P", Kind: SymProcedure})
	inner := m.Define(&Symbol{Name: "X", Kind: SymVariable, Type: ctx.Float})

	if m.Lookup("x") != inner {
		t.Fatal("inner declaration does not shadow outer")
	}

	m.Pop()
	if m.Lookup("x") != outer {
		t.Fatal("outer declaration not restored after pop")
	}
}

func TestNestingLevels(t *testing.T) {
	m := NewManager()

	outerSym := m.Define(&Symbol{Name: "Outer", Kind: SymProcedure})
	m.Push(outerSym)
	innerSym := m.Define(&Symbol{Name: "Inner", Kind: SymProcedure})

	if outerSym.NestingLevel != 0 || innerSym.NestingLevel != 1 {
		t.Fatalf("nesting levels = %d, %d; want 0, 1", outerSym.NestingLevel, innerSym.NestingLevel)
	}
}

func TestFrameOffsets(t *testing.T) {
	m := NewManager()
	ctx := typing.NewContext()

	m.Push(&Symbol{Name: "P", Kind: SymProcedure})
	a := m.Define(&Symbol{Name: "A", Kind: SymVariable, Type: ctx.Integer})
	b := m.Define(&Symbol{Name: "B", Kind: SymVariable, Type: ctx.Integer})

	if a.FrameOffset != 0 {
		t.Errorf("first offset = %d, want 0", a.FrameOffset)
	}
	if b.FrameOffset != 8 {
		t.Errorf("second offset = %d, want 8 (8-aligned slots)", b.FrameOffset)
	}
	if m.Top.FrameSize < 12 {
		t.Errorf("frame size = %d", m.Top.FrameSize)
	}
}

func TestBlockScopeSharesSubprogramFrame(t *testing.T) {
	m := NewManager()
	ctx := typing.NewContext()

	m.Push(&Symbol{Name: "P", Kind: SymProcedure})
	x := m.Define(&Symbol{Name: "X", Kind: SymVariable, Type: ctx.Integer})

	m.Push(nil) // declare block
	y := m.Define(&Symbol{Name: "Y", Kind: SymVariable, Type: ctx.Integer})
	m.Pop()

	if y.FrameOffset == x.FrameOffset {
		t.Fatalf("block local reuses frame offset %d", y.FrameOffset)
	}
	if y.FrameOffset != 8 {
		t.Errorf("block local offset = %d, want 8", y.FrameOffset)
	}
	if m.Top.FrameSize < 12 {
		t.Errorf("subprogram frame size = %d, want at least 12", m.Top.FrameSize)
	}
}

func TestUseVisibility(t *testing.T) {
	m := NewManager()
	ctx := typing.NewContext()

	exported := &Symbol{Name: "Item", Kind: SymVariable, Type: ctx.Integer, Visibility: VisImmediate}
	pkg := m.Define(&Symbol{Name: "Pack", Kind: SymPackage, Exports: []*Symbol{exported}})

	if m.Lookup("item") != nil {
		t.Fatal("export visible before use clause")
	}

	m.Top.AddUse(pkg)
	if m.Lookup("item") != exported {
		t.Fatal("use clause did not promote export")
	}

	// immediately visible beats use-visible
	local := m.Define(&Symbol{Name: "Item", Kind: SymVariable, Type: ctx.Float})
	if m.Lookup("item") != local {
		t.Fatal("use-visible symbol beat an immediately visible one")
	}
}
