package walk

import (
	"strings"
	"testing"

	"adac/arena"
	"adac/logging"
	"adac/sem"
	"adac/syntax"
	"adac/typing"
)

func resolveSource(t *testing.T, src string) (*syntax.Node, *Walker) {
	t.Helper()
	logging.Initialize("silent")

	a := arena.New()
	lctx := &logging.LogContext{FilePath: "test.adb"}
	sc := syntax.NewScanner([]byte(src), "test.adb", a, lctx)
	p := syntax.NewParser(sc, lctx)
	unit := p.Parse()
	if p.HadError() {
		t.Fatalf("syntax errors in:\n%s\n%s", src, strings.Join(logging.Diagnostics(), "\n"))
	}

	w := NewWalker(lctx, sem.NewManager(), typing.NewContext())
	w.WalkUnit(unit)
	return unit, w
}

func mustResolve(t *testing.T, src string) (*syntax.Node, *Walker) {
	t.Helper()
	unit, w := resolveSource(t, src)
	if logging.ErrorCount() != 0 {
		t.Fatalf("unexpected resolution errors:\n%s", strings.Join(logging.Diagnostics(), "\n"))
	}
	return unit, w
}

func TestResolveObjectAndAssignment(t *testing.T) {
	unit, w := mustResolve(t, `
		procedure Main is
			X : Integer := 3;
			Y : Integer;
		begin
			Y := X + 1;
		end Main;
	`)

	body := unit.Left
	xName := body.Decls[0].Names[0]
	if xName.Sym == nil || xName.Sym.Kind != sem.SymVariable {
		t.Fatal("X did not resolve to a variable")
	}
	if xName.Sym.Type != w.Types.Integer {
		t.Error("X is not Integer")
	}

	assign := body.List[0]
	if assign.Left.Sym == nil || assign.Left.Sym.Name != "Y" {
		t.Error("assignment target did not bind")
	}
	if assign.Right.TypeOf == nil || assign.Right.TypeOf.Root() != w.Types.Integer {
		t.Errorf("X + 1 resolved to %v, want Integer", assign.Right.TypeOf)
	}
}

func TestOverloadResolutionByArgument(t *testing.T) {
	unit, _ := mustResolve(t, `
		procedure Main is
			X : Integer;
			function F (A : Integer) return Integer is
			begin
				return A;
			end F;
			function F (A : Boolean) return Integer is
			begin
				return 0;
			end F;
		begin
			X := F (True) + F (2);
		end Main;
	`)

	sum := unit.Left.List[0].Right
	boolCall, intCall := sum.Left, sum.Right

	if boolCall.Sym == nil || boolCall.Sym.Params[0].Type.Kind != typing.KindBoolean {
		t.Error("F (True) did not pick the Boolean overload")
	}
	if intCall.Sym == nil || intCall.Sym.Params[0].Type.Kind != typing.KindInteger {
		t.Error("F (2) did not pick the Integer overload")
	}
	if boolCall.Sym == intCall.Sym {
		t.Error("both calls bound the same overload")
	}
}

func TestFreezeOrderFollowsDeclarationOrder(t *testing.T) {
	_, w := mustResolve(t, `
		procedure Main is
			type Point is record
				X, Y : Integer;
			end record;
			type Line is record
				A, B : Point;
			end record;
		begin
			null;
		end Main;
	`)

	pointAt, lineAt := -1, -1
	for i, ft := range w.Types.Frozen {
		switch ft.Name {
		case "point":
			pointAt = i
		case "line":
			lineAt = i
		}
	}
	if pointAt < 0 || lineAt < 0 {
		t.Fatalf("records not frozen: frozen list has %d entries", len(w.Types.Frozen))
	}
	if pointAt > lineAt {
		t.Error("Point froze after Line")
	}
}

func TestNestedSubprogramMarksEnclosing(t *testing.T) {
	unit, _ := mustResolve(t, `
		procedure Outer is
			procedure Inner is
			begin
				null;
			end Inner;
		begin
			Inner;
		end Outer;
	`)

	outer := unit.Left.Sym
	if outer == nil {
		t.Fatal("Outer has no symbol")
	}
	if !outer.HasNested {
		t.Error("Outer not marked as carrying nested subprograms")
	}

	call := unit.Left.List[0]
	if call.Sym == nil || call.Sym.Name != "Inner" {
		t.Error("parameterless call to Inner did not bind")
	}
}

func TestExceptionsCollectedInOrder(t *testing.T) {
	unit, w := mustResolve(t, `
		procedure Main is
			Overflow : exception;
		begin
			raise Overflow;
		end Main;
	`)

	// five predefined entries precede user declarations
	if len(w.Exceptions) != 6 {
		t.Fatalf("exception count = %d, want 6", len(w.Exceptions))
	}
	declared := w.Exceptions[5]
	if declared.Name != "Overflow" {
		t.Errorf("last exception = %q", declared.Name)
	}

	raise := unit.Left.List[0]
	if raise.Left.Sym != declared {
		t.Error("raise statement bound a different symbol")
	}
}

func TestUndefinedNameRecoversWithInteger(t *testing.T) {
	unit, w := resolveSource(t, `
		procedure Main is
			Y : Integer;
		begin
			Y := Nope;
			Y := Y + 1;
		end Main;
	`)

	if logging.ErrorCount() == 0 {
		t.Fatal("undefined name produced no error")
	}

	bad := unit.Left.List[0].Right
	if bad.TypeOf != w.Types.Integer {
		t.Error("error recovery did not annotate with Integer")
	}

	// resolution continued past the failure
	next := unit.Left.List[1]
	if next.Right.TypeOf == nil {
		t.Error("resolution stopped after the first error")
	}
}

func TestMisspelledNameSuggestion(t *testing.T) {
	resolveSource(t, `
		procedure Main is
			Counter : Integer := 0;
		begin
			Countr := 1;
		end Main;
	`)

	found := false
	for _, d := range logging.Diagnostics() {
		if strings.Contains(d, "did you mean") && strings.Contains(d, "Counter") {
			found = true
		}
	}
	if !found {
		t.Errorf("no suggestion in diagnostics:\n%s", strings.Join(logging.Diagnostics(), "\n"))
	}
}

func TestStaticFolding(t *testing.T) {
	unit, _ := mustResolve(t, `
		procedure Main is
			Max : constant := 2 ** 8;
			type Color is (Red, Green, Blue);
			X : Integer := Max;
			C : Color := Blue;
		begin
			null;
		end Main;
	`)

	decls := unit.Left.Decls

	v, ok := FoldInt(decls[2].Right)
	if !ok || v.Int64() != 256 {
		t.Errorf("Max folded to %v, want 256", v)
	}

	pos, ok := FoldInt(decls[3].Right)
	if !ok || pos.Int64() != 2 {
		t.Errorf("Blue folded to %v, want position 2", pos)
	}
}

func TestGenericPackageInstantiation(t *testing.T) {
	unit, _ := mustResolve(t, `
		procedure Main is
			generic
				type Item is private;
			package Stacks is
				procedure Push (E : Item);
			end Stacks;

			package body Stacks is
				procedure Push (E : Item) is
				begin
					null;
				end Push;
			end Stacks;

			package Int_Stacks is new Stacks (Item => Integer);
		begin
			Int_Stacks.Push (3);
		end Main;
	`)

	var inst *sem.Symbol
	for _, d := range unit.Left.Decls {
		if d.Kind == syntax.NInstanceDecl {
			inst = d.Sym
		}
	}
	if inst == nil {
		t.Fatal("instance has no symbol")
	}
	if inst.Template == nil || inst.Template.Kind != sem.SymGeneric {
		t.Error("instance does not reference its template")
	}

	foundPush := false
	for _, e := range inst.Exports {
		if e.Name == "Push" {
			foundPush = true
		}
	}
	if !foundPush {
		t.Fatal("instance exports lack Push")
	}

	call := unit.Left.List[0]
	if call.Sym == nil || call.Sym.Kind != sem.SymProcedure {
		t.Error("Int_Stacks.Push (3) did not bind the expanded procedure")
	}
}

func TestGenericSubprogramInstantiation(t *testing.T) {
	unit, w := mustResolve(t, `
		procedure Main is
			generic
				type Elem is private;
			function Identity (X : Elem) return Elem;

			function Identity (X : Elem) return Elem is
			begin
				return X;
			end Identity;

			function Int_Id is new Identity (Elem => Integer);
			Y : Integer;
		begin
			Y := Int_Id (4);
		end Main;
	`)

	call := unit.Left.List[0].Right
	if call.Sym == nil || call.Sym.Kind != sem.SymFunction {
		t.Fatal("Int_Id (4) did not bind a function")
	}
	if call.Sym.ReturnType.Root() != w.Types.Integer {
		t.Error("instantiated return type is not Integer")
	}
	if call.TypeOf.Root() != w.Types.Integer {
		t.Error("call expression type is not Integer")
	}
}

func TestSuppressPragmaOnEntity(t *testing.T) {
	unit, _ := mustResolve(t, `
		procedure Main is
			X : Integer := 0;
			pragma Suppress (Overflow_Check, On => X);
		begin
			null;
		end Main;
	`)

	sym := unit.Left.Decls[0].Names[0].Sym
	if sym.SuppressedChecks&sem.CheckOverflow == 0 {
		t.Error("overflow check not suppressed on X")
	}
	if sym.SuppressedChecks&sem.CheckRange != 0 {
		t.Error("unrelated check suppressed")
	}
}

func TestQualifiedNameAssignment(t *testing.T) {
	unit, _ := mustResolve(t, `
		procedure Main is
			package Counter is
				Count : Integer := 0;
			end Counter;
		begin
			Counter.Count := 3;
		end Main;
	`)

	assign := unit.Left.List[0]
	if assign.Left.Sym == nil || assign.Left.Sym.Name != "Count" {
		t.Error("selected target did not bind the package variable")
	}
}

func TestOutModeActualMustBeVariable(t *testing.T) {
	resolveSource(t, `
		procedure Main is
			procedure Bump (N : in out Integer) is
			begin
				N := N + 1;
			end Bump;
			C : constant Integer := 1;
		begin
			Bump (C);
		end Main;
	`)

	if logging.ErrorCount() == 0 {
		t.Error("constant accepted as in out actual")
	}
}

func TestPrivateTypeCompletion(t *testing.T) {
	unit, _ := mustResolve(t, `
		package Cells is
			type Cell;
			type Ref is access Cell;
			type Cell is record
				Value : Integer;
				Next  : Ref;
			end record;
		end Cells;
	`)

	refDecl := unit.Left.List[1]
	designated := refDecl.TypeOf.Designated
	if designated == nil {
		t.Fatal("Ref has no designated type")
	}
	if designated.Kind != typing.KindRecord {
		t.Errorf("designated kind = %d, want record: completion did not patch in place", designated.Kind)
	}
}
