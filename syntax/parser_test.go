package syntax

import (
	"testing"

	"adac/arena"
	"adac/logging"
)

func parseSource(t *testing.T, src string) (*Node, *Parser) {
	t.Helper()
	logging.Initialize("silent")

	a := arena.New()
	sc := NewScanner([]byte(src), "test.adb", a, &logging.LogContext{FilePath: "test.adb"})
	p := NewParser(sc, &logging.LogContext{FilePath: "test.adb"})
	return p.Parse(), p
}

func mustParse(t *testing.T, src string) *Node {
	t.Helper()
	unit, p := parseSource(t, src)
	if p.HadError() {
		t.Fatalf("unexpected syntax errors in:\n%s", src)
	}
	return unit
}

func TestParseProcedureBody(t *testing.T) {
	unit := mustParse(t, `
		procedure Main is
			X : Integer := 0;
		begin
			X := X + 1;
		end Main;
	`)

	body := unit.Left
	if body == nil || body.Kind != NSubpBody {
		t.Fatal("library unit is not a subprogram body")
	}
	if body.Left.Name != "Main" || body.Left.Flag {
		t.Error("spec name or kind wrong")
	}
	if len(body.Decls) != 1 || body.Decls[0].Kind != NObjectDecl {
		t.Fatal("declarative part wrong")
	}
	if len(body.List) != 1 || body.List[0].Kind != NAssign {
		t.Fatal("statement part wrong")
	}
}

func TestParseContextClause(t *testing.T) {
	unit := mustParse(t, `
		with Text_IO, Util;
		use Text_IO;
		procedure Main is begin null; end;
	`)

	if len(unit.List) != 2 {
		t.Fatalf("context clause length = %d, want 2", len(unit.List))
	}
	if unit.List[0].Kind != NWithClause || len(unit.List[0].List) != 2 {
		t.Error("with clause wrong")
	}
	if unit.List[1].Kind != NUseClause {
		t.Error("use clause wrong")
	}
}

func TestParsePackageSpec(t *testing.T) {
	unit := mustParse(t, `
		package Stacks is
			type Stack is private;
			procedure Push (S : in out Stack; V : Integer);
		private
			type Stack is record
				Top : Integer := 0;
			end record;
		end Stacks;
	`)

	pkg := unit.Left
	if pkg.Kind != NPackageDecl || pkg.Name != "Stacks" {
		t.Fatal("not a package declaration")
	}
	if len(pkg.List) != 2 {
		t.Fatalf("visible part has %d declarations, want 2", len(pkg.List))
	}
	if len(pkg.Decls) != 1 || pkg.Decls[0].Kind != NTypeDecl {
		t.Fatal("private part wrong")
	}
	if pkg.List[0].Left.Kind != NPrivateDef {
		t.Error("visible view of Stack is not private")
	}
}

func TestParseTypeDefinitions(t *testing.T) {
	tests := []struct {
		src  string
		kind int
	}{
		{"type Color is (Red, Green, Blue);", NEnumDef},
		{"type Count is range 0 .. 100;", NIntDef},
		{"type Byte is mod 256;", NModDef},
		{"type Real is digits 6;", NFloatDef},
		{"type Money is delta 0.01 range 0.0 .. 1.0E6;", NFixedDef},
		{"type Vec is array (1 .. 10) of Float;", NArrayDef},
		{"type Buf is array (Positive range <>) of Character;", NArrayDef},
		{"type Pair is record A, B : Integer; end record;", NRecordDef},
		{"type Ref is access Pair;", NAccessDef},
		{"type Derived is new Integer;", NDerivedDef},
		{"type Opaque is limited private;", NPrivateDef},
		{"type Fwd;", NIncompleteDef},
	}

	for _, tt := range tests {
		unit := mustParse(t, "package P is "+tt.src+" end P;")
		decl := unit.Left.List[0]
		if decl.Kind != NTypeDecl {
			t.Errorf("%q: not a type declaration", tt.src)
			continue
		}
		if decl.Left.Kind != tt.kind {
			t.Errorf("%q: definition kind = %d, want %d", tt.src, decl.Left.Kind, tt.kind)
		}
	}
}

func TestParseUnconstrainedArrayFlag(t *testing.T) {
	unit := mustParse(t, "package P is type S is array (Positive range <>) of Character; end P;")
	def := unit.Left.List[0].Left
	if !def.Flag {
		t.Error("box-bounded array not flagged unconstrained")
	}
	if len(def.List) != 1 || !def.List[0].Flag {
		t.Error("index spec not flagged box form")
	}
}

func TestParseVariantRecord(t *testing.T) {
	unit := mustParse(t, `
		package P is
			type Shape (Kind : Integer) is record
				Area : Float;
				case Kind is
					when 0 => Radius : Float;
					when others => null;
				end case;
			end record;
		end P;
	`)

	decl := unit.Left.List[0]
	if len(decl.List) != 1 {
		t.Fatal("discriminant part missing")
	}
	def := decl.Left
	if def.Kind != NRecordDef || def.Right == nil || def.Right.Kind != NVariantPart {
		t.Fatal("variant part missing")
	}
	if len(def.Right.List) != 2 {
		t.Errorf("variant count = %d, want 2", len(def.Right.List))
	}
}

func TestParseExpressionShapes(t *testing.T) {
	unit := mustParse(t, `
		procedure Main is
			B : Boolean;
		begin
			B := A < 3 and then C(1).D'First > 2;
			B := X in 1 .. 10;
			B := Y not in Natural;
			B := -2 ** 2 = -4;
		end Main;
	`)

	stmts := unit.Left.List

	if stmts[0].Right.Kind != NShortCircuit || stmts[0].Right.Mode != AND {
		t.Error("and-then did not become a short-circuit node")
	}
	m := stmts[1].Right
	if m.Kind != NMembership || m.Flag {
		t.Error("membership test wrong")
	}
	if nm := stmts[2].Right; nm.Kind != NMembership || !nm.Flag {
		t.Error("negated membership wrong")
	}

	// unary minus binds below **: -(2**2)
	neg := stmts[3].Right.Left
	if neg.Kind != NUnary || neg.Left.Kind != NBinary || neg.Left.Tok.Kind != EXPON {
		t.Error("operator precedence of unary minus vs ** wrong")
	}
}

func TestParseApplyUniform(t *testing.T) {
	// call, index, and conversion all come out as APPLY
	unit := mustParse(t, `
		procedure Main is begin
			X := F(1, 2);
			Y := Table(I);
			Z := Integer(R);
			P.Q(A => 1, B => 2);
		end Main;
	`)

	for i := 0; i < 3; i++ {
		if unit.Left.List[i].Right.Kind != NApply {
			t.Errorf("statement %d did not produce an apply node", i)
		}
	}

	call := unit.Left.List[3]
	if call.Kind != NProcCall || call.Left.Kind != NApply {
		t.Fatal("procedure call statement wrong")
	}
	if len(call.Left.List) != 2 || len(call.Left.List[0].List) == 0 {
		t.Error("named associations wrong")
	}
}

func TestParseAggregate(t *testing.T) {
	unit := mustParse(t, `
		procedure Main is begin
			V := (1, 2, 3);
			W := (1 .. 3 => 0, others => 1);
			P := (X => 1.0, Y => 2.0);
			E := (A + B);
		end Main;
	`)

	stmts := unit.Left.List
	if stmts[0].Right.Kind != NAggregate {
		t.Error("positional aggregate wrong")
	}
	agg := stmts[1].Right
	if agg.Kind != NAggregate || agg.List[0].List[0].Kind != NRange {
		t.Error("range choice aggregate wrong")
	}
	if stmts[2].Right.Kind != NAggregate {
		t.Error("named aggregate wrong")
	}
	// a single positional association is just a parenthesized expression
	if stmts[3].Right.Kind != NBinary {
		t.Error("parenthesized expression misparsed as aggregate")
	}
}

func TestParseControlFlow(t *testing.T) {
	unit := mustParse(t, `
		procedure Main is begin
			if A then null; elsif B then null; else null; end if;
			case N is
				when 1 | 2 => null;
				when 3 .. 5 => null;
				when others => null;
			end case;
			Outer: for I in reverse 1 .. 10 loop
				exit Outer when I = 5;
			end loop Outer;
			while Going loop null; end loop;
			declare
				T : Integer;
			begin
				null;
			exception
				when Constraint_Error => null;
				when others => null;
			end;
		end Main;
	`)

	stmts := unit.Left.List

	ifs := stmts[0]
	if ifs.Kind != NIfStmt || len(ifs.List) != 3 || ifs.List[2].Left != nil {
		t.Error("if ladder wrong")
	}

	cs := stmts[1]
	if cs.Kind != NCaseStmt || len(cs.List) != 3 {
		t.Fatal("case statement wrong")
	}
	if len(cs.List[0].List) != 2 {
		t.Error("choice list `1 | 2` wrong")
	}
	if cs.List[1].List[0].Kind != NRange {
		t.Error("range choice wrong")
	}

	loop := stmts[2]
	if loop.Kind != NLoopStmt || loop.Name != "Outer" {
		t.Fatal("labeled loop wrong")
	}
	if loop.Left.Kind != NForScheme || !loop.Left.Flag {
		t.Error("reverse for scheme wrong")
	}
	exit := loop.List[0]
	if exit.Kind != NExitStmt || exit.Name != "Outer" || exit.Left == nil {
		t.Error("exit statement wrong")
	}

	if stmts[3].Left.Kind != NWhileScheme {
		t.Error("while scheme wrong")
	}

	block := stmts[4]
	if block.Kind != NBlockStmt || len(block.Decls) != 1 || len(block.Handlers) != 2 {
		t.Error("declare block wrong")
	}
}

func TestParseOperatorFunction(t *testing.T) {
	unit := mustParse(t, `
		function "+" (L, R : Pair) return Pair is
		begin
			return (L.X + R.X, L.Y + R.Y);
		end "+";
	`)

	spec := unit.Left.Left
	if spec.Name != "+" || !spec.Flag {
		t.Errorf("operator designator = %q", spec.Name)
	}
	if len(spec.List) != 1 || len(spec.List[0].Names) != 2 {
		t.Error("formal part wrong")
	}
}

func TestParseGenericUnit(t *testing.T) {
	unit := mustParse(t, `
		generic
			Size : in Integer := 10;
			type Item is private;
			with function Less (A, B : Item) return Boolean;
		package Sets is
			procedure Insert (V : Item);
		end Sets;
	`)

	gen := unit.Left
	if gen.Kind != NGenericDecl || len(gen.List) != 3 {
		t.Fatalf("generic formal count = %d, want 3", len(gen.List))
	}
	if gen.List[0].Mode != IDENTIFIER || gen.List[1].Mode != TYPE || gen.List[2].Mode != WITH {
		t.Error("formal kinds wrong")
	}
	if gen.Left.Kind != NPackageDecl {
		t.Error("generic unit is not a package")
	}
}

func TestParseInstantiation(t *testing.T) {
	unit := mustParse(t, `
		package Int_Sets is new Sets (Size => 20, Item => Integer, Less => "<");
	`)

	inst := unit.Left
	if inst.Kind != NInstanceDecl || inst.Name != "Int_Sets" {
		t.Fatal("instantiation wrong")
	}
	if inst.Left.Kind != NApply || len(inst.Left.List) != 3 {
		t.Error("actual part wrong")
	}
}

func TestParseFunctionInstantiation(t *testing.T) {
	unit := mustParse(t, `
		function Int_Id is new Identity (Elem => Integer);
	`)

	inst := unit.Left
	if inst.Kind != NInstanceDecl || inst.Name != "Int_Id" {
		t.Fatalf("instantiation wrong: kind %d name %q", inst.Kind, inst.Name)
	}
	if inst.Right == nil || !inst.Right.Flag {
		t.Error("instantiated spec lost its function marking")
	}
}

func TestParseSeparateUnits(t *testing.T) {
	unit := mustParse(t, `
		separate (Parent)
		procedure Child is begin null; end Child;
	`)
	if unit.Left.Kind != NSeparateBody || unit.Left.Right.Kind != NSubpBody {
		t.Error("separate body wrong")
	}

	unit = mustParse(t, `
		package body P is
			procedure Child;
			procedure Child is separate;
		end P;
	`)
	if unit.Left.Decls[1].Kind != NSeparateStub {
		t.Error("body stub wrong")
	}
}

func TestParseEndNameMismatchRecoverable(t *testing.T) {
	unit, p := parseSource(t, `
		procedure Main is begin null; end Wrong;
	`)

	if !p.HadError() {
		t.Fatal("end-name mismatch not reported")
	}
	// the error is recoverable: the tree is still complete
	if unit.Left == nil || unit.Left.Kind != NSubpBody || len(unit.Left.List) != 1 {
		t.Error("mismatch error damaged the tree")
	}
}

func TestParseBadTokenNeverLoops(t *testing.T) {
	// a token no rule accepts must not hang the parser
	srcs := []string{
		"procedure Main is begin ) ) ) null; end;",
		"package P is ; ; ; end P;",
		"procedure Main is begin X := ; end;",
		") ) )",
	}

	for _, src := range srcs {
		// the no-progress guard guarantees termination; a regression here
		// shows up as a test timeout
		unit, p := parseSource(t, src)
		if !p.HadError() {
			t.Errorf("%q parsed without errors", src)
		}
		if unit == nil {
			t.Errorf("%q produced a nil unit", src)
		}
	}
}

func TestParseRenamesAndExceptions(t *testing.T) {
	unit := mustParse(t, `
		package P is
			Overflow : exception;
			Fail : exception renames Overflow;
			Count : Integer renames Shared.Counter;
		end P;
	`)

	decls := unit.Left.List
	if decls[0].Kind != NExceptionDecl {
		t.Error("exception declaration wrong")
	}
	if decls[1].Kind != NRenamesDecl || decls[1].Right != nil {
		t.Error("exception renaming wrong")
	}
	if decls[2].Kind != NRenamesDecl || decls[2].Right == nil {
		t.Error("object renaming wrong")
	}
}
