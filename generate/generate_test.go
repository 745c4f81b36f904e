package generate

import (
	"bytes"
	"strings"
	"testing"

	"adac/arena"
	"adac/logging"
	"adac/sem"
	"adac/syntax"
	"adac/typing"
	"adac/walk"
)

func emitSource(t *testing.T, src string) string {
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

	w := walk.NewWalker(lctx, sem.NewManager(), typing.NewContext())
	w.WalkUnit(unit)
	if logging.ErrorCount() != 0 {
		t.Fatalf("resolution errors:\n%s", strings.Join(logging.Diagnostics(), "\n"))
	}

	g := NewGenerator(lctx, w.Mgr, w.Types, w.Exceptions)
	var buf bytes.Buffer
	if err := g.Generate(unit, &buf); err != nil {
		t.Fatalf("emission failed: %v", err)
	}
	return buf.String()
}

func wantAll(t *testing.T, ir string, fragments ...string) {
	t.Helper()
	for _, f := range fragments {
		if !strings.Contains(ir, f) {
			t.Errorf("emitted IR is missing %q\n\n%s", f, ir)
		}
	}
}

func TestModulePreamble(t *testing.T) {
	ir := emitSource(t, `
		procedure Main is
		begin
			null;
		end Main;
	`)

	wantAll(t, ir,
		"target datalayout",
		"target triple",
		"%fat = type { ptr, { i64, i64 } }",
		"declare i32 @setjmp(ptr) returns_twice",
		"declare ptr @__ada_sec_stack_alloc(i64)",
	)
}

func TestPredefinedExceptionGlobals(t *testing.T) {
	ir := emitSource(t, `
		procedure Main is
		begin
			null;
		end Main;
	`)

	// one identity byte per predefined exception, Constraint_Error first
	idx := strings.Index(ir, "@__exc.constraint_error")
	if idx < 0 {
		t.Fatalf("no constraint_error identity in:\n%s", ir)
	}
	for _, name := range []string{"numeric_error", "program_error", "storage_error", "tasking_error"} {
		pos := strings.Index(ir, "@__exc."+name)
		if pos < 0 {
			t.Errorf("no identity global for %s", name)
		} else if pos < idx {
			t.Errorf("%s emitted before constraint_error", name)
		}
	}
}

func TestStringLiteralInterning(t *testing.T) {
	ir := emitSource(t, `
		procedure Main is
			S : String (1 .. 2) := "Hi";
		begin
			null;
		end Main;
	`)

	wantAll(t, ir, `@.str1 = private unnamed_addr constant [2 x i8] c"Hi"`)
	if strings.Contains(ir, "@.str2") {
		t.Error("single literal interned more than once")
	}
}

func TestOverloadedFunctionsMangleDistinctly(t *testing.T) {
	ir := emitSource(t, `
		procedure Main is
			function F (B : Boolean) return Integer is
			begin
				return 1;
			end F;
			function F (N : Integer) return Integer is
			begin
				return 2;
			end F;
			X : Integer;
		begin
			X := F (True) + F (3);
		end Main;
	`)

	var names []string
	for _, line := range strings.Split(ir, "\n") {
		if strings.HasPrefix(line, "define i64 @main_") {
			name := line[strings.Index(line, "@")+1 : strings.Index(line, "(")]
			names = append(names, name)
		}
	}
	if len(names) != 2 {
		t.Fatalf("expected two definitions of f, found %v", names)
	}
	if names[0] == names[1] {
		t.Errorf("overloads share the emitted name %s", names[0])
	}
}

func TestBranchAndLoopStructure(t *testing.T) {
	ir := emitSource(t, `
		procedure Main is
			X : Integer := 0;
		begin
			while X < 10 loop
				if X = 5 then
					X := 0;
				end if;
				X := X + 1;
			end loop;
		end Main;
	`)

	wantAll(t, ir,
		"loop.head",
		"loop.exit",
		"if.then",
		"if.end",
		"br i1",
	)
}

func TestPredefinedPutLineCall(t *testing.T) {
	ir := emitSource(t, `
		with Ada.Text_IO; use Ada.Text_IO;
		procedure P is
		begin
			Put_Line ("Hi");
		end P;
	`)

	wantAll(t, ir,
		`@.str1 = private unnamed_addr constant [2 x i8] c"Hi"`,
		"call void @__ada_put_line(%fat",
		"declare void @__ada_put_line(%fat)",
	)
}

func TestArrayAggregateFillsOthers(t *testing.T) {
	ir := emitSource(t, `
		procedure Main is
			type Arr is array (1 .. 5) of Integer;
			V : Arr := (1 => 10, others => 0);
		begin
			null;
		end Main;
	`)

	// five 4-byte slots; index 1 lands at offset 0, the fill covers the rest
	wantAll(t, ir,
		"alloca [20 x i8]",
		"trunc i64 10 to i32",
	)
	for _, off := range []string{"4", "8", "12", "16"} {
		found := false
		for _, line := range strings.Split(ir, "\n") {
			if strings.Contains(line, "getelementptr i8") && strings.HasSuffix(line, ", i64 "+off) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no slot write at offset %s\n\n%s", off, ir)
		}
	}
	if n := strings.Count(ir, "trunc i64 0 to i32"); n != 4 {
		t.Errorf("others fill wrote %d slots, want 4\n\n%s", n, ir)
	}
}

func TestExceptionHandlerDispatch(t *testing.T) {
	ir := emitSource(t, `
		procedure Main is
			Trouble : exception;
		begin
			raise Trouble;
		exception
			when Trouble =>
				null;
			when others =>
				null;
		end Main;
	`)

	wantAll(t, ir,
		"call void @__ada_push_handler",
		"call i32 @setjmp",
		"call ptr @__ada_current_exception()",
		"call void @__ada_raise(ptr @__exc.",
		"try.dispatch",
	)
}

func TestRecordEqualityFunctionEmitted(t *testing.T) {
	ir := emitSource(t, `
		procedure Main is
			type Point is record
				X : Integer;
				Y : Integer;
			end record;
			A, B : Point;
			Same : Boolean;
		begin
			Same := A = B;
		end Main;
	`)

	if !strings.Contains(ir, "define i1 @__eq.point.") {
		t.Fatalf("no equality function for the record in:\n%s", ir)
	}
	wantAll(t, ir, "call i1 @__eq.point.")
}

func TestNestedSubprogramReceivesChain(t *testing.T) {
	ir := emitSource(t, `
		procedure Main is
			X : Integer := 1;
			procedure Bump is
			begin
				X := X + 1;
			end Bump;
		begin
			Bump;
		end Main;
	`)

	wantAll(t, ir,
		"alloca [",        // the enclosing frame
		"ptr %__chain",    // the nested definition's leading parameter
		"ptr %__frame)",   // the call site hands the frame over
		"ptr %__chain, i64", // uplevel access GEPs off the chain
	)
}

func TestDivisionCheckGuardsZero(t *testing.T) {
	ir := emitSource(t, `
		procedure Main is
			X : Integer := 7;
			Y : Integer := 2;
		begin
			X := X / Y;
		end Main;
	`)

	wantAll(t, ir, "div.bad", "call void @__ada_raise", "sdiv i64")
}

func TestSuppressedDivisionCheckOmitted(t *testing.T) {
	ir := emitSource(t, `
		procedure Main is
			pragma Suppress (Division_Check);
			X : Integer := 7;
			Y : Integer := 2;
		begin
			X := X / Y;
		end Main;
	`)

	if strings.Contains(ir, "div.bad") {
		t.Errorf("division check emitted despite suppression:\n%s", ir)
	}
	wantAll(t, ir, "sdiv i64")
}

func TestConcatUsesSecondaryStack(t *testing.T) {
	ir := emitSource(t, `
		procedure Main is
			S : String (1 .. 4) := "ab" & "cd";
		begin
			null;
		end Main;
	`)

	wantAll(t, ir,
		"call ptr @__ada_sec_stack_alloc",
		"call void @llvm.memcpy.p0.p0.i64",
	)
}

func TestPackageElaborationFunction(t *testing.T) {
	ir := emitSource(t, `
		package Store is
			Count : Integer := 42;
		end Store;
	`)

	wantAll(t, ir,
		"= global i32 zeroinitializer",
		"define void @__elab.store_S",
	)

	// the global carries the folded, package-prefixed name
	for _, line := range strings.Split(ir, "\n") {
		if strings.HasSuffix(line, "= global i32 zeroinitializer") {
			if !strings.HasPrefix(line, "@store_S") || !strings.Contains(line, "__count_S") {
				t.Errorf("global name not package-qualified: %s", line)
			}
		}
	}
}

func TestStaticExpressionsFold(t *testing.T) {
	ir := emitSource(t, `
		procedure Main is
			X : Integer;
		begin
			X := 2 ** 8 + 1;
		end Main;
	`)

	wantAll(t, ir, "257")
	if strings.Contains(ir, "pow.head") {
		t.Error("static exponent emitted the runtime power loop")
	}
}

func TestMangleEncodesOperatorsAndParents(t *testing.T) {
	pkg := &sem.Symbol{Name: "Stacks", UniqueID: 3}
	plus := &sem.Symbol{Name: "+", UniqueID: 7, Parent: pkg}

	tests := []struct {
		sym  *sem.Symbol
		want string
	}{
		{pkg, "stacks_S3"},
		{plus, "stacks_S3___op_2b_S7"},
		{&sem.Symbol{Name: "Push", UniqueID: 11, Parent: pkg}, "stacks_S3__push_S11"},
		{&sem.Symbol{Name: "", UniqueID: 2}, "_anon_S2"},
	}
	for _, tt := range tests {
		if got := Mangle(tt.sym); got != tt.want {
			t.Errorf("Mangle(%q) = %q, want %q", tt.sym.Name, got, tt.want)
		}
	}
}

func TestBlockLocalGetsDistinctFrameSlot(t *testing.T) {
	ir := emitSource(t, `
		procedure Main is
			X : Integer := 7;
			procedure Bump is
			begin
				X := X + 1;
			end Bump;
		begin
			declare
				Y : Integer := 9;
			begin
				Bump;
			end;
		end Main;
	`)

	// X sits at frame offset 0; the declare-block local must not share it
	wantAll(t, ir,
		"alloca [12 x i8]",
		"getelementptr i8, ptr %__frame, i64 8",
	)
}

func TestMatrixIndexingComputesRowStride(t *testing.T) {
	ir := emitSource(t, `
		procedure Main is
			type Grid is array (1 .. 3, 1 .. 4) of Integer;
			M : Grid;
		begin
			M (2, 3) := 5;
		end Main;
	`)

	// both subscripts rebase, the first scales by the trailing dimension
	wantAll(t, ir,
		"alloca [48 x i8]",
		"= sub i64 2, 1",
		"= sub i64 3, 1",
		", 4",
		"= add i64",
	)
}

func TestLocalPackageBodyEmitsSubprograms(t *testing.T) {
	ir := emitSource(t, `
		procedure Main is
			package Util is
				function Twice (N : Integer) return Integer;
			end Util;
			package body Util is
				function Twice (N : Integer) return Integer is
				begin
					return N * 2;
				end Twice;
			end Util;
			R : Integer;
		begin
			R := Util.Twice (4);
		end Main;
	`)

	found := false
	for _, line := range strings.Split(ir, "\n") {
		if strings.HasPrefix(line, "define i64 @main_S") && strings.Contains(line, "__twice_S") {
			found = true
			if !strings.Contains(line, "ptr %__chain") {
				t.Errorf("package-local body missing the frame parameter: %s", line)
			}
		}
	}
	if !found {
		t.Fatalf("no body emitted for the package-local function:\n%s", ir)
	}
	wantAll(t, ir, "__twice_S")
}

func TestEscapeBytesRendersControlCharacters(t *testing.T) {
	got := escapeBytes("a\"b\\c\n")
	want := `a\22b\5Cc\0A`
	if got != want {
		t.Errorf("escapeBytes = %q, want %q", got, want)
	}
}
