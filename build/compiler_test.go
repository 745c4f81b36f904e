package build

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"adac/logging"
	"adac/mods"
)

func writeSource(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func compileIn(t *testing.T, dir, mainFile string) (string, bool) {
	t.Helper()
	logging.Initialize("silent")

	proj, ok := mods.LoadProject(mainFile)
	if !ok {
		t.Fatal("project load failed")
	}
	proj.OutputPath = filepath.Join(dir, "out.ll")

	c := NewCompiler(mainFile, proj)
	success := c.Compile()

	var ir string
	if data, err := ioutil.ReadFile(proj.OutputPath); err == nil {
		ir = string(data)
	}
	return ir, success
}

func TestCompileProducesModule(t *testing.T) {
	dir := t.TempDir()
	main := writeSource(t, dir, "main.adb", `
		procedure Main is
			X : Integer := 1;
		begin
			X := X + 1;
		end Main;
	`)

	ir, ok := compileIn(t, dir, main)
	if !ok {
		t.Fatalf("compilation failed:\n%s", strings.Join(logging.Diagnostics(), "\n"))
	}
	if !strings.Contains(ir, "target triple") || !strings.Contains(ir, "define void @main_S") {
		t.Errorf("output module incomplete:\n%s", ir)
	}
}

func TestCompileLoadsWithedSpec(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "counter.ads", `
		package Counter is
			Count : Integer := 0;
			procedure Reset;
		end Counter;
	`)
	main := writeSource(t, dir, "main.adb", `
		with Counter;
		procedure Main is
		begin
			Counter.Count := 3;
		end Main;
	`)

	ir, ok := compileIn(t, dir, main)
	if !ok {
		t.Fatalf("compilation failed:\n%s", strings.Join(logging.Diagnostics(), "\n"))
	}
	if !strings.Contains(ir, "@counter_S") {
		t.Errorf("withed package's global missing from the module:\n%s", ir)
	}
}

func TestMissingSpecIsNonFatal(t *testing.T) {
	dir := t.TempDir()
	main := writeSource(t, dir, "main.adb", `
		with Nowhere;
		procedure Main is
		begin
			null;
		end Main;
	`)

	_, ok := compileIn(t, dir, main)
	if !ok {
		t.Fatalf("a missing spec must not abort the build:\n%s",
			strings.Join(logging.Diagnostics(), "\n"))
	}
}

func TestSyntaxErrorStopsBeforeEmission(t *testing.T) {
	dir := t.TempDir()
	main := writeSource(t, dir, "main.adb", `
		procedure Main is
		begin
			X :=
		end Main;
	`)

	_, ok := compileIn(t, dir, main)
	if ok {
		t.Error("compilation reported success on a syntax error")
	}
	if logging.ErrorCount() == 0 {
		t.Error("no diagnostics for a syntax error")
	}
}

func TestProjectTargetOverridesHeader(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "ada-proj.toml", `target-triple = "riscv64-unknown-elf"`)
	main := writeSource(t, dir, "main.adb", `
		procedure Main is
		begin
			null;
		end Main;
	`)

	ir, ok := compileIn(t, dir, main)
	if !ok {
		t.Fatalf("compilation failed:\n%s", strings.Join(logging.Diagnostics(), "\n"))
	}
	if !strings.Contains(ir, `target triple = "riscv64-unknown-elf"`) {
		t.Errorf("project triple not applied:\n%s", ir)
	}
}
