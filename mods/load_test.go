package mods

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"adac/logging"
	"adac/sem"
)

func writeProject(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "ada-proj.toml")
	if err := ioutil.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return filepath.Join(dir, "main.adb")
}

func TestLoadProjectDefaults(t *testing.T) {
	logging.Initialize("silent")
	dir := t.TempDir()

	proj, ok := LoadProject(filepath.Join(dir, "main.adb"))
	if !ok {
		t.Fatal("a missing project file must not be an error")
	}
	if proj.Name != filepath.Base(dir) {
		t.Errorf("default name = %q, want the directory name", proj.Name)
	}
	if proj.OutputPath != "output.ll" {
		t.Errorf("default output = %q", proj.OutputPath)
	}
	if proj.TargetTriple != "" || proj.Suppressed != 0 {
		t.Error("defaults must leave target and suppressions empty")
	}
}

func TestLoadProjectFile(t *testing.T) {
	logging.Initialize("silent")
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "specs"), 0755); err != nil {
		t.Fatal(err)
	}

	src := writeProject(t, dir, `
name = "calculator"
target-triple = "aarch64-unknown-linux-gnu"
include-dirs = ["specs"]
output = "calc.ll"
suppress = ["Range_Check", "division_check"]
`)

	proj, ok := LoadProject(src)
	if !ok {
		t.Fatal("valid project file rejected")
	}
	if proj.Name != "calculator" {
		t.Errorf("name = %q", proj.Name)
	}
	if proj.TargetTriple != "aarch64-unknown-linux-gnu" {
		t.Errorf("triple = %q", proj.TargetTriple)
	}
	if proj.OutputPath != "calc.ll" {
		t.Errorf("output = %q", proj.OutputPath)
	}
	if len(proj.IncludeDirs) != 1 || proj.IncludeDirs[0] != filepath.Join(dir, "specs") {
		t.Errorf("include dirs = %v", proj.IncludeDirs)
	}
	if proj.Suppressed != sem.CheckRange|sem.CheckDivision {
		t.Errorf("suppressed mask = %#x", proj.Suppressed)
	}
}

func TestLoadProjectUnknownCheck(t *testing.T) {
	logging.Initialize("silent")
	dir := t.TempDir()
	src := writeProject(t, dir, `suppress = ["bogus_check"]`)

	if _, ok := LoadProject(src); ok {
		t.Error("unknown check name accepted")
	}
}

func TestLoadProjectMissingIncludeDir(t *testing.T) {
	logging.Initialize("silent")
	dir := t.TempDir()
	src := writeProject(t, dir, `include-dirs = ["no_such_dir"]`)

	if _, ok := LoadProject(src); ok {
		t.Error("nonexistent include directory accepted")
	}
}

func TestSearchDirsStartWithRoot(t *testing.T) {
	proj := &Project{RootDir: "/work", IncludeDirs: []string{"/work/specs"}}
	dirs := proj.SearchDirs()
	if len(dirs) != 2 || dirs[0] != "/work" || dirs[1] != "/work/specs" {
		t.Errorf("search order = %v", dirs)
	}
}
