package build

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/eaburns/pretty"

	"adac/arena"
	"adac/common"
	"adac/generate"
	"adac/logging"
	"adac/mods"
	"adac/sem"
	"adac/syntax"
	"adac/typing"
	"adac/walk"
)

// Compiler drives one compilation: parse the input file, pull in the specs
// its context clause names, resolve, and emit the IR module.  Every phase
// checks the error count before the next phase runs.
type Compiler struct {
	rootPath string
	proj     *mods.Project

	// DumpAST prints the parsed tree and stops before resolution
	DumpAST bool

	arena  *arena.Arena
	walker *walk.Walker

	// loaded guards against a spec being parsed twice through diamond
	// `with` clauses
	loaded map[string]bool

	// specs are the resolved context units, in load order; their globals
	// emit into the main unit's module
	specs []*syntax.Node
}

// NewCompiler creates a compiler for one input file under a loaded project
func NewCompiler(rootPath string, proj *mods.Project) *Compiler {
	return &Compiler{
		rootPath: rootPath,
		proj:     proj,
		arena:    arena.New(),
		loaded:   make(map[string]bool),
	}
}

// Compile runs the full pipeline and reports overall success
func (c *Compiler) Compile() bool {
	unit := c.parseFile(c.rootPath)
	if unit == nil || !logging.ShouldProceed() {
		return false
	}

	if c.DumpAST {
		pretty.Indent = "    "
		pretty.Print(unit)
		return true
	}

	lctx := &logging.LogContext{FilePath: c.rootPath}
	c.walker = walk.NewWalker(lctx, sem.NewManager(), typing.NewContext())
	c.walker.Mgr.Top.SuppressedChecks |= c.proj.Suppressed

	c.loadContext(unit)

	logging.LogBeginPhase("Resolving")
	c.walker.WalkUnit(unit)
	logging.LogEndPhase()
	if !logging.ShouldProceed() {
		return false
	}

	logging.LogBeginPhase("Emitting")
	ok := c.emit(unit)
	logging.LogEndPhase()
	return ok && logging.ShouldProceed()
}

// parseFile reads and parses one source file
func (c *Compiler) parseFile(path string) *syntax.Node {
	src, err := ioutil.ReadFile(path)
	if err != nil {
		logging.LogConfigError("File", "unable to read `"+path+"`: "+err.Error())
		return nil
	}

	lctx := &logging.LogContext{FilePath: path}

	logging.LogBeginPhase("Parsing")
	sc := syntax.NewScanner(src, path, c.arena, lctx)
	p := syntax.NewParser(sc, lctx)
	unit := p.Parse()
	logging.LogEndPhase()

	return unit
}

// loadContext probes the search directories for the spec of every package the
// unit's context clause names, and resolves each found spec into the library
// scope.  A missing spec is only a warning: the name may be declared by the
// unit itself or simply misspelled, and resolution will say which.
func (c *Compiler) loadContext(unit *syntax.Node) {
	for _, clause := range unit.List {
		if clause.Kind != syntax.NWithClause {
			continue
		}
		for _, name := range clause.List {
			if name.Kind != syntax.NIdentifier {
				continue
			}
			c.loadSpec(name)
		}
	}
}

func (c *Compiler) loadSpec(name *syntax.Node) {
	folded := common.FoldName(name.Name)
	if c.loaded[folded] {
		return
	}
	c.loaded[folded] = true

	path := c.findSpec(folded)
	if path == "" {
		logging.LogCompileWarning(
			&logging.LogContext{FilePath: c.rootPath},
			"no specification found for `"+name.Name+"` on the search path",
			logging.LMKName, name.Pos)
		return
	}

	spec := c.parseFile(path)
	if spec == nil || !logging.ShouldProceed() {
		return
	}

	// the spec's own context clause loads first
	c.loadContext(spec)

	logging.LogBeginPhase("Resolving")
	c.walker.WalkUnit(spec)
	logging.LogEndPhase()

	c.specs = append(c.specs, spec)
}

// findSpec returns the path of `<name>.ads` in the first search directory
// holding one, or "" when none does
func (c *Compiler) findSpec(folded string) string {
	for _, dir := range c.proj.SearchDirs() {
		path := filepath.Join(dir, folded+common.SpecFileExtension)
		if finfo, err := os.Stat(path); err == nil && !finfo.IsDir() {
			return path
		}
	}
	return ""
}

// emit writes the IR module to the configured output path
func (c *Compiler) emit(unit *syntax.Node) bool {
	out := c.proj.OutputPath
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logging.LogConfigError("File", "unable to create output directory: "+err.Error())
			return false
		}
	}

	f, err := os.Create(out)
	if err != nil {
		logging.LogConfigError("File", "unable to create `"+out+"`: "+err.Error())
		return false
	}
	defer f.Close()

	lctx := &logging.LogContext{FilePath: c.rootPath}
	g := generate.NewGenerator(lctx, c.walker.Mgr, c.walker.Types, c.walker.Exceptions)
	g.Triple = c.proj.TargetTriple
	g.Layout = c.proj.DataLayout
	for _, spec := range c.specs {
		g.AddContext(spec)
	}

	if err := g.Generate(unit, f); err != nil {
		logging.LogConfigError("File", "error writing `"+out+"`: "+err.Error())
		return false
	}
	return true
}

// OutputPath is the path the compiled module lands at
func (c *Compiler) OutputPath() string {
	return c.proj.OutputPath
}
