package generate

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"adac/logging"
	"adac/sem"
	"adac/syntax"
	"adac/typing"
)

// Generator walks a resolved compilation unit and writes textual LLVM IR.
// Emission is strictly post-resolution: every node it visits already carries
// its symbol and type annotations.
type Generator struct {
	lctx  *logging.LogContext
	mgr   *sem.Manager
	types *typing.Context

	// exceptions is the resolver's declaration-ordered exception list; one
	// identity global is emitted per entry
	exceptions []*sem.Symbol

	// Triple and Layout override the default emission target when non-empty
	Triple string
	Layout string

	// module sections, concatenated in layout order on flush
	globals bytes.Buffer // user-defined globals
	code    bytes.Buffer // function definitions
	strs    bytes.Buffer // string-literal constants, appended at module end

	strCount   int
	labelCount int

	// imports collects the imported subprograms the emitted code calls; each
	// gets one declare line at module end
	imports map[string]*sem.Symbol

	// fn is the function currently being emitted, nil at module scope
	fn *funcState

	// deferred queues nested subprogram bodies; they emit after their
	// enclosing function's body completes
	deferred []deferredBody

	// contextUnits are specs pulled in through with clauses; their globals,
	// subprograms, and elaboration emit into the same module as the main unit
	contextUnits []*syntax.Node
}

type deferredBody struct {
	sym  *sem.Symbol
	node *syntax.Node

	// nested reports whether the body receives a caller frame pointer
	nested bool
}

// funcState is the per-function emission state.  Allocas collect in head so
// they always land in the entry block; everything else goes to body.
type funcState struct {
	sym  *sem.Symbol
	head bytes.Buffer
	body bytes.Buffer

	ssa int

	// hasFrame means locals live in a contiguous %__frame buffer because the
	// subprogram declares nested subprograms
	hasFrame bool

	// nested means the function received a ptr %__chain leading parameter
	nested bool

	// exits is the stack of open loops: exit statements branch to the
	// innermost (or named) entry
	exits []loopExit

	// terminated is set after an unconditional transfer so no instructions
	// are appended to a closed block
	terminated bool

	// indirectParams marks parameters whose slot stores an address rather
	// than a value (out and in out modes, by-reference composites)
	indirectParams map[*sem.Symbol]bool
}

type loopExit struct {
	sym   *sem.Symbol
	label string
}

// NewGenerator creates a generator over the resolver's outputs
func NewGenerator(lctx *logging.LogContext, mgr *sem.Manager, tctx *typing.Context, exceptions []*sem.Symbol) *Generator {
	return &Generator{
		lctx: lctx, mgr: mgr, types: tctx, exceptions: exceptions,
		imports: make(map[string]*sem.Symbol),
	}
}

// Generate emits the whole module for one compilation unit in the fixed
// section order: layout header, runtime externs, exception identities,
// implicit equality functions, user code, string constants.
func (g *Generator) Generate(unit *syntax.Node, out io.Writer) error {
	if _, err := io.WriteString(out, g.moduleHeader()); err != nil {
		return err
	}

	for _, exc := range g.exceptions {
		fmt.Fprintf(&g.globals, "@__exc.%s = private constant i8 0\n", Mangle(exc))
	}
	g.globals.WriteByte('\n')

	for _, t := range g.types.Frozen {
		g.genEquality(t)
	}

	for _, cu := range g.contextUnits {
		if cu != nil && cu.Left != nil {
			g.genLibraryUnit(cu.Left)
		}
	}
	if unit != nil && unit.Left != nil {
		g.genLibraryUnit(unit.Left)
	}
	g.flushDeferred()

	if _, err := g.globals.WriteTo(out); err != nil {
		return err
	}
	if _, err := g.code.WriteTo(out); err != nil {
		return err
	}
	if err := g.writeImportDecls(out); err != nil {
		return err
	}
	_, err := g.strs.WriteTo(out)
	return err
}

// writeImportDecls declares every imported subprogram the module calls
func (g *Generator) writeImportDecls(out io.Writer) error {
	names := make([]string, 0, len(g.imports))
	for name := range g.imports {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sym := g.imports[name]
		var params []string
		for _, p := range sym.Params {
			params = append(params, paramIRType(p))
		}
		ret := "void"
		if sym.ReturnType != nil {
			ret = returnIRType(sym.ReturnType)
		}
		line := fmt.Sprintf("declare %s @%s(%s)\n", ret, name, strings.Join(params, ", "))
		if _, err := io.WriteString(out, line); err != nil {
			return err
		}
	}
	return nil
}

// AddContext registers a resolved spec unit for emission ahead of the main
// unit
func (g *Generator) AddContext(unit *syntax.Node) {
	g.contextUnits = append(g.contextUnits, unit)
}

// genLibraryUnit dispatches the outermost declaration of a compilation unit
func (g *Generator) genLibraryUnit(n *syntax.Node) {
	switch n.Kind {
	case syntax.NSubpBody:
		g.genFunction(n.Sym, n, false)
	case syntax.NPackageDecl:
		g.genPackageDecl(n)
	case syntax.NPackageBody:
		g.genPackageBody(n)
	case syntax.NSeparateBody:
		if n.Right != nil {
			g.genLibraryUnit(n.Right)
		}
	}
}

// flushDeferred drains the nested-body queue; a queued body can enqueue more
func (g *Generator) flushDeferred() {
	for len(g.deferred) > 0 {
		d := g.deferred[0]
		g.deferred = g.deferred[1:]
		g.genFunction(d.sym, d.node, d.nested)
	}
}

// -----------------------------------------------------------------------------
// emission primitives

// temp mints the next SSA temporary of the current function
func (g *Generator) temp() string {
	g.fn.ssa++
	return fmt.Sprintf("%%t%d", g.fn.ssa)
}

// label mints a fresh basic-block label
func (g *Generator) label(hint string) string {
	g.labelCount++
	return fmt.Sprintf("%s%d", hint, g.labelCount)
}

func (g *Generator) emit(format string, a ...interface{}) {
	if g.fn.terminated {
		return
	}
	fmt.Fprintf(&g.fn.body, "  "+format+"\n", a...)
}

// emitLabel opens a basic block, reopening emission after a terminator
func (g *Generator) emitLabel(l string) {
	fmt.Fprintf(&g.fn.body, "%s:\n", l)
	g.fn.terminated = false
}

// br emits an unconditional branch and closes the block
func (g *Generator) br(l string) {
	g.emit("br label %%%s", l)
	g.fn.terminated = true
}

// condBr lowers an i64 truth value to a conditional branch
func (g *Generator) condBr(cond64, ifTrue, ifFalse string) {
	c := g.temp()
	g.emit("%s = icmp ne i64 %s, 0", c, cond64)
	g.emit("br i1 %s, label %%%s, label %%%s", c, ifTrue, ifFalse)
	g.fn.terminated = true
}

// alloca reserves entry-block storage and returns its name
func (g *Generator) alloca(name, irType string) string {
	fmt.Fprintf(&g.fn.head, "  %s = alloca %s\n", name, irType)
	return name
}

// internString adds one private string constant and returns its global name
func (g *Generator) internString(data string) string {
	g.strCount++
	name := fmt.Sprintf("@.str%d", g.strCount)
	fmt.Fprintf(&g.strs, "%s = private unnamed_addr constant [%d x i8] c\"%s\"\n",
		name, len(data), escapeBytes(data))
	return name
}

// escapeBytes renders a byte string in LLVM c"..." escape form
func escapeBytes(s string) string {
	var b bytes.Buffer
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c < 0x7f && c != '"' && c != '\\' {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "\\%02X", c)
		}
	}
	return b.String()
}
