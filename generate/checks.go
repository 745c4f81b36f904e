package generate

import (
	"adac/sem"
	"adac/syntax"
	"adac/typing"
)

// Run-time checks.  Each check consults the suppression mask merged from the
// operand's symbol, its type, the enclosing subprograms, and the library
// scope before emitting anything.

const (
	checkRangeBit    = sem.CheckRange
	checkDivisionBit = sem.CheckDivision
	checkIndexBit    = sem.CheckIndex
	checkAccessBit   = sem.CheckAccess
)

// checkSuppressed reports whether a check bit is suppressed at the site of
// the given node
func (g *Generator) checkSuppressed(n *syntax.Node, bit uint32) bool {
	mask := g.mgr.Top.SuppressedChecks
	if g.fn != nil {
		for s := g.fn.sym; s != nil; s = s.Parent {
			mask |= s.SuppressedChecks
		}
	}
	if n != nil && n.Sym != nil {
		mask |= n.Sym.SuppressedChecks
	}
	if n != nil && n.TypeOf != nil {
		mask |= n.TypeOf.SuppressedChecks
		mask |= n.TypeOf.Root().SuppressedChecks
	}
	return mask&bit != 0
}

// raiseConstraintError raises the predefined Constraint_Error and closes the
// block
func (g *Generator) raiseConstraintError() {
	g.emit("call void @__ada_raise(ptr @__exc.%s)", Mangle(g.constraintError()))
	g.emit("unreachable")
	g.fn.terminated = true
}

// constraintError is the predefined exception symbol, always the first entry
// of the resolver's list
func (g *Generator) constraintError() *sem.Symbol {
	return g.exceptions[0]
}

// rangeCheck tests a computed value against a constrained scalar subtype's
// static bounds before a store
func (g *Generator) rangeCheck(val string, t *typing.Type, site *syntax.Node) {
	if t == nil || !typing.IsDiscrete(t.Root()) {
		return
	}
	if g.checkSuppressed(site, checkRangeBit) {
		return
	}

	lo, hi, ok := staticBounds(t)
	if !ok {
		return
	}
	rlo, rhi, rok := staticBounds(t.Root())
	if rok && lo == rlo && hi == rhi {
		return // the subtype imposes nothing beyond its base
	}

	okLabel := g.label("rng.ok")
	badLabel := g.label("rng.bad")

	lowOK := g.temp()
	g.emit("%s = icmp sge i64 %s, %d", lowOK, val, lo)
	highOK := g.temp()
	g.emit("%s = icmp sle i64 %s, %d", highOK, val, hi)
	both := g.temp()
	g.emit("%s = and i1 %s, %s", both, lowOK, highOK)
	g.emit("br i1 %s, label %%%s, label %%%s", both, okLabel, badLabel)
	g.fn.terminated = true

	g.emitLabel(badLabel)
	g.raiseConstraintError()

	g.emitLabel(okLabel)
}

// accessCheck raises on a null dereference
func (g *Generator) accessCheck(ptr string, site *syntax.Node) {
	if g.checkSuppressed(site, checkAccessBit) {
		return
	}

	okLabel := g.label("acc.ok")
	badLabel := g.label("acc.bad")

	isNull := g.temp()
	g.emit("%s = icmp eq ptr %s, null", isNull, ptr)
	g.emit("br i1 %s, label %%%s, label %%%s", isNull, badLabel, okLabel)
	g.fn.terminated = true

	g.emitLabel(badLabel)
	g.raiseConstraintError()

	g.emitLabel(okLabel)
}
