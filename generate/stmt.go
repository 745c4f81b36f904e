package generate

import (
	"fmt"

	"adac/common"
	"adac/syntax"
	"adac/typing"
)

// Statement emission.

func (g *Generator) genStatements(stmts []*syntax.Node) {
	for _, s := range stmts {
		g.genStatement(s)
	}
}

func (g *Generator) genStatement(n *syntax.Node) {
	switch n.Kind {
	case syntax.NNullStmt, syntax.NPragmaNode:

	case syntax.NAssign:
		g.genAssign(n)

	case syntax.NProcCall:
		g.genProcCall(n)

	case syntax.NIfStmt:
		g.genIf(n)

	case syntax.NCaseStmt:
		g.genCase(n)

	case syntax.NLoopStmt:
		g.genLoop(n)

	case syntax.NBlockStmt:
		g.genBlock(n)

	case syntax.NExitStmt:
		g.genExit(n)

	case syntax.NReturnStmt:
		g.genReturn(n)

	case syntax.NGotoStmt:
		g.br("user." + common.FoldName(n.Name))

	case syntax.NLabeled:
		l := "user." + common.FoldName(n.Name)
		g.br(l)
		g.emitLabel(l)
		if n.Left != nil {
			g.genStatement(n.Left)
		}

	case syntax.NRaiseStmt:
		g.genRaise(n)

	case syntax.NDelayStmt, syntax.NAbortStmt, syntax.NAcceptStmt,
		syntax.NSelectStmt, syntax.NCodeStmt:
		g.emit("; tasking statement accepted, not compiled")
	}
}

func (g *Generator) genAssign(n *syntax.Node) {
	addr := g.genAddr(n.Left)
	g.storeInto(addr, n.Right, n.Left.TypeOf)
}

// storeInto writes an expression's value to a target address: aggregates
// build in place, fat values copy through their data pointer, other
// composites block-copy, scalars range-check and store
func (g *Generator) storeInto(addr string, value *syntax.Node, t *typing.Type) {
	if isByRef(t) {
		switch {
		case value.Kind == syntax.NAggregate:
			g.genAggregateInto(addr, value)
		case isFat(value.TypeOf):
			fat := g.genExpr(value)
			data := g.fatField(fat, 0)
			g.emit("call void @llvm.memcpy.p0.p0.i64(ptr %s, ptr %s, i64 %d, i1 false)",
				addr, data, t.Size)
		default:
			g.store(g.genAddr(value), addr, t)
		}
		return
	}

	v := g.genExpr(value)
	if t != nil && typing.IsDiscrete(t.Root()) {
		g.rangeCheck(v, t, value)
	}
	g.store(v, addr, t)
}

func (g *Generator) genProcCall(n *syntax.Node) {
	target := n.Left
	if target.Kind == syntax.NApply {
		if target.Sym != nil {
			g.genCall(target, target.Sym, target.List)
		}
		return
	}
	if n.Sym != nil {
		g.genCall(n, n.Sym, nil)
	}
}

// genIf emits one test block per branch with a shared end label
func (g *Generator) genIf(n *syntax.Node) {
	end := g.label("if.end")

	for _, branch := range n.List {
		if branch.Left == nil {
			// else branch
			g.genStatements(branch.List)
			break
		}

		then := g.label("if.then")
		next := g.label("if.next")

		cond := g.genExpr(branch.Left)
		g.condBr(cond, then, next)

		g.emitLabel(then)
		g.genStatements(branch.List)
		g.br(end)

		g.emitLabel(next)
	}

	g.br(end)
	g.emitLabel(end)
}

// genCase dispatches the selector through a chain of equality and range
// tests; others is the fall-through default
func (g *Generator) genCase(n *syntax.Node) {
	sel := g.genExpr(n.Left)
	end := g.label("case.end")

	var othersAlt *syntax.Node
	type armEntry struct {
		alt   *syntax.Node
		label string
	}
	var arms []armEntry

	for _, alt := range n.List {
		isOthers := false
		for _, choice := range alt.List {
			if choice.Kind == syntax.NOthers {
				isOthers = true
			}
		}
		if isOthers {
			othersAlt = alt
			continue
		}
		arms = append(arms, armEntry{alt, g.label("case.arm")})
	}

	othersLabel := end
	if othersAlt != nil {
		othersLabel = g.label("case.others")
	}

	// test chain
	for _, arm := range arms {
		for _, choice := range arm.alt.List {
			next := g.label("case.test")
			if choice.Kind == syntax.NRange {
				lo := g.genExpr(choice.Left)
				hi := g.genExpr(choice.Right)
				lowOK := g.temp()
				g.emit("%s = icmp sge i64 %s, %s", lowOK, sel, lo)
				highOK := g.temp()
				g.emit("%s = icmp sle i64 %s, %s", highOK, sel, hi)
				both := g.temp()
				g.emit("%s = and i1 %s, %s", both, lowOK, highOK)
				g.emit("br i1 %s, label %%%s, label %%%s", both, arm.label, next)
			} else {
				cv := g.genExpr(choice)
				c := g.temp()
				g.emit("%s = icmp eq i64 %s, %s", c, sel, cv)
				g.emit("br i1 %s, label %%%s, label %%%s", c, arm.label, next)
			}
			g.fn.terminated = true
			g.emitLabel(next)
		}
	}
	g.br(othersLabel)

	for _, arm := range arms {
		g.emitLabel(arm.label)
		g.genStatements(arm.alt.Decls)
		g.br(end)
	}

	if othersAlt != nil {
		g.emitLabel(othersLabel)
		g.genStatements(othersAlt.Decls)
		g.br(end)
	}

	g.emitLabel(end)
}

func (g *Generator) genLoop(n *syntax.Node) {
	head := g.label("loop.head")
	body := g.label("loop.body")
	exit := g.label("loop.exit")

	g.fn.exits = append(g.fn.exits, loopExit{sym: n.Sym, label: exit})
	defer func() { g.fn.exits = g.fn.exits[:len(g.fn.exits)-1] }()

	switch {
	case n.Left == nil:
		g.br(head)
		g.emitLabel(head)
		g.genStatements(n.List)
		g.br(head)

	case n.Left.Kind == syntax.NWhileScheme:
		g.br(head)
		g.emitLabel(head)
		cond := g.genExpr(n.Left.Left)
		g.condBr(cond, body, exit)
		g.emitLabel(body)
		g.genStatements(n.List)
		g.br(head)

	case n.Left.Kind == syntax.NForScheme:
		g.genForLoop(n, head, body, exit)
	}

	g.emitLabel(exit)
}

// genForLoop allocates the loop parameter, initializes it to the entry
// bound, and steps toward the other bound until it is crossed
func (g *Generator) genForLoop(n *syntax.Node, head, body, exit string) {
	scheme := n.Left
	reverse := scheme.Flag

	low, high := g.genIterationBounds(scheme.Left)

	varSym := scheme.Sym
	slot := g.declareLocal(varSym, scheme.TypeOf)

	start, stop := low, high
	if reverse {
		start, stop = high, low
	}
	g.store(start, slot, scheme.TypeOf)

	g.br(head)
	g.emitLabel(head)
	cur := g.load(g.symbolAddr(varSym), scheme.TypeOf)
	cond := g.temp()
	if reverse {
		g.emit("%s = icmp sge i64 %s, %s", cond, cur, stop)
	} else {
		g.emit("%s = icmp sle i64 %s, %s", cond, cur, stop)
	}
	g.emit("br i1 %s, label %%%s, label %%%s", cond, body, exit)
	g.fn.terminated = true

	g.emitLabel(body)
	g.genStatements(n.List)

	step := g.temp()
	cur2 := g.load(g.symbolAddr(varSym), scheme.TypeOf)
	if reverse {
		g.emit("%s = sub i64 %s, 1", step, cur2)
	} else {
		g.emit("%s = add i64 %s, 1", step, cur2)
	}
	g.store(step, g.symbolAddr(varSym), scheme.TypeOf)
	g.br(head)
}

// genIterationBounds produces the low and high operands of a for scheme:
// an explicit range, a type mark, or an array 'Range
func (g *Generator) genIterationBounds(rng *syntax.Node) (string, string) {
	switch {
	case rng.Kind == syntax.NRange:
		return g.genExpr(rng.Left), g.genExpr(rng.Right)

	case rng.Kind == syntax.NAttribute && common.FoldName(rng.Name) == "range":
		if isFat(rng.Left.TypeOf) {
			fat := g.genExpr(rng.Left)
			return g.fatField(fat, 1), g.fatField(fat, 2)
		}
		low := g.genBoundAttr(rng.Left, true)
		high := g.genBoundAttr(rng.Left, false)
		return low, high

	case rng.TypeOf != nil:
		if lo, hi, ok := staticBounds(rng.TypeOf); ok {
			return fmt.Sprintf("%d", lo), fmt.Sprintf("%d", hi)
		}
	}
	return "0", "-1"
}

func (g *Generator) genBlock(n *syntax.Node) {
	if len(n.Handlers) > 0 {
		g.genProtected(n.Decls, n.List, n.Handlers)
		return
	}
	g.genLocalDecls(n.Decls)
	g.genStatements(n.List)
}

func (g *Generator) genExit(n *syntax.Node) {
	if len(g.fn.exits) == 0 {
		return
	}

	target := g.fn.exits[len(g.fn.exits)-1].label
	if n.Sym != nil {
		for _, e := range g.fn.exits {
			if e.sym == n.Sym {
				target = e.label
			}
		}
	}

	if n.Left != nil {
		cond := g.genExpr(n.Left)
		cont := g.label("exit.cont")
		g.condBr(cond, target, cont)
		g.emitLabel(cont)
		return
	}
	g.br(target)
}

func (g *Generator) genReturn(n *syntax.Node) {
	ret := g.fn.sym.ReturnType

	if ret == nil {
		g.emit("ret void")
		g.fn.terminated = true
		return
	}

	if isBuildInPlace(g.fn.sym) {
		// the caller provided the result storage
		src := g.genAddr(n.Left)
		g.emit("call void @llvm.memcpy.p0.p0.i64(ptr %%__bip_access, ptr %s, i64 %d, i1 false)", src, ret.Size)
		g.emit("ret ptr %%__bip_access")
		g.fn.terminated = true
		return
	}

	if isByRef(ret) {
		// copy the result to the secondary stack so it outlives the frame
		src := g.genAddr(n.Left)
		buf := g.temp()
		g.emit("%s = call ptr @__ada_sec_stack_alloc(i64 %d)", buf, ret.Size)
		g.emit("call void @llvm.memcpy.p0.p0.i64(ptr %s, ptr %s, i64 %d, i1 false)", buf, src, ret.Size)
		g.emit("ret ptr %s", buf)
		g.fn.terminated = true
		return
	}

	v := g.genExpr(n.Left)
	vt := valType(ret)
	if vt == "i64" && memType(ret) != "i64" {
		g.rangeCheck(v, ret, n.Left)
	}
	g.emit("ret %s %s", vt, v)
	g.fn.terminated = true
}

func (g *Generator) genRaise(n *syntax.Node) {
	if n.Left == nil || n.Left.Sym == nil {
		g.emit("call void @__ada_reraise()")
	} else {
		g.emit("call void @__ada_raise(ptr @__exc.%s)", Mangle(n.Left.Sym))
	}
	g.emit("unreachable")
	g.fn.terminated = true
}

// genProtected emits a handled sequence of statements: install a jump
// buffer, run the protected region on first entry, dispatch on the current
// exception identity after a non-local jump
func (g *Generator) genProtected(decls, stmts, handlers []*syntax.Node) {
	jbName := g.temp() + ".jb"
	g.alloca(jbName, fmt.Sprintf("[%d x i8]", jmpBufBytes))

	bodyLabel := g.label("try.body")
	dispatch := g.label("try.dispatch")
	end := g.label("try.end")

	g.emit("call void @__ada_push_handler(ptr %s)", jbName)
	r := g.temp()
	g.emit("%s = call i32 @setjmp(ptr %s)", r, jbName)
	first := g.temp()
	g.emit("%s = icmp eq i32 %s, 0", first, r)
	g.emit("br i1 %s, label %%%s, label %%%s", first, bodyLabel, dispatch)
	g.fn.terminated = true

	g.emitLabel(bodyLabel)
	g.genLocalDecls(decls)
	g.genStatements(stmts)
	g.emit("call void @__ada_pop_handler()")
	g.br(end)

	g.emitLabel(dispatch)
	cur := g.temp()
	g.emit("%s = call ptr @__ada_current_exception()", cur)

	type handlerArm struct {
		node  *syntax.Node
		label string
	}
	var arms []handlerArm
	for _, h := range handlers {
		arms = append(arms, handlerArm{h, g.label("try.handler")})
	}

	for i, h := range handlers {
		matched := false
		for _, choice := range h.List {
			if choice.Kind == syntax.NOthers {
				g.br(arms[i].label)
				matched = true
				break
			}
			if choice.Sym == nil {
				continue
			}
			next := g.label("try.test")
			c := g.temp()
			g.emit("%s = icmp eq ptr %s, @__exc.%s", c, cur, Mangle(choice.Sym))
			g.emit("br i1 %s, label %%%s, label %%%s", c, arms[i].label, next)
			g.fn.terminated = true
			g.emitLabel(next)
		}
		if matched {
			break
		}
	}
	if !g.fn.terminated {
		g.emit("call void @__ada_reraise()")
		g.emit("unreachable")
		g.fn.terminated = true
	}

	for _, arm := range arms {
		g.emitLabel(arm.label)
		g.genStatements(arm.node.Decls)
		g.br(end)
	}

	g.emitLabel(end)
}
