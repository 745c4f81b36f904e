package generate

import (
	"fmt"

	"adac/syntax"
	"adac/typing"
)

// Operator emission.  Overloaded operators were already rebound to user
// functions by the resolver (the apply node carries the symbol); everything
// arriving here is a predefined operation.

func (g *Generator) genBinary(n *syntax.Node) string {
	opType := n.Left.TypeOf
	if opType == nil || typing.IsUniversal(opType) {
		opType = n.Right.TypeOf
	}

	switch n.Tok.Kind {
	case syntax.EQ, syntax.NEQ:
		return g.genEqualityOp(n, opType)
	case syntax.AMP:
		return g.genConcat(n)
	}

	lhs := g.genExpr(n.Left)
	rhs := g.genExpr(n.Right)

	if opType != nil && typing.IsReal(opType.Root()) {
		return g.genFloatBinary(n.Tok.Kind, lhs, rhs)
	}
	return g.genIntBinary(n, lhs, rhs, opType)
}

func (g *Generator) genIntBinary(n *syntax.Node, lhs, rhs string, opType *typing.Type) string {
	switch n.Tok.Kind {
	case syntax.PLUS:
		return g.binOp("add", lhs, rhs)
	case syntax.MINUS:
		return g.binOp("sub", lhs, rhs)
	case syntax.STAR:
		return g.binOp("mul", lhs, rhs)

	case syntax.DIVIDE:
		g.divisionCheck(n, rhs)
		return g.binOp("sdiv", lhs, rhs)

	case syntax.REM:
		g.divisionCheck(n, rhs)
		return g.binOp("srem", lhs, rhs)

	case syntax.MOD:
		// srem, then fold negative results back into the divisor's sign
		g.divisionCheck(n, rhs)
		r := g.binOp("srem", lhs, rhs)
		adj := g.binOp("add", r, rhs)
		m := g.binOp("srem", adj, rhs)
		return m

	case syntax.EXPON:
		return g.genPower(lhs, rhs)

	case syntax.LT:
		return g.cmpOp("slt", lhs, rhs)
	case syntax.LTEQ:
		return g.cmpOp("sle", lhs, rhs)
	case syntax.GT:
		return g.cmpOp("sgt", lhs, rhs)
	case syntax.GTEQ:
		return g.cmpOp("sge", lhs, rhs)

	case syntax.AND:
		return g.binOp("and", lhs, rhs)
	case syntax.OR:
		return g.binOp("or", lhs, rhs)
	case syntax.XOR:
		return g.binOp("xor", lhs, rhs)
	}

	g.emit("; unsupported integer operator")
	return "0"
}

func (g *Generator) genFloatBinary(kind int, lhs, rhs string) string {
	switch kind {
	case syntax.PLUS:
		return g.fbinOp("fadd", lhs, rhs)
	case syntax.MINUS:
		return g.fbinOp("fsub", lhs, rhs)
	case syntax.STAR:
		return g.fbinOp("fmul", lhs, rhs)
	case syntax.DIVIDE:
		return g.fbinOp("fdiv", lhs, rhs)
	case syntax.LT:
		return g.fcmpOp("olt", lhs, rhs)
	case syntax.LTEQ:
		return g.fcmpOp("ole", lhs, rhs)
	case syntax.GT:
		return g.fcmpOp("ogt", lhs, rhs)
	case syntax.GTEQ:
		return g.fcmpOp("oge", lhs, rhs)
	case syntax.EXPON:
		v := g.temp()
		// exponent arrives as i64; pow wants double
		e := g.temp()
		g.emit("%s = sitofp i64 %s to double", e, rhs)
		g.emit("%s = call double @llvm.pow.f64(double %s, double %s)", v, lhs, e)
		return v
	}
	g.emit("; unsupported real operator")
	return "0.0"
}

func (g *Generator) binOp(op, lhs, rhs string) string {
	v := g.temp()
	g.emit("%s = %s i64 %s, %s", v, op, lhs, rhs)
	return v
}

func (g *Generator) fbinOp(op, lhs, rhs string) string {
	v := g.temp()
	g.emit("%s = %s double %s, %s", v, op, lhs, rhs)
	return v
}

// cmpOp compares and widens the i1 result back to the i64 truth carrier
func (g *Generator) cmpOp(cond, lhs, rhs string) string {
	c := g.temp()
	g.emit("%s = icmp %s i64 %s, %s", c, cond, lhs, rhs)
	v := g.temp()
	g.emit("%s = zext i1 %s to i64", v, c)
	return v
}

func (g *Generator) fcmpOp(cond, lhs, rhs string) string {
	c := g.temp()
	g.emit("%s = fcmp %s double %s, %s", c, cond, lhs, rhs)
	v := g.temp()
	g.emit("%s = zext i1 %s to i64", v, c)
	return v
}

// genPower raises by squaring-free iteration; static exponents folded earlier
func (g *Generator) genPower(base, exp string) string {
	acc := g.alloca(g.temp()+".pow", "i64")
	i := g.alloca(g.temp()+".powi", "i64")
	g.emit("store i64 1, ptr %s", acc)
	g.emit("store i64 0, ptr %s", i)

	head := g.label("pow.head")
	body := g.label("pow.body")
	done := g.label("pow.done")

	g.br(head)
	g.emitLabel(head)
	iv := g.temp()
	g.emit("%s = load i64, ptr %s", iv, i)
	c := g.temp()
	g.emit("%s = icmp slt i64 %s, %s", c, iv, exp)
	g.emit("br i1 %s, label %%%s, label %%%s", c, body, done)
	g.fn.terminated = true

	g.emitLabel(body)
	av := g.temp()
	g.emit("%s = load i64, ptr %s", av, acc)
	next := g.temp()
	g.emit("%s = mul i64 %s, %s", next, av, base)
	g.emit("store i64 %s, ptr %s", next, acc)
	in := g.temp()
	g.emit("%s = add i64 %s, 1", in, iv)
	g.emit("store i64 %s, ptr %s", in, i)
	g.br(head)

	g.emitLabel(done)
	v := g.temp()
	g.emit("%s = load i64, ptr %s", v, acc)
	return v
}

// divisionCheck raises Constraint_Error on a zero divisor unless the check
// is suppressed at the operation's site
func (g *Generator) divisionCheck(n *syntax.Node, rhs string) {
	if g.checkSuppressed(n, checkDivisionBit) {
		return
	}

	ok := g.label("div.ok")
	bad := g.label("div.bad")

	c := g.temp()
	g.emit("%s = icmp eq i64 %s, 0", c, rhs)
	g.emit("br i1 %s, label %%%s, label %%%s", c, bad, ok)
	g.fn.terminated = true

	g.emitLabel(bad)
	g.raiseConstraintError()

	g.emitLabel(ok)
}

// genEqualityOp compares scalars directly and composites through their
// implicit equality functions
func (g *Generator) genEqualityOp(n *syntax.Node, opType *typing.Type) string {
	negated := n.Tok.Kind == syntax.NEQ

	if opType != nil && typing.IsComposite(opType.Root()) {
		v := g.genCompositeEquality(n, opType)
		if negated {
			return g.binOp("xor", v, "1")
		}
		return v
	}

	lhs := g.genExpr(n.Left)
	rhs := g.genExpr(n.Right)

	if opType != nil && typing.IsReal(opType.Root()) {
		if negated {
			return g.fcmpOp("one", lhs, rhs)
		}
		return g.fcmpOp("oeq", lhs, rhs)
	}

	if opType != nil && opType.Root().Kind == typing.KindAccess {
		c := g.temp()
		cond := "eq"
		if negated {
			cond = "ne"
		}
		g.emit("%s = icmp %s ptr %s, %s", c, cond, lhs, rhs)
		v := g.temp()
		g.emit("%s = zext i1 %s to i64", v, c)
		return v
	}

	if negated {
		return g.cmpOp("ne", lhs, rhs)
	}
	return g.cmpOp("eq", lhs, rhs)
}

// genCompositeEquality calls the frozen type's equality function, falling
// back to memcmp over the static size
func (g *Generator) genCompositeEquality(n *syntax.Node, opType *typing.Type) string {
	root := opType.Root()

	if isFat(opType) {
		// unconstrained operands: length check plus byte compare
		a := g.genExpr(n.Left)
		b := g.genExpr(n.Right)
		return g.genFatEquality(a, b, elemStride(opType))
	}

	lhs := g.genAddr(n.Left)
	rhs := g.genAddr(n.Right)

	eqName := opType.EqName
	if eqName == "" {
		eqName = root.EqName
	}
	if eqName != "" {
		c := g.temp()
		g.emit("%s = call i1 @%s(ptr %s, ptr %s)", c, eqName, lhs, rhs)
		v := g.temp()
		g.emit("%s = zext i1 %s to i64", v, c)
		return v
	}

	c := g.temp()
	g.emit("%s = call i32 @memcmp(ptr %s, ptr %s, i64 %d)", c, lhs, rhs, root.Size)
	z := g.temp()
	g.emit("%s = icmp eq i32 %s, 0", z, c)
	v := g.temp()
	g.emit("%s = zext i1 %s to i64", v, z)
	return v
}

// genFatEquality compares two fat pointers: equal lengths, then memcmp
func (g *Generator) genFatEquality(a, b string, stride int) string {
	la := g.fatLength(a)
	lb := g.fatLength(b)

	sameLen := g.temp()
	g.emit("%s = icmp eq i64 %s, %s", sameLen, la, lb)

	bytes := g.temp()
	g.emit("%s = mul i64 %s, %d", bytes, la, stride)

	da := g.fatField(a, 0)
	db := g.fatField(b, 0)
	c := g.temp()
	g.emit("%s = call i32 @memcmp(ptr %s, ptr %s, i64 %s)", c, da, db, bytes)
	z := g.temp()
	g.emit("%s = icmp eq i32 %s, 0", z, c)

	both := g.temp()
	g.emit("%s = and i1 %s, %s", both, sameLen, z)
	v := g.temp()
	g.emit("%s = zext i1 %s to i64", v, both)
	return v
}

// genConcat joins two array values into a secondary-stack buffer and returns
// a fat pointer with bounds 1..total
func (g *Generator) genConcat(n *syntax.Node) string {
	stride := elemStride(n.TypeOf)

	a := g.asFat(n.Left)
	b := g.asFat(n.Right)

	la := g.fatLength(a)
	lb := g.fatLength(b)
	total := g.binOp("add", la, lb)

	bytesA := g.binOp("mul", la, fmt.Sprintf("%d", stride))
	bytesB := g.binOp("mul", lb, fmt.Sprintf("%d", stride))
	bytesAll := g.binOp("add", bytesA, bytesB)

	buf := g.temp()
	g.emit("%s = call ptr @__ada_sec_stack_alloc(i64 %s)", buf, bytesAll)

	da := g.fatField(a, 0)
	g.emit("call void @llvm.memcpy.p0.p0.i64(ptr %s, ptr %s, i64 %s, i1 false)", buf, da, bytesA)

	tail := g.temp()
	g.emit("%s = getelementptr i8, ptr %s, i64 %s", tail, buf, bytesA)
	db := g.fatField(b, 0)
	g.emit("call void @llvm.memcpy.p0.p0.i64(ptr %s, ptr %s, i64 %s, i1 false)", tail, db, bytesB)

	return g.makeFat(buf, "1", total)
}

func (g *Generator) genUnary(n *syntax.Node) string {
	v := g.genExpr(n.Left)
	t := n.TypeOf

	if t != nil && typing.IsReal(t.Root()) {
		switch n.Tok.Kind {
		case syntax.MINUS:
			r := g.temp()
			g.emit("%s = fneg double %s", r, v)
			return r
		case syntax.ABS:
			r := g.temp()
			g.emit("%s = call double @llvm.fabs.f64(double %s)", r, v)
			return r
		}
		return v
	}

	switch n.Tok.Kind {
	case syntax.PLUS:
		return v

	case syntax.MINUS:
		r := g.temp()
		g.emit("%s = sub i64 0, %s", r, v)
		return r

	case syntax.ABS:
		neg := g.temp()
		g.emit("%s = icmp slt i64 %s, 0", neg, v)
		flipped := g.temp()
		g.emit("%s = sub i64 0, %s", flipped, v)
		r := g.temp()
		g.emit("%s = select i1 %s, i64 %s, i64 %s", r, neg, flipped, v)
		return r

	case syntax.NOT:
		if t != nil && t.Root().Kind == typing.KindModular {
			mask := t.Root().Modulus - 1
			a := g.binOp("xor", v, fmt.Sprintf("%d", mask))
			return a
		}
		return g.binOp("xor", v, "1")
	}
	return v
}

// genShortCircuit evaluates the right operand only on the deciding path
func (g *Generator) genShortCircuit(n *syntax.Node) string {
	lhs := g.genExpr(n.Left)

	evalRight := g.label("sc.rhs")
	done := g.label("sc.done")

	res := g.alloca(g.temp()+".sc", "i64")
	g.emit("store i64 %s, ptr %s", lhs, res)

	if n.Mode == syntax.AND {
		g.condBr(lhs, evalRight, done)
	} else {
		g.condBr(lhs, done, evalRight)
	}

	g.emitLabel(evalRight)
	rhs := g.genExpr(n.Right)
	g.emit("store i64 %s, ptr %s", rhs, res)
	g.br(done)

	g.emitLabel(done)
	v := g.temp()
	g.emit("%s = load i64, ptr %s", v, res)
	return v
}

// genMembership tests a value against a range or a subtype's bounds
func (g *Generator) genMembership(n *syntax.Node) string {
	v := g.genExpr(n.Left)

	var low, high string
	if n.Right.Kind == syntax.NRange {
		low = g.genExpr(n.Right.Left)
		high = g.genExpr(n.Right.Right)
	} else if t := prefixTypeDescriptor(n.Right); t != nil {
		lo, hi, ok := staticBounds(t)
		if !ok {
			g.emit("; dynamic membership bounds unsupported, true substituted")
			return "1"
		}
		low, high = fmt.Sprintf("%d", lo), fmt.Sprintf("%d", hi)
	} else {
		return "1"
	}

	lowOK := g.temp()
	g.emit("%s = icmp sge i64 %s, %s", lowOK, v, low)
	highOK := g.temp()
	g.emit("%s = icmp sle i64 %s, %s", highOK, v, high)
	both := g.temp()
	g.emit("%s = and i1 %s, %s", both, lowOK, highOK)
	r := g.temp()
	g.emit("%s = zext i1 %s to i64", r, both)

	if n.Flag {
		return g.binOp("xor", r, "1")
	}
	return r
}
