package syntax

// Expression parsing by precedence climbing.  The levels, low to high:
// logical, relational, additive, multiplicative, exponential, unary, primary.

// parseExpression parses the logical level: `and`, `or`, `xor`, and the
// short-circuit forms `and then` / `or else`, which the parser synthesizes
// from two tokens
func (p *Parser) parseExpression() *Node {
	left := p.parseRelation()

	for {
		switch p.tok.Kind {
		case AND:
			op := p.tok
			p.advance()
			if p.accept(THEN) {
				n := NewNode(NShortCircuit, left.Pos)
				n.Mode = AND
				n.Left = left
				n.Right = p.parseRelation()
				left = n
			} else {
				left = p.binary(op, left, p.parseRelation())
			}
		case OR:
			op := p.tok
			p.advance()
			if p.accept(ELSE) {
				n := NewNode(NShortCircuit, left.Pos)
				n.Mode = OR
				n.Left = left
				n.Right = p.parseRelation()
				left = n
			} else {
				left = p.binary(op, left, p.parseRelation())
			}
		case XOR:
			op := p.tok
			p.advance()
			left = p.binary(op, left, p.parseRelation())
		default:
			return left
		}
	}
}

// parseRelation parses relational operators and membership tests.  `not in`
// is recognized by lookahead when `not` appears at this level.
func (p *Parser) parseRelation() *Node {
	left := p.parseSimpleExpression()

	switch p.tok.Kind {
	case EQ, NEQ, LT, LTEQ, GT, GTEQ:
		op := p.tok
		p.advance()
		return p.binary(op, left, p.parseSimpleExpression())

	case IN:
		p.advance()
		return p.membership(left, false)

	case NOT:
		p.advance()
		if p.expect(IN) {
			return p.membership(left, true)
		}
		return left
	}

	return left
}

// membership parses the right side of `[not] in`: either a type mark or a
// low..high range
func (p *Parser) membership(left *Node, negated bool) *Node {
	n := NewNode(NMembership, left.Pos)
	n.Left = left
	n.Flag = negated
	n.Right = p.parseDiscreteRange()
	return n
}

// parseSimpleExpression parses the additive level along with the leading
// sign: `+`, `-`, `&`
func (p *Parser) parseSimpleExpression() *Node {
	var left *Node

	if p.at(PLUS) || p.at(MINUS) {
		op := p.tok
		p.advance()
		operand := p.parseTerm()
		u := NewNode(NUnary, tokenPos(op))
		u.Tok = op
		u.Left = operand
		left = u
	} else {
		left = p.parseTerm()
	}

	for p.at(PLUS) || p.at(MINUS) || p.at(AMP) {
		op := p.tok
		p.advance()
		left = p.binary(op, left, p.parseTerm())
	}

	return left
}

// parseTerm parses the multiplicative level: `*`, `/`, `mod`, `rem`
func (p *Parser) parseTerm() *Node {
	left := p.parseFactor()

	for p.at(STAR) || p.at(DIVIDE) || p.at(MOD) || p.at(REM) {
		op := p.tok
		p.advance()
		left = p.binary(op, left, p.parseFactor())
	}

	return left
}

// parseFactor parses `**` (right-associative) and the unary forms `abs` and
// `not`
func (p *Parser) parseFactor() *Node {
	if p.at(ABS) || p.at(NOT) {
		op := p.tok
		p.advance()
		u := NewNode(NUnary, tokenPos(op))
		u.Tok = op
		u.Left = p.parseFactor()
		return u
	}

	left := p.parsePrimary()

	if p.at(EXPON) {
		op := p.tok
		p.advance()
		// right-associative: recurse at the same level
		return p.binary(op, left, p.parseFactor())
	}

	return left
}

// parsePrimary parses literals, names, aggregates, allocators, and
// parenthesized expressions
func (p *Parser) parsePrimary() *Node {
	pos := p.posHere()

	switch p.tok.Kind {
	case INTLIT:
		n := NewNode(NIntLit, pos)
		n.Tok = p.tok
		p.advance()
		return p.parsePostfix(n)

	case REALLIT:
		n := NewNode(NRealLit, pos)
		n.Tok = p.tok
		p.advance()
		return n

	case CHARLIT:
		n := NewNode(NCharLit, pos)
		n.Tok = p.tok
		p.advance()
		return n

	case STRINGLIT:
		n := NewNode(NStringLit, pos)
		n.Tok = p.tok
		p.advance()
		return p.parsePostfix(n)

	case NULLKW:
		p.advance()
		return NewNode(NNullLit, pos)

	case NEW:
		return p.parseAllocator()

	case IDENTIFIER:
		return p.parseName()

	case LPAREN:
		return p.parseAggregateOrParen()
	}

	p.errorAtCurrent("expected an expression but found '" + p.tok.Value + "'")
	return NewNode(NNullLit, pos)
}

// binary builds a binary operator node
func (p *Parser) binary(op *Token, left, right *Node) *Node {
	n := NewNode(NBinary, left.Pos)
	n.Tok = op
	n.Left = left
	n.Right = right
	return n
}

// parseName parses an identifier followed by the uniform postfix forms
func (p *Parser) parseName() *Node {
	pos := p.posHere()
	n := NewNode(NIdentifier, pos)
	n.Name = p.expectIdentifier()
	return p.parsePostfix(n)
}

// parsePostfix extends any primary with the uniform postfix loop:
// `.selector`, `.all`, `'attribute`, `'(expr)` qualification, and `(args)`.
// Call, index, slice, and conversion all come out as a single APPLY node;
// the resolver disambiguates from the prefix's meaning.
func (p *Parser) parsePostfix(prefix *Node) *Node {
	for {
		switch p.tok.Kind {
		case DOT:
			p.advance()
			if p.accept(ALL) {
				n := NewNode(NDeref, prefix.Pos)
				n.Left = prefix
				prefix = n
				continue
			}

			n := NewNode(NSelected, prefix.Pos)
			n.Left = prefix
			if p.at(CHARLIT) {
				// selected character literal: Pkg.'x'
				n.Name = p.tok.Value
				p.advance()
			} else if p.at(STRINGLIT) {
				// selected operator symbol: Pkg."+"
				n.Name = p.tok.StrValue
				p.advance()
			} else {
				n.Name = p.expectIdentifier()
			}
			prefix = n

		case TICK:
			p.advance()
			if p.at(LPAREN) {
				// qualified expression: Mark'(expr or aggregate)
				n := NewNode(NQualified, prefix.Pos)
				n.Left = prefix
				n.Right = p.parseAggregateOrParen()
				prefix = n
				continue
			}

			n := NewNode(NAttribute, prefix.Pos)
			n.Left = prefix
			switch p.tok.Kind {
			case IDENTIFIER:
				n.Name = p.tok.Value
				p.advance()
			case RANGE, DIGITS, DELTA, ACCESS:
				// attribute designators that collide with reserved words
				n.Name = p.tok.Value
				p.advance()
			default:
				p.errorAtCurrent("expected attribute designator after '''")
			}
			prefix = n

		case LPAREN:
			n := NewNode(NApply, prefix.Pos)
			n.Left = prefix
			p.advance()
			n.List = p.parseAssociations()
			p.expect(RPAREN)
			prefix = n

		default:
			return prefix
		}
	}
}

// parseAllocator parses `new Mark` and `new Mark'(init)`
func (p *Parser) parseAllocator() *Node {
	n := NewNode(NAllocator, p.posHere())
	p.expect(NEW)
	n.Left = p.parseSubtypeIndication()

	if p.accept(TICK) {
		n.Right = p.parseAggregateOrParen()
	}

	return n
}

// parseAggregateOrParen parses a parenthesized form.  A single positional
// association with no choices is a parenthesized expression; everything else
// is an aggregate.
func (p *Parser) parseAggregateOrParen() *Node {
	pos := p.posHere()
	p.expect(LPAREN)
	assocs := p.parseAssociations()
	p.expect(RPAREN)

	if len(assocs) == 1 && assocs[0].Kind == NAssociation &&
		len(assocs[0].List) == 0 && assocs[0].Right != nil &&
		assocs[0].Right.Kind != NRange {
		return assocs[0].Right
	}

	agg := NewNode(NAggregate, pos)
	agg.List = assocs
	return agg
}

// parseAssociations is the one association-list parser shared by aggregates,
// calls, instantiations, and discriminant constraints.  Each association is
// positional, named (`name => value`), or by choices (`a | b | 1..3 =>
// value`).
func (p *Parser) parseAssociations() []*Node {
	var assocs []*Node

	if p.at(RPAREN) {
		return assocs
	}

	for {
		p.guardProgress()
		assocs = append(assocs, p.parseAssociation())
		if !p.accept(COMMA) {
			break
		}
	}

	return assocs
}

// parseAssociation parses one association
func (p *Parser) parseAssociation() *Node {
	n := NewNode(NAssociation, p.posHere())

	if p.at(OTHERS) {
		others := NewNode(NOthers, p.posHere())
		p.advance()
		n.Append(others)
		p.expect(ARROW)
		n.Right = p.parseExpression()
		return n
	}

	first := p.parseChoiceItem()

	if p.at(PIPE) || p.at(ARROW) {
		n.Append(first)
		for p.accept(PIPE) {
			if p.at(OTHERS) {
				n.Append(NewNode(NOthers, p.posHere()))
				p.advance()
			} else {
				n.Append(p.parseChoiceItem())
			}
		}
		p.expect(ARROW)
		n.Right = p.parseExpression()
		return n
	}

	// positional: no choices, the item is the value itself
	n.Right = first
	return n
}

// parseChoiceItem parses one choice: an expression or a discrete range
func (p *Parser) parseChoiceItem() *Node {
	expr := p.parseSimpleExpression()

	if p.at(DOTDOT) {
		r := NewNode(NRange, expr.Pos)
		r.Left = expr
		p.advance()
		r.Right = p.parseSimpleExpression()
		return r
	}

	return expr
}

// parseDiscreteRange parses either `low .. high` or a (possibly constrained)
// type mark used as a range
func (p *Parser) parseDiscreteRange() *Node {
	expr := p.parseSimpleExpression()

	if p.at(DOTDOT) {
		r := NewNode(NRange, expr.Pos)
		r.Left = expr
		p.advance()
		r.Right = p.parseSimpleExpression()
		return r
	}

	if p.at(RANGE) {
		// `Mark range low .. high`
		p.advance()
		cons := NewNode(NRangeCons, expr.Pos)
		cons.Left = p.parseDiscreteRange()
		ind := NewNode(NSubtypeInd, expr.Pos)
		ind.Left = expr
		ind.Right = cons
		return ind
	}

	return expr
}
