package syntax

// Type declaration and subtype indication parsing.

// parseTypeDeclaration parses `type Name [discriminants] [is def];`.  A
// declaration with no definition is an incomplete (forward) type.
func (p *Parser) parseTypeDeclaration() *Node {
	n := NewNode(NTypeDecl, p.posHere())
	p.expect(TYPE)
	n.Name = p.expectIdentifier()

	if p.at(LPAREN) {
		n.List = p.parseDiscriminantPart()
	}

	if p.accept(SEMICOLON) {
		n.Left = NewNode(NIncompleteDef, n.Pos)
		return n
	}

	p.expect(IS)
	n.Left = p.parseTypeDefinition()
	p.expect(SEMICOLON)
	return n
}

// parseDiscriminantPart parses `(names : Mark [:= default]; ...)`
func (p *Parser) parseDiscriminantPart() []*Node {
	var discs []*Node

	p.expect(LPAREN)
	for {
		p.guardProgress()
		d := NewNode(NComponentDecl, p.posHere())
		d.Names = p.parseIdentifierList()
		p.expect(COLON)
		d.Left = p.parseSubtypeIndication()
		if p.accept(ASSIGN) {
			d.Right = p.parseExpression()
		}
		discs = append(discs, d)
		if !p.accept(SEMICOLON) {
			break
		}
	}
	p.expect(RPAREN)

	return discs
}

// parseSubtypeDeclaration parses `subtype Name is subtype_indication;`
func (p *Parser) parseSubtypeDeclaration() *Node {
	n := NewNode(NSubtypeDecl, p.posHere())
	p.expect(SUBTYPE)
	n.Name = p.expectIdentifier()
	p.expect(IS)
	n.Left = p.parseSubtypeIndication()
	p.expect(SEMICOLON)
	return n
}

// parseTypeDefinition dispatches on the token after `is`
func (p *Parser) parseTypeDefinition() *Node {
	pos := p.posHere()

	switch p.tok.Kind {
	case LPAREN:
		return p.parseEnumDefinition()

	case RANGE:
		p.advance()
		n := NewNode(NIntDef, pos)
		n.Left = p.parseDiscreteRange()
		return n

	case MOD:
		p.advance()
		n := NewNode(NModDef, pos)
		n.Left = p.parseSimpleExpression()
		return n

	case DIGITS:
		p.advance()
		n := NewNode(NFloatDef, pos)
		n.Left = p.parseSimpleExpression()
		if p.accept(RANGE) {
			n.Right = p.parseDiscreteRange()
		}
		return n

	case DELTA:
		p.advance()
		n := NewNode(NFixedDef, pos)
		n.Left = p.parseSimpleExpression()
		if p.accept(RANGE) {
			n.Right = p.parseDiscreteRange()
		}
		return n

	case ARRAY:
		return p.parseArrayDefinition()

	case RECORD, NULLKW:
		return p.parseRecordDefinition()

	case ACCESS:
		p.advance()
		n := NewNode(NAccessDef, pos)
		n.Left = p.parseSubtypeIndication()
		return n

	case NEW:
		p.advance()
		n := NewNode(NDerivedDef, pos)
		n.Left = p.parseSubtypeIndication()
		return n

	case LIMITED:
		p.advance()
		if p.accept(PRIVATE) {
			n := NewNode(NPrivateDef, pos)
			n.Flag = true
			return n
		}
		// `limited record` is also legal
		n := p.parseRecordDefinition()
		n.Flag = true
		return n

	case PRIVATE:
		p.advance()
		return NewNode(NPrivateDef, pos)
	}

	p.errorAtCurrent("expected a type definition but found '" + p.tok.Value + "'")
	return NewNode(NIncompleteDef, pos)
}

// parseEnumDefinition parses `(lit {, lit})` where a literal is an identifier
// or a character literal
func (p *Parser) parseEnumDefinition() *Node {
	n := NewNode(NEnumDef, p.posHere())
	p.expect(LPAREN)

	for {
		p.guardProgress()
		if p.at(CHARLIT) {
			lit := NewNode(NCharLit, p.posHere())
			lit.Tok = p.tok
			lit.Name = p.tok.Value
			p.advance()
			n.Append(lit)
		} else {
			lit := NewNode(NIdentifier, p.posHere())
			lit.Name = p.expectIdentifier()
			n.Append(lit)
		}
		if !p.accept(COMMA) {
			break
		}
	}

	p.expect(RPAREN)
	return n
}

// parseArrayDefinition parses both array forms: the unconstrained
// `array (Mark range <>, ...) of Elem` and the constrained
// `array (discrete_range, ...) of Elem`
func (p *Parser) parseArrayDefinition() *Node {
	n := NewNode(NArrayDef, p.posHere())
	p.expect(ARRAY)
	p.expect(LPAREN)

	for {
		p.guardProgress()
		n.Append(p.parseIndexSpec(n))
		if !p.accept(COMMA) {
			break
		}
	}

	p.expect(RPAREN)
	p.expect(OF)
	n.Right = p.parseSubtypeIndication()
	return n
}

// parseIndexSpec parses one index position.  `Mark range <>` marks the whole
// array unconstrained; mixing box and fixed indexes is rejected later.
func (p *Parser) parseIndexSpec(array *Node) *Node {
	spec := NewNode(NIndexSpec, p.posHere())
	item := p.parseSimpleExpression()

	if p.at(RANGE) {
		p.advance()
		if p.accept(BOX) {
			spec.Left = item
			spec.Flag = true
			array.Flag = true
			return spec
		}

		cons := NewNode(NRangeCons, item.Pos)
		cons.Left = p.parseDiscreteRange()
		ind := NewNode(NSubtypeInd, item.Pos)
		ind.Left = item
		ind.Right = cons
		spec.Left = ind
		return spec
	}

	if p.at(DOTDOT) {
		r := NewNode(NRange, item.Pos)
		r.Left = item
		p.advance()
		r.Right = p.parseSimpleExpression()
		spec.Left = r
		return spec
	}

	spec.Left = item
	return spec
}

// parseRecordDefinition parses `record components [variant] end record` and
// the degenerate `null record`
func (p *Parser) parseRecordDefinition() *Node {
	n := NewNode(NRecordDef, p.posHere())

	if p.accept(NULLKW) {
		p.expect(RECORD)
		return n
	}

	p.expect(RECORD)

	if p.accept(NULLKW) {
		p.expect(SEMICOLON)
		p.expect(END)
		p.expect(RECORD)
		return n
	}

	for !p.at(END) && !p.at(CASE) && !p.at(EOF) {
		p.guardProgress()
		n.Append(p.parseComponentDecl())
	}

	if p.at(CASE) {
		n.Right = p.parseVariantPart()
	}

	p.expect(END)
	p.expect(RECORD)
	return n
}

// parseComponentDecl parses `names : subtype_indication [:= default];`
func (p *Parser) parseComponentDecl() *Node {
	n := NewNode(NComponentDecl, p.posHere())
	n.Names = p.parseIdentifierList()
	p.expect(COLON)
	n.Left = p.parseSubtypeIndication()

	if p.accept(ASSIGN) {
		n.Right = p.parseExpression()
	}

	p.expect(SEMICOLON)
	return n
}

// parseVariantPart parses `case disc is {when choices => components} end
// case;`
func (p *Parser) parseVariantPart() *Node {
	n := NewNode(NVariantPart, p.posHere())
	p.expect(CASE)
	n.Name = p.expectIdentifier()
	p.expect(IS)

	for p.at(WHEN) {
		p.guardProgress()
		v := NewNode(NVariant, p.posHere())
		p.advance()

		for {
			if p.at(OTHERS) {
				v.Append(NewNode(NOthers, p.posHere()))
				p.advance()
			} else {
				v.Append(p.parseChoiceItem())
			}
			if !p.accept(PIPE) {
				break
			}
		}

		p.expect(ARROW)

		if p.accept(NULLKW) {
			p.expect(SEMICOLON)
		} else {
			for !p.at(WHEN) && !p.at(END) && !p.at(EOF) {
				p.guardProgress()
				v.Decls = append(v.Decls, p.parseComponentDecl())
			}
		}

		n.Append(v)
	}

	p.expect(END)
	p.expect(CASE)
	p.expect(SEMICOLON)
	return n
}

// parseSubtypeIndication parses `Mark [constraint]` where the constraint is a
// range, index/discriminant list, digits, or delta constraint
func (p *Parser) parseSubtypeIndication() *Node {
	pos := p.posHere()
	mark := p.parseTypeMark()
	if mark.Kind == NSubtypeInd {
		// the mark carried an index constraint already
		return mark
	}

	n := NewNode(NSubtypeInd, pos)
	n.Left = mark

	switch p.tok.Kind {
	case RANGE:
		p.advance()
		cons := NewNode(NRangeCons, p.posHere())
		cons.Left = p.parseDiscreteRange()
		n.Right = cons

	case DIGITS:
		p.advance()
		cons := NewNode(NDigitsCons, p.posHere())
		cons.Left = p.parseSimpleExpression()
		if p.accept(RANGE) {
			cons.Right = p.parseDiscreteRange()
		}
		n.Right = cons

	case DELTA:
		p.advance()
		cons := NewNode(NDeltaCons, p.posHere())
		cons.Left = p.parseSimpleExpression()
		if p.accept(RANGE) {
			cons.Right = p.parseDiscreteRange()
		}
		n.Right = cons
	}

	return n
}

// parseTypeMark parses a name usable as a type mark.  Index constraints ride
// along as an APPLY wrapper and are split off here.
func (p *Parser) parseTypeMark() *Node {
	mark := p.parseName()

	if mark.Kind == NApply {
		// `String (1 .. 10)` parses as APPLY; recast the arguments as an
		// index constraint on the prefix
		cons := NewNode(NIndexCons, mark.Pos)
		cons.List = mark.List
		ind := NewNode(NSubtypeInd, mark.Pos)
		ind.Left = mark.Left
		ind.Right = cons
		return ind
	}

	return mark
}
