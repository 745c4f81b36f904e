package syntax

// Statement parsing.

// stmtStop is the set of tokens that end a statement sequence
var stmtStop = map[int]bool{
	END: true, ELSIF: true, ELSE: true, WHEN: true, EXCEPTION: true,
	OR: true, EOF: true,
}

// parseStatements parses a statement sequence until a terminator
func (p *Parser) parseStatements() []*Node {
	var stmts []*Node

	for !stmtStop[p.tok.Kind] {
		p.guardProgress()
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
	}

	return stmts
}

// parseStatement parses a single statement
func (p *Parser) parseStatement() *Node {
	switch p.tok.Kind {
	case NULLKW:
		n := NewNode(NNullStmt, p.posHere())
		p.advance()
		p.expect(SEMICOLON)
		return n

	case IF:
		return p.parseIfStatement()

	case CASE:
		return p.parseCaseStatement()

	case LOOP, WHILE, FOR:
		return p.parseLoopStatement("")

	case DECLARE, BEGIN:
		return p.parseBlockStatement("")

	case EXIT:
		return p.parseExitStatement()

	case RETURN:
		n := NewNode(NReturnStmt, p.posHere())
		p.advance()
		if !p.at(SEMICOLON) {
			n.Left = p.parseExpression()
		}
		p.expect(SEMICOLON)
		return n

	case GOTO:
		n := NewNode(NGotoStmt, p.posHere())
		p.advance()
		n.Name = p.expectIdentifier()
		p.expect(SEMICOLON)
		return n

	case RAISE:
		n := NewNode(NRaiseStmt, p.posHere())
		p.advance()
		if !p.at(SEMICOLON) {
			n.Left = p.parseName()
		}
		p.expect(SEMICOLON)
		return n

	case DELAY:
		n := NewNode(NDelayStmt, p.posHere())
		p.advance()
		n.Left = p.parseExpression()
		p.expect(SEMICOLON)
		return n

	case ABORT:
		n := NewNode(NAbortStmt, p.posHere())
		p.advance()
		for {
			n.Append(p.parseName())
			if !p.accept(COMMA) {
				break
			}
		}
		p.expect(SEMICOLON)
		return n

	case ACCEPT:
		return p.parseAcceptStatement()

	case SELECT:
		return p.parseSelectStatement()

	case PRAGMA:
		return p.parsePragma()

	case LLABEL:
		return p.parseLabeledStatement()

	case IDENTIFIER:
		return p.parseSimpleStatement()
	}

	p.errorAtCurrent("expected a statement but found '" + p.tok.Value + "'")
	return nil
}

// parseSimpleStatement parses the statements that begin with a name: an
// assignment, a procedure or entry call, or a labeled loop or block
func (p *Parser) parseSimpleStatement() *Node {
	name := p.parseName()

	// `Label : loop` and `Label : declare` name the construct
	if p.at(COLON) && name.Kind == NIdentifier {
		p.advance()
		switch p.tok.Kind {
		case LOOP, WHILE, FOR:
			return p.parseLoopStatement(name.Name)
		case DECLARE, BEGIN:
			return p.parseBlockStatement(name.Name)
		}
		p.errorAtCurrent("expected 'loop', 'declare', or 'begin' after label")
		return nil
	}

	if p.at(ASSIGN) {
		n := NewNode(NAssign, name.Pos)
		n.Left = name
		p.advance()
		n.Right = p.parseExpression()
		p.expect(SEMICOLON)
		return n
	}

	n := NewNode(NProcCall, name.Pos)
	n.Left = name
	p.expect(SEMICOLON)
	return n
}

// parseIfStatement parses the if/elsif/else ladder into a flat branch list;
// the else branch has a nil condition
func (p *Parser) parseIfStatement() *Node {
	n := NewNode(NIfStmt, p.posHere())
	p.expect(IF)

	branch := NewNode(NIfBranch, p.posHere())
	branch.Left = p.parseExpression()
	p.expect(THEN)
	branch.List = p.parseStatements()
	n.Append(branch)

	for p.at(ELSIF) {
		p.guardProgress()
		p.advance()
		b := NewNode(NIfBranch, p.posHere())
		b.Left = p.parseExpression()
		p.expect(THEN)
		b.List = p.parseStatements()
		n.Append(b)
	}

	if p.accept(ELSE) {
		b := NewNode(NIfBranch, p.posHere())
		b.List = p.parseStatements()
		n.Append(b)
	}

	p.expect(END)
	p.expect(IF)
	p.expect(SEMICOLON)
	return n
}

// parseCaseStatement parses `case expr is {when choices => stmts} end case;`
func (p *Parser) parseCaseStatement() *Node {
	n := NewNode(NCaseStmt, p.posHere())
	p.expect(CASE)
	n.Left = p.parseExpression()
	p.expect(IS)

	for p.at(WHEN) {
		p.guardProgress()
		alt := NewNode(NCaseAlt, p.posHere())
		p.advance()

		for {
			if p.at(OTHERS) {
				alt.Append(NewNode(NOthers, p.posHere()))
				p.advance()
			} else {
				alt.Append(p.parseChoiceItem())
			}
			if !p.accept(PIPE) {
				break
			}
		}

		p.expect(ARROW)
		alt.Decls = p.parseStatements()
		n.Append(alt)
	}

	p.expect(END)
	p.expect(CASE)
	p.expect(SEMICOLON)
	return n
}

// parseLoopStatement parses the three loop forms under an optional label
func (p *Parser) parseLoopStatement(label string) *Node {
	n := NewNode(NLoopStmt, p.posHere())
	n.Name = label

	switch p.tok.Kind {
	case WHILE:
		scheme := NewNode(NWhileScheme, p.posHere())
		p.advance()
		scheme.Left = p.parseExpression()
		n.Left = scheme

	case FOR:
		scheme := NewNode(NForScheme, p.posHere())
		p.advance()
		scheme.Name = p.expectIdentifier()
		p.expect(IN)
		scheme.Flag = p.accept(REVERSE)
		scheme.Left = p.parseDiscreteRange()
		n.Left = scheme
	}

	p.expect(LOOP)
	n.List = p.parseStatements()
	p.expect(END)
	p.expect(LOOP)
	p.checkEndName(label)
	p.expect(SEMICOLON)
	return n
}

// parseBlockStatement parses `[declare decls] begin stmts [exception
// handlers] end;` under an optional label
func (p *Parser) parseBlockStatement(label string) *Node {
	n := NewNode(NBlockStmt, p.posHere())
	n.Name = label

	if p.accept(DECLARE) {
		n.Decls = p.parseDeclarativePart()
	}

	p.expect(BEGIN)
	n.List = p.parseStatements()

	if p.accept(EXCEPTION) {
		n.Handlers = p.parseHandlers()
	}

	p.expect(END)
	p.checkEndName(label)
	p.expect(SEMICOLON)
	return n
}

// parseExitStatement parses `exit [loop_name] [when cond];`
func (p *Parser) parseExitStatement() *Node {
	n := NewNode(NExitStmt, p.posHere())
	p.expect(EXIT)

	if p.at(IDENTIFIER) {
		n.Name = p.tok.Value
		p.advance()
	}

	if p.accept(WHEN) {
		n.Left = p.parseExpression()
	}

	p.expect(SEMICOLON)
	return n
}

// parseLabeledStatement parses `<<name>> statement`
func (p *Parser) parseLabeledStatement() *Node {
	n := NewNode(NLabeled, p.posHere())
	p.expect(LLABEL)
	n.Name = p.expectIdentifier()
	p.expect(RLABEL)
	n.Left = p.parseStatement()
	return n
}

// parseAcceptStatement parses the accept syntax in full; tasking is accepted
// but not compiled
func (p *Parser) parseAcceptStatement() *Node {
	n := NewNode(NAcceptStmt, p.posHere())
	p.expect(ACCEPT)
	n.Name = p.expectIdentifier()

	if p.at(LPAREN) {
		n.List = p.parseFormalPart()
	}

	if p.accept(DO) {
		n.Decls = p.parseStatements()
		p.expect(END)
		p.checkEndName(n.Name)
	}

	p.expect(SEMICOLON)
	return n
}

// parseSelectStatement accepts the select syntax loosely: alternatives are
// statement sequences separated by `or` and `else`, closed by `end select;`
func (p *Parser) parseSelectStatement() *Node {
	n := NewNode(NSelectStmt, p.posHere())
	p.expect(SELECT)

	for {
		p.guardProgress()
		if p.accept(WHEN) {
			p.parseExpression()
			p.expect(ARROW)
		}
		n.Append(&Node{Kind: NBlockStmt, Pos: p.posHere(), List: p.parseStatements()})
		if p.accept(OR) {
			continue
		}
		if p.accept(ELSE) {
			n.Append(&Node{Kind: NBlockStmt, Pos: p.posHere(), List: p.parseStatements()})
		}
		break
	}

	p.expect(END)
	p.expect(SELECT)
	p.expect(SEMICOLON)
	return n
}
