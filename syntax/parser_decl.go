package syntax

import (
	"adac/logging"
)

// Declaration parsing: declarative parts, objects, types, subprograms,
// packages, generics, and tasks.

// declStop is the set of tokens that terminate a declarative part
var declStop = map[int]bool{
	BEGIN: true, END: true, PRIVATE: true, EOF: true,
}

// parseDeclarativePart parses declarations until a part terminator
func (p *Parser) parseDeclarativePart() []*Node {
	var decls []*Node

	for !declStop[p.tok.Kind] {
		p.guardProgress()

		d := p.parseDeclaration()
		if d == nil {
			if declStop[p.tok.Kind] {
				break
			}
			continue
		}
		decls = append(decls, d)
	}

	return decls
}

// parseDeclaration parses a single declaration
func (p *Parser) parseDeclaration() *Node {
	switch p.tok.Kind {
	case TYPE:
		return p.parseTypeDeclaration()
	case SUBTYPE:
		return p.parseSubtypeDeclaration()
	case PROCEDURE, FUNCTION:
		return p.parseSubprogram()
	case PACKAGE:
		return p.parsePackage()
	case TASK:
		return p.parseTask()
	case GENERIC:
		return p.parseGeneric()
	case USE:
		return p.parseUseClause()
	case PRAGMA:
		return p.parsePragma()
	case FOR:
		return p.parseRepClause()
	case IDENTIFIER:
		return p.parseObjectOrRenames()
	}

	p.errorAtCurrent("expected a declaration but found '" + p.tok.Value + "'")
	return nil
}

// parseIdentifierList parses `name {, name}` into identifier nodes
func (p *Parser) parseIdentifierList() []*Node {
	var names []*Node

	for {
		n := NewNode(NIdentifier, p.posHere())
		n.Name = p.expectIdentifier()
		names = append(names, n)
		if !p.accept(COMMA) {
			break
		}
	}

	return names
}

// parseObjectOrRenames parses the declarations that open with an identifier
// list: object declarations, named numbers, exception declarations, and
// renaming declarations
func (p *Parser) parseObjectOrRenames() *Node {
	pos := p.posHere()
	names := p.parseIdentifierList()
	p.expect(COLON)

	// exception declaration
	if p.at(EXCEPTION) {
		p.advance()
		if p.accept(RENAMES) {
			n := NewNode(NRenamesDecl, pos)
			n.Names = names
			n.Left = p.parseName()
			p.expect(SEMICOLON)
			return n
		}
		n := NewNode(NExceptionDecl, pos)
		n.Names = names
		p.expect(SEMICOLON)
		return n
	}

	constant := p.accept(CONSTANT)

	// named number: `X : constant := expr;`
	if constant && p.at(ASSIGN) {
		p.advance()
		n := NewNode(NNumberDecl, pos)
		n.Names = names
		n.Right = p.parseExpression()
		p.expect(SEMICOLON)
		return n
	}

	var subtype *Node
	if p.at(ARRAY) {
		// anonymous array subtype
		subtype = p.parseArrayDefinition()
	} else {
		subtype = p.parseSubtypeIndication()
	}

	// object renaming: `X : T renames Y;`
	if p.accept(RENAMES) {
		n := NewNode(NRenamesDecl, pos)
		n.Names = names
		n.Right = subtype
		n.Left = p.parseName()
		p.expect(SEMICOLON)
		return n
	}

	n := NewNode(NObjectDecl, pos)
	n.Names = names
	n.Left = subtype
	n.Flag = constant

	if p.accept(ASSIGN) {
		n.Right = p.parseExpression()
	}

	p.expect(SEMICOLON)
	return n
}

// -----------------------------------------------------------------------------
// subprograms

// parseSubprogramSpec parses `procedure Name [params]` or `function
// Designator [params] return Mark`
func (p *Parser) parseSubprogramSpec() *Node {
	n := NewNode(NSubpSpec, p.posHere())

	if p.accept(FUNCTION) {
		n.Flag = true
		if p.at(STRINGLIT) {
			// operator designator: function "+" (...)
			n.Name = p.tok.StrValue
			p.advance()
		} else {
			n.Name = p.expectIdentifier()
		}
	} else {
		p.expect(PROCEDURE)
		n.Name = p.expectIdentifier()
	}

	if p.at(LPAREN) {
		n.List = p.parseFormalPart()
	}

	// a generic function instantiation (`function F is new ...`) has no
	// return part; everything else does
	if n.Flag && !p.at(IS) {
		if p.expect(RETURN) {
			n.Right = p.parseName()
		}
	}

	return n
}

// parseFormalPart parses `(param_spec {; param_spec})`
func (p *Parser) parseFormalPart() []*Node {
	var params []*Node

	p.expect(LPAREN)
	for {
		p.guardProgress()
		params = append(params, p.parseParamSpec())
		if !p.accept(SEMICOLON) {
			break
		}
	}
	p.expect(RPAREN)

	return params
}

// parseParamSpec parses `names : [in] [out] Mark [:= default]`.  Multi-name
// specs expand into one parameter per name during resolution.
func (p *Parser) parseParamSpec() *Node {
	n := NewNode(NParamSpec, p.posHere())
	n.Names = p.parseIdentifierList()
	p.expect(COLON)

	n.Mode = ModeIn
	if p.accept(IN) {
		if p.accept(OUT) {
			n.Mode = ModeInOut
		}
	} else if p.accept(OUT) {
		n.Mode = ModeOut
	}

	n.Left = p.parseSubtypeIndication()

	if p.accept(ASSIGN) {
		n.Right = p.parseExpression()
	}

	return n
}

// parseSubprogram parses everything that starts with a subprogram spec: a
// declaration, a body, a renaming, a stub, or a generic instantiation
func (p *Parser) parseSubprogram() *Node {
	pos := p.posHere()
	spec := p.parseSubprogramSpec()

	if p.accept(SEMICOLON) {
		n := NewNode(NSubpDecl, pos)
		n.Left = spec
		return n
	}

	if p.accept(RENAMES) {
		n := NewNode(NRenamesDecl, pos)
		name := NewNode(NIdentifier, spec.Pos)
		name.Name = spec.Name
		n.Names = []*Node{name}
		n.Right = spec
		n.Left = p.parseName()
		p.expect(SEMICOLON)
		return n
	}

	p.expect(IS)

	if p.accept(SEPARATE) {
		n := NewNode(NSeparateStub, pos)
		n.Left = spec
		p.expect(SEMICOLON)
		return n
	}

	if p.accept(NEW) {
		n := NewNode(NInstanceDecl, pos)
		n.Name = spec.Name
		n.Mode = NSubpSpec
		n.Right = spec
		n.Left = p.parseName()
		p.expect(SEMICOLON)
		return n
	}

	body := NewNode(NSubpBody, pos)
	body.Left = spec
	body.Decls = p.parseDeclarativePart()
	p.expect(BEGIN)
	body.List = p.parseStatements()

	if p.accept(EXCEPTION) {
		body.Handlers = p.parseHandlers()
	}

	p.expect(END)
	p.checkEndName(spec.Name)
	p.expect(SEMICOLON)

	return body
}

// parseHandlers parses `when choice {| choice} => statements` sequences
func (p *Parser) parseHandlers() []*Node {
	var handlers []*Node

	for p.at(WHEN) {
		p.guardProgress()
		h := NewNode(NCaseAlt, p.posHere())
		p.advance()

		for {
			if p.at(OTHERS) {
				h.Append(NewNode(NOthers, p.posHere()))
				p.advance()
			} else {
				h.Append(p.parseName())
			}
			if !p.accept(PIPE) {
				break
			}
		}

		p.expect(ARROW)
		h.Decls = p.parseStatements()
		handlers = append(handlers, h)
	}

	return handlers
}

// -----------------------------------------------------------------------------
// packages

// parsePackage parses package declarations, bodies, renamings, and
// instantiations
func (p *Parser) parsePackage() *Node {
	pos := p.posHere()
	p.expect(PACKAGE)

	if p.accept(BODY) {
		return p.parsePackageBody(pos)
	}

	name := p.expectIdentifier()

	if p.accept(RENAMES) {
		n := NewNode(NRenamesDecl, pos)
		id := NewNode(NIdentifier, pos)
		id.Name = name
		n.Names = []*Node{id}
		n.Left = p.parseName()
		p.expect(SEMICOLON)
		return n
	}

	p.expect(IS)

	if p.accept(NEW) {
		n := NewNode(NInstanceDecl, pos)
		n.Name = name
		n.Mode = NPackageDecl
		n.Left = p.parseName()
		p.expect(SEMICOLON)
		return n
	}

	n := NewNode(NPackageDecl, pos)
	n.Name = name

	for !declStop[p.tok.Kind] {
		p.guardProgress()
		if d := p.parseDeclaration(); d != nil {
			n.Append(d)
		}
	}

	if p.accept(PRIVATE) {
		n.Decls = p.parseDeclarativePart()
	}

	p.expect(END)
	p.checkEndName(name)
	p.expect(SEMICOLON)

	return n
}

// parsePackageBody parses `package body Name is ... end;` after the keywords
func (p *Parser) parsePackageBody(pos *logging.TextPosition) *Node {
	n := NewNode(NPackageBody, pos)
	n.Name = p.expectIdentifier()
	p.expect(IS)

	n.Decls = p.parseDeclarativePart()

	if p.accept(BEGIN) {
		n.List = p.parseStatements()
		if p.accept(EXCEPTION) {
			n.Handlers = p.parseHandlers()
		}
	}

	p.expect(END)
	p.checkEndName(n.Name)
	p.expect(SEMICOLON)

	return n
}

// -----------------------------------------------------------------------------
// generics

// parseGeneric parses a generic declaration: the formal part followed by a
// package or subprogram declaration (or body, for generic bodies)
func (p *Parser) parseGeneric() *Node {
	n := NewNode(NGenericDecl, p.posHere())
	p.expect(GENERIC)

	for !p.at(PACKAGE) && !p.at(PROCEDURE) && !p.at(FUNCTION) && !p.at(EOF) {
		p.guardProgress()
		n.Append(p.parseGenericFormal())
	}

	n.Left = p.parseDeclaration()
	return n
}

// parseGenericFormal parses one generic formal: an object, a type, or a
// subprogram
func (p *Parser) parseGenericFormal() *Node {
	n := NewNode(NGenericFormal, p.posHere())

	switch p.tok.Kind {
	case TYPE:
		p.advance()
		n.Mode = TYPE
		n.Name = p.expectIdentifier()
		p.expect(IS)
		n.Left = p.parseGenericTypeDef()
		p.expect(SEMICOLON)

	case WITH:
		p.advance()
		n.Mode = WITH
		n.Left = p.parseSubprogramSpec()
		if p.accept(IS) {
			if p.accept(BOX) {
				n.Flag = true
			} else {
				n.Right = p.parseName()
			}
		}
		p.expect(SEMICOLON)

	default:
		n.Mode = IDENTIFIER
		n.Names = p.parseIdentifierList()
		p.expect(COLON)
		if p.accept(IN) {
			if p.accept(OUT) {
				// formal in-out object
				n.Flag = true
			}
		}
		n.Left = p.parseSubtypeIndication()
		if p.accept(ASSIGN) {
			n.Right = p.parseExpression()
		}
		p.expect(SEMICOLON)
	}

	return n
}

// parseGenericTypeDef parses the formal type definitions: `(<>)`, `range
// <>`, `digits <>`, `delta <>`, `private`, `limited private`, and the array
// and access forms
func (p *Parser) parseGenericTypeDef() *Node {
	pos := p.posHere()

	switch p.tok.Kind {
	case LPAREN:
		p.advance()
		p.expect(BOX)
		p.expect(RPAREN)
		n := NewNode(NEnumDef, pos)
		n.Flag = true // any discrete type
		return n

	case RANGE:
		p.advance()
		p.expect(BOX)
		return NewNode(NIntDef, pos)

	case DIGITS:
		p.advance()
		p.expect(BOX)
		return NewNode(NFloatDef, pos)

	case DELTA:
		p.advance()
		p.expect(BOX)
		return NewNode(NFixedDef, pos)

	case LIMITED:
		p.advance()
		p.expect(PRIVATE)
		n := NewNode(NPrivateDef, pos)
		n.Flag = true
		return n

	case PRIVATE:
		p.advance()
		return NewNode(NPrivateDef, pos)

	case ARRAY:
		return p.parseArrayDefinition()

	case ACCESS:
		p.advance()
		n := NewNode(NAccessDef, pos)
		n.Left = p.parseSubtypeIndication()
		return n
	}

	p.errorAtCurrent("expected a generic type definition")
	return NewNode(NPrivateDef, pos)
}

// -----------------------------------------------------------------------------
// tasks

// parseTask parses task declarations and bodies.  The syntax is accepted in
// full; no tasking semantics attach.
func (p *Parser) parseTask() *Node {
	pos := p.posHere()
	p.expect(TASK)

	if p.accept(BODY) {
		n := NewNode(NTaskBody, pos)
		n.Name = p.expectIdentifier()
		p.expect(IS)
		n.Decls = p.parseDeclarativePart()
		p.expect(BEGIN)
		n.List = p.parseStatements()
		if p.accept(EXCEPTION) {
			n.Handlers = p.parseHandlers()
		}
		p.expect(END)
		p.checkEndName(n.Name)
		p.expect(SEMICOLON)
		return n
	}

	n := NewNode(NTaskDecl, pos)
	n.Flag = p.accept(TYPE)
	n.Name = p.expectIdentifier()

	if p.accept(IS) {
		for p.at(ENTRY) || p.at(FOR) || p.at(PRAGMA) {
			p.guardProgress()
			switch p.tok.Kind {
			case ENTRY:
				n.Append(p.parseEntryDecl())
			case FOR:
				n.Append(p.parseRepClause())
			case PRAGMA:
				n.Append(p.parsePragma())
			}
		}
		p.expect(END)
		p.checkEndName(n.Name)
	}

	p.expect(SEMICOLON)
	return n
}

// parseEntryDecl parses `entry Name [(range)] [params];`
func (p *Parser) parseEntryDecl() *Node {
	n := NewNode(NEntryDecl, p.posHere())
	p.expect(ENTRY)
	n.Name = p.expectIdentifier()

	if p.at(LPAREN) {
		// a family index or a formal part; formal parts start with an
		// identifier list followed by a colon
		n.List = p.parseFormalPart()
	}

	p.expect(SEMICOLON)
	return n
}

// -----------------------------------------------------------------------------
// pragmas and representation clauses

// parsePragma parses `pragma Name [(assocs)];`
func (p *Parser) parsePragma() *Node {
	n := NewNode(NPragmaNode, p.posHere())
	p.expect(PRAGMA)
	n.Name = p.expectIdentifier()

	if p.accept(LPAREN) {
		n.List = p.parseAssociations()
		p.expect(RPAREN)
	}

	p.expect(SEMICOLON)
	return n
}

// parseRepClause parses representation clauses: `for X use expr;`, `for
// X'Attr use expr;`, and `for X use record ... end record;`.  They are
// carried in the tree but only length/size forms affect layout.
func (p *Parser) parseRepClause() *Node {
	n := NewNode(NRepClause, p.posHere())
	p.expect(FOR)
	n.Left = p.parseName()
	p.expect(USE)

	if p.accept(RECORD) {
		for !p.at(END) && !p.at(EOF) {
			p.guardProgress()
			p.advance() // component clauses are accepted and discarded
		}
		p.expect(END)
		p.expect(RECORD)
	} else {
		n.Flag = p.accept(AT) // address clause
		n.Right = p.parseExpression()
	}

	p.expect(SEMICOLON)
	return n
}
