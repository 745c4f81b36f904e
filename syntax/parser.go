package syntax

import (
	"adac/logging"
)

// Parser is a recursive-descent LL(1) parser for the Ada 83 grammar with
// one-token lookahead and panic-mode error recovery.
type Parser struct {
	sc   *Scanner
	lctx *logging.LogContext

	// tok is the current token; prev is the one before it
	tok  *Token
	prev *Token

	hadError  bool
	panicMode bool

	// no-progress guard: the last parsing decision's location and kind.  If
	// the same triple is observed twice the parser consumes a token
	// unconditionally so a repeated unexpected token can never loop.
	lastLine, lastCol, lastKind int
	repeats                     int
}

// NewParser creates a parser over a scanner and primes the lookahead
func NewParser(sc *Scanner, lctx *logging.LogContext) *Parser {
	p := &Parser{sc: sc, lctx: lctx}
	p.tok = sc.NextToken()
	p.prev = p.tok
	return p
}

// Parse consumes the whole stream and produces a single compilation unit.
// The result is never nil, though it may be partial after errors.
func (p *Parser) Parse() *Node {
	unit := p.parseCompilationUnit()

	if !p.at(EOF) {
		p.errorAtCurrent("text after compilation unit")
	}

	return unit
}

// HadError reports whether any syntax error was raised
func (p *Parser) HadError() bool {
	return p.hadError
}

// -----------------------------------------------------------------------------
// token plumbing

// advance consumes the current token
func (p *Parser) advance() {
	p.prev = p.tok
	if p.tok.Kind != EOF {
		p.tok = p.sc.NextToken()
	}
}

// at checks the current token's kind without consuming
func (p *Parser) at(kind int) bool {
	return p.tok.Kind == kind
}

// accept consumes the current token if it has the given kind
func (p *Parser) accept(kind int) bool {
	if p.tok.Kind == kind {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of the given kind or reports an error and begins
// synchronization
func (p *Parser) expect(kind int) bool {
	if p.accept(kind) {
		return true
	}

	p.errorAtCurrent("expected '" + TokenName(kind) + "' but found '" + p.tok.Value + "'")
	return false
}

// expectIdentifier consumes an identifier and returns its spelling
func (p *Parser) expectIdentifier() string {
	if p.at(IDENTIFIER) {
		name := p.tok.Value
		p.advance()
		return name
	}

	p.errorAtCurrent("expected identifier but found '" + p.tok.Value + "'")
	return ""
}

// posHere is the position of the current token
func (p *Parser) posHere() *logging.TextPosition {
	return tokenPos(p.tok)
}

func tokenPos(tok *Token) *logging.TextPosition {
	return &logging.TextPosition{
		StartLn:  tok.Line,
		StartCol: tok.Col,
		EndLn:    tok.Line,
		EndCol:   tok.Col + len(tok.Value),
	}
}

// -----------------------------------------------------------------------------
// error recovery

// errorAtCurrent reports a syntax error at the current token unless the
// parser is already panicking, then enters panic mode
func (p *Parser) errorAtCurrent(msg string) {
	if p.panicMode {
		return
	}

	p.hadError = true
	p.panicMode = true
	logging.LogCompileError(p.lctx, msg, logging.LMKSyntax, p.posHere())
	p.synchronize()
}

// errorAt reports a recoverable error at a position without synchronizing
func (p *Parser) errorAt(msg string, pos *logging.TextPosition) {
	p.hadError = true
	logging.LogCompileError(p.lctx, msg, logging.LMKSyntax, pos)
}

// syncSet is the set of tokens that can begin a statement or declaration;
// panic-mode recovery stops at any of them
var syncSet = map[int]bool{
	BEGIN: true, END: true, IF: true, CASE: true, LOOP: true, FOR: true,
	WHILE: true, RETURN: true, DECLARE: true, EXCEPTION: true,
	PROCEDURE: true, FUNCTION: true, PACKAGE: true, TASK: true,
	TYPE: true, SUBTYPE: true, PRAGMA: true, ACCEPT: true, SELECT: true,
}

// synchronize skips tokens until just past a `;` or at a token that can
// begin a statement or declaration
func (p *Parser) synchronize() {
	for !p.at(EOF) {
		if p.prev.Kind == SEMICOLON {
			break
		}
		if syncSet[p.tok.Kind] {
			break
		}
		p.advance()
	}

	p.panicMode = false
}

// guardProgress is called at the head of every list-parsing loop.  Seeing
// the same (line, column, kind) twice means no rule consumed anything; the
// guard then eats one token unconditionally.  Tokens are never fabricated.
func (p *Parser) guardProgress() {
	if p.tok.Line == p.lastLine && p.tok.Col == p.lastCol && p.tok.Kind == p.lastKind {
		p.repeats++
		if p.repeats >= 2 && !p.at(EOF) {
			p.advance()
			p.repeats = 0
		}
	} else {
		p.lastLine, p.lastCol, p.lastKind = p.tok.Line, p.tok.Col, p.tok.Kind
		p.repeats = 0
	}
}

// checkEndName verifies a closing name against the opening one; a mismatch
// is a recoverable error, not a panic
func (p *Parser) checkEndName(opening string) {
	if p.at(IDENTIFIER) || p.at(STRINGLIT) {
		closing := p.tok.Value
		if p.at(STRINGLIT) {
			// operator designators close with their unquoted spelling
			closing = p.tok.StrValue
		}
		if opening != "" && !namesMatch(opening, closing) {
			p.errorAt("end name '"+closing+"' does not match '"+opening+"'", p.posHere())
		}
		p.advance()

		// dotted end names (`end Parent.Child`) are consumed without checking
		for p.accept(DOT) {
			if p.at(IDENTIFIER) {
				p.advance()
			}
		}
	}
}

func namesMatch(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 32
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 32
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// -----------------------------------------------------------------------------
// compilation units

// parseCompilationUnit parses an optional context clause followed by one
// library unit
func (p *Parser) parseCompilationUnit() *Node {
	unit := NewNode(NCompilationUnit, p.posHere())

	for {
		p.guardProgress()
		switch p.tok.Kind {
		case WITH:
			unit.Append(p.parseWithClause())
		case USE:
			unit.Append(p.parseUseClause())
		case PRAGMA:
			unit.Append(p.parsePragma())
		default:
			unit.Left = p.parseLibraryUnit()
			return unit
		}
	}
}

// parseWithClause parses `with Name {, Name};`
func (p *Parser) parseWithClause() *Node {
	n := NewNode(NWithClause, p.posHere())
	p.expect(WITH)

	for {
		n.Append(p.parseName())
		if !p.accept(COMMA) {
			break
		}
	}

	p.expect(SEMICOLON)
	return n
}

// parseUseClause parses `use Name {, Name};`
func (p *Parser) parseUseClause() *Node {
	n := NewNode(NUseClause, p.posHere())
	p.expect(USE)

	for {
		n.Append(p.parseName())
		if !p.accept(COMMA) {
			break
		}
	}

	p.expect(SEMICOLON)
	return n
}

// parseLibraryUnit parses the single unit of a compilation: a package or
// subprogram spec or body, a generic declaration, or a separate body
func (p *Parser) parseLibraryUnit() *Node {
	switch p.tok.Kind {
	case PACKAGE:
		return p.parsePackage()
	case PROCEDURE, FUNCTION:
		return p.parseSubprogram()
	case GENERIC:
		return p.parseGeneric()
	case SEPARATE:
		return p.parseSeparateBody()
	case EOF:
		return nil
	default:
		p.errorAtCurrent("expected a library unit but found '" + p.tok.Value + "'")
		return nil
	}
}

// parseSeparateBody parses `separate (Parent) body`
func (p *Parser) parseSeparateBody() *Node {
	n := NewNode(NSeparateBody, p.posHere())
	p.expect(SEPARATE)
	p.expect(LPAREN)
	n.Left = p.parseName()
	p.expect(RPAREN)
	n.Right = p.parseLibraryUnit()
	return n
}
