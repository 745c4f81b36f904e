package syntax

import (
	"adac/arena"
	"adac/common"
	"adac/logging"
	"adac/numeric"
	"math/big"
	"strconv"
)

// NewScanner creates a scanner over a source buffer.  The buffer is the whole
// file; the driver is responsible for reading it in.
func NewScanner(src []byte, fpath string, a *arena.Arena, lctx *logging.LogContext) *Scanner {
	return &Scanner{
		src:   src,
		fpath: fpath,
		arena: a,
		lctx:  lctx,
		line:  1,
		col:   1,
	}
}

// IsLetter tests if a byte can begin an identifier.  Latin-1 letters count
// (RM 2.3).
func IsLetter(b byte) bool {
	return b > '`' && b < '{' || b > '@' && b < '[' ||
		b >= 0xC0 && b != 0xD7 && b != 0xF7
}

// IsDigit tests if a byte is an ASCII digit
func IsDigit(b byte) bool {
	return b > '/' && b < ':'
}

// isIDByte tests if a byte can continue an identifier
func isIDByte(b byte) bool {
	return IsLetter(b) || IsDigit(b) || b == '_'
}

// Scanner works like an io.Reader over a source buffer, outputting tokens.
// It tracks the previous token kind in order to disambiguate `'` between
// attribute ticks and character literals.
type Scanner struct {
	lctx  *logging.LogContext
	arena *arena.Arena

	src   []byte
	fpath string

	// pos is the cursor: the index of the next unread byte
	pos  int
	line int
	col  int

	// prevKind is the kind of the last token produced; `'` after an
	// identifier or `)` is an attribute tick, anywhere else it opens a
	// character literal
	prevKind int
}

// NextToken reads a single token from the stream.  It always returns a token:
// EOF once the buffer is exhausted and ERROR for unscannable bytes.
func (s *Scanner) NextToken() *Token {
	tok := s.scan()
	s.prevKind = tok.Kind
	return tok
}

func (s *Scanner) scan() *Token {
	s.skipInsignificant()

	if s.pos >= len(s.src) {
		return s.makeToken(EOF, s.pos, s.line, s.col)
	}

	start, line, col := s.pos, s.line, s.col
	b := s.src[s.pos]

	switch {
	case IsLetter(b):
		return s.scanWord(start, line, col)
	case IsDigit(b):
		return s.scanNumber(start, line, col)
	case b == '"':
		return s.scanString(start, line, col)
	case b == '\'':
		return s.scanTick(start, line, col)
	default:
		return s.scanDelimiter(start, line, col)
	}
}

// peek performs non-consuming lookahead; it yields 0 past the end of the
// buffer
func (s *Scanner) peek(offset int) byte {
	if s.pos+offset >= len(s.src) {
		return 0
	}
	return s.src[s.pos+offset]
}

// advance consumes one byte, maintaining the 1-based line and column
func (s *Scanner) advance() {
	if s.pos < len(s.src) {
		if s.src[s.pos] == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
		s.pos++
	}
}

// skipInsignificant discards whitespace and line comments (`--` to end of
// line)
func (s *Scanner) skipInsignificant() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\r', '\n', '\f', '\v':
			s.advance()
		case '-':
			if s.peek(1) == '-' {
				for s.pos < len(s.src) && s.src[s.pos] != '\n' {
					s.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) makeToken(kind, start, line, col int) *Token {
	return &Token{
		Kind:  kind,
		Value: string(s.src[start:s.pos]),
		Line:  line,
		Col:   col,
	}
}

// errorToken logs a lexical error and produces an ERROR token so the parser
// can keep synchronizing; the scanner itself never aborts
func (s *Scanner) errorToken(msg string, start, line, col int) *Token {
	logging.LogCompileError(s.lctx, msg, logging.LMKToken,
		&logging.TextPosition{StartLn: line, StartCol: col, EndLn: s.line, EndCol: s.col})
	return s.makeToken(ERROR, start, line, col)
}

// scanWord reads an identifier or reserved word
func (s *Scanner) scanWord(start, line, col int) *Token {
	for s.pos < len(s.src) && isIDByte(s.src[s.pos]) {
		s.advance()
	}

	tok := s.makeToken(IDENTIFIER, start, line, col)
	if kind, ok := keywordPatterns[common.FoldName(tok.Value)]; ok {
		tok.Kind = kind
	}

	return tok
}

// scanNumber reads a numeric literal: a decimal run with optional fraction
// and exponent, or a based literal bracketed by `#` or `:`
func (s *Scanner) scanNumber(start, line, col int) *Token {
	digitsStart := s.pos
	for s.pos < len(s.src) && (IsDigit(s.src[s.pos]) || s.src[s.pos] == '_') {
		s.advance()
	}

	if b := s.peek(0); b == '#' || b == ':' {
		// a `:` only opens a based literal when a matching closer follows;
		// otherwise `X:` is a declaration and the colon is not ours
		if b == ':' && !s.basedColonAhead() {
			return s.finishDecimal(start, digitsStart, line, col)
		}
		return s.scanBased(string(s.src[digitsStart:s.pos]), b, start, line, col)
	}

	return s.finishDecimal(start, digitsStart, line, col)
}

// finishDecimal completes a base-10 literal after its integer digit run
func (s *Scanner) finishDecimal(start, digitsStart, line, col int) *Token {
	isReal := false

	// a fraction needs a digit after the dot; `1..2` is a range
	if s.peek(0) == '.' && IsDigit(s.peek(1)) {
		isReal = true
		s.advance()
		for s.pos < len(s.src) && (IsDigit(s.src[s.pos]) || s.src[s.pos] == '_') {
			s.advance()
		}
	}

	expDigits := ""
	expNeg := false
	if b := s.peek(0); b == 'e' || b == 'E' {
		offset := 1
		if s.peek(1) == '+' || s.peek(1) == '-' {
			offset = 2
		}
		if IsDigit(s.peek(offset)) {
			s.advance() // E
			if b := s.peek(0); b == '+' || b == '-' {
				expNeg = b == '-'
				s.advance()
			}
			expStart := s.pos
			for s.pos < len(s.src) && (IsDigit(s.src[s.pos]) || s.src[s.pos] == '_') {
				s.advance()
			}
			expDigits = numeric.StripUnderscores(string(s.src[expStart:s.pos]))
		}
	}

	text := string(s.src[digitsStart:s.pos])

	if isReal {
		tok := s.makeToken(REALLIT, start, line, col)
		f, bf, ok := numeric.ParseReal(text)
		if !ok {
			return s.errorToken("malformed real literal", start, line, col)
		}
		tok.FloatValue = f
		tok.BigFloat = bf
		return tok
	}

	// integer literal: always parsed into the arbitrary-precision payload;
	// the machine-width field is set only when the value fits 64 bits
	intText := text
	for i := 0; i < len(intText); i++ {
		if intText[i] == 'e' || intText[i] == 'E' {
			intText = intText[:i]
			break
		}
	}

	big10, ok := numeric.ParseDecimalInt(intText)
	if !ok {
		return s.errorToken("malformed integer literal", start, line, col)
	}

	if expDigits != "" {
		if expNeg {
			return s.errorToken("negative exponent in integer literal", start, line, col)
		}
		exp, err := strconv.Atoi(expDigits)
		if err != nil {
			return s.errorToken("malformed exponent", start, line, col)
		}
		scale, _ := numeric.Pow(numeric.FromInt64(10), numeric.FromInt64(int64(exp)))
		big10 = numeric.Mul(big10, scale)
	}

	tok := s.makeToken(INTLIT, start, line, col)
	if v, fits := numeric.FitsInt64(big10); fits {
		tok.IntValue = v
	} else {
		tok.BigValue = big10
	}
	return tok
}

// basedColonAhead checks whether a `:` at the cursor opens a based literal by
// scanning ahead for its closing `:` before anything that ends the form
func (s *Scanner) basedColonAhead() bool {
	for off := 1; ; off++ {
		b := s.peek(off)
		switch {
		case b == ':':
			return true
		case b == 0 || b == '\n' || b == ';':
			return false
		case numeric.DigitValue(b) >= 0 || b == '_' || b == '.':
			// still inside a plausible based numeral
		default:
			return false
		}
	}
}

// scanBased reads the bracketed part of a based literal.  `baseText` holds
// the base digits already consumed; `bracket` is `#` or `:`.
func (s *Scanner) scanBased(baseText string, bracket byte, start, line, col int) *Token {
	base, err := strconv.Atoi(numeric.StripUnderscores(baseText))
	if err != nil || base < 2 || base > 16 {
		base = -1 // scan the form anyway, then report
	}

	s.advance() // opening bracket

	intStart := s.pos
	for s.pos < len(s.src) && (numeric.DigitValue(s.src[s.pos]) >= 0 || s.src[s.pos] == '_') {
		s.advance()
	}
	intDigits := string(s.src[intStart:s.pos])

	fracDigits := ""
	isReal := false
	if s.peek(0) == '.' {
		isReal = true
		s.advance()
		fracStart := s.pos
		for s.pos < len(s.src) && (numeric.DigitValue(s.src[s.pos]) >= 0 || s.src[s.pos] == '_') {
			s.advance()
		}
		fracDigits = string(s.src[fracStart:s.pos])
	}

	if s.peek(0) != bracket {
		return s.errorToken("missing closing '"+string(bracket)+"' in based literal", start, line, col)
	}
	s.advance() // closing bracket

	exp := 0
	if b := s.peek(0); b == 'e' || b == 'E' {
		s.advance()
		expNeg := false
		if b := s.peek(0); b == '+' || b == '-' {
			expNeg = b == '-'
			s.advance()
		}
		expStart := s.pos
		for s.pos < len(s.src) && (IsDigit(s.src[s.pos]) || s.src[s.pos] == '_') {
			s.advance()
		}
		exp, err = strconv.Atoi(numeric.StripUnderscores(string(s.src[expStart:s.pos])))
		if err != nil {
			return s.errorToken("malformed exponent in based literal", start, line, col)
		}
		if expNeg {
			exp = -exp
		}
	}

	if base < 0 {
		return s.errorToken("base must be in 2..16", start, line, col)
	}

	if isReal {
		v, ok := numeric.ParseBasedReal(base, intDigits, fracDigits, exp)
		if !ok {
			return s.errorToken("digit out of range for base "+strconv.Itoa(base), start, line, col)
		}
		tok := s.makeToken(REALLIT, start, line, col)
		tok.FloatValue = v
		tok.BigFloat = big.NewFloat(v)
		return tok
	}

	if exp < 0 {
		return s.errorToken("negative exponent in integer literal", start, line, col)
	}

	v, ok := numeric.ParseBasedInt(base, intDigits)
	if !ok {
		return s.errorToken("digit out of range for base "+strconv.Itoa(base), start, line, col)
	}

	// apply the exponent in the written base; overflow wraps like the digit
	// accumulation itself
	for i := 0; i < exp; i++ {
		v *= int64(base)
	}

	tok := s.makeToken(INTLIT, start, line, col)
	tok.IntValue = v
	return tok
}

// scanString reads a double-quote delimited string literal; `""` inside is an
// escaped quote
func (s *Scanner) scanString(start, line, col int) *Token {
	s.advance() // opening quote

	var unescaped []byte
	for {
		if s.pos >= len(s.src) || s.src[s.pos] == '\n' {
			tok := s.errorToken("unterminated string literal", start, line, col)
			s.advance() // move past the line break so scanning can resume
			return tok
		}

		b := s.src[s.pos]
		if b == '"' {
			if s.peek(1) == '"' {
				unescaped = append(unescaped, '"')
				s.advance()
				s.advance()
				continue
			}
			s.advance() // closing quote
			break
		}

		unescaped = append(unescaped, b)
		s.advance()
	}

	tok := s.makeToken(STRINGLIT, start, line, col)
	tok.StrValue = string(s.arena.Bytes(unescaped))
	return tok
}

// scanTick reads either an attribute tick or a character literal, deciding by
// the kind of the previous token: after an identifier or `)` the tick is an
// attribute selector (`X'First`, `Natural'(...)`)
func (s *Scanner) scanTick(start, line, col int) *Token {
	if s.prevKind == IDENTIFIER || s.prevKind == RPAREN || s.prevKind == ALL {
		s.advance()
		return s.makeToken(TICK, start, line, col)
	}

	if s.peek(1) != 0 && s.peek(2) == '\'' {
		s.advance() // opening quote
		ch := s.src[s.pos]
		s.advance() // the character
		s.advance() // closing quote
		tok := s.makeToken(CHARLIT, start, line, col)
		tok.IntValue = int64(ch)
		return tok
	}

	s.advance()
	tok := s.errorToken("unterminated character literal", start, line, col)
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.advance()
	}
	return tok
}

// scanDelimiter reads operator and punctuation tokens with maximal munch
func (s *Scanner) scanDelimiter(start, line, col int) *Token {
	b := s.src[s.pos]
	s.advance()

	twoChar := func(next byte, twoKind, oneKind int) *Token {
		if s.peek(0) == next {
			s.advance()
			return s.makeToken(twoKind, start, line, col)
		}
		return s.makeToken(oneKind, start, line, col)
	}

	switch b {
	case ':':
		return twoChar('=', ASSIGN, COLON)
	case '=':
		return twoChar('>', ARROW, EQ)
	case '.':
		return twoChar('.', DOTDOT, DOT)
	case '*':
		return twoChar('*', EXPON, STAR)
	case '/':
		return twoChar('=', NEQ, DIVIDE)
	case '>':
		switch s.peek(0) {
		case '=':
			s.advance()
			return s.makeToken(GTEQ, start, line, col)
		case '>':
			s.advance()
			return s.makeToken(RLABEL, start, line, col)
		}
		return s.makeToken(GT, start, line, col)
	case '<':
		switch s.peek(0) {
		case '=':
			s.advance()
			return s.makeToken(LTEQ, start, line, col)
		case '<':
			s.advance()
			return s.makeToken(LLABEL, start, line, col)
		case '>':
			s.advance()
			return s.makeToken(BOX, start, line, col)
		}
		return s.makeToken(LT, start, line, col)
	case '&':
		return s.makeToken(AMP, start, line, col)
	case '(':
		return s.makeToken(LPAREN, start, line, col)
	case ')':
		return s.makeToken(RPAREN, start, line, col)
	case '+':
		return s.makeToken(PLUS, start, line, col)
	case ',':
		return s.makeToken(COMMA, start, line, col)
	case '-':
		return s.makeToken(MINUS, start, line, col)
	case ';':
		return s.makeToken(SEMICOLON, start, line, col)
	case '|', '!':
		// `!` is the RM 2.10 replacement character for `|`
		return s.makeToken(PIPE, start, line, col)
	}

	return s.errorToken("unrecognized character '"+string(b)+"'", start, line, col)
}
