package syntax

import (
	"math/big"
)

// Token represents a token read in by the scanner
type Token struct {
	Kind  int
	Value string // the raw source text of the token

	// Line is the line number starting at 1
	Line int

	// Col is the column number starting at 1
	Col int

	// Semantic payloads; which fields are meaningful depends on Kind.

	// IntValue carries the machine-width value of an integer literal (and the
	// code point of a character literal)
	IntValue int64

	// BigValue is set for integer literals whose value exceeds 64 bits
	BigValue *big.Int

	// FloatValue carries the value of a real literal
	FloatValue float64

	// BigFloat is the arbitrary-precision payload of a real literal
	BigFloat *big.Float

	// StrValue carries the unescaped bytes of a string literal
	StrValue string
}

// The various kinds of tokens supported by the scanner.  The 63 Ada 83
// reserved words come first, in RM appendix order.
const (
	ABORT = iota
	ABS
	ACCEPT
	ACCESS
	ALL
	AND
	ARRAY
	AT
	BEGIN
	BODY
	CASE
	CONSTANT
	DECLARE
	DELAY
	DELTA
	DIGITS
	DO
	ELSE
	ELSIF
	END
	ENTRY
	EXCEPTION
	EXIT
	FOR
	FUNCTION
	GENERIC
	GOTO
	IF
	IN
	IS
	LIMITED
	LOOP
	MOD
	NEW
	NOT
	NULLKW
	OF
	OR
	OTHERS
	OUT
	PACKAGE
	PRAGMA
	PRIVATE
	PROCEDURE
	RAISE
	RANGE
	RECORD
	REM
	RENAMES
	RETURN
	REVERSE
	SELECT
	SEPARATE
	SUBTYPE
	TASK
	TERMINATE
	THEN
	TYPE
	USE
	WHEN
	WHILE
	WITH
	XOR

	// literals (and identifiers)
	IDENTIFIER
	INTLIT
	REALLIT
	CHARLIT
	STRINGLIT

	// compound delimiters -- maximal munch gives these priority
	ASSIGN  // :=
	ARROW   // =>
	DOTDOT  // ..
	LLABEL  // <<
	RLABEL  // >>
	BOX     // <>
	EXPON   // **
	LTEQ    // <=
	GTEQ    // >=
	NEQ     // /=

	// single-character delimiters
	AMP       // &
	TICK      // '
	LPAREN    // (
	RPAREN    // )
	STAR      // *
	PLUS      // +
	COMMA     // ,
	MINUS     // -
	DOT       // .
	DIVIDE    // /
	COLON     // :
	SEMICOLON // ;
	LT        // <
	EQ        // =
	GT        // >
	PIPE      // |

	// used in the parsing algorithm
	EOF
	ERROR
)

// keywordPatterns maps folded keyword spellings to token kinds.  The scanner
// folds identifiers to lowercase before probing this table, so `BEGIN`,
// `Begin`, and `begin` all match.
var keywordPatterns = map[string]int{
	"abort":     ABORT,
	"abs":       ABS,
	"accept":    ACCEPT,
	"access":    ACCESS,
	"all":       ALL,
	"and":       AND,
	"array":     ARRAY,
	"at":        AT,
	"begin":     BEGIN,
	"body":      BODY,
	"case":      CASE,
	"constant":  CONSTANT,
	"declare":   DECLARE,
	"delay":     DELAY,
	"delta":     DELTA,
	"digits":    DIGITS,
	"do":        DO,
	"else":      ELSE,
	"elsif":     ELSIF,
	"end":       END,
	"entry":     ENTRY,
	"exception": EXCEPTION,
	"exit":      EXIT,
	"for":       FOR,
	"function":  FUNCTION,
	"generic":   GENERIC,
	"goto":      GOTO,
	"if":        IF,
	"in":        IN,
	"is":        IS,
	"limited":   LIMITED,
	"loop":      LOOP,
	"mod":       MOD,
	"new":       NEW,
	"not":       NOT,
	"null":      NULLKW,
	"of":        OF,
	"or":        OR,
	"others":    OTHERS,
	"out":       OUT,
	"package":   PACKAGE,
	"pragma":    PRAGMA,
	"private":   PRIVATE,
	"procedure": PROCEDURE,
	"raise":     RAISE,
	"range":     RANGE,
	"record":    RECORD,
	"rem":       REM,
	"renames":   RENAMES,
	"return":    RETURN,
	"reverse":   REVERSE,
	"select":    SELECT,
	"separate":  SEPARATE,
	"subtype":   SUBTYPE,
	"task":      TASK,
	"terminate": TERMINATE,
	"then":      THEN,
	"type":      TYPE,
	"use":       USE,
	"when":      WHEN,
	"while":     WHILE,
	"with":      WITH,
	"xor":       XOR,
}

// tokenNames maps token kinds back to their canonical spellings; literal and
// identifier kinds get descriptive names instead
var tokenNames = map[int]string{
	IDENTIFIER: "identifier",
	INTLIT:     "integer literal",
	REALLIT:    "real literal",
	CHARLIT:    "character literal",
	STRINGLIT:  "string literal",
	ASSIGN:     ":=",
	ARROW:      "=>",
	DOTDOT:     "..",
	LLABEL:     "<<",
	RLABEL:     ">>",
	BOX:        "<>",
	EXPON:      "**",
	LTEQ:       "<=",
	GTEQ:       ">=",
	NEQ:        "/=",
	AMP:        "&",
	TICK:       "'",
	LPAREN:     "(",
	RPAREN:     ")",
	STAR:       "*",
	PLUS:       "+",
	COMMA:      ",",
	MINUS:      "-",
	DOT:        ".",
	DIVIDE:     "/",
	COLON:      ":",
	SEMICOLON:  ";",
	LT:         "<",
	EQ:         "=",
	GT:         ">",
	PIPE:       "|",
	EOF:        "end of file",
	ERROR:      "error",
}

func init() {
	for spelling, kind := range keywordPatterns {
		tokenNames[kind] = spelling
	}
}

// TokenName returns the canonical spelling of a delimiter or keyword kind and
// a descriptive name for every other kind
func TokenName(kind int) string {
	if name, ok := tokenNames[kind]; ok {
		return name
	}
	return "unknown"
}

// IsKeyword reports whether a token kind is one of the 63 reserved words
func IsKeyword(kind int) bool {
	return kind <= XOR
}
