package syntax

import (
	"testing"

	"adac/arena"
	"adac/logging"

	"github.com/google/go-cmp/cmp"
)

func scanAll(t *testing.T, src string) []*Token {
	t.Helper()
	logging.Initialize("silent")

	a := arena.New()
	defer a.Release()

	sc := NewScanner([]byte(src), "test.adb", a, &logging.LogContext{FilePath: "test.adb"})

	var toks []*Token
	for {
		tok := sc.NextToken()
		if tok.Kind == EOF {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func kinds(toks []*Token) []int {
	out := make([]int, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestScanDeclaration(t *testing.T) {
	toks := scanAll(t, "X : constant Integer := 42;")

	want := []int{IDENTIFIER, COLON, CONSTANT, IDENTIFIER, ASSIGN, INTLIT, SEMICOLON}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Errorf("token kinds mismatch (-want +got):\n%s", diff)
	}
	if toks[5].IntValue != 42 {
		t.Errorf("IntValue = %d, want 42", toks[5].IntValue)
	}
}

func TestScanKeywordsCaseInsensitive(t *testing.T) {
	toks := scanAll(t, "BEGIN Begin begin bEgIn")
	for i, tok := range toks {
		if tok.Kind != BEGIN {
			t.Errorf("token %d: kind = %s, want begin", i, TokenName(tok.Kind))
		}
	}
}

func TestScanCompoundDelimiters(t *testing.T) {
	tests := []struct {
		src  string
		want []int
	}{
		{":= => .. ** /= <= >= <> << >>", []int{ASSIGN, ARROW, DOTDOT, EXPON, NEQ, LTEQ, GTEQ, BOX, LLABEL, RLABEL}},
		{"A..B", []int{IDENTIFIER, DOTDOT, IDENTIFIER}},
		{"1..2", []int{INTLIT, DOTDOT, INTLIT}},
		{"a|b", []int{IDENTIFIER, PIPE, IDENTIFIER}},
		{"a!b", []int{IDENTIFIER, PIPE, IDENTIFIER}},
	}

	for _, tt := range tests {
		toks := scanAll(t, tt.src)
		if diff := cmp.Diff(tt.want, kinds(toks)); diff != "" {
			t.Errorf("%q: token kinds mismatch (-want +got):\n%s", tt.src, diff)
		}
	}
}

func TestScanIntegerBoundary(t *testing.T) {
	// 2^63-1 fits the machine field; 2^63 takes the big path
	toks := scanAll(t, "9223372036854775807 9223372036854775808")

	if toks[0].BigValue != nil || toks[0].IntValue != 9223372036854775807 {
		t.Error("max int64 literal should use the machine field")
	}
	if toks[1].BigValue == nil {
		t.Error("2^63 should carry an arbitrary-precision payload")
	}
}

func TestScanUnderscoresAndExponent(t *testing.T) {
	toks := scanAll(t, "1_000_000 2E3 1.5E2 1.0E-2")

	if toks[0].IntValue != 1000000 {
		t.Errorf("1_000_000 = %d", toks[0].IntValue)
	}
	if toks[1].Kind != INTLIT || toks[1].IntValue != 2000 {
		t.Errorf("2E3 = %d, want 2000", toks[1].IntValue)
	}
	if toks[2].Kind != REALLIT || toks[2].FloatValue != 150.0 {
		t.Errorf("1.5E2 = %v, want 150.0", toks[2].FloatValue)
	}
	if toks[3].Kind != REALLIT || toks[3].FloatValue != 0.01 {
		t.Errorf("1.0E-2 = %v, want 0.01", toks[3].FloatValue)
	}
}

func TestScanBasedLiterals(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{"16#FF#", 255},
		{"2#1010#", 10},
		{"8#777#", 511},
		{"16#F#E1", 240},
		{"2#1#E8", 256},
		{"16:FF:", 255},
	}

	for _, tt := range tests {
		toks := scanAll(t, tt.src)
		if len(toks) != 1 || toks[0].Kind != INTLIT {
			t.Errorf("%q: did not scan as a single integer literal", tt.src)
			continue
		}
		if toks[0].IntValue != tt.want {
			t.Errorf("%q = %d, want %d", tt.src, toks[0].IntValue, tt.want)
		}
	}
}

func TestScanBasedReal(t *testing.T) {
	toks := scanAll(t, "2#1.0#E3")
	if len(toks) != 1 || toks[0].Kind != REALLIT {
		t.Fatal("2#1.0#E3 did not scan as a real literal")
	}
	if toks[0].FloatValue != 8.0 {
		t.Errorf("2#1.0#E3 = %v, want 8.0 (exponent scales by the written base)", toks[0].FloatValue)
	}
}

func TestColonDeclarationNotBased(t *testing.T) {
	// `X1:Integer` has a digit before the colon; the colon still belongs to
	// the declaration, not a based literal
	toks := scanAll(t, "V : Integer := 3; X1:Integer;")

	want := []int{IDENTIFIER, COLON, IDENTIFIER, ASSIGN, INTLIT, SEMICOLON,
		IDENTIFIER, COLON, IDENTIFIER, SEMICOLON}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Errorf("token kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestScanTickDisambiguation(t *testing.T) {
	tests := []struct {
		src  string
		want []int
	}{
		// after an identifier the tick is an attribute selector
		{"Integer'First", []int{IDENTIFIER, TICK, IDENTIFIER}},
		// after `)` too
		{"F(X)'Last", []int{IDENTIFIER, LPAREN, IDENTIFIER, RPAREN, TICK, IDENTIFIER}},
		// anywhere else it opens a character literal
		{"C := 'a';", []int{IDENTIFIER, ASSIGN, CHARLIT, SEMICOLON}},
		{"('a', 'b')", []int{LPAREN, CHARLIT, COMMA, CHARLIT, RPAREN}},
	}

	for _, tt := range tests {
		toks := scanAll(t, tt.src)
		if diff := cmp.Diff(tt.want, kinds(toks)); diff != "" {
			t.Errorf("%q: token kinds mismatch (-want +got):\n%s", tt.src, diff)
		}
	}
}

func TestScanQuoteCharLiteral(t *testing.T) {
	// the quote character itself: '''
	toks := scanAll(t, "Q := ''';")
	if toks[2].Kind != CHARLIT || toks[2].IntValue != int64('\'') {
		t.Errorf("''' scanned as kind %s value %d", TokenName(toks[2].Kind), toks[2].IntValue)
	}
}

func TestScanString(t *testing.T) {
	toks := scanAll(t, `S := "he said ""hi""";`)
	if toks[2].Kind != STRINGLIT {
		t.Fatalf("kind = %s, want string literal", TokenName(toks[2].Kind))
	}
	if toks[2].StrValue != `he said "hi"` {
		t.Errorf("StrValue = %q", toks[2].StrValue)
	}
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(t, "S := \"oops\nX := 1;")

	sawError := false
	for _, tok := range toks {
		if tok.Kind == ERROR {
			sawError = true
		}
	}
	if !sawError {
		t.Error("unterminated string did not produce an error token")
	}

	// scanning resumes on the next line
	last := toks[len(toks)-1]
	if last.Kind != SEMICOLON {
		t.Errorf("scanning did not resume; last token %s", TokenName(last.Kind))
	}
}

func TestScanComments(t *testing.T) {
	toks := scanAll(t, "A -- the rest is gone := 1;\nB")
	want := []int{IDENTIFIER, IDENTIFIER}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Errorf("token kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestScanPositions(t *testing.T) {
	toks := scanAll(t, "A :=\n  B;")

	if toks[0].Line != 1 || toks[0].Col != 1 {
		t.Errorf("A at %d:%d, want 1:1", toks[0].Line, toks[0].Col)
	}
	if toks[2].Line != 2 || toks[2].Col != 3 {
		t.Errorf("B at %d:%d, want 2:3", toks[2].Line, toks[2].Col)
	}
}

func TestTokenNameRoundTrip(t *testing.T) {
	for kind := ABORT; kind <= XOR; kind++ {
		name := TokenName(kind)
		if name == "" {
			t.Errorf("keyword kind %d has no name", kind)
		}
		if got, ok := keywordPatterns[name]; !ok || got != kind {
			t.Errorf("TokenName(%d) = %q does not map back", kind, name)
		}
	}
}

func TestScanNeverPanics(t *testing.T) {
	// truncated forms at end of input must not read out of bounds
	for _, src := range []string{"'", "'a", "\"", "16#", "16#F", "1.", "1E", "<", ":", "--"} {
		scanAll(t, src)
	}
}
