package numeric

import (
	"math/big"
	"testing"
)

func TestParseDecimalIntBoundaries(t *testing.T) {
	tests := []struct {
		text      string
		wantInt64 int64
		fits      bool
	}{
		{"0", 0, true},
		{"1_000_000", 1000000, true},
		{"9223372036854775807", 9223372036854775807, true}, // 2**63 - 1
		{"9223372036854775808", 0, false},                  // 2**63: big path only
	}

	for _, tt := range tests {
		v, ok := ParseDecimalInt(tt.text)
		if !ok {
			t.Fatalf("ParseDecimalInt(%q) failed", tt.text)
		}

		got, fits := FitsInt64(v)
		if fits != tt.fits {
			t.Errorf("FitsInt64(%q) = %v, want %v", tt.text, fits, tt.fits)
		}
		if fits && got != tt.wantInt64 {
			t.Errorf("FitsInt64(%q) = %d, want %d", tt.text, got, tt.wantInt64)
		}
	}
}

func TestParseBasedInt(t *testing.T) {
	tests := []struct {
		base   int
		digits string
		want   int64
		ok     bool
	}{
		{16, "FF", 255, true},
		{2, "1010", 10, true},
		{8, "777", 511, true},
		{16, "DEAD_BEEF", 0xDEADBEEF, true},
		{2, "12", 0, false}, // digit out of range for base
	}

	for _, tt := range tests {
		got, ok := ParseBasedInt(tt.base, tt.digits)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseBasedInt(%d, %q) = (%d, %v), want (%d, %v)",
				tt.base, tt.digits, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseBasedReal(t *testing.T) {
	got, ok := ParseBasedReal(2, "1", "0", 3)
	if !ok || got != 8.0 {
		t.Errorf("2#1.0#E3 = (%v, %v), want 8.0", got, ok)
	}

	got, ok = ParseBasedReal(16, "F", "8", 0)
	if !ok || got != 15.5 {
		t.Errorf("16#F.8# = (%v, %v), want 15.5", got, ok)
	}
}

func TestFoldModRem(t *testing.T) {
	tests := []struct {
		a, b     int64
		mod, rem int64
	}{
		{7, 3, 1, 1},
		{-7, 3, 2, -1},
		{7, -3, -2, 1},
		{-7, -3, -1, -1},
	}

	for _, tt := range tests {
		a, b := big.NewInt(tt.a), big.NewInt(tt.b)
		if m, ok := Mod(a, b); !ok || m.Int64() != tt.mod {
			t.Errorf("Mod(%d, %d) = %v, want %d", tt.a, tt.b, m, tt.mod)
		}
		if r, ok := Rem(a, b); !ok || r.Int64() != tt.rem {
			t.Errorf("Rem(%d, %d) = %v, want %d", tt.a, tt.b, r, tt.rem)
		}
	}

	if _, ok := Div(big.NewInt(1), big.NewInt(0)); ok {
		t.Error("Div by zero did not fail")
	}
}

func TestPow(t *testing.T) {
	if v, ok := Pow(big.NewInt(2), big.NewInt(63)); !ok || v.String() != "9223372036854775808" {
		t.Errorf("2**63 = %v", v)
	}
	if _, ok := Pow(big.NewInt(2), big.NewInt(-1)); ok {
		t.Error("negative exponent did not fail")
	}
}
