package common

import "hash/fnv"

// FoldByte lowercases a single ASCII or Latin-1 upper-case letter.  Ada
// identifiers are case-insensitive (RM 2.3) so every name comparison and hash
// in the compiler folds through this function.
func FoldByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}

	// Latin-1 upper-case range, excluding the multiplication sign
	if b >= 0xC0 && b <= 0xDE && b != 0xD7 {
		return b + 0x20
	}

	return b
}

// FoldName lowercases an identifier for name comparison
func FoldName(name string) string {
	buf := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		buf[i] = FoldByte(name[i])
	}

	return string(buf)
}

// NamesEqual compares two identifiers case-insensitively without allocating
func NamesEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := 0; i < len(a); i++ {
		if FoldByte(a[i]) != FoldByte(b[i]) {
			return false
		}
	}

	return true
}

// HashName produces the folded FNV-1a hash of an identifier; this is the hash
// used by every scope bucket table
func HashName(name string) uint32 {
	h := fnv.New32a()
	buf := [1]byte{}
	for i := 0; i < len(name); i++ {
		buf[0] = FoldByte(name[i])
		h.Write(buf[:])
	}

	return h.Sum32()
}
