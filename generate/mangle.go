package generate

import (
	"fmt"
	"strings"

	"adac/common"
	"adac/sem"
)

// Name mangling.  An emitted name concatenates the parent's mangled name,
// "__", the symbol's own name with non-alphanumeric bytes hex-escaped, and
// "_S" plus the symbol's unique id.  The unique id keeps overloads of the
// same name distinct.

// Mangle produces the emitted name of a symbol.  Imported and exported
// symbols link by their external name instead of the mangled form.
func Mangle(sym *sem.Symbol) string {
	if (sym.IsImported || sym.IsExported) && sym.ExternalName != "" {
		return sym.ExternalName
	}

	var b strings.Builder
	if sym.Parent != nil {
		b.WriteString(Mangle(sym.Parent))
		b.WriteString("__")
	}
	b.WriteString(escapeName(common.FoldName(sym.Name)))
	fmt.Fprintf(&b, "_S%d", sym.UniqueID)
	return b.String()
}

// escapeName hex-escapes every byte an IR identifier cannot carry; operator
// designators ("+", "-", ...) gain an _op_ prefix so the escape sequence is
// readable in the output
func escapeName(name string) string {
	if name == "" {
		return "_anon"
	}

	var b strings.Builder
	if !isNameByte(name[0]) {
		b.WriteString("_op_")
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isNameByte(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%02x", c)
		}
	}
	return b.String()
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
