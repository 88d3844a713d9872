package parser

import (
	"strings"

	"github.com/roach88/sumdb/internal/ir"
)

// FormatTable renders t in definition syntax with constructors and columns
// in lexical order. ParseTable(FormatTable(t)) yields t again.
func FormatTable(t ir.Table) string {
	var b strings.Builder
	b.WriteString("type ")
	b.WriteString(string(t.Name))
	b.WriteString(" { ")
	switch cols := t.Columns.(type) {
	case ir.SingleConstructor:
		writeColumns(&b, cols.Columns)
	case ir.MultipleConstructors:
		for i, c := range cols.Constructors() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(string(c))
			b.WriteString(" { ")
			writeColumns(&b, cols.Variants[c])
			b.WriteString(" }")
		}
	}
	b.WriteString(" }")
	return b.String()
}

func writeColumns(b *strings.Builder, cols ir.ColumnSet) {
	for i, name := range cols.Names() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(name))
		b.WriteString(": ")
		b.WriteString(cols[name].String())
	}
}
