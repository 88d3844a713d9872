package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/sumdb/internal/engine"
	"github.com/roach88/sumdb/internal/ir"
)

// renderOutcome writes the text form of one statement's outcome.
func renderOutcome(w io.Writer, out engine.Outcome) {
	switch out.Kind {
	case "define":
		fmt.Fprintf(w, "Defined table %s (fingerprint %s)\n", out.Table, shortFingerprint(out.Fingerprint))
	case "insert":
		fmt.Fprintf(w, "Inserted %d row into %s\n", out.Inserted, out.Table)
	case "select":
		renderRows(w, out.Columns, out.Rows)
	}
}

// renderRows writes a result set as a pipe-separated table headed by the
// ordinal column "#".
func renderRows(w io.Writer, columns []ir.ColumnName, rows []engine.Result) {
	header := make([]string, 0, len(columns)+1)
	header = append(header, "#")
	for _, c := range columns {
		header = append(header, string(c))
	}
	fmt.Fprintln(w, strings.Join(header, " | "))

	for _, r := range rows {
		cells := make([]string, 0, len(columns)+1)
		cells = append(cells, strconv.Itoa(r.Ordinal))
		for _, c := range columns {
			cells = append(cells, ir.FormatValue(r.Row.Get(c)))
		}
		fmt.Fprintln(w, strings.Join(cells, " | "))
	}

	if len(rows) == 1 {
		fmt.Fprintln(w, "(1 row)")
	} else {
		fmt.Fprintf(w, "(%d rows)\n", len(rows))
	}
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
