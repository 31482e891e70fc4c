// Package renderer turns computed report tables into markdown and TSV
// documents for terminal display and piping.
package renderer

import (
	"fmt"
	"io"
	"strings"

	invreports "github.com/dkfurrow/moneydance-investment-reports-sub002"
)

// TableMarkdown renders the report table as a markdown document: a header
// with the run identity, the leaf rows, and the composite rows.
func TableMarkdown(t *invreports.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Investment Performance Report\n\n")
	fmt.Fprintf(&b, "- Context: %s\n", t.Run.Config.Context)
	fmt.Fprintf(&b, "- Cost basis: %s\n", t.Run.Config.Method)
	if t.Run.Config.FirstDim != invreports.DimNone {
		fmt.Fprintf(&b, "- Grouped by: %s", t.Run.Config.FirstDim)
		if t.Run.Config.SecondDim != invreports.DimNone {
			fmt.Fprintf(&b, ", %s", t.Run.Config.SecondDim)
		}
		fmt.Fprintln(&b)
	}
	fmt.Fprintf(&b, "- Run: %s (%s)\n\n", t.Run.ID, t.Run.GeneratedAt.Format("2006-01-02 15:04"))

	section(&b, "Holdings", t, false)
	section(&b, "Composites", t, true)
	return b.String()
}

func section(w io.Writer, title string, t *invreports.Table, aggregate bool) {
	var rows []invreports.Row
	for _, r := range t.Rows {
		if r.Aggregate == aggregate {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(w, "## %s\n\n", title)
	markdownTable(w, t.Columns, rows)
	fmt.Fprintln(w)
}

func markdownTable(w io.Writer, columns []string, rows []invreports.Row) {
	fmt.Fprintf(w, "| %s |\n", strings.Join(columns, " | "))
	seps := make([]string, len(columns))
	for i := range seps {
		seps[i] = "---:"
	}
	seps[0] = ":---"
	fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))
	for _, r := range rows {
		cells := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			cells[i] = escapeCell(c)
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// TableTSV renders the table as tab-separated values, one header line then
// one line per row, for piping into other tools.
func TableTSV(t *invreports.Table) string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Columns, "\t"))
	b.WriteByte('\n')
	for _, r := range t.Rows {
		b.WriteString(strings.Join(r.Cells, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}
