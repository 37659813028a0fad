package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table writes tab-aligned rows. Call Flush once all rows are added.
type Table struct {
	tw *tabwriter.Writer
}

// NewTable starts a table on w with a header row.
func NewTable(w io.Writer, headers ...string) *Table {
	t := &Table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	if len(headers) > 0 {
		t.Row(headers...)
	}
	return t
}

// Row adds one row. Cells must not contain tabs or newlines.
func (t *Table) Row(cells ...string) {
	fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

// Flush writes the aligned table.
func (t *Table) Flush() error {
	return t.tw.Flush()
}
