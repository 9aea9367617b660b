// Package table holds the in-memory tabular model shared by the reader, the
// reconciler and the writers. Every cell records whether the source supplied
// it, so "column absent", "present but empty" and "numeric value missing" stay
// distinguishable until output.
package table

import (
	"github.com/hazyhaar/ruea-filter/pkg/numeric"
)

// Kind tells how a cell was populated.
type Kind uint8

const (
	// Absent means the source row had no value for the column.
	Absent Kind = iota
	// Empty means the source supplied an empty string.
	Empty
	// Text is a non-empty raw value.
	Text
	// Number is a converted numeric value.
	Number
	// Missing is a numeric cell whose text could not be converted.
	Missing
)

// Cell is one value of a row.
type Cell struct {
	Kind Kind
	Text string
	Num  float64
}

// TextCell wraps raw text, mapping "" to Empty.
func TextCell(s string) Cell {
	if s == "" {
		return Cell{Kind: Empty}
	}
	return Cell{Kind: Text, Text: s}
}

// NumberCell wraps a converted value, mapping numeric.Missing to Missing.
func NumberCell(v numeric.Value) Cell {
	if !v.Valid {
		return Cell{Kind: Missing}
	}
	return Cell{Kind: Number, Num: v.Float}
}

// String renders the cell for delimited output.
func (c Cell) String() string {
	switch c.Kind {
	case Text:
		return c.Text
	case Number:
		return numeric.Of(c.Num).String()
	default:
		return ""
	}
}

// Row is a slice of cells aligned with Table.Columns.
type Row []Cell

// At returns the cell at i, or an Absent cell when the row is short.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// Table is an ordered sequence of rows under named columns.
// Rows are treated as immutable once a Table is built; transformations
// return new tables.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Project builds a table with the given columns. source[i] is the position
// in t feeding output column i, or -1 for a column the source lacks (all
// cells Absent).
func (t *Table) Project(columns []string, source []int) *Table {
	out := &Table{Name: t.Name, Columns: columns, Rows: make([]Row, len(t.Rows))}
	for ri, row := range t.Rows {
		nr := make(Row, len(columns))
		for ci, si := range source {
			nr[ci] = row.At(si)
		}
		out.Rows[ri] = nr
	}
	return out
}

// Filter returns the rows for which keep is true, in their original order.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{Name: t.Name, Columns: t.Columns}
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// ConvertNumeric returns a copy of t where each listed column present in t
// is converted with numeric.Parse. Absent cells stay Absent; every other cell
// becomes Number or Missing.
func (t *Table) ConvertNumeric(columns []string) *Table {
	var idx []int
	for _, name := range columns {
		if i := t.Index(name); i >= 0 {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return t
	}

	out := &Table{Name: t.Name, Columns: t.Columns, Rows: make([]Row, len(t.Rows))}
	for ri, row := range t.Rows {
		nr := make(Row, len(row))
		copy(nr, row)
		for _, i := range idx {
			if i >= len(nr) {
				continue
			}
			switch c := nr[i]; c.Kind {
			case Absent, Number, Missing:
			default:
				nr[i] = NumberCell(numeric.Parse(c.Text))
			}
		}
		out.Rows[ri] = nr
	}
	return out
}

// Concat stacks tables under columns, aligning cells by column name. Columns a
// table lacks are Absent in its rows.
func Concat(name string, columns []string, tables ...*Table) *Table {
	out := &Table{Name: name, Columns: columns}
	for _, t := range tables {
		source := make([]int, len(columns))
		for i, c := range columns {
			source[i] = t.Index(c)
		}
		out.Rows = append(out.Rows, t.Project(columns, source).Rows...)
	}
	return out
}
