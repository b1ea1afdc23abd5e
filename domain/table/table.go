package table

import (
	"goeda/internal/errors"
)

// RowCount returns the number of rows (length of the first column)
func (t *Table) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	return len(t.Columns)
}

// Validate checks the structural invariants: at least one column, at least
// one row, and equal cell counts across columns.
func (t *Table) Validate() error {
	if len(t.Columns) == 0 {
		return errors.MalformedInput("table has no columns")
	}
	rows := len(t.Columns[0].Cells)
	if rows == 0 {
		return errors.MalformedInput("table has no rows")
	}
	for _, col := range t.Columns {
		if len(col.Cells) != rows {
			return errors.MalformedInput("column " + col.Name + " has mismatched row count")
		}
	}
	return nil
}

// Column returns the column with the given name
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// NumericColumns returns the indices of columns with numeric kind
func (t *Table) NumericColumns() []int {
	var idx []int
	for i, col := range t.Columns {
		if col.Kind == KindNumeric {
			idx = append(idx, i)
		}
	}
	return idx
}

// NumericValues extracts the non-missing numeric values of a column along
// with a presence mask aligned to row index.
func (c *Column) NumericValues() (values []float64, present []bool) {
	present = make([]bool, len(c.Cells))
	for i, cell := range c.Cells {
		if cell.IsMissing || cell.NumericVal == nil {
			continue
		}
		present[i] = true
		values = append(values, *cell.NumericVal)
	}
	return values, present
}

// MissingCount returns the number of missing cells in the column
func (c *Column) MissingCount() int {
	n := 0
	for _, cell := range c.Cells {
		if cell.IsMissing {
			n++
		}
	}
	return n
}

// Row renders the cells of row i across all columns as strings
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.Columns))
	for j, col := range t.Columns {
		if i < len(col.Cells) {
			row[j] = col.Cells[i].String()
		}
	}
	return row
}
