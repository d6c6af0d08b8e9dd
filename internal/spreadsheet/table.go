package spreadsheet

// Table is a resolved tabular file: an ordered set of canonical column
// names over a string cell grid. Rows may be ragged; Get returns "" for
// cells past a row's end.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable builds a table from canonical column names and data rows.
func NewTable(columns []string, rows [][]string) *Table {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	return &Table{columns: columns, index: index, rows: rows}
}

// Columns returns the canonical column names in order.
func (t *Table) Columns() []string { return t.columns }

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Get returns the cell at row i for the named canonical column, or "" when
// the column is unknown or the row is too short.
func (t *Table) Get(i int, column string) string {
	col, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.rows) {
		return ""
	}
	row := t.rows[i]
	if col >= len(row) {
		return ""
	}
	return row[col]
}

// HasColumn reports whether the table resolved the named column.
func (t *Table) HasColumn(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Missing returns the required columns the table does not have.
func (t *Table) Missing(required []string) []string {
	var missing []string
	for _, c := range required {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}
