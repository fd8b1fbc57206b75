package excel

// RawRowData represents a single row keyed by header
type RawRowData map[string]string

// Table represents a complete tabular file as trimmed strings
type Table struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
	Lines   []int        // 1-based source row of each data row, header being row 1
}

// Line returns the source row number of data row i
func (t *Table) Line(i int) int {
	if i < len(t.Lines) {
		return t.Lines[i]
	}
	return i + 2
}

// HasColumn reports whether the header row contains name
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}
