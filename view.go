package tableview

// View is a read-only table of cells
// with titled columns, as consumed by
// the exceltable and csvtable writers.
type View interface {
	// Title of the table, used as sheet name by some writers.
	Title() string
	// Columns returns the column titles.
	Columns() []string
	// NumRows returns the number of data rows.
	NumRows() int
	// Cell returns the value at row and col
	// or nil if the indices are out of bounds.
	Cell(row, col int) any
}

// ViewMaps returns one map per row of the view
// mapping the column titles to the cell values.
// Later columns win if column titles are not unique.
func ViewMaps(view View) []map[string]any {
	columns := view.Columns()
	maps := make([]map[string]any, view.NumRows())
	for row := range maps {
		m := make(map[string]any, len(columns))
		for col, title := range columns {
			m[title] = view.Cell(row, col)
		}
		maps[row] = m
	}
	return maps
}
