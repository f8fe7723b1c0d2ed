package cola

import (
	"iter"
	"slices"
	"strings"

	messages "github.com/cucumber/messages/go/v21"
)

// columns are the header cells of a table, shared by all of its rows.
type columns struct {
	names []string
	// index maps a lower-cased name to its first column.
	index map[string]int
}

func newColumns(names []string) *columns {
	c := &columns{names: slices.Clone(names), index: make(map[string]int, len(names))}
	for i, name := range names {
		key := strings.ToLower(name)
		if _, seen := c.index[key]; !seen {
			c.index[key] = i
		}
	}
	return c
}

// Row is a single row of a Table.
type Row struct {
	cells   []string
	columns *columns
}

// Get returns the cell under the column header col, compared
// case-insensitively. Returns "" if there is no such column or cell.
func (r Row) Get(col string) string {
	if r.columns == nil {
		return ""
	}
	i, ok := r.columns.index[strings.ToLower(col)]
	if !ok {
		return ""
	}
	return r.Cell(i)
}

// Cell returns the cell at index, or "" if the index is out of range.
func (r Row) Cell(index int) string {
	if index < 0 || index >= len(r.cells) {
		return ""
	}
	return r.cells[index]
}

// Values returns a copy of the cells in order.
func (r Row) Values() []string {
	return slices.Clone(r.cells)
}

func (r Row) Len() int {
	return len(r.cells)
}

// project maps every column name to the row's cell under it.
func (r Row) project() map[string]string {
	values := make(map[string]string, len(r.columns.names))
	for i, name := range r.columns.names {
		values[name] = r.Cell(i)
	}
	return values
}

// Table is a Gherkin DataTable or Examples table. The first row holds the
// column headers.
type Table struct {
	columns *columns
	rows    []Row
}

// NewTable creates a Table from raw cells.
func NewTable(data [][]string) Table {
	if len(data) == 0 {
		return Table{}
	}

	t := Table{columns: newColumns(data[0]), rows: make([]Row, 0, len(data))}
	for _, cells := range data {
		t.rows = append(t.rows, Row{cells: slices.Clone(cells), columns: t.columns})
	}
	return t
}

// NewTableFromDataTable creates a Table from a step DataTable message.
func NewTableFromDataTable(dt *messages.DataTable) Table {
	if dt == nil {
		return Table{}
	}
	return NewTable(tableCells(dt.Rows...))
}

// NewTableFromExamples creates a Table from the header and body of a
// Scenario Outline Examples block.
func NewTableFromExamples(examples *messages.Examples) Table {
	if examples == nil || examples.TableHeader == nil {
		return Table{}
	}
	return NewTable(append(tableCells(examples.TableHeader), tableCells(examples.TableBody...)...))
}

func tableCells(rows ...*messages.TableRow) [][]string {
	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			cells = append(cells, cell.Value)
		}
		data = append(data, cells)
	}
	return data
}

// Headers returns a copy of the column headers.
func (t Table) Headers() []string {
	if t.columns == nil {
		return nil
	}
	return slices.Clone(t.columns.names)
}

// Len returns the number of rows including the header row.
func (t Table) Len() int {
	return len(t.rows)
}

// All returns an iterator over all rows, header row included.
//
//	for i, row := range table.All() {
//	    fmt.Println(i, row.Cell(0))
//	}
func (t Table) All() iter.Seq2[int, Row] {
	return slices.All(t.rows)
}

// SkipHeader returns an iterator over data rows. Indexes start at 0 for the
// first data row.
func (t Table) SkipHeader() iter.Seq2[int, Row] {
	if len(t.rows) == 0 {
		return slices.All([]Row(nil))
	}
	return slices.All(t.rows[1:])
}

// Projections returns one map per data row from column header to cell.
// Header names are kept as written so they match <name> placeholders
// exactly. Missing cells map to "".
func (t Table) Projections() []map[string]string {
	var projections []map[string]string
	for _, row := range t.SkipHeader() {
		projections = append(projections, row.project())
	}
	return projections
}
