package render

import (
	"errors"
	"unicode/utf8"

	"mercator-hq/tabula/pkg/tabular"
)

// ErrEmptySchema is returned when a dataset has no columns to render.
var ErrEmptySchema = errors.New("dataset has an empty schema")

// Grid is the rectangular form of a dataset shared by every renderer.
type Grid struct {
	// Header is the dataset schema.
	Header []string

	// Rows holds one value per header column for every record.
	Rows [][]tabular.Value

	// Widths is the display width of each column, in runes.
	Widths []int
}

// BuildGrid lays out a dataset under its schema. maxWidth caps column widths;
// a non-positive value means DefaultMaxColumnWidth.
func BuildGrid(ds *tabular.Dataset, maxWidth int) (*Grid, error) {
	if ds == nil {
		return nil, ErrEmptySchema
	}
	header := ds.Schema()
	if len(header) == 0 {
		return nil, ErrEmptySchema
	}
	if maxWidth <= 0 {
		maxWidth = DefaultMaxColumnWidth
	}

	grid := &Grid{
		Header: header,
		Rows:   make([][]tabular.Value, 0, ds.Len()),
		Widths: make([]int, len(header)),
	}
	for i, h := range header {
		grid.Widths[i] = utf8.RuneCountInString(h)
	}

	for _, rec := range ds.Records() {
		row := make([]tabular.Value, len(header))
		for i, col := range header {
			v, ok := rec.Get(col)
			if !ok {
				v = tabular.NullValue()
			}
			row[i] = v
			if n := utf8.RuneCountInString(v.Text()); n > grid.Widths[i] {
				grid.Widths[i] = n
			}
		}
		grid.Rows = append(grid.Rows, row)
	}

	for i, w := range grid.Widths {
		if w > maxWidth {
			grid.Widths[i] = maxWidth
		}
	}
	return grid, nil
}

// Columns returns the number of columns.
func (g *Grid) Columns() int { return len(g.Header) }

// TextRows returns the header followed by every row as display strings.
func (g *Grid) TextRows() [][]string {
	out := make([][]string, 0, len(g.Rows)+1)
	out = append(out, append([]string(nil), g.Header...))
	for _, row := range g.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.Text()
		}
		out = append(out, cells)
	}
	return out
}
