package render

import (
	"bufio"
	"io"

	"mercator-hq/tabula/pkg/tabular"
)

// CSVRenderer writes delimited text without quoting.
type CSVRenderer struct {
	// Delimiter separates cells.
	Delimiter rune
}

// NewCSVRenderer creates a new CSV renderer.
func NewCSVRenderer(delimiter rune) *CSVRenderer {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	return &CSVRenderer{
		Delimiter: delimiter,
	}
}

// Format implements Renderer.
func (r *CSVRenderer) Format() tabular.Format { return tabular.FormatCSV }

// Render writes the header and rows separated by "\n", with no trailing
// newline. Embedded delimiters and newlines are written as is.
func (r *CSVRenderer) Render(grid *Grid, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i, row := range grid.TextRows() {
		if i > 0 {
			bw.WriteByte('\n')
		}
		for j, cell := range row {
			if j > 0 {
				bw.WriteRune(r.Delimiter)
			}
			bw.WriteString(cell)
		}
	}
	return bw.Flush()
}
