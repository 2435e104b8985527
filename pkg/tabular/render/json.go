package render

import (
	"bytes"
	"encoding/json"
	"io"

	"mercator-hq/tabula/pkg/tabular"
)

// JSONRenderer writes the grid as an array of objects.
type JSONRenderer struct {
	// Pretty enables indentation.
	Pretty bool
}

// NewJSONRenderer creates a new JSON renderer.
func NewJSONRenderer(pretty bool) *JSONRenderer {
	return &JSONRenderer{
		Pretty: pretty,
	}
}

// Format implements Renderer.
func (r *JSONRenderer) Format() tabular.Format { return tabular.FormatJSON }

// Render writes one object per row with keys in header order. Missing
// columns are written as null.
func (r *JSONRenderer) Render(grid *Grid, w io.Writer) error {
	ds := tabular.NewDataset()
	for _, row := range grid.Rows {
		rec := tabular.NewRecord(len(grid.Header))
		for i, col := range grid.Header {
			rec.Set(col, row[i])
		}
		ds.Append(rec)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if r.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(ds); err != nil {
		return err
	}

	_, err := w.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	return err
}
