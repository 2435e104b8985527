package render

import (
	"bytes"
	"fmt"
	"io"

	"mercator-hq/tabula/pkg/tabular"
)

const (
	// DefaultSheetName is the sheet name used when Options.SheetName is empty.
	DefaultSheetName = "Sheet1"

	// DefaultDelimiter is the CSV delimiter used when Options.Delimiter is zero.
	DefaultDelimiter = ','

	// DefaultMaxColumnWidth caps computed column widths.
	DefaultMaxColumnWidth = 50
)

// Options controls rendering. The zero value uses the defaults.
type Options struct {
	// SheetName names the XLSX sheet.
	SheetName string

	// Delimiter separates CSV cells.
	Delimiter rune

	// MaxColumnWidth caps grid column widths, in runes.
	MaxColumnWidth int

	// Pretty indents JSON output.
	Pretty bool
}

// DefaultOptions returns options with every field set to its default.
func DefaultOptions() *Options {
	return &Options{
		SheetName:      DefaultSheetName,
		Delimiter:      DefaultDelimiter,
		MaxColumnWidth: DefaultMaxColumnWidth,
	}
}

func (o *Options) withDefaults() Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.SheetName == "" {
		out.SheetName = DefaultSheetName
	}
	if out.Delimiter == 0 {
		out.Delimiter = DefaultDelimiter
	}
	if out.MaxColumnWidth <= 0 {
		out.MaxColumnWidth = DefaultMaxColumnWidth
	}
	return out
}

// Renderer writes a grid in one file format.
type Renderer interface {
	// Format returns the format this renderer produces.
	Format() tabular.Format

	// Render writes the grid to w.
	Render(grid *Grid, w io.Writer) error
}

// NewRenderer returns the renderer for a format.
func NewRenderer(format tabular.Format, opts *Options) (Renderer, error) {
	o := opts.withDefaults()
	switch format {
	case tabular.FormatXLSX:
		return NewXLSXRenderer(o.SheetName), nil
	case tabular.FormatCSV:
		return NewCSVRenderer(o.Delimiter), nil
	case tabular.FormatJSON:
		return NewJSONRenderer(o.Pretty), nil
	default:
		return nil, tabular.NewRenderError(format, fmt.Errorf("unsupported format %q", format))
	}
}

// Render renders a dataset and returns the bytes with their MIME type.
// It fails with a RenderError when the dataset has no columns.
func Render(ds *tabular.Dataset, format tabular.Format, opts *Options) ([]byte, string, error) {
	o := opts.withDefaults()

	renderer, err := NewRenderer(format, &o)
	if err != nil {
		return nil, "", err
	}

	grid, err := BuildGrid(ds, o.MaxColumnWidth)
	if err != nil {
		return nil, "", tabular.NewRenderError(format, err)
	}

	var buf bytes.Buffer
	if err := renderer.Render(grid, &buf); err != nil {
		return nil, "", tabular.NewRenderError(format, err)
	}
	return buf.Bytes(), format.MimeType(), nil
}
