// Package render turns a tabular.Dataset into file bytes.
//
// # Grid
//
// Every format starts from the same Grid built by BuildGrid: the header is the
// Dataset schema, each row holds one value per header column (missing columns
// are null, columns outside the schema are dropped), and each column width is
// the longest display text in runes, capped at Options.MaxColumnWidth.
//
// # Formats
//
//   - XLSX: one sheet, styled header row (bold white text on blue, centered,
//     thin borders), bordered data cells, an auto-filter over the populated
//     range, and the computed column widths. Numbers and booleans are written
//     as typed cells; lists are written as JSON text.
//   - CSV: header and rows joined by Options.Delimiter and separated by "\n".
//     Cells are NOT quoted or escaped. A cell containing the delimiter or a
//     newline produces a file that naive readers split incorrectly.
//   - JSON: an array of objects in schema order.
//
// Rendering is deterministic: identical input produces identical bytes.
//
// # Usage
//
//	data, mime, err := render.Render(ds, tabular.FormatXLSX, &render.Options{
//	    SheetName: "Report",
//	})
//	if err != nil {
//	    return err
//	}
package render
