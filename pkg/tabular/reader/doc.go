// Package reader previews rendered files.
//
// ReadSpreadsheet skims an XLSX workbook: the first 50 rows of every sheet
// as display strings, with fully empty rows skipped. It is meant for "write a
// report, look at it" flows and is not an inverse of the renderer: numbers,
// booleans, and lists all come back as text.
//
// Preview dispatches on the file extension and Load fetches bytes through an
// artifact.Fetcher first.
package reader
