package tabular

import (
	"fmt"
	"strings"
)

// Format identifies an output encoding for a rendered dataset.
type Format string

const (
	// FormatXLSX is the Office Open XML spreadsheet encoding.
	FormatXLSX Format = "xlsx"
	// FormatCSV is the delimited-text encoding.
	FormatCSV Format = "csv"
	// FormatJSON is a JSON array of records in schema order.
	FormatJSON Format = "json"
)

// MIME types attached to rendered artifacts.
const (
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeCSV  = "text/csv"
	MimeJSON = "application/json"
)

// Formats lists every supported format.
var Formats = []Format{FormatXLSX, FormatCSV, FormatJSON}

// ParseFormat parses a user-supplied format name. Matching is
// case-insensitive and accepts a few common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xlsx", "excel", "spreadsheet":
		return FormatXLSX, nil
	case "csv", "delimited", "text/csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (supported: xlsx, csv, json)", s)
	}
}

// Extension returns the canonical file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatXLSX:
		return ".xlsx"
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	default:
		return ""
	}
}

// MimeType returns the content type for the format.
func (f Format) MimeType() string {
	switch f {
	case FormatXLSX:
		return MimeXLSX
	case FormatCSV:
		return MimeCSV
	case FormatJSON:
		return MimeJSON
	default:
		return "application/octet-stream"
	}
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	return f.Extension() != ""
}
