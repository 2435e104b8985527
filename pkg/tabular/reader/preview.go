package reader

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"mercator-hq/tabula/pkg/artifact"
	"mercator-hq/tabula/pkg/tabular"
)

// MaxTextRunes is the number of characters kept from a text preview.
const MaxTextRunes = 5000

// Kind classifies a preview.
type Kind string

const (
	KindExcel  Kind = "excel"
	KindText   Kind = "text"
	KindBinary Kind = "binary"
)

// Document is a preview of a file's contents.
type Document struct {
	Type      Kind      `json:"type"`
	Filename  string    `json:"filename"`
	Sheets    *Workbook `json:"sheets,omitempty"`
	Content   string    `json:"content,omitempty"`
	Truncated bool      `json:"truncated,omitempty"`
	SizeBytes int       `json:"size_bytes"`
}

// Preview summarizes file bytes by extension: spreadsheets (.xlsx, .xls) are
// read with ReadSpreadsheet, text (.txt, .csv) is returned up to
// MaxTextRunes characters, and anything else reports its size only.
func Preview(name string, data []byte) (*Document, error) {
	doc := &Document{
		Filename:  name,
		SizeBytes: len(data),
	}

	switch {
	case strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xls"):
		wb, err := ReadSpreadsheet(data)
		if err != nil {
			return nil, err
		}
		doc.Type = KindExcel
		doc.Sheets = wb

	case strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".csv"):
		if !utf8.Valid(data) {
			return nil, tabular.NewReadBackError(errors.New("text file is not valid UTF-8"))
		}
		doc.Type = KindText
		doc.Content, doc.Truncated = truncateRunes(string(data), MaxTextRunes)

	default:
		doc.Type = KindBinary
	}
	return doc, nil
}

// Load fetches a URI and previews it.
func Load(ctx context.Context, fetcher artifact.Fetcher, uri string) (*Document, error) {
	data, err := fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	return Preview(filenameOf(uri), data)
}

func filenameOf(uri string) string {
	if name, _, err := artifact.ParseURI(uri); err == nil {
		return name
	}
	return strings.TrimPrefix(uri, "file://")
}

func truncateRunes(s string, n int) (string, bool) {
	if utf8.RuneCountInString(s) <= n {
		return s, false
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], true
		}
		i++
	}
	return s, false
}
