package export

import (
	"strings"

	"mercator-hq/tabula/pkg/tabular"
)

// NormalizeFilename appends the canonical extension for format unless name
// already ends with it. The suffix match is case-sensitive, so "REPORT.XLSX"
// becomes "REPORT.XLSX.xlsx".
func NormalizeFilename(name string, format tabular.Format) string {
	ext := format.Extension()
	if ext == "" || strings.HasSuffix(name, ext) {
		return name
	}
	return name + ext
}
