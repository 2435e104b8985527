package reader

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"

	"mercator-hq/tabula/pkg/tabular"
)

// MaxPreviewRows is the number of physical rows read from each sheet.
const MaxPreviewRows = 50

// Sheet is the preview of one worksheet.
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook is a preview of every sheet, in workbook order.
type Workbook struct {
	Sheets []Sheet
}

// Sheet returns the rows of the named sheet.
func (w *Workbook) Sheet(name string) ([][]string, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s.Rows, true
		}
	}
	return nil, false
}

// MarshalJSON encodes the workbook as {"sheet": [[...], ...]} in sheet order.
func (w *Workbook) MarshalJSON() ([]byte, error) {
	obj := tabular.NewObject()
	for _, s := range w.Sheets {
		rows := s.Rows
		if rows == nil {
			rows = [][]string{}
		}
		obj.Set(s.Name, rows)
	}
	return json.Marshal(obj)
}

// ReadSpreadsheet reads up to MaxPreviewRows physical rows of every sheet.
// Cells are returned as displayed text, empty cells as "". A row is skipped
// only when all of its cells are empty; rows are padded to the widest row of
// their sheet. The read is lossy and does not restore value types.
func ReadSpreadsheet(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, tabular.NewReadBackError(err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := readSheet(f, name)
		if err != nil {
			return nil, tabular.NewReadBackError(fmt.Errorf("sheet %q: %w", name, err))
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}

func readSheet(f *excelize.File, name string) ([][]string, error) {
	iter, err := f.Rows(name)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var (
		out   [][]string
		width int
	)
	for n := 0; n < MaxPreviewRows && iter.Next(); n++ {
		cells, err := iter.Columns()
		if err != nil {
			return nil, err
		}
		if allEmpty(cells) {
			continue
		}
		if len(cells) > width {
			width = len(cells)
		}
		out = append(out, cells)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	for i, row := range out {
		if len(row) < width {
			out[i] = append(row, make([]string, width-len(row))...)
		}
	}
	return out, nil
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
