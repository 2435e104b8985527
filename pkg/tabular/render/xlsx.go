package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"mercator-hq/tabula/pkg/tabular"
)

// HeaderFill is the header background color.
const HeaderFill = "4472C4"

// XLSXRenderer writes a single styled worksheet.
type XLSXRenderer struct {
	// SheetName names the worksheet.
	SheetName string
}

// NewXLSXRenderer creates a new XLSX renderer.
func NewXLSXRenderer(sheetName string) *XLSXRenderer {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &XLSXRenderer{
		SheetName: sheetName,
	}
}

// Format implements Renderer.
func (r *XLSXRenderer) Format() tabular.Format { return tabular.FormatXLSX }

// Render writes the workbook to w.
func (r *XLSXRenderer) Render(grid *Grid, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := r.SheetName
	if sheet != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, sheet); err != nil {
			return fmt.Errorf("failed to name sheet %q: %w", sheet, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{HeaderFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder(),
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	dataStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    thinBorder(),
	})
	if err != nil {
		return fmt.Errorf("failed to create data style: %w", err)
	}

	for c, name := range grid.Header {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("failed to write header %s: %w", cell, err)
		}
	}

	for i, row := range grid.Rows {
		for c, v := range row {
			if v.IsNull() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(v)); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	lastHeader, err := excelize.CoordinatesToCellName(grid.Columns(), 1)
	if err != nil {
		return err
	}
	lastCell, err := excelize.CoordinatesToCellName(grid.Columns(), len(grid.Rows)+1)
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if len(grid.Rows) > 0 {
		if err := f.SetCellStyle(sheet, "A2", lastCell, dataStyle); err != nil {
			return fmt.Errorf("failed to style data: %w", err)
		}
	}

	for c, width := range grid.Widths {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(width)); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
	}

	if err := f.AutoFilter(sheet, "A1:"+lastCell, []excelize.AutoFilterOptions{}); err != nil {
		return fmt.Errorf("failed to add auto-filter: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// cellValue maps a value onto the type excelize writes for it.
func cellValue(v tabular.Value) any {
	switch v.Kind() {
	case tabular.KindNumber:
		lit := string(v.Number())
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return i
		}
		f, ok := v.Float()
		if !ok {
			return v.Text()
		}
		// Integers past int64 stay numeric only if a float64 holds them exactly.
		if !strings.ContainsAny(lit, ".eE") && strconv.FormatFloat(f, 'f', -1, 64) != lit {
			return v.Text()
		}
		return f
	case tabular.KindBool:
		return v.Bool()
	default:
		return v.Text()
	}
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}
