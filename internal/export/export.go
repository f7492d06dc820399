// Package export renders a scope's dashboard view as an Excel workbook.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"pharmstock/m/internal/viewmodel"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Headers are the column titles of the item sheet.
var Headers = []string{"Name", "Quantity", "Expiry", "Status", "Notes", "Image"}

var widths = []float64{30, 12, 14, 16, 40, 50}

// SheetName turns an arbitrary title into a valid worksheet name.
func SheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '?', '*', '[', ']', ':':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	if name == "" {
		name = "Inventory"
	}
	return name
}

// Workbook writes the visible rows of view, one per line under a bold header, followed
// by a totals line covering the whole scope.
func Workbook(title string, view viewmodel.View) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(title)
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("drop default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, header := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return nil, err
		}
	}

	for r, row := range view.Visible {
		values := []any{row.Name, row.Quantity, row.Expiry, string(row.Status), row.Notes, row.Image}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	totals, _ := excelize.CoordinatesToCellName(1, len(view.Visible)+3)
	summary := []any{fmt.Sprintf("Total (%d items)", view.TotalCount), view.TotalQuantity}
	if err := f.SetSheetRow(sheet, totals, &summary); err != nil {
		return nil, fmt.Errorf("write totals: %w", err)
	}
	if err := f.SetCellStyle(sheet, totals, totals, headerStyle); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
