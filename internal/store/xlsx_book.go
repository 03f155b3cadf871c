package store

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook saves one table as sheet of a new workbook at path. Like
// WriteCSV it writes nothing for an empty table.
func WriteWorkbook(path, sheet string, header []string, rows [][]string) (bool, error) {
	if len(rows) == 0 {
		return false, nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, err
		}
	}
	sheet = sheetName(sheet)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	ensureSheet(f, sheet)

	if err := writeRow(f, sheet, 1, header); err != nil {
		return false, err
	}
	applyHeaderStyle(f, sheet, len(header))
	widths := columnWidths(header, rows)
	for i, r := range rows {
		if err := writeRow(f, sheet, i+2, r); err != nil {
			return false, err
		}
	}
	applyWidths(f, sheet, widths)
	if idx, err := f.GetSheetIndex(sheet); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	if err := f.SaveAs(path); err != nil {
		return false, err
	}
	return true, nil
}

// sheetName trims to the 31 characters a sheet title may hold.
func sheetName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Sheet1"
	}
	r := []rune(s)
	if len(r) > 31 {
		r = r[:31]
	}
	return string(r)
}

func ensureSheet(f *excelize.File, sheet string) {
	if f == nil || strings.TrimSpace(sheet) == "" {
		return
	}
	for _, s := range f.GetSheetList() {
		if s == sheet {
			return
		}
	}
	_, _ = f.NewSheet(sheet)
	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx != -1 && sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return f.SetSheetRow(sheet, cell, &vals)
}

func applyHeaderStyle(f *excelize.File, sheet string, cols int) {
	if f == nil || cols <= 0 {
		return
	}
	styleID, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "D9D9D9", Style: 1},
			{Type: "right", Color: "D9D9D9", Style: 1},
			{Type: "top", Color: "D9D9D9", Style: 1},
			{Type: "bottom", Color: "D9D9D9", Style: 1},
		},
	})
	if err != nil {
		return
	}
	start, _ := excelize.CoordinatesToCellName(1, 1)
	end, _ := excelize.CoordinatesToCellName(cols, 1)
	_ = f.SetCellStyle(sheet, start, end, styleID)
	_ = f.SetRowHeight(sheet, 1, 20)
	_ = f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		Split:       true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// columnWidths sizes each column to its longest cell, clamped to 10..60.
func columnWidths(header []string, rows [][]string) []float64 {
	n := len(header)
	for _, r := range rows {
		if len(r) > n {
			n = len(r)
		}
	}
	maxLen := make([]int, n)
	measure := func(r []string) {
		for i, v := range r {
			if l := len([]rune(v)); l > maxLen[i] {
				maxLen[i] = l
			}
		}
	}
	measure(header)
	for _, r := range rows {
		measure(r)
	}
	out := make([]float64, n)
	for i, l := range maxLen {
		w := float64(l + 2)
		if w < 10 {
			w = 10
		}
		if w > 60 {
			w = 60
		}
		out[i] = w
	}
	return out
}

func applyWidths(f *excelize.File, sheet string, widths []float64) {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		_ = f.SetColWidth(sheet, col, col, w)
	}
}
