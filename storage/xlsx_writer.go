package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"classifieds-scraper/models"
)

const sheetName = "Sheet1"

// XLSXWriter writes a table as a single-sheet spreadsheet. The header row holds
// the column names; missing cells are left blank, numbers are stored as numbers.
type XLSXWriter struct{}

func NewXLSXWriter() *XLSXWriter { return &XLSXWriter{} }

func (x *XLSXWriter) Write(t *models.Table, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("xlsx: create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for j, col := range t.Columns {
		if err := setCell(f, j, 0, col); err != nil {
			return err
		}
	}

	for i, row := range t.Rows {
		for j, cell := range row {
			if cell.IsMissing() {
				continue
			}
			if err := setCell(f, j, i+1, cell.Value()); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(dest); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", dest, err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, v any) error {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return fmt.Errorf("xlsx: cell name: %w", err)
	}
	if err := f.SetCellValue(sheetName, name, v); err != nil {
		return fmt.Errorf("xlsx: set %s: %w", name, err)
	}
	return nil
}
