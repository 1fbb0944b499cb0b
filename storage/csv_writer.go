package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"classifieds-scraper/models"
)

// CSVWriter writes a table as CSV: one header row with the column names, then
// one line per row. Missing cells are written as empty fields.
type CSVWriter struct{}

func NewCSVWriter() *CSVWriter { return &CSVWriter{} }

// Write creates (or truncates) the file at dest. Intermediate directories are
// created automatically.
func (c *CSVWriter) Write(t *models.Table, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", dest, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for j, cell := range row {
			record[j] = cell.String()
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return f.Close()
}
