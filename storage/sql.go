package storage

import (
	"database/sql"
	"fmt"

	"classifieds-scraper/models"
)

// columnKind is the storage type chosen for one table column.
type columnKind int

const (
	colText columnKind = iota
	colInt
	colFloat
)

// inferKinds picks a type per column: integer when every present cell is an
// Int, real when every present cell is numeric, text otherwise. All-missing
// columns are text.
func inferKinds(t *models.Table) []columnKind {
	kinds := make([]columnKind, len(t.Columns))
	for j := range t.Columns {
		seen, allInt, allNum := false, true, true
		for _, row := range t.Rows {
			c := row[j]
			if c.IsMissing() {
				continue
			}
			seen = true
			if c.Kind != models.KindInt {
				allInt = false
			}
			if !c.IsNumeric() {
				allNum = false
			}
		}
		switch {
		case !seen || !allNum:
			kinds[j] = colText
		case allInt:
			kinds[j] = colInt
		default:
			kinds[j] = colFloat
		}
	}
	return kinds
}

// sqlValue converts a cell to the driver value for a column of kind k.
func sqlValue(c models.Cell, k columnKind) any {
	if c.IsMissing() {
		return nil
	}
	switch k {
	case colInt:
		return c.Int
	case colFloat:
		v, _ := c.Number()
		return v
	}
	return c.String()
}

// scanTable reads every row of rows into a Table, keeping the column order of
// the result set.
func scanTable(rows *sql.Rows) (*models.Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	t := &models.Table{Columns: cols}
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make([]models.Cell, len(cols))
		for i, v := range raw {
			row[i] = cellFromDriver(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, rows.Err()
}

func cellFromDriver(v any) models.Cell {
	switch x := v.(type) {
	case nil:
		return models.Missing()
	case int64:
		return models.Int(x)
	case float64:
		return models.Float(x)
	case string:
		return models.Text(x)
	case []byte:
		return models.Text(string(x))
	}
	return models.Text(fmt.Sprint(v))
}
