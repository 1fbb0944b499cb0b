package services

import (
	"sort"

	"classifieds-scraper/models"
)

// AttributeUniverse returns the union of keys across records, sorted.
func AttributeUniverse(records []models.Record) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}

	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Unify reshapes heterogeneous records into one rectangular table. Columns are
// the attribute universe in lexicographic order, rows follow the input order,
// and an attribute absent from a record is a Missing cell.
func Unify(records []models.Record) *models.Table {
	cols := AttributeUniverse(records)
	t := &models.Table{
		Columns: cols,
		Rows:    make([][]models.Cell, len(records)),
	}

	for i, r := range records {
		row := make([]models.Cell, len(cols))
		for j, c := range cols {
			if v, ok := r[c]; ok {
				row[j] = v
			} else {
				row[j] = models.Missing()
			}
		}
		t.Rows[i] = row
	}
	return t
}
