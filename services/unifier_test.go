package services

import (
	"testing"

	"classifieds-scraper/models"
)

func TestUnifyTwoRecordScenario(t *testing.T) {
	records := []models.Record{
		{"A": models.Text("1 km"), "Url": models.Text("u1")},
		{"B": models.Text("x"), "Url": models.Text("u2")},
	}

	tbl := Unify(records)

	wantCols := []string{"A", "B", "Url"}
	if len(tbl.Columns) != len(wantCols) {
		t.Fatalf("columns: got %v, want %v", tbl.Columns, wantCols)
	}
	for i, c := range wantCols {
		if tbl.Columns[i] != c {
			t.Errorf("columns[%d]: got %q, want %q", i, tbl.Columns[i], c)
		}
	}

	wantRows := [][]models.Cell{
		{models.Text("1 km"), models.Missing(), models.Text("u1")},
		{models.Missing(), models.Text("x"), models.Text("u2")},
	}
	if len(tbl.Rows) != len(wantRows) {
		t.Fatalf("rows: got %d, want %d", len(tbl.Rows), len(wantRows))
	}
	for i, row := range wantRows {
		for j, cell := range row {
			if tbl.Rows[i][j] != cell {
				t.Errorf("row %d col %q: got %+v, want %+v", i, wantCols[j], tbl.Rows[i][j], cell)
			}
		}
	}
}

func TestUnifyIsRectangular(t *testing.T) {
	records := []models.Record{
		{"Url": models.Text("u1")},
		{"Url": models.Text("u2"), "Moc": models.Text("60 KM"), "Kolor": models.Text("Czarny")},
		{"Url": models.Text("u3"), "Cena": models.Int(9000)},
		{},
	}

	tbl := Unify(records)

	if len(tbl.Columns) != len(AttributeUniverse(records)) {
		t.Errorf("columns: got %d, want %d", len(tbl.Columns), len(AttributeUniverse(records)))
	}
	if len(tbl.Rows) != len(records) {
		t.Fatalf("rows: got %d, want %d (no row dropped)", len(tbl.Rows), len(records))
	}
	for i, row := range tbl.Rows {
		if len(row) != len(tbl.Columns) {
			t.Errorf("row %d: %d cells, want %d", i, len(row), len(tbl.Columns))
		}
	}

	moc := tbl.ColumnIndex("Moc")
	if !tbl.Rows[0][moc].IsMissing() {
		t.Errorf("row 0 Moc: got %+v, want missing", tbl.Rows[0][moc])
	}
}

func TestUnifyEmptyTextIsNotMissing(t *testing.T) {
	tbl := Unify([]models.Record{{"A": models.Text("")}, {}})

	if tbl.Rows[0][0].IsMissing() {
		t.Error("empty text should stay distinct from missing")
	}
	if !tbl.Rows[1][0].IsMissing() {
		t.Error("absent key should be missing")
	}
}

func TestUnifyNoRecords(t *testing.T) {
	tbl := Unify(nil)
	if len(tbl.Columns) != 0 || len(tbl.Rows) != 0 {
		t.Errorf("expected empty table, got %+v", tbl)
	}
}
