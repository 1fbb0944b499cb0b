package services

import (
	"io"
	"regexp"
	"testing"

	"classifieds-scraper/models"
	"classifieds-scraper/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLoggerWithOutput(io.Discard) }

var kmPattern = regexp.MustCompile(`km|\s`)

func mustPattern(pattern string) *regexp.Regexp {
	re, err := CompilePattern(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		value   models.Cell
		pattern *regexp.Regexp
		target  models.NumericType
		want    models.Cell
	}{
		{"mileage", models.Text("120000 km"), kmPattern, models.TypeInt, models.Int(120000)},
		{"mileage with spaces", models.Text("120 000 km"), kmPattern, models.TypeInt, models.Int(120000)},
		{"garbage", models.Text("garbage"), kmPattern, models.TypeInt, models.Missing()},
		{"empty remainder", models.Text(" km "), kmPattern, models.TypeInt, models.Missing()},
		{"missing stays missing", models.Missing(), kmPattern, models.TypeInt, models.Missing()},
		{"no pattern", models.Text("5"), nil, models.TypeInt, models.Int(5)},
		{"no pattern with padding", models.Text(" 2004 "), nil, models.TypeInt, models.Int(2004)},
		{"decimal to int fails", models.Text("1.5"), nil, models.TypeInt, models.Missing()},
		{"float target", models.Text("1 368 cm3"), regexp.MustCompile(`cm3|\s`), models.TypeFloat, models.Float(1368)},
		{"no-break space separator", models.Text("120\u00a0000 km"), mustPattern(`km|\s`), models.TypeInt, models.Int(120000)},
		{"narrow no-break space separator", models.Text("1\u202f368 cm3"), mustPattern(`cm3|\s`), models.TypeFloat, models.Float(1368)},
		{"figure space separator", models.Text("150\u2007KM"), mustPattern(`KM|\s`), models.TypeInt, models.Int(150)},
		{"nan rejected", models.Text("NaN"), nil, models.TypeFloat, models.Missing()},
		{"int input idempotent", models.Int(120000), nil, models.TypeInt, models.Int(120000)},
		{"float input idempotent", models.Float(2.5), nil, models.TypeFloat, models.Float(2.5)},
	}

	for _, tt := range tests {
		got := Coerce(tt.value, tt.pattern, tt.target)
		if got != tt.want {
			t.Errorf("%s: Coerce(%+v) = %+v; want %+v", tt.name, tt.value, got, tt.want)
		}
	}
}

func TestCoerceIdempotent(t *testing.T) {
	for _, v := range []models.Cell{models.Text("120000 km"), models.Text("oops"), models.Missing()} {
		once := Coerce(v, kmPattern, models.TypeInt)
		twice := Coerce(once, nil, models.TypeInt)
		if once != twice {
			t.Errorf("Coerce not idempotent for %+v: %+v then %+v", v, once, twice)
		}
	}
}

func TestCompilePatternEmpty(t *testing.T) {
	re, err := CompilePattern("")
	if err != nil || re != nil {
		t.Errorf("CompilePattern(\"\") = %v, %v; want nil, nil", re, err)
	}
	if _, err := CompilePattern("("); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestCompilePatternUnicodeSpace(t *testing.T) {
	tests := []struct {
		pattern string
		in      string
		want    string
	}{
		{`\s`, "a\u00a0b c", "abc"},
		{`[\s,]`, "1\u202f000,5", "10005"},
		{`[^\s]`, "a\u00a0b", "\u00a0"},
		{`\\s`, `x\s y`, "x y"},
		{`\Q\s\E`, `a\sb c`, "ab c"},
		{`[[:digit:]\s]`, "1\u00a0a", "a"},
		{`[]\s]`, "]\u00a0x", "x"},
	}

	for _, tt := range tests {
		re, err := CompilePattern(tt.pattern)
		if err != nil {
			t.Fatalf("CompilePattern(%q): %v", tt.pattern, err)
		}
		if got := re.ReplaceAllString(tt.in, ""); got != tt.want {
			t.Errorf("pattern %q on %q: got %q, want %q", tt.pattern, tt.in, got, tt.want)
		}
	}
}

func TestApplyStripsNoBreakSpaces(t *testing.T) {
	n := NewNormalizer(newTestLogger())
	in := columnTable("Przebieg", models.Text("120\u00a0000 km"), models.Text("80 000 km"))

	out, err := n.Apply(in, []models.ColumnPolicy{{Column: "Przebieg", Pattern: `km|\s`, Type: models.TypeInt, Impute: true}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []models.Cell{models.Int(120000), models.Int(80000)}
	for i, w := range want {
		if out.Rows[i][0] != w {
			t.Errorf("row %d: got %+v, want %+v", i, out.Rows[i][0], w)
		}
	}
}

func columnTable(name string, cells ...models.Cell) *models.Table {
	t := &models.Table{Columns: []string{name}}
	for _, c := range cells {
		t.Rows = append(t.Rows, []models.Cell{c})
	}
	return t
}

func TestApplyImputesMean(t *testing.T) {
	n := NewNormalizer(newTestLogger())
	in := columnTable("A", models.Text("10 km"), models.Text("bad"), models.Missing())

	out, err := n.Apply(in, []models.ColumnPolicy{{Column: "A", Pattern: `km|\s`, Type: models.TypeInt, Impute: true}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	for i, row := range out.Rows {
		if row[0] != models.Int(10) {
			t.Errorf("row %d: got %+v, want Int(10)", i, row[0])
		}
	}
	if in.Rows[0][0] != models.Text("10 km") {
		t.Error("Apply modified the input table")
	}
}

func TestApplyImputeTruncatesMean(t *testing.T) {
	n := NewNormalizer(newTestLogger())
	in := columnTable("Moc", models.Text("75 KM"), models.Text("90 KM"), models.Missing())

	out, err := n.Apply(in, []models.ColumnPolicy{{Column: "Moc", Pattern: `KM|\s`, Type: models.TypeInt, Impute: true}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []models.Cell{models.Int(75), models.Int(90), models.Int(82)}
	for i, w := range want {
		if out.Rows[i][0] != w {
			t.Errorf("row %d: got %+v, want %+v", i, out.Rows[i][0], w)
		}
	}
}

func TestApplyImputedColumnHasNoMissing(t *testing.T) {
	n := NewNormalizer(newTestLogger())
	in := columnTable("X",
		models.Text("1"), models.Missing(), models.Text("x"), models.Text("2.5"), models.Float(4), models.Text("7"))

	for _, typ := range []models.NumericType{models.TypeInt, models.TypeFloat} {
		out, err := n.Apply(in, []models.ColumnPolicy{{Column: "X", Type: typ, Impute: true}})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		want := models.KindInt
		if typ == models.TypeFloat {
			want = models.KindFloat
		}
		for i, row := range out.Rows {
			if row[0].Kind != want {
				t.Errorf("%s row %d: kind %v, want %v", typ, i, row[0].Kind, want)
			}
		}
	}
}

func TestApplyWithoutImputeKeepsMissing(t *testing.T) {
	n := NewNormalizer(newTestLogger())
	in := columnTable("Liczba drzwi", models.Text("5"), models.Text("trzy"), models.Missing())

	out, err := n.Apply(in, []models.ColumnPolicy{{Column: "Liczba drzwi", Type: models.TypeInt}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []models.Cell{models.Int(5), models.Missing(), models.Missing()}
	for i, w := range want {
		if out.Rows[i][0] != w {
			t.Errorf("row %d: got %+v, want %+v", i, out.Rows[i][0], w)
		}
	}
}

func TestApplyImputeWithNoValuesLeavesMissing(t *testing.T) {
	n := NewNormalizer(newTestLogger())
	in := columnTable("A", models.Text("bad"), models.Missing())

	out, err := n.Apply(in, []models.ColumnPolicy{{Column: "A", Type: models.TypeInt, Impute: true}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i, row := range out.Rows {
		if !row[0].IsMissing() {
			t.Errorf("row %d: got %+v, want missing", i, row[0])
		}
	}
}

func TestApplySkipsUnknownColumn(t *testing.T) {
	n := NewNormalizer(newTestLogger())
	in := columnTable("A", models.Text("1"))

	out, err := n.Apply(in, []models.ColumnPolicy{{Column: "Nope", Type: models.TypeInt, Impute: true}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Rows[0][0] != models.Text("1") {
		t.Errorf("untouched column changed: %+v", out.Rows[0][0])
	}
}

func TestApplyInvalidPattern(t *testing.T) {
	n := NewNormalizer(newTestLogger())
	in := columnTable("A", models.Text("1"))

	if _, err := n.Apply(in, []models.ColumnPolicy{{Column: "A", Pattern: "(", Type: models.TypeInt}}); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
