package models

// ColumnStats summarizes one numeric column of the cleaned table.
type ColumnStats struct {
	Column  string
	Count   int
	Mean    float64
	Min     float64
	Max     float64
	Missing int
}

// PricedRow is a single row picked out for the price ranking.
type PricedRow struct {
	URL      string
	Price    float64
	Location string
}

// TableReport holds the computed analytics over the cleaned table.
type TableReport struct {
	TotalRows      int
	TotalColumns   int
	MissingByCol   map[string]int
	Numeric        []ColumnStats
	MostExpensive  []PricedRow
	RowsByLocation map[string]int
}
