package services

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/rodaine/table"

	"classifieds-scraper/models"
	"classifieds-scraper/utils"
)

// InsightKeys names the columns the report treats specially.
type InsightKeys struct {
	Price    string
	Location string
	URL      string
}

type InsightService struct {
	logger *utils.Logger
	keys   InsightKeys
	out    io.Writer
}

func NewInsightService(logger *utils.Logger, keys InsightKeys) *InsightService {
	return &InsightService{logger: logger, keys: keys, out: os.Stdout}
}

func (s *InsightService) Generate(t *models.Table) *models.TableReport {
	report := &models.TableReport{
		MissingByCol:   make(map[string]int),
		RowsByLocation: make(map[string]int),
	}
	if t == nil {
		return report
	}

	report.TotalRows = len(t.Rows)
	report.TotalColumns = len(t.Columns)

	for j, col := range t.Columns {
		stats := models.ColumnStats{Column: col, Min: math.Inf(1), Max: math.Inf(-1)}
		numeric := true
		var total float64

		for _, row := range t.Rows {
			c := row[j]
			if c.IsMissing() {
				report.MissingByCol[col]++
				stats.Missing++
				continue
			}
			v, ok := c.Number()
			if !ok {
				numeric = false
				continue
			}
			stats.Count++
			total += v
			stats.Min = math.Min(stats.Min, v)
			stats.Max = math.Max(stats.Max, v)
		}

		if numeric && stats.Count > 0 {
			stats.Mean = round2(total / float64(stats.Count))
			report.Numeric = append(report.Numeric, stats)
		}
	}

	if loc := t.ColumnIndex(s.keys.Location); loc >= 0 {
		for _, row := range t.Rows {
			if name := strings.TrimSpace(row[loc].String()); name != "" {
				report.RowsByLocation[name]++
			}
		}
	}

	report.MostExpensive = s.topPriced(t, 5)
	return report
}

func (s *InsightService) topPriced(t *models.Table, n int) []models.PricedRow {
	price := t.ColumnIndex(s.keys.Price)
	if price < 0 {
		return nil
	}
	loc := t.ColumnIndex(s.keys.Location)
	url := t.ColumnIndex(s.keys.URL)

	var rows []models.PricedRow
	for _, row := range t.Rows {
		v, ok := row[price].Number()
		if !ok {
			continue
		}
		pr := models.PricedRow{Price: v}
		if loc >= 0 {
			pr.Location = row[loc].String()
		}
		if url >= 0 {
			pr.URL = row[url].String()
		}
		rows = append(rows, pr)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Price > rows[j].Price
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

func (s *InsightService) Print(r *models.TableReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)
	w := s.out

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 LISTING HARVEST INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Rows    : \033[1m%d\033[0m\n", r.TotalRows)
	fmt.Fprintf(w, "  Columns : \033[1m%d\033[0m\n", r.TotalColumns)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Numeric Columns\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.Numeric) == 0 {
		fmt.Fprintf(w, "  No numeric columns\n")
	} else {
		tbl := table.New("Column", "Count", "Missing", "Mean", "Min", "Max").WithWriter(w)
		for _, c := range r.Numeric {
			tbl.AddRow(truncate(c.Column, 28), c.Count, c.Missing,
				fmt.Sprintf("%.2f", c.Mean), fmt.Sprintf("%.0f", c.Min), fmt.Sprintf("%.0f", c.Max))
		}
		tbl.Print()
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Most Expensive Listings\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.MostExpensive) == 0 {
		fmt.Fprintf(w, "  No price data available\n")
	} else {
		for i, p := range r.MostExpensive {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-28s \033[1;32m%.0f\033[0m  %s\n",
				i+1, truncate(p.Location, 28), p.Price, p.URL)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Listings by Location\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.RowsByLocation) == 0 {
		fmt.Fprintf(w, "  No location data\n")
	} else {
		type locCount struct {
			loc   string
			count int
		}
		var locs []locCount
		for loc, cnt := range r.RowsByLocation {
			locs = append(locs, locCount{loc, cnt})
		}
		sort.Slice(locs, func(i, j int) bool {
			if locs[i].count != locs[j].count {
				return locs[i].count > locs[j].count
			}
			return locs[i].loc < locs[j].loc
		})
		if len(locs) > 15 {
			locs = locs[:15]
		}
		for _, lc := range locs {
			bar := strings.Repeat("█", barWidth(lc.count, locs[0].count, maxBarWidth))
			fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(lc.loc, 28), bar, lc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

const maxBarWidth = 40

// barWidth scales count against max so the widest bar is width cells.
// Non-zero counts always get at least one cell.
func barWidth(count, max, width int) int {
	if count <= 0 || max <= 0 {
		return 0
	}
	if max <= width {
		return count
	}
	w := count * width / max
	if w < 1 {
		w = 1
	}
	return w
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
