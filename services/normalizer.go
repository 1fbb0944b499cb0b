package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"classifieds-scraper/models"
	"classifieds-scraper/utils"
)

// Coerce strips every match of pattern from the text form of value and casts
// the remainder to target. Any failure yields a Missing cell. A nil pattern
// strips nothing.
func Coerce(value models.Cell, pattern *regexp.Regexp, target models.NumericType) models.Cell {
	if value.IsMissing() {
		return models.Missing()
	}

	s := value.String()
	if pattern != nil {
		s = pattern.ReplaceAllString(s, "")
	}
	s = strings.TrimSpace(s)

	switch target {
	case models.TypeInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return models.Missing()
		}
		return models.Int(n)
	case models.TypeFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return models.Missing()
		}
		return models.Float(f)
	}
	return models.Missing()
}

// CompilePattern compiles a strip pattern. The empty pattern compiles to nil.
// \s also matches Unicode separators, so no-break spaces used as thousands
// separators are stripped like ordinary spaces.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(widenSpace(pattern))
	if err != nil {
		return nil, fmt.Errorf("normalizer: compile pattern %q: %w", pattern, err)
	}
	return re, nil
}

const unicodeSpace = `\s\p{Z}\x{85}`

// widenSpace rewrites every \s escape of pattern to also cover Unicode
// space separators. Escaped backslashes, \Q...\E literals and bracket
// classes are respected.
func widenSpace(pattern string) string {
	var b strings.Builder
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			next := pattern[i+1]
			i++
			switch {
			case next == 's' && inClass:
				b.WriteString(unicodeSpace)
			case next == 's':
				b.WriteString("[" + unicodeSpace + "]")
			case next == 'Q':
				end := strings.Index(pattern[i+1:], `\E`)
				if end < 0 {
					b.WriteString(pattern[i-1:])
					return b.String()
				}
				b.WriteString(pattern[i-1 : i+1+end+2])
				i += end + 2
			default:
				b.WriteByte(c)
				b.WriteByte(next)
			}
		case c == '[' && !inClass:
			inClass = true
			b.WriteByte(c)
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				b.WriteByte('^')
				i++
			}
			// a leading ] is a literal
			if i+1 < len(pattern) && pattern[i+1] == ']' {
				b.WriteByte(']')
				i++
			}
		case c == '[' && inClass && strings.HasPrefix(pattern[i:], "[:"):
			end := strings.Index(pattern[i:], ":]")
			if end < 0 {
				b.WriteByte(c)
				continue
			}
			b.WriteString(pattern[i : i+end+2])
			i += end + 1
		case c == ']' && inClass:
			inClass = false
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Normalizer applies a column policy list to a unified table.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Apply returns a normalized copy of t. The input table is not modified.
// Policies naming a column absent from t are skipped.
func (n *Normalizer) Apply(t *models.Table, policies []models.ColumnPolicy) (*models.Table, error) {
	out := t.Clone()

	for _, p := range policies {
		idx := out.ColumnIndex(p.Column)
		if idx < 0 {
			n.logger.Warn("[normalizer] Column %q not in table, skipping", p.Column)
			continue
		}

		re, err := CompilePattern(p.Pattern)
		if err != nil {
			return nil, err
		}

		failed := 0
		for _, row := range out.Rows {
			before := row[idx]
			row[idx] = Coerce(before, re, p.Type)
			if !before.IsMissing() && row[idx].IsMissing() {
				failed++
			}
		}
		if failed > 0 {
			n.logger.Debug("[normalizer] %s: %d values could not be cast to %s", p.Column, failed, p.Type)
		}

		if p.Impute {
			n.impute(out, idx, p)
		}
	}

	return out, nil
}

// impute fills missing cells of column idx with the mean of its non-missing
// values, cast to the policy type. A column with no values stays missing.
func (n *Normalizer) impute(t *models.Table, idx int, p models.ColumnPolicy) {
	var sum float64
	count := 0
	for _, row := range t.Rows {
		if v, ok := row[idx].Number(); ok {
			sum += v
			count++
		}
	}

	if count == 0 {
		if len(t.Rows) > 0 {
			n.logger.Warn("[normalizer] %s: no parsable values, mean undefined, column left missing", p.Column)
		}
		return
	}

	mean := sum / float64(count)
	fill := castNumber(mean, p.Type)

	filled := 0
	for _, row := range t.Rows {
		if row[idx].IsMissing() {
			row[idx] = fill
			filled++
			continue
		}
		v, _ := row[idx].Number()
		row[idx] = castNumber(v, p.Type)
	}

	n.logger.Info("[normalizer] %s: imputed %d of %d cells with mean %s", p.Column, filled, len(t.Rows), fill)
}

// castNumber converts v to the target type; int truncates toward zero.
func castNumber(v float64, target models.NumericType) models.Cell {
	if target == models.TypeInt {
		return models.Int(int64(v))
	}
	return models.Float(v)
}
