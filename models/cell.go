package models

import (
	"strconv"
)

// CellKind tags the value held by a Cell.
type CellKind int

const (
	KindMissing CellKind = iota
	KindText
	KindInt
	KindFloat
)

// Cell is one value of a Record or Table. The zero value is Missing, which is
// distinct from an empty Text cell.
type Cell struct {
	Kind  CellKind
	Text  string
	Int   int64
	Float float64
}

// Missing returns the explicit "no value" marker.
func Missing() Cell { return Cell{Kind: KindMissing} }

func Text(s string) Cell { return Cell{Kind: KindText, Text: s} }

func Int(n int64) Cell { return Cell{Kind: KindInt, Int: n} }

func Float(f float64) Cell { return Cell{Kind: KindFloat, Float: f} }

func (c Cell) IsMissing() bool { return c.Kind == KindMissing }

// IsNumeric reports whether the cell holds an Int or Float.
func (c Cell) IsNumeric() bool { return c.Kind == KindInt || c.Kind == KindFloat }

// Number returns the numeric value as float64. ok is false for Missing and Text.
func (c Cell) Number() (float64, bool) {
	switch c.Kind {
	case KindInt:
		return float64(c.Int), true
	case KindFloat:
		return c.Float, true
	}
	return 0, false
}

// String renders the cell as text. Missing renders as "".
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindInt:
		return strconv.FormatInt(c.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(c.Float, 'f', -1, 64)
	}
	return ""
}

// Value returns the cell as a plain Go value for writers and database drivers:
// nil, string, int64 or float64.
func (c Cell) Value() any {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindInt:
		return c.Int
	case KindFloat:
		return c.Float
	}
	return nil
}
