package models

import (
	"fmt"
	"strings"
)

// Record is the flat attribute map extracted from one detail page.
type Record map[string]Cell

// Keys returns the attribute names present in the record, unordered.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	return keys
}

// NumericType is the target type of a coerced column.
type NumericType int

const (
	TypeInt NumericType = iota
	TypeFloat
)

func (t NumericType) String() string {
	if t == TypeFloat {
		return "float"
	}
	return "int"
}

// ParseNumericType accepts "int" or "float" (case-insensitive).
func ParseNumericType(s string) (NumericType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "integer":
		return TypeInt, nil
	case "float", "double":
		return TypeFloat, nil
	}
	return TypeInt, fmt.Errorf("unknown numeric type %q", s)
}

// UnmarshalYAML lets policy files spell the type as a plain string.
func (t *NumericType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseNumericType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ColumnPolicy describes how one column of the unified table is coerced.
type ColumnPolicy struct {
	Column  string      `yaml:"column"`
	Pattern string      `yaml:"pattern"`
	Type    NumericType `yaml:"type"`
	Impute  bool        `yaml:"impute"`
}

// Extraction is the result of reading one detail page. SpecialErr is set when
// the special fields could not be read; Record is valid either way.
type Extraction struct {
	Record     Record
	SpecialErr error
}
