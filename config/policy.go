package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"classifieds-scraper/models"
)

// DefaultColumnPolicies are the otomoto columns coerced to integers: mileage,
// engine displacement and power have their units stripped and gaps filled
// with the column mean; door count, seat count and production year are cast
// as-is and keep their gaps.
func DefaultColumnPolicies() []models.ColumnPolicy {
	return []models.ColumnPolicy{
		{Column: "Przebieg", Pattern: `km|\s`, Type: models.TypeInt, Impute: true},
		{Column: "Pojemność skokowa", Pattern: `cm3|\s`, Type: models.TypeInt, Impute: true},
		{Column: "Liczba drzwi", Pattern: "", Type: models.TypeInt, Impute: false},
		{Column: "Liczba miejsc", Pattern: "", Type: models.TypeInt, Impute: false},
		{Column: "Rok produkcji", Pattern: "", Type: models.TypeInt, Impute: false},
		{Column: "Moc", Pattern: `KM|\s`, Type: models.TypeInt, Impute: true},
	}
}

type policyFile struct {
	Columns []models.ColumnPolicy `yaml:"columns"`
}

// LoadColumnPolicies reads a YAML policy file. An empty path returns the
// defaults.
//
//	columns:
//	  - column: Przebieg
//	    pattern: 'km|\s'
//	    type: int
//	    impute: true
func LoadColumnPolicies(path string) ([]models.ColumnPolicy, error) {
	if path == "" {
		return DefaultColumnPolicies(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read column policy %s: %w", path, err)
	}

	var pf policyFile
	if err := yaml.UnmarshalStrict(data, &pf); err != nil {
		return nil, fmt.Errorf("config: parse column policy %s: %w", path, err)
	}
	for i, p := range pf.Columns {
		if p.Column == "" {
			return nil, fmt.Errorf("config: column policy %s: entry %d has no column name", path, i+1)
		}
	}
	return pf.Columns, nil
}
