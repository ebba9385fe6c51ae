package dataset

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownField is returned for a numeric field name Values does not know.
var ErrUnknownField = errors.New("unknown numeric field")

// Canonical numeric field names.
const (
	FieldRate       = "suicides_per_100k"
	FieldSuicides   = "suicides_no"
	FieldPopulation = "population"
	FieldGDP        = "gdp_per_capita"
	FieldYear       = "year"
)

var extractors = map[string]func(Record) float64{
	FieldRate:       func(r Record) float64 { return r.RatePer100k },
	FieldSuicides:   func(r Record) float64 { return float64(r.Suicides) },
	FieldPopulation: func(r Record) float64 { return float64(r.Population) },
	FieldGDP:        func(r Record) float64 { return r.GDPPerCapita },
	FieldYear:       func(r Record) float64 { return float64(r.Year) },
}

var labels = map[string]string{
	FieldRate:       "Suicide Rate",
	FieldSuicides:   "Suicides",
	FieldPopulation: "Population",
	FieldGDP:        "GDP per Capita",
	FieldYear:       "Year",
}

// Values extracts the named numeric field from every record, in order.
func Values(records []Record, field string) ([]float64, error) {
	get, ok := extractors[field]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownField, field, NumericFields())
	}
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = get(r)
	}
	return out, nil
}

// Label returns a human-readable name for a numeric field.
func Label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return field
}

// NumericFields lists the field names accepted by Values.
func NumericFields() []string {
	out := make([]string, 0, len(extractors))
	for k := range extractors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
