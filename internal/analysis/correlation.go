package analysis

import (
	"math"

	"github.com/KaramelBytes/mortstat/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// Correlation strength labels.
const (
	StrengthStrong   = "Strong"
	StrengthModerate = "Moderate"
	StrengthWeak     = "Weak"
	StrengthVeryWeak = "Very Weak"
)

// CorrelationResult is a labelled Pearson coefficient between two variables.
type CorrelationResult struct {
	Variable1   string  `json:"variable1"`
	Variable2   string  `json:"variable2"`
	Coefficient float64 `json:"coefficient"`
	Strength    string  `json:"strength"`
}

// Pearson returns the Pearson correlation of x and y in [-1, 1]. Mismatched or
// empty series, and series without variance, yield 0.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}
	if isConstant(x) || isConstant(y) {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return clamp(r, -1, 1)
}

// CorrelationStrength bands |r| into a qualitative label.
func CorrelationStrength(r float64) string {
	a := math.Abs(r)
	switch {
	case a >= 0.7:
		return StrengthStrong
	case a >= 0.4:
		return StrengthModerate
	case a >= 0.2:
		return StrengthWeak
	default:
		return StrengthVeryWeak
	}
}

// Correlate builds a CorrelationResult for two named series. The coefficient is
// rounded to three decimals and the strength is taken from the rounded value.
func Correlate(name1, name2 string, x, y []float64) CorrelationResult {
	r := round(Pearson(x, y), 3)
	return CorrelationResult{
		Variable1:   name1,
		Variable2:   name2,
		Coefficient: r,
		Strength:    CorrelationStrength(r),
	}
}

// CorrelateFields correlates two numeric record fields by name.
func CorrelateFields(records []dataset.Record, field1, field2 string) (CorrelationResult, error) {
	x, err := dataset.Values(records, field1)
	if err != nil {
		return CorrelationResult{}, err
	}
	y, err := dataset.Values(records, field2)
	if err != nil {
		return CorrelationResult{}, err
	}
	return Correlate(dataset.Label(field1), dataset.Label(field2), x, y), nil
}

// AnalyzeCorrelations runs the standard pairs: rate vs GDP and rate vs population.
func AnalyzeCorrelations(records []dataset.Record) []CorrelationResult {
	pairs := [][2]string{
		{dataset.FieldRate, dataset.FieldGDP},
		{dataset.FieldRate, dataset.FieldPopulation},
	}
	out := make([]CorrelationResult, 0, len(pairs))
	for _, p := range pairs {
		// both fields are known, so no error is possible
		res, _ := CorrelateFields(records, p[0], p[1])
		out = append(out, res)
	}
	return out
}
