package analysis

import (
	"github.com/KaramelBytes/mortstat/internal/dataset"
)

// Trend directions reported by Summarize.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
)

// Summary is the executive overview of a record set.
type Summary struct {
	Records   int `json:"records"`
	Countries int `json:"countries"`
	FirstYear int `json:"first_year"`
	LastYear  int `json:"last_year"`

	Rate Statistics `json:"rate"`

	FirstRate    float64 `json:"first_rate"`
	LastRate     float64 `json:"last_rate"`
	Trend        string  `json:"trend"`
	TrendPercent float64 `json:"trend_percent"`

	Highest *CountryRate `json:"highest,omitempty"`
	Lowest  *CountryRate `json:"lowest,omitempty"`

	HighestRiskGeneration *GenerationStats `json:"highest_risk_generation,omitempty"`
	GenerationSpread      float64          `json:"generation_spread"`

	GDPCorrelation CorrelationResult `json:"gdp_correlation"`

	// EffectiveClusters is 0 when no clustering was supplied.
	EffectiveClusters int `json:"effective_clusters"`
}

// Summarize derives the executive summary. clusters may be nil.
func Summarize(records []dataset.Record, clusters *ClusterResult) Summary {
	s := Summary{Records: len(records)}
	if len(records) == 0 {
		return s
	}

	rates, _ := dataset.Values(records, dataset.FieldRate)
	s.Rate = ComputeStatistics(rates)

	countries := make(map[string]struct{})
	s.FirstYear, s.LastYear = records[0].Year, records[0].Year
	for _, r := range records {
		countries[r.Country] = struct{}{}
		if r.Year < s.FirstYear {
			s.FirstYear = r.Year
		}
		if r.Year > s.LastYear {
			s.LastYear = r.Year
		}
	}
	s.Countries = len(countries)

	_, yearly := YearlyRates(records)
	s.FirstRate, s.LastRate = yearly[0], yearly[len(yearly)-1]
	s.Trend = TrendDecreasing
	if s.LastRate > s.FirstRate {
		s.Trend = TrendIncreasing
	}
	if s.FirstRate > 0 {
		change := (s.LastRate - s.FirstRate) / s.FirstRate * 100
		if change < 0 {
			change = -change
		}
		s.TrendPercent = round(change, 1)
	}

	highest, lowest := TopCountries(records, 1)
	s.Highest, s.Lowest = &highest[0], &lowest[0]

	gens := AnalyzeGenerations(records)
	s.HighestRiskGeneration = &gens[0]
	s.GenerationSpread = gens[0].AvgRate - gens[len(gens)-1].AvgRate

	s.GDPCorrelation, _ = CorrelateFields(records, dataset.FieldRate, dataset.FieldGDP)

	if clusters != nil {
		s.EffectiveClusters = clusters.EffectiveClusters()
	}
	return s
}
