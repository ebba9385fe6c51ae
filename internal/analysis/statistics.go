package analysis

import (
	"github.com/montanaflynn/stats"
)

// Statistics summarizes a numeric series. Mean, Median and StdDev are rounded to
// two decimals; Min, Max and Total are exact.
type Statistics struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Total  float64 `json:"total"`
}

// ComputeStatistics returns descriptive statistics for values. StdDev is the
// population standard deviation. An empty series yields the zero Statistics.
func ComputeStatistics(values []float64) Statistics {
	if len(values) == 0 {
		return Statistics{}
	}
	data := stats.Float64Data(values)
	// errors only signal empty input, handled above
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	std, _ := stats.StandardDeviationPopulation(data)
	lo, _ := stats.Min(data)
	hi, _ := stats.Max(data)
	total, _ := stats.Sum(data)
	return Statistics{
		Mean:   round(mean, 2),
		Median: round(median, 2),
		StdDev: round(std, 2),
		Min:    lo,
		Max:    hi,
		Total:  total,
	}
}
