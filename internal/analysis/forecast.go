package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/mortstat/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ForecastMethod selects the forecasting model.
type ForecastMethod string

const (
	// MethodAutoregressive fits AR(1) on first differences of the yearly rate.
	MethodAutoregressive ForecastMethod = "arima"
	// MethodLinear extrapolates an ordinary least squares trend line.
	MethodLinear ForecastMethod = "linear"
)

// z-score of the two-sided 95% interval.
const confidenceZ = 1.96

// minAutoregressiveYears is the history needed before AR(1) is attempted.
const minAutoregressiveYears = 3

// MaxForecastYears is the longest horizon Forecast accepts.
const MaxForecastYears = 100

// ForecastPoint is the projected rate for one future year.
type ForecastPoint struct {
	Year           int     `json:"year"`
	Predicted      float64 `json:"predicted"`
	ConfidenceLow  float64 `json:"confidence_low"`
	ConfidenceHigh float64 `json:"confidence_high"`
}

// ParseForecastMethod maps user input onto a ForecastMethod. Empty input
// selects the autoregressive model.
func ParseForecastMethod(s string) (ForecastMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "arima", "ar", "ar1", "autoregressive":
		return MethodAutoregressive, nil
	case "linear", "ols":
		return MethodLinear, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// Forecast projects the mean yearly rate yearsAhead years past the last
// observed year. The autoregressive method falls back to the linear trend
// when fewer than three distinct years are available. Every value is floored
// at 0 and rounded to two decimals. Records without any year yield an empty
// forecast.
func Forecast(records []dataset.Record, yearsAhead int, method ForecastMethod) ([]ForecastPoint, error) {
	if yearsAhead < 0 || yearsAhead > MaxForecastYears {
		return nil, fmt.Errorf("%w: got %d, want 0..%d", ErrInvalidHorizon, yearsAhead, MaxForecastYears)
	}
	if method != MethodAutoregressive && method != MethodLinear {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, string(method))
	}
	years, rates := YearlyRates(records)
	if len(years) == 0 || yearsAhead == 0 {
		return []ForecastPoint{}, nil
	}
	if method == MethodLinear || len(years) < minAutoregressiveYears {
		return linearForecast(years, rates, yearsAhead), nil
	}
	return autoregressiveForecast(years, rates, yearsAhead), nil
}

func autoregressiveForecast(years []int, rates []float64, yearsAhead int) []ForecastPoint {
	diffs := make([]float64, len(rates)-1)
	for i := range diffs {
		diffs[i] = rates[i+1] - rates[i]
	}
	prev, next := diffs[:len(diffs)-1], diffs[1:]
	phi := ratioOr(floats.Dot(next, prev), floats.Dot(prev, prev), 0)

	residuals := make([]float64, len(next))
	for i := range residuals {
		residuals[i] = next[i] - phi*prev[i]
	}
	sigma := math.Sqrt(ratioOr(floats.Dot(residuals, residuals), float64(len(residuals)), 0))

	lastYear := years[len(years)-1]
	level := rates[len(rates)-1]
	diff := diffs[len(diffs)-1]
	out := make([]ForecastPoint, 0, yearsAhead)
	for i := 1; i <= yearsAhead; i++ {
		diff *= phi
		level += diff
		margin := confidenceZ * sigma * math.Sqrt(float64(i))
		out = append(out, forecastPoint(lastYear+i, level, margin))
	}
	return out
}

// linearForecast extrapolates the OLS line through (year, rate). The margin is
// the 95% prediction interval 1.96·se·√(1 + 1/N + (x-x̄)²/Sxx) rather than the
// constant-width 1.96·se·√(1 + 1/N) band, so it widens with distance from the
// observed years. A single year has Sxx = 0 and slope 0.
func linearForecast(years []int, rates []float64, yearsAhead int) []ForecastPoint {
	n := float64(len(years))
	xs := make([]float64, len(years))
	for i, y := range years {
		xs[i] = float64(y)
	}
	xMean := stat.Mean(xs, nil)
	yMean := stat.Mean(rates, nil)
	var sxx, sxy float64
	for i, x := range xs {
		dx := x - xMean
		sxx += dx * dx
		sxy += dx * (rates[i] - yMean)
	}
	slope := ratioOr(sxy, sxx, 0)
	intercept := yMean - slope*xMean

	var sse float64
	for i, x := range xs {
		r := rates[i] - (intercept + slope*x)
		sse += r * r
	}
	se := math.Sqrt(sse / n)

	lastYear := years[len(years)-1]
	out := make([]ForecastPoint, 0, yearsAhead)
	for i := 1; i <= yearsAhead; i++ {
		x := float64(lastYear + i)
		dx := x - xMean
		margin := confidenceZ * se * math.Sqrt(1+1/n+ratioOr(dx*dx, sxx, 0))
		out = append(out, forecastPoint(lastYear+i, intercept+slope*x, margin))
	}
	return out
}

func forecastPoint(year int, predicted, margin float64) ForecastPoint {
	return ForecastPoint{
		Year:           year,
		Predicted:      round(floorZero(predicted), 2),
		ConfidenceLow:  round(floorZero(predicted-margin), 2),
		ConfidenceHigh: round(floorZero(predicted+margin), 2),
	}
}
