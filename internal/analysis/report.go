package analysis

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/mortstat/internal/dataset"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

// ReportOptions configures BuildReport.
type ReportOptions struct {
	Name           string
	Predictors     []string
	Clusters       int
	Seed           int64 // 0 draws a random seed
	ForecastYears  int
	ForecastMethod ForecastMethod
	TopN           int
	IncludeRegions bool
}

// DefaultReportOptions returns the options used when nothing is configured.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		Predictors:     DefaultPredictors(),
		Clusters:       3,
		ForecastYears:  5,
		ForecastMethod: MethodAutoregressive,
		TopN:           10,
	}
}

// Rng returns the random source for clustering: seeded when Seed is set,
// nil (time-seeded by KMeans) otherwise.
func (o ReportOptions) Rng() *rand.Rand {
	if o.Seed == 0 {
		return nil
	}
	return rand.New(rand.NewSource(o.Seed))
}

// Report bundles every analysis over one record set.
type Report struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Records     int       `json:"records"`

	Statistics   map[string]Statistics `json:"statistics"`
	Correlations []CorrelationResult   `json:"correlations"`
	Highest      []CountryRate         `json:"highest"`
	Lowest       []CountryRate         `json:"lowest"`
	Generations  []GenerationStats     `json:"generations"`
	Trends       []YearTrend           `json:"trends"`

	Regression     *RegressionModel `json:"regression,omitempty"`
	RegressionNote string           `json:"regression_note,omitempty"`
	Clusters       *ClusterResult   `json:"clusters,omitempty"`
	ForecastMethod ForecastMethod   `json:"forecast_method"`
	Forecast       []ForecastPoint  `json:"forecast"`

	Summary Summary `json:"summary"`
}

// BuildReport runs the independent analyses concurrently and joins them into
// a Report. Parameter errors from clustering or forecasting are returned;
// a regression without enough records is recorded as a note instead.
func BuildReport(records []dataset.Record, opt ReportOptions) (*Report, error) {
	rep := &Report{
		ID:             uuid.NewString(),
		Name:           opt.Name,
		GeneratedAt:    time.Now().UTC(),
		Records:        len(records),
		ForecastMethod: opt.ForecastMethod,
	}

	p := pool.New().WithErrors()
	p.Go(func() error {
		rep.Statistics = make(map[string]Statistics)
		for _, f := range dataset.NumericFields() {
			vals, err := dataset.Values(records, f)
			if err != nil {
				return err
			}
			rep.Statistics[f] = ComputeStatistics(vals)
		}
		return nil
	})
	p.Go(func() error {
		rep.Correlations = AnalyzeCorrelations(records)
		return nil
	})
	p.Go(func() error {
		rep.Highest, rep.Lowest = TopCountries(records, opt.TopN)
		rep.Generations = AnalyzeGenerations(records)
		rep.Trends = YearTrends(records, opt.IncludeRegions)
		return nil
	})
	p.Go(func() error {
		model, err := FitLinearModel(records, opt.Predictors)
		switch {
		case errors.Is(err, ErrInsufficientSamples), errors.Is(err, ErrNoPredictors):
			rep.RegressionNote = err.Error()
			return nil
		case err != nil:
			return fmt.Errorf("regression: %w", err)
		}
		rep.Regression = model
		return nil
	})
	p.Go(func() error {
		res, err := KMeans(records, opt.Clusters, opt.Rng())
		if err != nil {
			return fmt.Errorf("clustering: %w", err)
		}
		rep.Clusters = res
		return nil
	})
	p.Go(func() error {
		fc, err := Forecast(records, opt.ForecastYears, opt.ForecastMethod)
		if err != nil {
			return fmt.Errorf("forecast: %w", err)
		}
		rep.Forecast = fc
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	rep.Summary = Summarize(records, rep.Clusters)
	return rep, nil
}

// Markdown renders the report as sectioned plain text.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Report: %s\n", r.ID))
	b.WriteString(fmt.Sprintf("Records: %d\n", r.Records))
	s := r.Summary
	if s.Records > 0 {
		b.WriteString(fmt.Sprintf("Countries: %d\n", s.Countries))
		b.WriteString(fmt.Sprintf("Years: %d-%d\n", s.FirstYear, s.LastYear))
	}

	b.WriteString("\n[STATISTICS]\n")
	fields := make([]string, 0, len(r.Statistics))
	for f := range r.Statistics {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		st := r.Statistics[f]
		b.WriteString(fmt.Sprintf("- %s: mean %.2f, median %.2f, std %.2f, min %.4g, max %.4g, total %.4g\n",
			dataset.Label(f), st.Mean, st.Median, st.StdDev, st.Min, st.Max, st.Total))
	}

	if len(r.Correlations) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, c := range r.Correlations {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f (%s)\n", c.Variable1, c.Variable2, c.Coefficient, c.Strength))
		}
	}

	if len(r.Highest) > 0 {
		b.WriteString("\n[TOP COUNTRIES]\n")
		b.WriteString("Highest:\n")
		writeCountries(&b, r.Highest)
		b.WriteString("Lowest:\n")
		writeCountries(&b, r.Lowest)
	}

	if len(r.Generations) > 0 {
		b.WriteString("\n[GENERATIONS]\n")
		for _, g := range r.Generations {
			b.WriteString(fmt.Sprintf("- %s: avg %.2f per 100k (n=%d, countries=%d, suicides=%d)\n",
				g.Generation, g.AvgRate, g.Count, g.Countries, g.TotalSuicides))
		}
	}

	if len(r.Trends) > 0 {
		b.WriteString("\n[YEAR TRENDS]\n")
		for _, t := range r.Trends {
			b.WriteString(fmt.Sprintf("- %d: %.2f", t.Year, t.GlobalRate))
			if len(t.ByRegion) > 0 {
				regions := make([]string, 0, len(t.ByRegion))
				for k := range t.ByRegion {
					regions = append(regions, k)
				}
				sort.Strings(regions)
				parts := make([]string, 0, len(regions))
				for _, k := range regions {
					parts = append(parts, fmt.Sprintf("%s %.2f", k, t.ByRegion[k]))
				}
				b.WriteString(" (" + strings.Join(parts, ", ") + ")")
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n[REGRESSION]\n")
	if r.Regression == nil {
		note := r.RegressionNote
		if note == "" {
			note = "not computed"
		}
		b.WriteString(fmt.Sprintf("Insufficient data: %s\n", note))
	} else {
		m := r.Regression
		b.WriteString(fmt.Sprintf("R²: %.4f\n", m.RSquared))
		b.WriteString(fmt.Sprintf("Intercept: %.4f\n", m.Intercept))
		for _, name := range m.Predictors {
			b.WriteString(fmt.Sprintf("- %s: %+.4f\n", name, m.Coefficients[name]))
		}
	}

	if r.Clusters != nil && len(r.Clusters.Countries) > 0 {
		b.WriteString("\n[CLUSTERS]\n")
		b.WriteString(fmt.Sprintf("Effective clusters: %d of %d (iterations %d)\n",
			r.Clusters.EffectiveClusters(), len(r.Clusters.Centroids), r.Clusters.Iterations))
		for i, members := range r.Clusters.Members() {
			if len(members) == 0 {
				continue
			}
			c := r.Clusters.Centroids[i]
			b.WriteString(fmt.Sprintf("- cluster %d (rate %.2f, gdp %.1fk, trend %+.3f): %s\n",
				i, c[0], c[1], c[2], strings.Join(members, ", ")))
		}
	}

	if len(r.Forecast) > 0 {
		b.WriteString(fmt.Sprintf("\n[FORECAST] method=%s\n", r.ForecastMethod))
		for _, f := range r.Forecast {
			b.WriteString(fmt.Sprintf("- %d: %.2f [%.2f, %.2f]\n", f.Year, f.Predicted, f.ConfidenceLow, f.ConfidenceHigh))
		}
	}

	if s.Records > 0 {
		b.WriteString("\n[EXECUTIVE SUMMARY]\n")
		b.WriteString(fmt.Sprintf("Global average rate %.2f per 100k, ranging %.2f to %.2f.\n", s.Rate.Mean, s.Rate.Min, s.Rate.Max))
		b.WriteString(fmt.Sprintf("Global trend is %s by %.1f%% (%.2f -> %.2f).\n", s.Trend, s.TrendPercent, s.FirstRate, s.LastRate))
		if s.Highest != nil {
			b.WriteString(fmt.Sprintf("Highest: %s at %.2f per 100k. Lowest: %s at %.2f per 100k.\n",
				s.Highest.Country, s.Highest.AvgRate, s.Lowest.Country, s.Lowest.AvgRate))
		}
		if s.HighestRiskGeneration != nil {
			b.WriteString(fmt.Sprintf("Highest-risk generation: %s at %.2f per 100k (spread %.2f).\n",
				s.HighestRiskGeneration.Generation, s.HighestRiskGeneration.AvgRate, s.GenerationSpread))
		}
		b.WriteString(fmt.Sprintf("GDP correlation: %.3f (%s).\n", s.GDPCorrelation.Coefficient, s.GDPCorrelation.Strength))
		if s.EffectiveClusters > 0 {
			b.WriteString(fmt.Sprintf("Identified %d distinct country clusters.\n", s.EffectiveClusters))
		}
	}
	return b.String()
}

func writeCountries(b *strings.Builder, rows []CountryRate) {
	for i, c := range rows {
		b.WriteString(fmt.Sprintf("  %d. %s: %.2f per 100k (%d years, %d suicides)\n", i+1, c.Country, c.AvgRate, c.Years, c.TotalSuicides))
	}
}
