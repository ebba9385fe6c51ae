package analysis

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/mortstat/internal/dataset"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportFixture() []dataset.Record {
	records, _, _ := separatedGroups()
	for i := range records {
		switch {
		case i%3 == 0:
			records[i].Generation = "Boomers"
		case i%3 == 1:
			records[i].Generation = "Millenials"
		}
		if i%2 == 0 {
			records[i].Sex = "female"
		}
	}
	return records
}

func TestBuildReportCollectsEverySection(t *testing.T) {
	opt := DefaultReportOptions()
	opt.Name = "who.csv"
	opt.Seed = 11
	opt.Clusters = 2
	opt.IncludeRegions = true

	rep, err := BuildReport(reportFixture(), opt)
	require.NoError(t, err)
	_, err = uuid.Parse(rep.ID)
	require.NoError(t, err)
	assert.Equal(t, 24, rep.Records)
	assert.Len(t, rep.Statistics, len(dataset.NumericFields()))
	assert.Len(t, rep.Correlations, 2)
	assert.Len(t, rep.Highest, 8)
	assert.NotEmpty(t, rep.Generations)
	require.Len(t, rep.Trends, 3)
	assert.NotNil(t, rep.Trends[0].ByRegion)
	require.NotNil(t, rep.Regression)
	assert.Empty(t, rep.RegressionNote)
	require.NotNil(t, rep.Clusters)
	assert.Equal(t, 2, rep.Clusters.EffectiveClusters())
	assert.Len(t, rep.Forecast, 5)
	assert.Equal(t, 2, rep.Summary.EffectiveClusters)

	md := rep.Markdown()
	for _, section := range []string{
		"[DATASET SUMMARY]", "[STATISTICS]", "[CORRELATIONS]", "[TOP COUNTRIES]",
		"[GENERATIONS]", "[YEAR TRENDS]", "[REGRESSION]", "[CLUSTERS]",
		"[FORECAST] method=arima", "[EXECUTIVE SUMMARY]",
	} {
		assert.Contains(t, md, section)
	}
	assert.Contains(t, md, "File: who.csv")
	assert.Contains(t, md, "Effective clusters: 2 of 2")
}

func TestBuildReportNotesInsufficientRegressionData(t *testing.T) {
	records := []dataset.Record{rec("A", 2000, 5, 1000), rec("B", 2001, 6, 2000)}
	rep, err := BuildReport(records, DefaultReportOptions())
	require.NoError(t, err)
	assert.Nil(t, rep.Regression)
	assert.Contains(t, rep.RegressionNote, "insufficient samples")
	assert.Contains(t, rep.Markdown(), "Insufficient data: insufficient samples")
}

func TestBuildReportPropagatesContractErrors(t *testing.T) {
	opt := DefaultReportOptions()
	opt.Clusters = 0
	_, err := BuildReport(reportFixture(), opt)
	require.ErrorIs(t, err, ErrInvalidClusterCount)

	opt = DefaultReportOptions()
	opt.ForecastYears = -2
	_, err = BuildReport(reportFixture(), opt)
	require.ErrorIs(t, err, ErrInvalidHorizon)
}

func TestBuildReportEmptyRecords(t *testing.T) {
	rep, err := BuildReport(nil, DefaultReportOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Records)
	assert.Empty(t, rep.Forecast)
	md := rep.Markdown()
	assert.Contains(t, md, "Records: 0")
	assert.False(t, strings.Contains(md, "[EXECUTIVE SUMMARY]"))
}

func TestSummarize(t *testing.T) {
	records := []dataset.Record{
		withGeneration(rec("Japan", 2000, 20, 40000), "Boomers"),
		withGeneration(rec("Brazil", 2000, 4, 8000), "Generation Z"),
		withGeneration(rec("Japan", 2002, 30, 42000), "Boomers"),
		withGeneration(rec("Brazil", 2002, 6, 9000), "Generation Z"),
	}
	s := Summarize(records, nil)
	assert.Equal(t, 4, s.Records)
	assert.Equal(t, 2, s.Countries)
	assert.Equal(t, 2000, s.FirstYear)
	assert.Equal(t, 2002, s.LastYear)
	assert.Equal(t, 12.0, s.FirstRate)
	assert.Equal(t, 18.0, s.LastRate)
	assert.Equal(t, TrendIncreasing, s.Trend)
	assert.Equal(t, 50.0, s.TrendPercent)
	require.NotNil(t, s.Highest)
	assert.Equal(t, "Japan", s.Highest.Country)
	assert.Equal(t, "Brazil", s.Lowest.Country)
	require.NotNil(t, s.HighestRiskGeneration)
	assert.Equal(t, "Boomers", s.HighestRiskGeneration.Generation)
	assert.Equal(t, 20.0, s.GenerationSpread)
	assert.Equal(t, StrengthStrong, s.GDPCorrelation.Strength)
	assert.Equal(t, 0, s.EffectiveClusters)
	assert.Equal(t, 15.0, s.Rate.Mean)

	empty := Summarize(nil, nil)
	assert.Equal(t, Summary{}, empty)
}
