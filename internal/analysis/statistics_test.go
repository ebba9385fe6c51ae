package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStatisticsEmpty(t *testing.T) {
	assert.Equal(t, Statistics{}, ComputeStatistics(nil))
	assert.Equal(t, Statistics{}, ComputeStatistics([]float64{}))
}

func TestComputeStatisticsEvenSeries(t *testing.T) {
	st := ComputeStatistics([]float64{4, 1, 3, 2})
	assert.Equal(t, 2.5, st.Mean)
	assert.Equal(t, 2.5, st.Median)
	assert.Equal(t, 1.12, st.StdDev) // sqrt(1.25)
	assert.Equal(t, 1.0, st.Min)
	assert.Equal(t, 4.0, st.Max)
	assert.Equal(t, 10.0, st.Total)
}

func TestComputeStatisticsOddMedianDoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	st := ComputeStatistics(in)
	assert.Equal(t, 2.0, st.Median)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestComputeStatisticsConstantSeries(t *testing.T) {
	st := ComputeStatistics([]float64{7, 7, 7, 7})
	assert.Equal(t, 0.0, st.StdDev)
	assert.Equal(t, 7.0, st.Mean)
	assert.Equal(t, 28.0, st.Total)
}

func TestComputeStatisticsRoundsOnlyCentralMeasures(t *testing.T) {
	st := ComputeStatistics([]float64{1.004, 2.123456})
	assert.Equal(t, 1.56, st.Mean)
	assert.Equal(t, 1.004, st.Min)
	assert.Equal(t, 2.123456, st.Max)
	assert.InDelta(t, 3.127456, st.Total, 1e-12)
}
