package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanDerivesRateWhenMissing(t *testing.T) {
	rows := []RawRow{{
		"country":     "Albania",
		"year":        "1990",
		"sex":         "male",
		"age":         "15-24 years",
		"suicides_no": "1000",
		"population":  "100000",
	}}
	out := Clean(rows)
	require.Len(t, out, 1)
	assert.Equal(t, 1000.0, out[0].RatePer100k)
	assert.Equal(t, UnknownGeneration, out[0].Generation)
	assert.Equal(t, "record-0", out[0].ID)
}

func TestCleanDropsInvalidRows(t *testing.T) {
	rows := []RawRow{
		{"country": "A", "year": 1984, "sex": "male", "age": "5-14 years"},
		{"country": "A", "year": 2026, "sex": "male", "age": "5-14 years"},
		{"country": "", "year": 2000, "sex": "male", "age": "5-14 years"},
		{"country": "A", "year": 2000, "age": "5-14 years"},
		{"country": "A", "year": "", "sex": "male", "age": "5-14 years"},
		{"country": "A", "year": "n/a", "sex": "male", "age": "5-14 years"},
		{"country": " Iceland ", "year": 2025, "sex": "female", "age": "75+ years", "id": "keep"},
	}
	out, st := CleanWithStats(rows, NumberFormat{})
	require.Len(t, out, 1)
	assert.Equal(t, "Iceland", out[0].Country)
	assert.Equal(t, "keep", out[0].ID)
	assert.Equal(t, CleanStats{Total: 7, Kept: 1, Dropped: 6}, st)
}

func TestCleanEmptyInputYieldsEmptyOutput(t *testing.T) {
	out := Clean(nil)
	assert.Empty(t, out)
}

func TestCleanCoercesNumericsWithZeroFallback(t *testing.T) {
	rows := []RawRow{
		{
			"Country":            "Japan",
			"Year":               2015.0,
			"Sex":                "male",
			"Age":                "25-34 years",
			"suicides_no":        "garbage",
			"population":         -5,
			"suicides/100k pop":  "52.5",
			"gdp_per_capita ($)": "40,000",
			"generation":         "Millennials",
		},
		{"country": "Japan", "year": 2016, "sex": "male", "age": "25-34 years", "population": 0, "suicides_no": 10},
	}
	out := Clean(rows)
	require.Len(t, out, 2)
	assert.Equal(t, int64(0), out[0].Suicides)
	assert.Equal(t, int64(0), out[0].Population)
	assert.Equal(t, 52.5, out[0].RatePer100k)
	assert.Equal(t, 40000.0, out[0].GDPPerCapita)
	assert.Equal(t, "Millennials", out[0].Generation)
	assert.Equal(t, 0.0, out[1].RatePer100k)
	assert.Equal(t, "record-1", out[1].ID)
}

func TestCleanPrefersCanonicalHeaderOverAlias(t *testing.T) {
	rows := []RawRow{{
		"country": "X", "year": 2000, "sex": "male", "age": "35-54 years",
		"suicides_per_100k": 7.5, "suicides/100k pop": 99.0,
	}}
	out := Clean(rows)
	require.Len(t, out, 1)
	assert.Equal(t, 7.5, out[0].RatePer100k)
}

func TestNewRecordValidates(t *testing.T) {
	r, err := NewRecord("", "Chile", 2001, "female", "55-74 years", 5, 50000, 0, 9000, "")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, r.RatePer100k, 1e-9)
	assert.Equal(t, UnknownGeneration, r.Generation)

	_, err = NewRecord("", "Chile", 1970, "female", "55-74 years", 5, 50000, 0, 9000, "")
	require.ErrorIs(t, err, ErrInvalidRecord)
	_, err = NewRecord("", "Chile", 2001, "female", "55-74 years", -1, 50000, 0, 9000, "")
	require.ErrorIs(t, err, ErrInvalidRecord)
}

func TestParseNumericLocales(t *testing.T) {
	cases := map[string]float64{
		"2,156,624,900": 2156624900,
		"1.000,5":       1000.5,
		"0,5":           0.5,
		"12.5%":         12.5,
		"1,000":         1000,
		"16.67":         16.67,
	}
	for in, want := range cases {
		got, ok := ParseNumeric(in, NumberFormat{})
		require.True(t, ok, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}
	_, ok := ParseNumeric("abc", NumberFormat{})
	assert.False(t, ok)
}

func TestValuesUnknownField(t *testing.T) {
	_, err := Values(nil, "nope")
	require.ErrorIs(t, err, ErrUnknownField)
	vals, err := Values([]Record{{Population: 3}, {Population: 4}}, FieldPopulation)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, vals)
}

func TestCleanOversizedCountsFallBackToZero(t *testing.T) {
	rows := []RawRow{{
		"country":     "Albania",
		"year":        2000,
		"sex":         "male",
		"age":         "15-24 years",
		"suicides_no": 1e19,
		"population":  "1e30",
	}}
	out := Clean(rows)
	require.Len(t, out, 1)
	assert.Equal(t, int64(0), out[0].Population)
	assert.Equal(t, int64(0), out[0].Suicides)
	require.NoError(t, out[0].Validate())
}
