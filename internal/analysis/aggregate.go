package analysis

import (
	"sort"
	"strings"

	"github.com/KaramelBytes/mortstat/internal/dataset"
)

// CountryRate summarizes one country across all of its observations.
type CountryRate struct {
	Country       string  `json:"country"`
	AvgRate       float64 `json:"avg_rate"`
	TotalSuicides int64   `json:"total_suicides"`
	Years         int     `json:"years"`
}

// GenerationStats summarizes one generation cohort.
type GenerationStats struct {
	Generation    string  `json:"generation"`
	AvgRate       float64 `json:"avg_rate"`
	TotalSuicides int64   `json:"total_suicides"`
	Count         int     `json:"count"`
	Countries     int     `json:"countries"`
}

// YearTrend is the mean rate for one calendar year, optionally broken down by region.
type YearTrend struct {
	Year       int                `json:"year"`
	GlobalRate float64            `json:"global_rate"`
	ByRegion   map[string]float64 `json:"by_region,omitempty"`
}

// Group is an ordered bucket of records sharing a key.
type Group struct {
	Key     string
	Records []dataset.Record
}

// GroupBy buckets records by key, preserving first-appearance order of keys and
// insertion order within each bucket.
func GroupBy(records []dataset.Record, key func(dataset.Record) string) []Group {
	idx := make(map[string]int)
	var groups []Group
	for _, r := range records {
		k := key(r)
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// GroupByCountry buckets records per country in first-appearance order.
func GroupByCountry(records []dataset.Record) []Group {
	return GroupBy(records, func(r dataset.Record) string { return r.Country })
}

// GroupByGeneration buckets records per generation label in first-appearance order.
func GroupByGeneration(records []dataset.Record) []Group {
	return GroupBy(records, func(r dataset.Record) string { return r.Generation })
}

// YearGroup holds the records of a single year.
type YearGroup struct {
	Year    int
	Records []dataset.Record
}

// GroupByYear buckets records per year, sorted by ascending year.
func GroupByYear(records []dataset.Record) []YearGroup {
	m := make(map[int][]dataset.Record)
	for _, r := range records {
		m[r.Year] = append(m[r.Year], r)
	}
	out := make([]YearGroup, 0, len(m))
	for y, rs := range m {
		out = append(out, YearGroup{Year: y, Records: rs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

func meanRate(records []dataset.Record) float64 {
	var sum float64
	for _, r := range records {
		sum += r.RatePer100k
	}
	return ratioOr(sum, float64(len(records)), 0)
}

// YearlyRates returns the mean rate per year in ascending year order.
func YearlyRates(records []dataset.Record) (years []int, rates []float64) {
	for _, g := range GroupByYear(records) {
		years = append(years, g.Year)
		rates = append(rates, meanRate(g.Records))
	}
	return years, rates
}

// CountryRates summarizes every country, unsorted (first-appearance order).
func CountryRates(records []dataset.Record) []CountryRate {
	groups := GroupByCountry(records)
	out := make([]CountryRate, 0, len(groups))
	for _, g := range groups {
		years := make(map[int]struct{})
		var total int64
		for _, r := range g.Records {
			years[r.Year] = struct{}{}
			total += r.Suicides
		}
		out = append(out, CountryRate{
			Country:       g.Key,
			AvgRate:       meanRate(g.Records),
			TotalSuicides: total,
			Years:         len(years),
		})
	}
	return out
}

// TopCountries returns the n countries with the highest average rate (descending)
// and the n with the lowest (ascending). n <= 0 returns every country.
func TopCountries(records []dataset.Record, n int) (highest, lowest []CountryRate) {
	sorted := CountryRates(records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].AvgRate > sorted[j].AvgRate })
	if n <= 0 || n > len(sorted) {
		n = len(sorted)
	}
	highest = append([]CountryRate(nil), sorted[:n]...)
	tail := sorted[len(sorted)-n:]
	lowest = make([]CountryRate, 0, n)
	for i := len(tail) - 1; i >= 0; i-- {
		lowest = append(lowest, tail[i])
	}
	return highest, lowest
}

// AnalyzeGenerations summarizes every generation cohort, highest average rate first.
func AnalyzeGenerations(records []dataset.Record) []GenerationStats {
	groups := GroupByGeneration(records)
	out := make([]GenerationStats, 0, len(groups))
	for _, g := range groups {
		countries := make(map[string]struct{})
		var total int64
		for _, r := range g.Records {
			countries[r.Country] = struct{}{}
			total += r.Suicides
		}
		out = append(out, GenerationStats{
			Generation:    g.Key,
			AvgRate:       meanRate(g.Records),
			TotalSuicides: total,
			Count:         len(g.Records),
			Countries:     len(countries),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgRate > out[j].AvgRate })
	return out
}

// YearTrends returns the global mean rate per year. With includeRegions each
// trend also carries the mean rate per region observed that year.
func YearTrends(records []dataset.Record, includeRegions bool) []YearTrend {
	groups := GroupByYear(records)
	out := make([]YearTrend, 0, len(groups))
	for _, g := range groups {
		t := YearTrend{Year: g.Year, GlobalRate: meanRate(g.Records)}
		if includeRegions {
			t.ByRegion = make(map[string]float64)
			for _, rg := range GroupBy(g.Records, func(r dataset.Record) string { return Region(r.Country) }) {
				t.ByRegion[rg.Key] = meanRate(rg.Records)
			}
		}
		out = append(out, t)
	}
	return out
}

// Region names used by the year-trend breakdown.
const (
	RegionNorthAmerica = "North America"
	RegionEurope       = "Europe"
	RegionAsia         = "Asia"
	RegionOceania      = "Oceania"
	RegionSouthAmerica = "South America"
	RegionOther        = "Other"
)

var regionMatchers = []struct {
	region    string
	countries []string
}{
	{RegionNorthAmerica, []string{"united states", "canada", "mexico"}},
	{RegionEurope, []string{"united kingdom", "france", "germany", "italy", "spain", "poland", "russia"}},
	{RegionAsia, []string{"china", "japan", "south korea", "india", "thailand"}},
	{RegionOceania, []string{"australia", "new zealand"}},
	{RegionSouthAmerica, []string{"brazil", "argentina", "chile"}},
}

// Region maps a country name onto a coarse region by substring match.
func Region(country string) string {
	lower := strings.ToLower(country)
	for _, m := range regionMatchers {
		for _, c := range m.countries {
			if strings.Contains(lower, c) {
				return m.region
			}
		}
	}
	return RegionOther
}

// CountryFeatures builds the clustering feature vector per country:
// average rate, average GDP per capita in thousands, and a trend proxy
// (last rate - first rate) / observation count. Countries are returned in
// first-appearance order and records are taken in their given order.
func CountryFeatures(records []dataset.Record) (countries []string, features [][]float64) {
	for _, g := range GroupByCountry(records) {
		n := float64(len(g.Records))
		var rateSum, gdpSum float64
		for _, r := range g.Records {
			rateSum += r.RatePer100k
			gdpSum += r.GDPPerCapita
		}
		trend := 0.0
		if len(g.Records) > 1 {
			trend = (g.Records[len(g.Records)-1].RatePer100k - g.Records[0].RatePer100k) / n
		}
		countries = append(countries, g.Key)
		features = append(features, []float64{rateSum / n, gdpSum / n / 1000, trend})
	}
	return countries, features
}
