package dataset

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// RawRow is a loosely-typed input row keyed by column header.
type RawRow map[string]any

// CleanStats summarizes a cleaning pass.
type CleanStats struct {
	Total   int
	Kept    int
	Dropped int
}

// headerAliases maps normalized source headers onto canonical field names.
var headerAliases = map[string]string{
	"suicides/100k pop":  FieldRate,
	"suicides_100k":      FieldRate,
	"suicides per 100k":  FieldRate,
	"gdp_per_capita ($)": FieldGDP,
	"gdp per capita":     FieldGDP,
	"suicides":           FieldSuicides,
}

// Clean validates and normalizes raw rows. Rows missing country, year, sex or age,
// or with a year outside [MinYear, MaxYear], are dropped without error.
func Clean(rows []RawRow) []Record {
	out, _ := CleanWithStats(rows, NumberFormat{})
	return out
}

// CleanWithStats is Clean with an explicit number format and drop accounting.
func CleanWithStats(rows []RawRow, nf NumberFormat) ([]Record, CleanStats) {
	st := CleanStats{Total: len(rows)}
	out := make([]Record, 0, len(rows))
	for _, raw := range rows {
		row := normalizeKeys(raw)
		country := toText(row["country"])
		sex := toText(row["sex"])
		age := toText(row["age"])
		yearF := toNumber(row["year"], nf)
		if country == "" || sex == "" || age == "" || yearF == 0 {
			continue
		}
		if yearF != math.Trunc(yearF) {
			continue
		}
		year := int(yearF)
		if year < MinYear || year > MaxYear {
			continue
		}
		suicides := toCount(row[FieldSuicides], nf)
		population := toCount(row[FieldPopulation], nf)
		rate := toNumber(row[FieldRate], nf)
		if rate == 0 {
			rate = RatePer100k(suicides, population)
		}
		gen := toText(row["generation"])
		if gen == "" {
			gen = UnknownGeneration
		}
		id := toText(row["id"])
		if id == "" {
			id = fmt.Sprintf("record-%d", len(out))
		}
		out = append(out, Record{
			ID:           id,
			Country:      country,
			Year:         year,
			Sex:          sex,
			Age:          age,
			Suicides:     suicides,
			Population:   population,
			RatePer100k:  rate,
			GDPPerCapita: toNumber(row[FieldGDP], nf),
			Generation:   gen,
		})
	}
	st.Kept = len(out)
	st.Dropped = st.Total - st.Kept
	return out, st
}

func normalizeKeys(raw RawRow) RawRow {
	row := make(RawRow, len(raw))
	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(strings.Trim(k, `"`)))
		// canonical headers take precedence over their aliases
		if alias, ok := headerAliases[key]; ok {
			if _, exists := row[alias]; !exists {
				row[alias] = v
			}
			continue
		}
		row[key] = v
	}
	return row
}

func toText(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

// toCount coerces v to a non-negative int64. Values int64 cannot hold fall
// back to 0 like any other unusable number.
func toCount(v any, nf NumberFormat) int64 {
	f := toNumber(v, nf)
	if f >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}

// toNumber coerces v to a non-negative finite number, falling back to 0.
func toNumber(v any, nf NumberFormat) float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0
	case string:
		x, ok := ParseNumeric(t, nf)
		if !ok {
			return 0
		}
		f = x
	default:
		x, err := cast.ToFloat64E(v)
		if err != nil {
			return 0
		}
		f = x
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
