package analysis

import "github.com/KaramelBytes/mortstat/internal/dataset"

func rec(country string, year int, rate, gdp float64) dataset.Record {
	return dataset.Record{
		Country:      country,
		Year:         year,
		Sex:          "male",
		Age:          "35-54 years",
		Suicides:     int64(rate),
		Population:   100000,
		RatePer100k:  rate,
		GDPPerCapita: gdp,
		Generation:   dataset.UnknownGeneration,
	}
}

func withGeneration(r dataset.Record, gen string) dataset.Record {
	r.Generation = gen
	return r
}
