package dataset

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MinYear and MaxYear bound the observation years accepted by the cleaner.
	MinYear = 1985
	MaxYear = 2025
	// UnknownGeneration is assigned when a row carries no generation label.
	UnknownGeneration = "Unknown"
)

// ErrInvalidRecord is wrapped by NewRecord when a field violates the record constraints.
var ErrInvalidRecord = errors.New("invalid record")

// Record is one observation: a country-year-sex-age slice with its counts and rate.
// Records are passed by value and never mutated by the analysis engine.
type Record struct {
	ID           string  `json:"id"`
	Country      string  `json:"country"`
	Year         int     `json:"year"`
	Sex          string  `json:"sex"`
	Age          string  `json:"age"`
	Suicides     int64   `json:"suicides_no"`
	Population   int64   `json:"population"`
	RatePer100k  float64 `json:"suicides_per_100k"`
	GDPPerCapita float64 `json:"gdp_per_capita"`
	Generation   string  `json:"generation"`
}

// NewRecord builds a validated Record. An empty generation becomes UnknownGeneration
// and a zero rate is derived from suicides and population.
func NewRecord(id, country string, year int, sex, age string, suicides, population int64, rate, gdp float64, generation string) (Record, error) {
	r := Record{
		ID:           strings.TrimSpace(id),
		Country:      strings.TrimSpace(country),
		Year:         year,
		Sex:          strings.TrimSpace(sex),
		Age:          strings.TrimSpace(age),
		Suicides:     suicides,
		Population:   population,
		RatePer100k:  rate,
		GDPPerCapita: gdp,
		Generation:   strings.TrimSpace(generation),
	}
	if r.Generation == "" {
		r.Generation = UnknownGeneration
	}
	if r.RatePer100k == 0 {
		r.RatePer100k = RatePer100k(suicides, population)
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate reports the first constraint the record violates.
func (r Record) Validate() error {
	switch {
	case r.Country == "":
		return fmt.Errorf("%w: country is empty", ErrInvalidRecord)
	case r.Sex == "":
		return fmt.Errorf("%w: sex is empty", ErrInvalidRecord)
	case r.Age == "":
		return fmt.Errorf("%w: age is empty", ErrInvalidRecord)
	case r.Year < MinYear || r.Year > MaxYear:
		return fmt.Errorf("%w: year %d outside [%d, %d]", ErrInvalidRecord, r.Year, MinYear, MaxYear)
	case r.Suicides < 0:
		return fmt.Errorf("%w: negative suicides_no %d", ErrInvalidRecord, r.Suicides)
	case r.Population < 0:
		return fmt.Errorf("%w: negative population %d", ErrInvalidRecord, r.Population)
	case r.RatePer100k < 0:
		return fmt.Errorf("%w: negative suicides_per_100k %g", ErrInvalidRecord, r.RatePer100k)
	case r.GDPPerCapita < 0:
		return fmt.Errorf("%w: negative gdp_per_capita %g", ErrInvalidRecord, r.GDPPerCapita)
	}
	return nil
}

// RatePer100k returns suicides per 100,000 population, or 0 when population is 0.
func RatePer100k(suicides, population int64) float64 {
	if population <= 0 {
		return 0
	}
	return float64(suicides) * 100000 / float64(population)
}
