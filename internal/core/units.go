package core

import "math"

// mpgPerLitersPer100km converts between L/100km and US miles per gallon.
const mpgPerLitersPer100km = 235.214

// LitersPer100kmToMpg converts a fuel consumption figure to MPG rounded to one decimal.
// Returns nil for nil or non-positive input.
func LitersPer100kmToMpg(l *float64) *float64 {
	if l == nil || *l <= 0 {
		return nil
	}
	mpg := math.Round(mpgPerLitersPer100km / *l * 10) / 10
	return &mpg
}
