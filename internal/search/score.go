package search

import (
	"fmt"
	"strings"
)

// Weights is the fixed convex combination applied to the five sub-scores.
type Weights struct {
	Price    float64 `json:"price"`
	Mileage  float64 `json:"mileage"`
	Distance float64 `json:"distance"`
	Economy  float64 `json:"economy"`
	Safety   float64 `json:"safety"`
}

var (
	// DefaultWeights is the canonical weighting.
	DefaultWeights = Weights{Price: 0.30, Mileage: 0.25, Distance: 0.15, Economy: 0.20, Safety: 0.10}

	// AltWeights leans harder on price and distance, less on mileage.
	AltWeights = Weights{Price: 0.32, Mileage: 0.20, Distance: 0.18, Economy: 0.20, Safety: 0.10}
)

// WeightsByName resolves a configured weight set: "default" (or empty) or "alt".
func WeightsByName(name string) (Weights, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return DefaultWeights, nil
	case "alt", "alternate":
		return AltWeights, nil
	}
	return Weights{}, fmt.Errorf("unknown score weights %q (want default or alt)", name)
}

// ScoreBreakdown carries the unrounded sub-scores and their weighted total, all in [0,1].
type ScoreBreakdown struct {
	Price    float64 `json:"price"`
	Mileage  float64 `json:"mileage"`
	Distance float64 `json:"distance"`
	Economy  float64 `json:"economy"`
	Safety   float64 `json:"safety"`
	Total    float64 `json:"total"`
}

func (w Weights) total(b ScoreBreakdown) float64 {
	return w.Price*b.Price +
		w.Mileage*b.Mileage +
		w.Distance*b.Distance +
		w.Economy*b.Economy +
		w.Safety*b.Safety
}

const (
	// DefaultUnknownPriceScore is the neutral price score for listings without a price.
	DefaultUnknownPriceScore = 0.5

	noBudgetScore      = 0.6
	unknownScore       = 0.5
	floorScore         = 0.05
	defaultMaxDistance = 100.0
)

func clamp(x float64) float64 {
	return max(0, min(1, x))
}

// priceScore rewards prices near the budget. At or above 70% of budget
// scores 1; cheaper ramps from 0.6 up to 1; up to 10% over decays 0.6 to 0;
// beyond that the floor keeps the listing rankable.
func priceScore(price, budget *float64, unknown float64) float64 {
	if price == nil {
		return unknown
	}
	if budget == nil || *budget <= 0 {
		return noBudgetScore
	}
	p, b := *price, *budget

	if p <= b {
		if p >= 0.7*b {
			return 1.0
		}
		return 0.6 + 0.4*(p/(0.7*b))
	}
	over := p - b
	if over <= 0.1*b {
		return 0.6 * (1 - over/(0.1*b))
	}
	return floorScore
}

func mileageScore(miles *float64) float64 {
	if miles == nil {
		return unknownScore
	}
	m := *miles
	switch {
	case m <= 30000:
		return 1.0
	case m <= 90000:
		// decays to the 90k-120k plateau so the curve never rises
		return 0.2 + 0.8*(90000-m)/60000
	case m <= 120000:
		return 0.2
	}
	return floorScore
}

func distanceScore(distance, maxDistance *float64) float64 {
	if distance == nil {
		return unknownScore
	}
	bound := defaultMaxDistance
	if maxDistance != nil && *maxDistance > 0 {
		bound = *maxDistance
	}
	d := *distance
	switch {
	case d <= bound:
		return 1.0
	case d <= 2*bound:
		return clamp(1 - (d-bound)/bound)
	}
	return floorScore
}

// economyScore blends city and highway 60/40, renormalizing when one is missing,
// then maps 20 mpg and below to 0.2 and 35 mpg and above to 1.
func economyScore(cityMpg, highwayMpg *float64) float64 {
	var mpg, weight float64
	if cityMpg != nil {
		mpg += 0.6 * *cityMpg
		weight += 0.6
	}
	if highwayMpg != nil {
		mpg += 0.4 * *highwayMpg
		weight += 0.4
	}
	if weight == 0 {
		return unknownScore
	}
	mpg /= weight

	switch {
	case mpg <= 20:
		return 0.2
	case mpg >= 35:
		return 1.0
	}
	return 0.2 + 0.8*((mpg-20)/15)
}

func safetyScore(stars *float64) float64 {
	if stars == nil {
		return unknownScore
	}
	return clamp(*stars / 5)
}
