// Package search filters and ranks candidate listings against shopping criteria.
package search

import (
	"sort"

	"carwise/internal/core"
	"carwise/internal/listings"
)

// DefaultTopK is the number of results returned when the caller asks for none.
const DefaultTopK = 5

// ScoredListing pairs a listing with its score breakdown.
type ScoredListing struct {
	Listing core.Listing   `json:"listing"`
	Score   ScoreBreakdown `json:"score"`
}

// Engine is the pure filter-and-score step. It is safe for concurrent use.
type Engine struct {
	weights           Weights
	unknownPriceScore float64
	strictBudget      bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeights selects the weight set.
func WithWeights(w Weights) Option {
	return func(e *Engine) { e.weights = w }
}

// WithUnknownPriceScore sets the neutral price score for unpriced listings.
func WithUnknownPriceScore(score float64) Option {
	return func(e *Engine) { e.unknownPriceScore = clamp(score) }
}

// WithStrictBudget drops unpriced listings whenever a budget is given.
func WithStrictBudget(strict bool) Option {
	return func(e *Engine) { e.strictBudget = strict }
}

// NewEngine creates an Engine with the default weights and tolerant budget filtering.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		weights:           DefaultWeights,
		unknownPriceScore: DefaultUnknownPriceScore,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns the active weight set.
func (e *Engine) Weights() Weights {
	return e.weights
}

// Score computes the breakdown for one listing.
func (e *Engine) Score(l core.Listing, c core.SearchCriteria) ScoreBreakdown {
	b := ScoreBreakdown{
		Price:    priceScore(l.Price, c.Budget, e.unknownPriceScore),
		Mileage:  mileageScore(l.MileageMiles),
		Distance: distanceScore(l.DistanceMiles, c.MaxDistanceMiles),
		Economy:  economyScore(l.CityMpg, l.HighwayMpg),
		Safety:   safetyScore(l.SafetyRating),
	}
	b.Total = e.weights.total(b)
	return b
}

// Search dedupes pool, drops listings outside tolerance, scores the rest and
// returns at most topK, best first. Equal totals keep their pool order.
// topK <= 0 means DefaultTopK.
func (e *Engine) Search(c core.SearchCriteria, pool []core.Listing, topK int) []ScoredListing {
	if topK <= 0 {
		topK = DefaultTopK
	}

	candidates := listings.Dedupe(pool)
	scored := make([]ScoredListing, 0, len(candidates))
	for _, l := range candidates {
		if !e.passes(l, c) {
			continue
		}
		scored = append(scored, ScoredListing{Listing: l, Score: e.Score(l, c)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score.Total > scored[j].Score.Total
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
