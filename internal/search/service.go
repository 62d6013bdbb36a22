package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"carwise/internal/core"
	"carwise/internal/listings"
)

const (
	DefaultMinYear = 2015
	DefaultLimit   = 20

	// MaxRecommendations bounds the legacy recommendations top_k.
	MaxRecommendations = 20

	recommendationRationale = "Score combines price, mileage, distance, economy, and safety. " +
		"Higher score means a better overall match for the filters."
)

// ListingSource returns one page of raw listing records.
type ListingSource interface {
	Listings(ctx context.Context, q core.ListingQuery) ([]json.RawMessage, error)
}

// Observer receives per-search pool and result sizes.
type Observer interface {
	ObserveSearch(candidates, results int)
}

// ServiceConfig tunes the listing-source query.
type ServiceConfig struct {
	MinYear int
	Limit   int
	TopK    int
}

// Service fetches a candidate pool from the listing source and ranks it.
type Service struct {
	source   ListingSource
	engine   *Engine
	cfg      ServiceConfig
	observer Observer
}

// NewService creates a search Service. Zero config fields take their defaults;
// observer may be nil.
func NewService(source ListingSource, engine *Engine, cfg ServiceConfig, observer Observer) *Service {
	if cfg.MinYear <= 0 {
		cfg.MinYear = DefaultMinYear
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if engine == nil {
		engine = NewEngine()
	}
	return &Service{source: source, engine: engine, cfg: cfg, observer: observer}
}

// Query builds the listing-source query for c. The budget is widened to the
// filter tolerance so near-budget listings reach the engine, and a negated
// body style is left for the engine to apply.
func (s *Service) Query(c core.SearchCriteria) core.ListingQuery {
	q := core.ListingQuery{
		MinYear: core.Ptr(s.cfg.MinYear),
		Make:    c.Make,
		Model:   c.Model,
		Limit:   s.cfg.Limit,
	}
	if c.MinYear != nil && *c.MinYear > 0 {
		q.MinYear = c.MinYear
	}
	if c.Budget != nil && *c.Budget > 0 {
		q.Budget = core.Ptr(*c.Budget * BudgetTolerance)
	}
	if c.BodyStyle != nil {
		if _, neg := negated(*c.BodyStyle); !neg {
			q.BodyStyle = c.BodyStyle
		}
	}
	return q
}

// Search runs one ranked search. topK <= 0 uses the configured default.
// A listing-source failure is returned as is; there is nothing to rank without a pool.
func (s *Service) Search(ctx context.Context, c core.SearchCriteria, topK int) ([]ScoredListing, error) {
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	raw, err := s.source.Listings(ctx, s.Query(c))
	if err != nil {
		return nil, fmt.Errorf("fetching listings: %w", err)
	}

	pool := listings.NormalizeAll(raw)
	results := s.engine.Search(c, pool, topK)

	if s.observer != nil {
		s.observer.ObserveSearch(len(pool), len(results))
	}
	slog.Debug("search complete", "raw", len(raw), "pool", len(pool), "results", len(results))
	return results, nil
}

// Result is the API view of a ScoredListing with its explanation lines.
type Result struct {
	Listing     core.Listing   `json:"listing"`
	Score       ScoreBreakdown `json:"score"`
	Explanation []string       `json:"explanation"`
}

// Results attaches explanations to scored listings.
func Results(scored []ScoredListing) []Result {
	out := make([]Result, 0, len(scored))
	for _, s := range scored {
		out = append(out, Result{Listing: s.Listing, Score: s.Score, Explanation: Explain(s.Score)})
	}
	return out
}

// RecommendationParams are the legacy recommendation query parameters.
type RecommendationParams struct {
	PriceMax float64
	// MpgMin is accepted for compatibility; economy is left to the scorer.
	MpgMin float64
	Fuel   *string
	TopK   int
}

// Recommendation is a flat listing with its total score and a fixed rationale.
type Recommendation struct {
	core.Listing
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// Recommendations serves the older budget-plus-fuel endpoint.
func (s *Service) Recommendations(ctx context.Context, p RecommendationParams) ([]Recommendation, error) {
	if p.PriceMax <= 0 {
		return nil, core.NewInvalidRequestError("price_max must be greater than 0", nil)
	}
	if p.MpgMin < 0 {
		return nil, core.NewInvalidRequestError("mpg_min must not be negative", nil)
	}
	if p.TopK == 0 {
		p.TopK = DefaultTopK
	}
	if p.TopK < 1 || p.TopK > MaxRecommendations {
		return nil, core.NewInvalidRequestError(fmt.Sprintf("top_k must be between 1 and %d", MaxRecommendations), nil)
	}

	scored, err := s.Search(ctx, core.SearchCriteria{Budget: core.Ptr(p.PriceMax), FuelType: p.Fuel}, p.TopK)
	if err != nil {
		return nil, err
	}

	recos := make([]Recommendation, 0, len(scored))
	for _, r := range scored {
		recos = append(recos, Recommendation{
			Listing:   r.Listing,
			Score:     r.Score.Total,
			Rationale: recommendationRationale,
		})
	}
	return recos, nil
}
