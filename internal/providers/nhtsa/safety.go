package nhtsa

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"carwise/internal/cache"
	"carwise/internal/core"
	"carwise/internal/providers"
	"carwise/internal/upstream"
)

const (
	defaultSafetyBaseURL = "https://api.nhtsa.gov"
	safetySource         = "nhtsa_safety"
	safetyTimeout        = 10 * time.Second
)

// errNoRating marks lookups that definitively have no rating; their nil result is cached.
var errNoRating = errors.New("no overall rating")

// Safety looks up overall star ratings. It never returns an error.
type Safety struct {
	client   *upstream.Client
	cache    cache.Cache
	recorder providers.Recorder
}

// NewSafety creates the safety-ratings adapter.
func NewSafety(opts providers.Options) *Safety {
	return &Safety{
		client:   opts.NewClient(safetySource, defaultSafetyBaseURL, safetyTimeout, nil),
		cache:    opts.CacheOrNew(),
		recorder: opts.Recorder,
	}
}

// OverallRating resolves the NHTSA vehicle id for year/make/model, then fetches
// its overall rating. Missing ids, non-2xx answers, empty result sets and
// non-numeric ratings ("Not Rated") all yield nil, and that nil is cached so
// known-bad inputs are not looked up again. Transport failures yield nil uncached.
func (s *Safety) OverallRating(ctx context.Context, year int, vehicleMake, vehicleModel string) (*int, core.Outcome) {
	const adapter = "nhtsa_safety"
	key := cache.Key(adapter, year, vehicleMake, vehicleModel)

	var cached *int
	if providers.Lookup(ctx, s.cache, s.recorder, adapter, key, &cached) {
		outcome := core.OutcomeOK
		if cached == nil {
			outcome = core.OutcomeDegraded
		}
		providers.Report(s.recorder, adapter, outcome)
		return cached, outcome
	}

	stars, err := s.lookup(ctx, year, vehicleMake, vehicleModel)
	if err != nil {
		slog.Warn("safety rating unavailable",
			"year", year, "make", vehicleMake, "model", vehicleModel, "error", err)
		if errors.Is(err, errNoRating) || upstream.StatusCode(err) != 0 {
			providers.Store(ctx, s.cache, adapter, key, (*int)(nil))
		}
		providers.Report(s.recorder, adapter, core.OutcomeDegraded)
		return nil, core.OutcomeDegraded
	}

	providers.Store(ctx, s.cache, adapter, key, stars)
	providers.Report(s.recorder, adapter, core.OutcomeOK)
	return stars, core.OutcomeOK
}

func (s *Safety) lookup(ctx context.Context, year int, vehicleMake, vehicleModel string) (*int, error) {
	path := "/SafetyRatings/modelyear/" + strconv.Itoa(year) +
		"/make/" + url.PathEscape(vehicleMake) +
		"/model/" + url.PathEscape(vehicleModel)

	resp, err := s.client.GetRaw(ctx, upstream.Request{Path: path, Query: url.Values{"format": {"json"}}})
	if err != nil {
		return nil, err
	}
	vehicleID := core.ParseOptionalInt(gjson.GetBytes(resp.Body, "Results.0.VehicleId").Value())
	if vehicleID == nil {
		return nil, errNoRating
	}

	resp, err = s.client.GetRaw(ctx, upstream.Request{
		Path:  "/SafetyRatings/VehicleId/" + strconv.Itoa(*vehicleID),
		Query: url.Values{"format": {"json"}},
	})
	if err != nil {
		return nil, err
	}
	stars := core.ParseOptionalInt(gjson.GetBytes(resp.Body, "Results.0.OverallRating").Value())
	if stars == nil || *stars < 1 || *stars > 5 {
		return nil, errNoRating
	}
	return stars, nil
}
