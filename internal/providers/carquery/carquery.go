// Package carquery reads trim-level fuel economy from the CarQuery API.
package carquery

import (
	"context"
	"log/slog"
	"net/http"
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
	defaultBaseURL = "https://www.carqueryapi.com"
	source         = "carquery"
	timeout        = 10 * time.Second

	// CarQuery rejects requests without a browser-like agent.
	userAgent = "Mozilla/5.0 (compatible; CarWiseBackend/0.1; +https://example.com)"
)

// Trim is the subset of a CarQuery trim record carwise uses.
// Consumption values are litres per 100 km.
type Trim struct {
	ModelTrim  *string  `json:"model_trim,omitempty"`
	EngineFuel *string  `json:"model_engine_fuel,omitempty"`
	LkmCity    *float64 `json:"model_lkm_city,omitempty"`
	LkmHwy     *float64 `json:"model_lkm_hwy,omitempty"`
	LkmMixed   *float64 `json:"model_lkm_mixed,omitempty"`
}

// Economy is the fuel-economy view of the first trim.
type Economy struct {
	Profile  core.EconomyProfile
	FuelType *string
}

// Provider talks to CarQuery.
type Provider struct {
	client   *upstream.Client
	cache    cache.Cache
	recorder providers.Recorder
}

// New creates the CarQuery adapter.
func New(opts providers.Options) *Provider {
	headers := func(req *http.Request) {
		req.Header.Set("User-Agent", userAgent)
	}
	return &Provider{
		client:   opts.NewClient(source, defaultBaseURL, timeout, headers),
		cache:    opts.CacheOrNew(),
		recorder: opts.Recorder,
	}
}

// Trims lists trims for year/make/model. Non-2xx answers (CarQuery commonly
// answers 403) cache an empty list. Transport and parse failures return an
// empty list without caching.
func (p *Provider) Trims(ctx context.Context, year int, vehicleMake, vehicleModel string) ([]Trim, core.Outcome) {
	const adapter = "carquery_trims"
	key := cache.Key(adapter, year, vehicleMake, vehicleModel)

	var cached []Trim
	if providers.Lookup(ctx, p.cache, p.recorder, adapter, key, &cached) {
		outcome := core.OutcomeOK
		if len(cached) == 0 {
			outcome = core.OutcomeDegraded
		}
		providers.Report(p.recorder, adapter, outcome)
		return cached, outcome
	}

	resp, err := p.client.GetRaw(ctx, upstream.Request{
		Path: "/api/0.3/",
		Query: url.Values{
			"cmd":   {"getTrims"},
			"make":  {vehicleMake},
			"model": {vehicleModel},
			"year":  {strconv.Itoa(year)},
		},
	})
	if err != nil {
		slog.Warn("carquery lookup failed",
			"year", year, "make", vehicleMake, "model", vehicleModel, "error", err)
		if upstream.StatusCode(err) != 0 {
			providers.Store(ctx, p.cache, adapter, key, []Trim{})
		}
		providers.Report(p.recorder, adapter, core.OutcomeDegraded)
		return []Trim{}, core.OutcomeDegraded
	}

	trims, ok := parseTrims(resp.Body)
	if !ok {
		slog.Warn("carquery returned unparseable body", "year", year, "make", vehicleMake, "model", vehicleModel)
		providers.Report(p.recorder, adapter, core.OutcomeDegraded)
		return []Trim{}, core.OutcomeDegraded
	}

	providers.Store(ctx, p.cache, adapter, key, trims)
	outcome := core.OutcomeOK
	if len(trims) == 0 {
		outcome = core.OutcomeDegraded
	}
	providers.Report(p.recorder, adapter, outcome)
	return trims, outcome
}

// Economy converts the first trim's consumption figures into an economy
// profile. With no trims it returns the neutral profile (source "none").
func (p *Provider) Economy(ctx context.Context, year int, vehicleMake, vehicleModel string) (Economy, core.Outcome) {
	trims, outcome := p.Trims(ctx, year, vehicleMake, vehicleModel)
	if len(trims) == 0 {
		return Economy{Profile: core.EmptyEconomy()}, outcome
	}
	first := trims[0]
	return Economy{
		Profile:  core.NewEconomyProfile(core.EconomySourceCarQuery, first.LkmCity, first.LkmHwy, first.LkmMixed, first.ModelTrim),
		FuelType: first.EngineFuel,
	}, outcome
}

func parseTrims(body []byte) ([]Trim, bool) {
	if !gjson.ValidBytes(body) {
		return nil, false
	}
	trims := []Trim{}
	gjson.GetBytes(body, "Trims").ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		trims = append(trims, Trim{
			ModelTrim:  core.ParseOptionalString(item.Get("model_trim").Value()),
			EngineFuel: core.ParseOptionalString(item.Get("model_engine_fuel").Value()),
			LkmCity:    core.ParseOptionalFloat(item.Get("model_lkm_city").Value()),
			LkmHwy:     core.ParseOptionalFloat(item.Get("model_lkm_hwy").Value()),
			LkmMixed:   core.ParseOptionalFloat(item.Get("model_lkm_mixed").Value()),
		})
		return true
	})
	return trims, true
}
