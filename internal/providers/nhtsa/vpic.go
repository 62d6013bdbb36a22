// Package nhtsa provides the two keyless NHTSA integrations: the vPIC VIN
// decoder (secondary identity source) and the 5-Star Safety Ratings API.
package nhtsa

import (
	"context"
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
	defaultVPICBaseURL = "https://vpic.nhtsa.dot.gov"
	vpicSource         = "nhtsa_vpic"
	vpicTimeout        = 10 * time.Second
)

// VPICRecord is the flat DecodeVinValues result. vPIC reports every value as a
// string, with "" for unknown; unknowns are nil here and numeric fields stay
// strings until the reconciler coerces them.
type VPICRecord struct {
	ModelYear       *string `json:"ModelYear,omitempty"`
	Make            *string `json:"Make,omitempty"`
	Model           *string `json:"Model,omitempty"`
	Trim            *string `json:"Trim,omitempty"`
	BodyClass       *string `json:"BodyClass,omitempty"`
	DisplacementL   *string `json:"DisplacementL,omitempty"`
	EngineCylinders *string `json:"EngineCylinders,omitempty"`
	EngineHP        *string `json:"EngineHP,omitempty"`
	FuelTypePrimary *string `json:"FuelTypePrimary,omitempty"`
}

// VPIC decodes VINs through vPIC. It is best-effort: failures yield an empty record.
type VPIC struct {
	client   *upstream.Client
	cache    cache.Cache
	recorder providers.Recorder
}

// NewVPIC creates the vPIC decoder.
func NewVPIC(opts providers.Options) *VPIC {
	return &VPIC{
		client:   opts.NewClient(vpicSource, defaultVPICBaseURL, vpicTimeout, nil),
		cache:    opts.CacheOrNew(),
		recorder: opts.Recorder,
	}
}

// DecodeVIN returns the first vPIC result for vin, optionally hinted with a model year.
// Never returns an error; an empty record comes back with OutcomeDegraded.
func (v *VPIC) DecodeVIN(ctx context.Context, vin string, modelYear *int) (VPICRecord, core.Outcome) {
	const adapter = "nhtsa_vin"
	key := cache.Key(adapter, vin, modelYear)

	var cached VPICRecord
	if providers.Lookup(ctx, v.cache, v.recorder, adapter, key, &cached) {
		providers.Report(v.recorder, adapter, core.OutcomeOK)
		return cached, core.OutcomeOK
	}

	params := url.Values{"format": {"json"}}
	if modelYear != nil && *modelYear > 0 {
		params.Set("modelyear", strconv.Itoa(*modelYear))
	}

	resp, err := v.client.GetRaw(ctx, upstream.Request{
		Path:  "/api/vehicles/DecodeVinValues/" + url.PathEscape(vin),
		Query: params,
	})
	if err != nil {
		slog.Warn("vpic decode failed, continuing without secondary source", "vin", vin, "error", err)
		providers.Report(v.recorder, adapter, core.OutcomeDegraded)
		return VPICRecord{}, core.OutcomeDegraded
	}
	if !gjson.ValidBytes(resp.Body) {
		slog.Warn("vpic returned invalid JSON", "vin", vin)
		providers.Report(v.recorder, adapter, core.OutcomeDegraded)
		return VPICRecord{}, core.OutcomeDegraded
	}

	record := parseVPIC(resp.Body)
	providers.Store(ctx, v.cache, adapter, key, record)
	providers.Report(v.recorder, adapter, core.OutcomeOK)
	return record, core.OutcomeOK
}

func parseVPIC(body []byte) VPICRecord {
	first := gjson.GetBytes(body, "Results.0")
	field := func(name string) *string {
		return core.ParseOptionalString(first.Get(name).Value())
	}
	return VPICRecord{
		ModelYear:       field("ModelYear"),
		Make:            field("Make"),
		Model:           field("Model"),
		Trim:            field("Trim"),
		BodyClass:       field("BodyClass"),
		DisplacementL:   field("DisplacementL"),
		EngineCylinders: field("EngineCylinders"),
		EngineHP:        field("EngineHP"),
		FuelTypePrimary: field("FuelTypePrimary"),
	}
}
