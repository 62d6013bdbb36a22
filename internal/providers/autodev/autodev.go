// Package autodev provides the Auto.dev integration: the primary VIN decoder
// and the live listings source.
package autodev

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"carwise/internal/cache"
	"carwise/internal/core"
	"carwise/internal/providers"
	"carwise/internal/upstream"
)

const (
	defaultBaseURL = "https://api.auto.dev"
	sourceName     = "autodev"

	decodeTimeout   = 10 * time.Second
	listingsTimeout = 30 * time.Second
)

// VINDecode is the typed subset of an Auto.dev VIN decode payload the reconciler uses.
type VINDecode struct {
	VIN    string  `json:"vin"`
	Make   *string `json:"make,omitempty"`
	Model  *string `json:"model,omitempty"`
	Trim   *string `json:"trim,omitempty"`
	Type   *string `json:"type,omitempty"`
	Origin *string `json:"origin,omitempty"`

	Vehicle DecodedVehicle `json:"vehicle"`
}

// DecodedVehicle is the nested "vehicle" object of a decode payload.
type DecodedVehicle struct {
	Year  *int    `json:"year,omitempty"`
	Make  *string `json:"make,omitempty"`
	Model *string `json:"model,omitempty"`
}

// Provider talks to Auto.dev with a bearer token.
type Provider struct {
	apiKey   string
	decode   *upstream.Client
	listings *upstream.Client
	cache    cache.Cache
	recorder providers.Recorder
}

// New creates an Auto.dev provider. An empty apiKey is accepted here and
// reported as a ConfigurationError on first use.
func New(apiKey string, opts providers.Options) *Provider {
	p := &Provider{
		apiKey:   apiKey,
		cache:    opts.CacheOrNew(),
		recorder: opts.Recorder,
	}
	p.decode = opts.NewClient(sourceName, defaultBaseURL, decodeTimeout, p.setHeaders)
	p.listings = opts.NewClient(sourceName+"_listings", defaultBaseURL, listingsTimeout, p.setHeaders)
	return p
}

// setHeaders sets the required headers for Auto.dev API requests
func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

func (p *Provider) requireKey() error {
	if strings.TrimSpace(p.apiKey) == "" {
		return core.NewConfigurationError(sourceName, "AUTO_DEV_API_KEY is not set")
	}
	return nil
}

// DecodeVIN decodes vin with Auto.dev. This is the mandatory source: a missing
// key is a ConfigurationError and any transport or non-2xx failure an UpstreamError.
func (p *Provider) DecodeVIN(ctx context.Context, vin string) (VINDecode, core.Outcome, error) {
	const adapter = "auto_dev_vin"
	if err := p.requireKey(); err != nil {
		providers.Report(p.recorder, adapter, core.OutcomeFailed)
		return VINDecode{}, core.OutcomeFailed, err
	}

	key := cache.Key(adapter, vin)
	var cached VINDecode
	if providers.Lookup(ctx, p.cache, p.recorder, adapter, key, &cached) {
		providers.Report(p.recorder, adapter, core.OutcomeOK)
		return cached, core.OutcomeOK, nil
	}

	resp, err := p.decode.GetRaw(ctx, upstream.Request{Path: "/vin/" + url.PathEscape(vin)})
	if err != nil {
		providers.Report(p.recorder, adapter, core.OutcomeFailed)
		return VINDecode{}, core.OutcomeFailed, err
	}
	if !gjson.ValidBytes(resp.Body) {
		providers.Report(p.recorder, adapter, core.OutcomeFailed)
		return VINDecode{}, core.OutcomeFailed, core.NewUpstreamError(sourceName, resp.StatusCode, "invalid JSON in VIN decode response", nil)
	}

	decoded := parseVINDecode(vin, resp.Body)
	providers.Store(ctx, p.cache, adapter, key, decoded)
	providers.Report(p.recorder, adapter, core.OutcomeOK)
	return decoded, core.OutcomeOK, nil
}

// parseVINDecode pulls the known fields out of a decode body, tolerating
// numbers-as-strings and missing objects.
func parseVINDecode(vin string, body []byte) VINDecode {
	doc := gjson.ParseBytes(body)
	decoded := VINDecode{
		VIN:    vin,
		Make:   core.ParseOptionalString(doc.Get("make").Value()),
		Model:  core.ParseOptionalString(doc.Get("model").Value()),
		Trim:   core.ParseOptionalString(doc.Get("trim").Value()),
		Type:   core.ParseOptionalString(doc.Get("type").Value()),
		Origin: core.ParseOptionalString(doc.Get("origin").Value()),
		Vehicle: DecodedVehicle{
			Year:  core.ParseOptionalInt(doc.Get("vehicle.year").Value()),
			Make:  core.ParseOptionalString(doc.Get("vehicle.make").Value()),
			Model: core.ParseOptionalString(doc.Get("vehicle.model").Value()),
		},
	}
	if v := core.ParseOptionalString(doc.Get("vin").Value()); v != nil {
		decoded.VIN = *v
	}
	return decoded
}
