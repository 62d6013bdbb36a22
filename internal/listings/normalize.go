// Package listings maps raw listing-source records onto core.Listing.
package listings

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"carwise/internal/core"
)

// Provider is the provider label stamped on every normalized listing.
const Provider = "auto.dev"

// urlFields are tried in order; the first http(s) string wins.
var urlFields = []string{
	"retailListing.vdp",
	"retailListing.vdpUrl",
	"retailListing.url",
	"vdpUrl",
	"url",
	"listingUrl",
	"retailListing.dealerUrl",
}

// Normalize maps one raw record onto a Listing. Records missing year, make or
// model cannot be scored and are rejected with ok == false.
func Normalize(raw json.RawMessage) (core.Listing, bool) {
	if !gjson.ValidBytes(raw) {
		return core.Listing{}, false
	}
	doc := gjson.ParseBytes(raw)
	vehicle := doc.Get("vehicle")
	retail := doc.Get("retailListing")

	year := core.ParseOptionalInt(vehicle.Get("year").Value())
	vehicleMake := core.ParseOptionalString(vehicle.Get("make").Value())
	vehicleModel := core.ParseOptionalString(vehicle.Get("model").Value())
	if year == nil || *year == 0 || vehicleMake == nil || vehicleModel == nil {
		return core.Listing{}, false
	}

	id := core.ParseOptionalString(doc.Get("id").Value())
	vin := first(core.ParseOptionalString, doc.Get("vin"), vehicle.Get("vin"))

	listing := core.Listing{
		VIN:           vin,
		Year:          *year,
		Make:          *vehicleMake,
		Model:         *vehicleModel,
		Trim:          first(core.ParseOptionalString, doc.Get("trim"), vehicle.Get("trim")),
		Price:         core.ParseOptionalFloat(retail.Get("price").Value()),
		MileageMiles:  first(core.ParseOptionalFloat, retail.Get("miles"), retail.Get("mileage")),
		DistanceMiles: core.ParseOptionalFloat(retail.Get("distance").Value()),
		FuelType:      first(core.ParseOptionalString, vehicle.Get("fuel"), vehicle.Get("fuelType")),
		BodyStyle:     first(core.ParseOptionalString, vehicle.Get("bodyStyle"), vehicle.Get("bodyType")),
		CityMpg:       core.ParseOptionalFloat(vehicle.Get("cityMpg").Value()),
		HighwayMpg:    core.ParseOptionalFloat(vehicle.Get("highwayMpg").Value()),
		SafetyRating:  core.ParseOptionalFloat(vehicle.Get("safetyRating").Value()),
		SourceURL:     listingURL(doc, id, vin),
		Provider:      Provider,
	}
	if id != nil {
		listing.ID = *id
	}
	return listing, true
}

// NormalizeAll normalizes records in order, dropping rejects.
func NormalizeAll(raw []json.RawMessage) []core.Listing {
	out := make([]core.Listing, 0, len(raw))
	for _, r := range raw {
		if l, ok := Normalize(r); ok {
			out = append(out, l)
		}
	}
	if dropped := len(raw) - len(out); dropped > 0 {
		slog.Debug("listings rejected as incomplete", "received", len(raw), "dropped", dropped)
	}
	return out
}

func listingURL(doc gjson.Result, id, vin *string) *string {
	for _, field := range urlFields {
		r := doc.Get(field)
		if r.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(r.Str); isHTTPURL(s) {
			return &s
		}
	}
	if id != nil {
		return core.Ptr("https://auto.dev/listings/" + *id)
	}
	if vin != nil {
		return core.Ptr("https://auto.dev/vin/" + *vin)
	}
	return nil
}

func isHTTPURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// first applies parse to each result in turn and returns the first non-nil value.
func first[T any](parse func(any) *T, results ...gjson.Result) *T {
	for _, r := range results {
		if v := parse(r.Value()); v != nil {
			return v
		}
	}
	return nil
}
