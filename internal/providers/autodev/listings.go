package autodev

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"carwise/internal/cache"
	"carwise/internal/core"
	"carwise/internal/providers"
	"carwise/internal/upstream"
)

// DefaultListingsLimit is the page size requested when the query leaves it unset.
const DefaultListingsLimit = 20

// Listings fetches one page of raw listing records. Pagination is the caller's concern;
// records are returned as-is for the listings normalizer.
func (p *Provider) Listings(ctx context.Context, q core.ListingQuery) ([]json.RawMessage, error) {
	const adapter = "auto_dev_listings"
	if err := p.requireKey(); err != nil {
		providers.Report(p.recorder, adapter, core.OutcomeFailed)
		return nil, err
	}

	params := listingParams(q)
	key := cache.Key(adapter, params.Encode())

	var cached []json.RawMessage
	if providers.Lookup(ctx, p.cache, p.recorder, adapter, key, &cached) {
		providers.Report(p.recorder, adapter, core.OutcomeOK)
		return cached, nil
	}

	resp, err := p.listings.GetRaw(ctx, upstream.Request{Path: "/listings", Query: params})
	if err != nil {
		providers.Report(p.recorder, adapter, core.OutcomeFailed)
		return nil, err
	}

	records, err := extractRecords(resp.Body)
	if err != nil {
		providers.Report(p.recorder, adapter, core.OutcomeFailed)
		return nil, core.NewUpstreamError(sourceName, resp.StatusCode, err.Error(), err)
	}

	providers.Store(ctx, p.cache, adapter, key, records)
	providers.Report(p.recorder, adapter, core.OutcomeOK)
	return records, nil
}

func listingParams(q core.ListingQuery) url.Values {
	params := url.Values{}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultListingsLimit
	}
	params.Set("limit", strconv.Itoa(limit))

	if q.Budget != nil && *q.Budget > 0 {
		params.Set("retailListing.price", fmt.Sprintf("1-%.0f", *q.Budget))
	}
	if q.MinYear != nil {
		params.Set("vehicle.year", fmt.Sprintf("%d-", *q.MinYear))
	}
	if q.Make != nil && *q.Make != "" {
		params.Set("vehicle.make", *q.Make)
	}
	if q.Model != nil && *q.Model != "" {
		params.Set("vehicle.model", *q.Model)
	}
	if q.BodyStyle != nil && *q.BodyStyle != "" {
		params.Set("vehicle.bodyStyle", *q.BodyStyle)
	}
	return params
}

// extractRecords accepts {"data":[...]}, {"records":[...]} or a bare array.
func extractRecords(body []byte) ([]json.RawMessage, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON in listings response")
	}
	doc := gjson.ParseBytes(body)

	var list gjson.Result
	switch {
	case doc.IsArray():
		list = doc
	case doc.Get("data").IsArray():
		list = doc.Get("data")
	case doc.Get("records").IsArray():
		list = doc.Get("records")
	default:
		return []json.RawMessage{}, nil
	}

	records := make([]json.RawMessage, 0, len(list.Array()))
	list.ForEach(func(_, value gjson.Result) bool {
		if value.IsObject() {
			records = append(records, json.RawMessage(value.Raw))
		}
		return true
	})
	return records, nil
}
