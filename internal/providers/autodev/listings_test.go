package autodev

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carwise/internal/core"
)

func TestListings_QueryAndRecords(t *testing.T) {
	var gotQuery url.Values
	p, calls := newTestProvider(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"data":[
			{"id":"a1","vehicle":{"year":2020,"make":"Honda","model":"CR-V"},"retailListing":{"price":23000}},
			"not an object",
			{"id":"a2","vehicle":{"year":2019,"make":"Toyota","model":"RAV4"}}
		]}`))
	})

	q := core.ListingQuery{
		Budget:    core.Ptr(28750.0),
		MinYear:   core.Ptr(2015),
		Make:      core.Ptr("Honda"),
		BodyStyle: core.Ptr("suv"),
	}
	records, err := p.Listings(context.Background(), q)
	require.NoError(t, err)

	assert.Len(t, records, 2)
	assert.Equal(t, "20", gotQuery.Get("limit"))
	assert.Equal(t, "1-28750", gotQuery.Get("retailListing.price"))
	assert.Equal(t, "2015-", gotQuery.Get("vehicle.year"))
	assert.Equal(t, "Honda", gotQuery.Get("vehicle.make"))
	assert.Equal(t, "suv", gotQuery.Get("vehicle.bodyStyle"))
	assert.Empty(t, gotQuery.Get("vehicle.model"))

	again, err := p.Listings(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, again, 2)
	assert.Equal(t, int32(1), calls.Load())
}

func TestListings_FailureIsUpstreamError(t *testing.T) {
	p, _ := newTestProvider(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid key"}`))
	})

	_, err := p.Listings(context.Background(), core.ListingQuery{})
	require.Error(t, err)
	assert.True(t, core.IsUpstream(err))
	assert.Contains(t, err.Error(), "invalid key")
}

func TestListings_MissingKey(t *testing.T) {
	p, _ := newTestProvider(t, "", func(w http.ResponseWriter, r *http.Request) {})
	_, err := p.Listings(context.Background(), core.ListingQuery{})
	assert.True(t, core.IsConfiguration(err))
}

func TestExtractRecords(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"bare array", `[{"id":"1"},{"id":"2"}]`, 2, false},
		{"records key", `{"records":[{"id":"1"}]}`, 1, false},
		{"no list", `{"total":0}`, 0, false},
		{"invalid", `{`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractRecords([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}
