package carquery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carwise/internal/cache"
	"carwise/internal/core"
	"carwise/internal/providers"
)

const civicTrims = `{"Trims":[
	{"model_id":"1","model_trim":"EX","model_engine_fuel":"Gasoline","model_lkm_city":"8.1","model_lkm_hwy":"6.2","model_lkm_mixed":"7.1"},
	{"model_id":"2","model_trim":"Sport","model_lkm_city":"9.0"}
]}`

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*Provider, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return New(providers.Options{
		BaseURL:    server.URL,
		Cache:      cache.NewMemoryCache(0),
		HTTPClient: server.Client(),
	}), &calls
}

func TestTrims_Request(t *testing.T) {
	var gotQuery url.Values
	var gotAgent, gotPath string
	p, calls := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAgent = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(civicTrims))
	})

	trims, outcome := p.Trims(context.Background(), 2022, "Honda", "Civic")
	require.Len(t, trims, 2)
	assert.Equal(t, core.OutcomeOK, outcome)
	assert.Equal(t, "/api/0.3/", gotPath)
	assert.Equal(t, "getTrims", gotQuery.Get("cmd"))
	assert.Equal(t, "Honda", gotQuery.Get("make"))
	assert.Equal(t, "Civic", gotQuery.Get("model"))
	assert.Equal(t, "2022", gotQuery.Get("year"))
	assert.Contains(t, gotAgent, "Mozilla/5.0")
	assert.Equal(t, 8.1, *trims[0].LkmCity)
	assert.Nil(t, trims[1].LkmHwy)

	_, _ = p.Trims(context.Background(), 2022, "Honda", "Civic")
	assert.Equal(t, int32(1), calls.Load())
}

func TestTrims_ForbiddenCachesEmpty(t *testing.T) {
	p, calls := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	trims, outcome := p.Trims(context.Background(), 2022, "Honda", "Civic")
	assert.Empty(t, trims)
	assert.NotNil(t, trims)
	assert.Equal(t, core.OutcomeDegraded, outcome)

	trims, _ = p.Trims(context.Background(), 2022, "Honda", "Civic")
	assert.Empty(t, trims)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTrims_ParseFailureNotCached(t *testing.T) {
	p, calls := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("?({broken"))
	})

	trims, outcome := p.Trims(context.Background(), 2020, "Ford", "Focus")
	assert.Empty(t, trims)
	assert.Equal(t, core.OutcomeDegraded, outcome)
	_, _ = p.Trims(context.Background(), 2020, "Ford", "Focus")
	assert.Equal(t, int32(2), calls.Load())
}

func TestEconomy_FirstTrim(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(civicTrims))
	})

	eco, outcome := p.Economy(context.Background(), 2022, "Honda", "Civic")
	assert.Equal(t, core.OutcomeOK, outcome)
	assert.Equal(t, core.EconomySourceCarQuery, eco.Profile.Source)
	assert.Equal(t, "EX", *eco.Profile.TrimUsed)
	assert.Equal(t, "Gasoline", *eco.FuelType)
	assert.InDelta(t, 29.0, *eco.Profile.CityMpg, 0.05)
	assert.InDelta(t, 37.9, *eco.Profile.HighwayMpg, 0.05)
	assert.InDelta(t, 33.1, *eco.Profile.MixedMpg, 0.05)
}

func TestEconomy_NoTrims(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Trims":[]}`))
	})

	eco, outcome := p.Economy(context.Background(), 2022, "Honda", "Civic")
	assert.Equal(t, core.OutcomeDegraded, outcome)
	assert.Equal(t, core.EmptyEconomy(), eco.Profile)
	assert.Nil(t, eco.FuelType)
}
