package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carwise/internal/core"
	"carwise/internal/search"
)

type mockProfiles struct {
	profile core.CarProfile
	summary string
	err     error
	gotVIN  string
}

func (m *mockProfiles) Lookup(_ context.Context, vin string) (core.CarProfile, error) {
	m.gotVIN = vin
	return m.profile, m.err
}

func (m *mockProfiles) Summary(_ context.Context, vin string) (string, error) {
	m.gotVIN = vin
	return m.summary, m.err
}

type mockSearch struct {
	scored     []search.ScoredListing
	recos      []search.Recommendation
	err        error
	gotCrit    core.SearchCriteria
	gotTopK    int
	gotRecoReq search.RecommendationParams
}

func (m *mockSearch) Search(_ context.Context, c core.SearchCriteria, topK int) ([]search.ScoredListing, error) {
	m.gotCrit = c
	m.gotTopK = topK
	return m.scored, m.err
}

func (m *mockSearch) Recommendations(_ context.Context, p search.RecommendationParams) ([]search.Recommendation, error) {
	m.gotRecoReq = p
	return m.recos, m.err
}

func do(t *testing.T, srv http.Handler, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := New(&mockProfiles{}, &mockSearch{}, nil)

	rec := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestGetCar(t *testing.T) {
	profiles := &mockProfiles{profile: core.CarProfile{
		VIN:             "1HGCM82633A004352",
		VehicleIdentity: core.VehicleIdentity{Year: core.Ptr(2003), Make: core.Ptr("Honda"), Model: core.Ptr("Accord")},
	}}
	srv := New(profiles, &mockSearch{}, nil)

	rec := do(t, srv, http.MethodGet, "/cars/1hgcm82633a004352", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1HGCM82633A004352", profiles.gotVIN, "vin is upper-cased before lookup")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1HGCM82633A004352", body["vin"])
}

func TestGetCar_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"not decodable", core.NewNotFoundError("Could not decode VIN"), http.StatusNotFound, "not_found_error"},
		{"missing key", core.NewConfigurationError("autodev", "AUTO_DEV_API_KEY is not set"), http.StatusInternalServerError, "configuration_error"},
		{"primary down", core.NewUpstreamError("autodev", http.StatusServiceUnavailable, "unavailable", nil), http.StatusBadGateway, "upstream_error"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(&mockProfiles{err: tt.err}, &mockSearch{}, nil)

			rec := do(t, srv, http.MethodGet, "/cars/BADVIN", "")
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body struct {
				Error struct {
					Type string `json:"type"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body.Error.Type)
		})
	}
}

func TestGetCarSummary(t *testing.T) {
	srv := New(&mockProfiles{summary: "2003 Honda Accord."}, &mockSearch{}, nil)

	rec := do(t, srv, http.MethodGet, "/cars/1HGCM82633A004352/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"vin":"1HGCM82633A004352","summary":"2003 Honda Accord."}`, rec.Body.String())
}

func TestSearch(t *testing.T) {
	searcher := &mockSearch{scored: []search.ScoredListing{{
		Listing: core.Listing{ID: "a", Year: 2020, Make: "Toyota", Model: "RAV4", Provider: "auto.dev"},
		Score:   search.ScoreBreakdown{Price: 0.9, Mileage: 0.8, Distance: 0.7, Economy: 0.6, Safety: 0.5, Total: 0.75},
	}}}
	srv := New(&mockProfiles{}, searcher, nil)

	rec := do(t, srv, http.MethodPost, "/search", `{"budget":25000,"body_style":"suv","top_k":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, searcher.gotCrit.Budget)
	assert.Equal(t, 25000.0, *searcher.gotCrit.Budget)
	require.NotNil(t, searcher.gotCrit.BodyStyle)
	assert.Equal(t, "suv", *searcher.gotCrit.BodyStyle)
	assert.Equal(t, 3, searcher.gotTopK)

	var body SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "a", body.Results[0].Listing.ID)
	assert.Contains(t, body.Results[0].Explanation, "overall 75%")
	require.NotNil(t, body.CriteriaApplied.Budget)
}

func TestSearch_BadRequests(t *testing.T) {
	srv := New(&mockProfiles{}, &mockSearch{}, nil)

	rec := do(t, srv, http.MethodPost, "/search", `{"budget":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/search", `{"top_k":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch_SourceFailure(t *testing.T) {
	err := core.NewUpstreamError("autodev", http.StatusInternalServerError, "listings unavailable", nil)
	srv := New(&mockProfiles{}, &mockSearch{err: err}, nil)

	rec := do(t, srv, http.MethodPost, "/search", `{}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRecommendations(t *testing.T) {
	searcher := &mockSearch{recos: []search.Recommendation{{
		Listing: core.Listing{ID: "a", Year: 2021, Make: "Honda", Model: "Civic"},
		Score:   0.7,
	}}}
	srv := New(&mockProfiles{}, searcher, nil)

	for _, path := range []string{"/recommendations", "/cars/recommendations"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, path+"?price_max=20000&mpg_min=30&fuel=gas&top_k=2", "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, 20000.0, searcher.gotRecoReq.PriceMax)
			assert.Equal(t, 30.0, searcher.gotRecoReq.MpgMin)
			assert.Equal(t, 2, searcher.gotRecoReq.TopK)
			require.NotNil(t, searcher.gotRecoReq.Fuel)
			assert.Equal(t, "gas", *searcher.gotRecoReq.Fuel)

			var body []map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Len(t, body, 1)
			assert.Equal(t, "Civic", body[0]["model"])
		})
	}
}

func TestRecommendations_BadParams(t *testing.T) {
	srv := New(&mockProfiles{}, &mockSearch{}, nil)

	for _, query := range []string{"", "?price_max=abc", "?price_max=1000&top_k=x", "?price_max=1000&mpg_min=high"} {
		rec := do(t, srv, http.MethodGet, "/recommendations"+query, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestServer_AuthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "carwise_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	srv := New(&mockProfiles{}, &mockSearch{}, &Config{
		MasterKey:       "secret",
		MetricsEnabled:  true,
		MetricsEndpoint: "/metrics",
		MetricsGatherer: reg,
	})

	rec := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code, "health is public")

	rec = do(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code, "metrics is public")
	assert.Contains(t, rec.Body.String(), "carwise_test_total 1")

	rec = do(t, srv, http.MethodGet, "/cars/1HGCM82633A004352", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, http.MethodGet, "/cars/1HGCM82633A004352", "", "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_BodyLimit(t *testing.T) {
	srv := New(&mockProfiles{}, &mockSearch{}, &Config{BodySizeLimit: "10B"})

	rec := do(t, srv, http.MethodPost, "/search", `{"budget":25000,"body_style":"suv"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
