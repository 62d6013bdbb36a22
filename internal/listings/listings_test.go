package listings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carwise/internal/core"
)

func TestNormalize_FullRecord(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "lst-1",
		"vin": "5J6RW2H89LL000001",
		"trim": "EX-L",
		"vehicle": {"year": "2020", "make": "Honda", "model": "CR-V", "trim": "EX",
			"bodyStyle": "SUV", "fuel": "Gasoline", "cityMpg": 27, "highwayMpg": "32", "safetyRating": 5},
		"retailListing": {"price": 23000, "miles": "41000", "distance": 12.5,
			"vdp": "not a url", "vdpUrl": "https://dealer.example.com/crv"}
	}`)

	l, ok := Normalize(raw)
	require.True(t, ok)

	assert.Equal(t, "lst-1", l.ID)
	assert.Equal(t, "5J6RW2H89LL000001", *l.VIN)
	assert.Equal(t, 2020, l.Year)
	assert.Equal(t, "Honda", l.Make)
	assert.Equal(t, "CR-V", l.Model)
	assert.Equal(t, "EX-L", *l.Trim, "record-level trim wins")
	assert.Equal(t, 23000.0, *l.Price)
	assert.Equal(t, 41000.0, *l.MileageMiles)
	assert.Equal(t, 12.5, *l.DistanceMiles)
	assert.Equal(t, "SUV", *l.BodyStyle)
	assert.Equal(t, "Gasoline", *l.FuelType)
	assert.Equal(t, 27.0, *l.CityMpg)
	assert.Equal(t, 32.0, *l.HighwayMpg)
	assert.Equal(t, 5.0, *l.SafetyRating)
	assert.Equal(t, "https://dealer.example.com/crv", *l.SourceURL)
	assert.Equal(t, Provider, l.Provider)
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing year", `{"vehicle":{"make":"Honda","model":"Civic"}}`},
		{"missing make", `{"vehicle":{"year":2020,"model":"Civic"}}`},
		{"blank model", `{"vehicle":{"year":2020,"make":"Honda","model":"  "}}`},
		{"no vehicle", `{"retailListing":{"price":1000}}`},
		{"invalid json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Normalize(json.RawMessage(tt.raw))
			assert.False(t, ok)
		})
	}
}

func TestNormalize_URLFallbacks(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *string
	}{
		{
			name: "dealer url last resort",
			raw:  `{"id":"9","vehicle":{"year":2020,"make":"Ford","model":"Edge"},"retailListing":{"dealerUrl":"http://dealer.example.com"}}`,
			want: core.Ptr("http://dealer.example.com"),
		},
		{
			name: "top-level url before dealer",
			raw:  `{"url":"https://a.example.com","vehicle":{"year":2020,"make":"Ford","model":"Edge"},"retailListing":{"dealerUrl":"http://dealer.example.com"}}`,
			want: core.Ptr("https://a.example.com"),
		},
		{
			name: "id fallback",
			raw:  `{"id":"abc","vehicle":{"year":2020,"make":"Ford","model":"Edge"}}`,
			want: core.Ptr("https://auto.dev/listings/abc"),
		},
		{
			name: "vin fallback",
			raw:  `{"vehicle":{"vin":"1FM","year":2020,"make":"Ford","model":"Edge"}}`,
			want: core.Ptr("https://auto.dev/vin/1FM"),
		},
		{
			name: "nothing",
			raw:  `{"vehicle":{"year":2020,"make":"Ford","model":"Edge"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := Normalize(json.RawMessage(tt.raw))
			require.True(t, ok)
			assert.Equal(t, tt.want, l.SourceURL)
		})
	}
}

func TestNormalizeAll(t *testing.T) {
	raw := []json.RawMessage{
		json.RawMessage(`{"id":"1","vehicle":{"year":2020,"make":"Honda","model":"Civic"}}`),
		json.RawMessage(`{"id":"2","vehicle":{"make":"Honda"}}`),
		json.RawMessage(`{"id":"3","vehicle":{"year":2018,"make":"Mazda","model":"CX-5"}}`),
	}

	got := NormalizeAll(raw)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}

func TestDedupe(t *testing.T) {
	pool := []core.Listing{
		{ID: "a", Make: "Honda", Price: core.Ptr(1.0)},
		{ID: "b", Make: "Toyota"},
		{ID: "a", Make: "Honda", Price: core.Ptr(2.0)},
		{VIN: core.Ptr("V1"), Make: "Ford"},
		{VIN: core.Ptr("V1"), Make: "Ford again"},
		{Make: "anonymous"},
		{Make: "anonymous"},
	}

	got := Dedupe(pool)
	require.Len(t, got, 5)
	assert.Equal(t, 1.0, *got[0].Price, "first occurrence wins")
	assert.Equal(t, "Toyota", got[1].Make)
	assert.Equal(t, "Ford", got[2].Make)
	assert.Equal(t, "anonymous", got[3].Make)
	assert.Equal(t, "anonymous", got[4].Make)
}
