package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriteriaFromFilters(t *testing.T) {
	c := CriteriaFromFilters(map[string]any{
		"budget":       "$25,000",
		"max_distance": float64(50),
		"body_style":   "  suv ",
		"fuel_type":    "",
		"make":         "Toyota",
		"min_year":     "2018",
		"unknown":      "ignored",
	})

	require.NotNil(t, c.Budget)
	assert.Equal(t, 25000.0, *c.Budget)
	require.NotNil(t, c.MaxDistanceMiles)
	assert.Equal(t, 50.0, *c.MaxDistanceMiles)
	require.NotNil(t, c.BodyStyle)
	assert.Equal(t, "suv", *c.BodyStyle)
	assert.Nil(t, c.FuelType, "blank strings are dropped")
	require.NotNil(t, c.Make)
	assert.Equal(t, "Toyota", *c.Make)
	assert.Nil(t, c.Model)
	require.NotNil(t, c.MinYear)
	assert.Equal(t, 2018, *c.MinYear)
}

func TestCriteriaFromFilters_DropsNonPositive(t *testing.T) {
	c := CriteriaFromFilters(map[string]any{
		"budget":       "0",
		"max_distance": float64(-10),
		"body_style":   42,
		"min_year":     "unknown",
	})

	assert.Nil(t, c.Budget)
	assert.Nil(t, c.MaxDistanceMiles)
	assert.Nil(t, c.BodyStyle, "non-string values are not text criteria")
	assert.Nil(t, c.MinYear)
}

func TestCriteriaFromFilters_Empty(t *testing.T) {
	assert.Zero(t, CriteriaFromFilters(nil))
}
