package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLitersPer100kmToMpg(t *testing.T) {
	t.Run("nil and non-positive are nil", func(t *testing.T) {
		assert.Nil(t, LitersPer100kmToMpg(nil))
		assert.Nil(t, LitersPer100kmToMpg(Ptr(0.0)))
		assert.Nil(t, LitersPer100kmToMpg(Ptr(-3.2)))
	})

	t.Run("exact factor gives ten", func(t *testing.T) {
		got := LitersPer100kmToMpg(Ptr(235.214 / 10))
		require.NotNil(t, got)
		assert.InDelta(t, 10.0, *got, 1e-9)
	})

	t.Run("rounds to one decimal", func(t *testing.T) {
		got := LitersPer100kmToMpg(Ptr(19.0))
		require.NotNil(t, got)
		assert.Equal(t, 12.4, *got)
	})
}

func TestNewEconomyProfile_DerivesMpg(t *testing.T) {
	p := NewEconomyProfile(EconomySourceCarQuery, Ptr(8.4), nil, Ptr(7.0), Ptr("LX"))

	require.NotNil(t, p.CityMpg)
	assert.Equal(t, 28.0, *p.CityMpg)
	assert.Nil(t, p.HighwayMpg)
	require.NotNil(t, p.MixedMpg)
	assert.Equal(t, 33.6, *p.MixedMpg)
	assert.Equal(t, EconomySourceCarQuery, p.Source)
	assert.Equal(t, "LX", *p.TrimUsed)
}

func TestEmptyEconomy(t *testing.T) {
	p := EmptyEconomy()
	assert.Equal(t, EconomySourceNone, p.Source)
	assert.Nil(t, p.CityMpg)
}
