package fx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 {
	return &v
}

func TestNormalize_TwoSided(t *testing.T) {
	t.Parallel()

	pair := Normalize(&Quote{
		Bid: fptr(17.00),
		Ask: fptr(17.30),
	})

	require.NotNil(t, pair)

	assert.Equal(t, 17.00, pair.Bid)
	assert.Equal(t, 17.30, pair.Ask)
}

func TestNormalize_MidOnly(t *testing.T) {
	t.Parallel()

	pair := Normalize(&Quote{
		Mid: fptr(17.12),
	})

	require.NotNil(t, pair)

	// Mid-only quotes collapse into a zero-width pair
	assert.Equal(t, 17.12, pair.Bid)
	assert.Equal(t, 17.12, pair.Ask)
	assert.Equal(t, pair.Bid, pair.Ask)
}

func TestNormalize_PartialSides(t *testing.T) {
	t.Parallel()

	t.Run("missing bid falls back to mid", func(t *testing.T) {
		t.Parallel()

		pair := Normalize(&Quote{
			Mid: fptr(17.12),
			Ask: fptr(17.30),
		})

		require.NotNil(t, pair)

		assert.Equal(t, 17.12, pair.Bid)
		assert.Equal(t, 17.30, pair.Ask)
	})

	t.Run("missing ask falls back to mid", func(t *testing.T) {
		t.Parallel()

		pair := Normalize(&Quote{
			Mid: fptr(17.12),
			Bid: fptr(17.00),
		})

		require.NotNil(t, pair)

		assert.Equal(t, 17.00, pair.Bid)
		assert.Equal(t, 17.12, pair.Ask)
	})

	t.Run("missing side without mid", func(t *testing.T) {
		t.Parallel()

		pair := Normalize(&Quote{
			Bid: fptr(17.00),
		})

		assert.Nil(t, pair)
	})
}

func TestNormalize_Unusable(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name  string
		quote *Quote
	}{
		{
			"nil quote",
			nil,
		},
		{
			"empty quote",
			&Quote{},
		},
		{
			"zero mid",
			&Quote{Mid: fptr(0)},
		},
		{
			"negative mid",
			&Quote{Mid: fptr(-17.12)},
		},
		{
			"non-positive sides, no mid",
			&Quote{Bid: fptr(0), Ask: fptr(-1)},
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Nil(t, Normalize(testCase.quote))
		})
	}
}

func TestNormalize_NonPositiveSideFallsBack(t *testing.T) {
	t.Parallel()

	// A zero side is treated as absent, not as a real rate
	pair := Normalize(&Quote{
		Mid: fptr(17.12),
		Bid: fptr(0),
		Ask: fptr(17.30),
	})

	require.NotNil(t, pair)

	assert.Equal(t, 17.12, pair.Bid)
	assert.Equal(t, 17.30, pair.Ask)
}
