package allocation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroTilt/internal/domain/models"
)

func TestProposedClampsNegative(t *testing.T) {
	u := twoAssetUniverse()
	got, sum := Proposed(u, map[string]float64{"A": -1.5, "B": 0.5})
	assert.Equal(t, 0.0, got["A"])
	assert.InDelta(t, 0.6, got["B"], 1e-12)
	assert.InDelta(t, 0.6, sum, 1e-12)
}

func TestFinalDelta(t *testing.T) {
	u := twoAssetUniverse()
	proposed, sum := Proposed(u, map[string]float64{"A": 0.1, "B": -0.1})
	// A: 0.66 / 1.02 / 0.6 - 1
	fd, err := FinalDelta(u, proposed, sum, "A")
	require.NoError(t, err)
	assert.InDelta(t, 0.66/1.02/0.6-1, fd, 1e-12)
}

func TestFinalDeltaErrors(t *testing.T) {
	u := models.NewUniverse([]models.Asset{
		{Ticker: "A", Allocation: 1, Class: models.ClassGrowth},
		{Ticker: "Z", Allocation: 0, Class: models.ClassGrowth},
	})
	proposed, sum := Proposed(u, nil)

	_, err := FinalDelta(u, proposed, sum, "NOPE")
	assert.True(t, errors.Is(err, models.ErrUnknownTicker))
	assert.Contains(t, err.Error(), "no metadata")

	_, err = FinalDelta(u, proposed, sum, "Z")
	assert.True(t, errors.Is(err, models.ErrInvalidAllocation))

	_, err = FinalDelta(u, map[string]float64{"A": 0}, 0, "A")
	assert.True(t, errors.Is(err, models.ErrDegenerateAllocation))
}

func TestDirective(t *testing.T) {
	assert.Equal(t, "Hold", Directive(0.003, 0.005))
	assert.Equal(t, "Hold", Directive(-0.0049, 0.005))
	assert.Equal(t, "Increase 1.23%", Directive(0.01234, 0.005))
	assert.Equal(t, "Decrease 5.00%", Directive(-0.05, 0.005))
}
