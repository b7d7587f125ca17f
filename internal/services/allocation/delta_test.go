package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"MacroTilt/internal/domain/models"
)

func TestBaseShiftBuckets(t *testing.T) {
	cases := []struct {
		score float64
		want  float64
	}{
		{2, 0.08}, {1.5, 0.08}, {1.0, 0.05}, {0.75, 0.05}, {0.5, 0.025}, {0.25, 0.025},
		{0, 0}, {-0.25, 0}, {-0.5, -0.025}, {-0.75, -0.025}, {-1, -0.05}, {-1.5, -0.05}, {-1.6, -0.08},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, BaseShift(c.score), "score=%v", c.score)
	}
}

func TestRawDelta(t *testing.T) {
	p := models.DefaultEngineConfig().Rebalance
	growth := models.Asset{Ticker: "SPY", Allocation: 0.6, Class: models.ClassGrowth}
	defensive := models.Asset{Ticker: "TLT", Allocation: 0.4, Class: models.ClassDefensive}

	assert.Equal(t, 0.05, RawDelta(growth, 1.0, 0, p))
	assert.Equal(t, -0.05, RawDelta(defensive, 1.0, 0, p))

	// sensitivity scales the shift
	growth.Sensitivity = 1.2
	assert.InDelta(t, 0.06, RawDelta(growth, 1.0, 0, p), 1e-12)

	// elevated volatility mutes the shift
	assert.InDelta(t, 0.042, RawDelta(growth, 1.0, -1.5, p), 1e-12)
	p.VolatilityDampening = false
	assert.InDelta(t, 0.06, RawDelta(growth, 1.0, -1.5, p), 1e-12)
}

func TestRawDeltaCappedByMaxSingleMove(t *testing.T) {
	p := models.RebalanceParams{MaxSingleMove: 0.1}
	a := models.Asset{Ticker: "QQQ", Allocation: 0.2, Class: models.ClassDefensive, Sensitivity: 2}
	assert.Equal(t, -0.1, RawDelta(a, 2, 0, p))

	p.MaxSingleMove = 0
	assert.InDelta(t, -0.16, RawDelta(a, 2, 0, p), 1e-12)
}
