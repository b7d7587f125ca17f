package allocation

import (
	"math"

	"MacroTilt/internal/domain/models"
)

// step is one bucket of the composite -> base shift ladder.
type step struct {
	floor float64
	shift float64
}

// baseShifts is evaluated top-down; the first floor the score reaches wins.
var baseShifts = []step{
	{1.5, 0.08},
	{0.75, 0.05},
	{0.25, 0.025},
	{-0.25, 0},
	{-0.75, -0.025},
	{-1.5, -0.05},
}

const (
	lowestShift = -0.08

	// dampenBelow is the volatility score under which shifts are muted.
	dampenBelow  = -1.0
	dampenFactor = 0.7
)

// BaseShift maps a composite score to a base fractional shift.
func BaseShift(composite float64) float64 {
	for _, s := range baseShifts {
		if composite >= s.floor {
			return s.shift
		}
	}
	return lowestShift
}

// RawDelta converts an asset's composite score into its unreconciled allocation shift.
func RawDelta(a models.Asset, composite, volatilityScore float64, p models.RebalanceParams) float64 {
	d := BaseShift(composite) * a.EffectiveSensitivity()
	if p.VolatilityDampening && volatilityScore < dampenBelow {
		d *= dampenFactor
	}
	if a.IsDefensive() {
		d = -d
	}
	if p.MaxSingleMove > 0 && math.Abs(d) > p.MaxSingleMove {
		d = math.Copysign(p.MaxSingleMove, d)
	}
	return d
}
