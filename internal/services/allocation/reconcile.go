package allocation

import (
	"math"

	"MacroTilt/internal/domain/models"
)

// ReconcileTolerance is the net capital drift tolerated without adjustment.
const ReconcileTolerance = 0.001

// Net returns the allocation-weighted sum of deltas over the universe.
func Net(u models.Universe, deltas map[string]float64) float64 {
	var net float64
	for _, t := range u.Tickers() {
		net += deltas[t] * u[t].Allocation
	}
	return net
}

// Reconcile offsets the growth and defensive buckets so that no net capital is created or
// destroyed. Half of the drift is removed from each bucket in proportion to allocation; a
// bucket with zero total allocation is skipped. The input map is not modified.
func Reconcile(u models.Universe, raw map[string]float64) (map[string]float64, float64) {
	out := make(map[string]float64, len(raw))
	for t, d := range raw {
		out[t] = d
	}
	net := Net(u, raw)
	if math.Abs(net) <= ReconcileTolerance {
		return out, net
	}

	tickers := u.Tickers()
	var growthTotal, defensiveTotal float64
	for _, t := range tickers {
		a := u[t]
		if a.IsDefensive() {
			defensiveTotal += a.Allocation
		} else {
			growthTotal += a.Allocation
		}
	}

	adj := -net / 2
	for _, t := range tickers {
		a := u[t]
		switch {
		case a.IsDefensive() && defensiveTotal != 0:
			out[t] += adj / defensiveTotal
		case !a.IsDefensive() && growthTotal != 0:
			out[t] += adj / growthTotal
		}
	}
	return out, net
}
