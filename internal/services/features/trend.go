package features

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TrendScale amplifies relative change so that a 10% move saturates the trend signal.
const TrendScale = 10.0

// Trend normalizes a short history into a bounded signal in [-1, 1].
// The last `periods` points form the recent window, everything before it the older window.
// It returns 0 when the history is too short or the older mean is zero.
func Trend(series []float64, periods int) float64 {
	if periods < 1 || len(series) < periods+1 {
		return 0
	}
	split := len(series) - periods
	older := stat.Mean(series[:split], nil)
	if older == 0 {
		return 0
	}
	recent := stat.Mean(series[split:], nil)
	change := (recent - older) / older
	if math.IsNaN(change) || math.IsInf(change, 0) {
		return 0
	}
	return Clamp(change*TrendScale, -1, 1)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
