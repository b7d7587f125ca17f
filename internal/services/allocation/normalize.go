package allocation

import (
	"fmt"
	"math"

	"MacroTilt/internal/domain/models"
)

// Proposed returns max(0, allocation*(1+delta)) per ticker and their sum.
func Proposed(u models.Universe, deltas map[string]float64) (map[string]float64, float64) {
	out := make(map[string]float64, len(u))
	var sum float64
	for _, t := range u.Tickers() {
		a := u[t]
		p := math.Max(0, a.Allocation*(1+deltas[t]))
		out[t] = p
		sum += p
	}
	return out, sum
}

// FinalDelta is the realized relative change of ticker after renormalization.
func FinalDelta(u models.Universe, proposed map[string]float64, sum float64, ticker string) (float64, error) {
	a, ok := u[ticker]
	if !ok {
		return 0, fmt.Errorf("%w %q", models.ErrUnknownTicker, ticker)
	}
	if a.Allocation <= 0 || math.IsNaN(a.Allocation) {
		return 0, fmt.Errorf("%w %q: current allocation %v", models.ErrInvalidAllocation, ticker, a.Allocation)
	}
	if sum <= 0 {
		return 0, models.ErrDegenerateAllocation
	}
	return (proposed[ticker]/sum)/a.Allocation - 1, nil
}

// Directive renders a final delta as "Hold", "Increase X.XX%" or "Decrease X.XX%".
func Directive(finalDelta, minThreshold float64) string {
	if math.Abs(finalDelta) < minThreshold {
		return models.DirectiveHold
	}
	pct := math.Abs(finalDelta) * 100
	if finalDelta > 0 {
		return fmt.Sprintf("Increase %.2f%%", pct)
	}
	return fmt.Sprintf("Decrease %.2f%%", pct)
}
