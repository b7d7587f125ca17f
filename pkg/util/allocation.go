package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseAllocation canonicalizes an allocation to a fraction in [0,1].
// "12.5%" is a percentage and becomes 0.125; a bare "0.125" is already a fraction.
// A bare number above 1 is rejected instead of being guessed as a percentage.
func ParseAllocation(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("allocation: empty value")
	}
	pct := strings.HasSuffix(raw, "%")
	num := strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("allocation %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("allocation %q: not a finite number", s)
	}
	if pct {
		v /= 100
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("allocation %q: out of range [0,1] (use a %% suffix for percentages)", s)
	}
	return v, nil
}
