package scoring

import "MacroTilt/internal/domain/models"

// WeightEntry boosts one indicator's configured weight for a region.
type WeightEntry struct {
	Indicator  models.Indicator
	Multiplier float64
}

// RegionTable maps a region to the indicators blended for it. Regions absent from the
// table are scored against every indicator with multiplier 1.
type RegionTable map[models.Region][]WeightEntry

// DefaultRegionTable is the standard region blend.
var DefaultRegionTable = RegionTable{
	models.RegionUS: {
		{models.IndicatorUnemployment, 1.5},
		{models.IndicatorCPIDomestic, 1.3},
		{models.IndicatorVolatility, 1.2},
		{models.IndicatorYieldCurve, 1.1},
		{models.IndicatorCreditSpread, 1.1},
	},
	models.RegionDomestic: {
		{models.IndicatorCPIForeign, 1.5},
		{models.IndicatorGDP, 1.4},
		{models.IndicatorUnemployment, 0.7},
		{models.IndicatorVolatility, 0.8},
	},
}

// Entries returns the blend for region, falling back to every indicator at multiplier 1.
func (t RegionTable) Entries(region models.Region) []WeightEntry {
	if es, ok := t[region]; ok {
		return es
	}
	out := make([]WeightEntry, 0, len(models.AllIndicators))
	for _, ind := range models.AllIndicators {
		out = append(out, WeightEntry{Indicator: ind, Multiplier: 1})
	}
	return out
}

// RegionalScore is the weighted average of indicator scores for region. Indicators missing
// from scores count as 0. A zero total weight yields 0.
func RegionalScore(region models.Region, scores map[models.Indicator]models.Score, weights models.Weights, table RegionTable) float64 {
	var sum, total float64
	for _, e := range table.Entries(region) {
		w := weights.For(e.Indicator) * e.Multiplier
		if w <= 0 {
			continue
		}
		sum += scores[e.Indicator].Value * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return sum / total
}
