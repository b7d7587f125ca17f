package scoring

import (
	"fmt"
	"math"

	"MacroTilt/internal/domain/models"
	"MacroTilt/internal/services/features"
)

// Score bounds for every indicator scorer.
const (
	MinScore = -2.0
	MaxScore = 2.0
)

// Trend adjustment factors.
const (
	unemploymentTrendFactor = 0.5
	cpiTrendFactor          = 0.3
	volatilityTrendFactor   = 0.4
	yieldCurveTrendFactor   = 0.3
	creditTrendFactor       = 0.4
)

// Fixed cut points, in percentage points.
const (
	yieldSteep    = 0.5
	yieldFlat     = -0.5
	yieldInverted = -1.0

	creditTight  = 1.0
	creditNormal = 2.0
	creditWide   = 3.0
)

func usable(r models.Reading) bool {
	return r.OK && !math.IsNaN(r.Value) && !math.IsInf(r.Value, 0)
}

func finish(adjusted float64, desc string) models.Score {
	return models.Score{Value: features.Clamp(adjusted, MinScore, MaxScore), Description: desc}
}

func describe(name string, value float64, unit string, trend float64, label string) string {
	if trend != 0 {
		return fmt.Sprintf("%s %.2f%s, trend %+.2f (%s)", name, value, unit, trend, label)
	}
	return fmt.Sprintf("%s %.2f%s (%s)", name, value, unit, label)
}

// ScoreUnemployment rates the unemployment rate; lower is better and a rising trend is penalized.
func ScoreUnemployment(r models.Reading, trend float64, th models.UnemploymentThresholds) models.Score {
	if !usable(r) {
		return models.NoDataScore()
	}
	v := r.Value
	var base float64
	var label string
	switch {
	case v < th.VeryLow:
		base, label = 2, "Very Low"
	case v < th.Low:
		base, label = 1, "Low"
	case v < th.High:
		base, label = 0, "Normal"
	case v < th.VeryHigh:
		base, label = -1, "High"
	default:
		base, label = -2, "Very High"
	}
	return finish(base-trend*unemploymentTrendFactor, describe("Unemployment", v, "%", trend, label))
}

// ScoreCPI rates an inflation reading against its target band. Readings below VeryLow flag
// deflation risk. Only the direction of the trend matters.
func ScoreCPI(name string, r models.Reading, trend float64, th models.CPIThresholds) models.Score {
	if !usable(r) {
		return models.NoDataScore()
	}
	v := r.Value
	var base float64
	var label string
	switch {
	case v < th.VeryLow:
		base, label = -1, "Deflation Risk"
	case math.Abs(v-th.Target) <= th.Tolerance:
		base, label = 1, "On Target"
	case v < th.Target:
		base, label = 0, "Below Target"
	case v < th.High:
		base, label = -1, "Above Target"
	default:
		base, label = -2, "High"
	}
	return finish(base-features.Sign(trend)*cpiTrendFactor, describe(name, v, "%", trend, label))
}

// ScoreVolatility rates a volatility index level in half steps; lower is better.
func ScoreVolatility(r models.Reading, trend float64, th models.VolatilityThresholds) models.Score {
	if !usable(r) {
		return models.NoDataScore()
	}
	v := r.Value
	var base float64
	var label string
	switch {
	case v < th.Low:
		base, label = 1.5, "Low"
	case v < th.Normal:
		base, label = 0.5, "Normal"
	case v < th.Elevated:
		base, label = -0.5, "Elevated"
	case v < th.High:
		base, label = -1.5, "High"
	default:
		base, label = -2, "Extreme"
	}
	return finish(base-trend*volatilityTrendFactor, describe("Volatility index", v, "", trend, label))
}

// ScoreYieldCurve rates the term spread. A positive trend (steepening) is favourable.
func ScoreYieldCurve(r models.Reading, trend float64) models.Score {
	if !usable(r) {
		return models.NoDataScore()
	}
	v := r.Value
	var base float64
	var label string
	switch {
	case v >= yieldSteep:
		base, label = 1, "Steep"
	case v >= yieldFlat:
		base, label = 0, "Flat"
	case v >= yieldInverted:
		base, label = -1, "Inverted"
	default:
		base, label = -2, "Deeply Inverted"
	}
	return finish(base+trend*yieldCurveTrendFactor, describe("Yield curve", v, "pp", trend, label))
}

// ScoreCreditSpread rates corporate credit spreads; tighter is better.
func ScoreCreditSpread(r models.Reading, trend float64) models.Score {
	if !usable(r) {
		return models.NoDataScore()
	}
	v := r.Value
	var base float64
	var label string
	switch {
	case v < creditTight:
		base, label = 1, "Tight"
	case v < creditNormal:
		base, label = 0, "Normal"
	case v < creditWide:
		base, label = -1, "Wide"
	default:
		base, label = -2, "Very Wide"
	}
	return finish(base-trend*creditTrendFactor, describe("Credit spread", v, "pp", trend, label))
}

// ScoreIndicator computes the trend from history and dispatches to the indicator's scorer.
func ScoreIndicator(d models.IndicatorData, cfg models.EngineConfig) models.IndicatorScore {
	out := models.IndicatorScore{Indicator: d.Indicator}
	if d.Indicator != models.IndicatorGDP {
		out.Trend = features.Trend(d.History, cfg.TrendPeriods)
	}
	th := cfg.Thresholds
	switch d.Indicator {
	case models.IndicatorUnemployment:
		out.Score = ScoreUnemployment(d.Reading, out.Trend, th.Unemployment)
	case models.IndicatorCPIDomestic:
		out.Score = ScoreCPI("CPI (domestic)", d.Reading, out.Trend, th.CPIDomestic)
	case models.IndicatorCPIForeign:
		out.Score = ScoreCPI("CPI (foreign)", d.Reading, out.Trend, th.CPIForeign)
	case models.IndicatorVolatility:
		out.Score = ScoreVolatility(d.Reading, out.Trend, th.Volatility)
	case models.IndicatorYieldCurve:
		out.Score = ScoreYieldCurve(d.Reading, out.Trend)
	case models.IndicatorCreditSpread:
		out.Score = ScoreCreditSpread(d.Reading, out.Trend)
	case models.IndicatorGDP:
		out.Score = ScoreGDP(d.Reading)
	default:
		out.Score = models.NoDataScore()
	}
	return out
}
