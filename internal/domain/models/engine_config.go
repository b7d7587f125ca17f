package models

import (
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// EngineConfig is the full, explicit configuration of one engine invocation.
// It is passed by value into every scoring and rebalancing call.
type EngineConfig struct {
	Thresholds   Thresholds      `yaml:"thresholds" json:"thresholds"`
	Weights      Weights         `yaml:"weights" json:"weights"`
	TrendPeriods int             `yaml:"trend_periods" json:"trend_periods" default:"3" validate:"gte=1"`
	Rebalance    RebalanceParams `yaml:"rebalance" json:"rebalance"`
}

// Thresholds holds the configurable ladders. Yield-curve and credit-spread cut points are fixed.
type Thresholds struct {
	Unemployment UnemploymentThresholds `yaml:"unemployment" json:"unemployment"`
	CPIDomestic  CPIThresholds          `yaml:"cpi_domestic" json:"cpi_domestic"`
	CPIForeign   CPIThresholds          `yaml:"cpi_foreign" json:"cpi_foreign"`
	Volatility   VolatilityThresholds   `yaml:"volatility" json:"volatility"`
}

type UnemploymentThresholds struct {
	VeryLow  float64 `yaml:"very_low" json:"very_low" default:"3.5" validate:"gte=0"`
	Low      float64 `yaml:"low" json:"low" default:"4.5" validate:"gtfield=VeryLow"`
	High     float64 `yaml:"high" json:"high" default:"6.0" validate:"gtfield=Low"`
	VeryHigh float64 `yaml:"very_high" json:"very_high" default:"7.5" validate:"gtfield=High"`
}

type CPIThresholds struct {
	VeryLow   float64 `yaml:"very_low" json:"very_low" default:"1.0"`
	Target    float64 `yaml:"target" json:"target" default:"2.0" validate:"gtfield=VeryLow"`
	Tolerance float64 `yaml:"tolerance" json:"tolerance" default:"0.5" validate:"gte=0"`
	High      float64 `yaml:"high" json:"high" default:"4.0" validate:"gtfield=Target"`
}

type VolatilityThresholds struct {
	Low      float64 `yaml:"low" json:"low" default:"15" validate:"gte=0"`
	Normal   float64 `yaml:"normal" json:"normal" default:"20" validate:"gtfield=Low"`
	Elevated float64 `yaml:"elevated" json:"elevated" default:"25" validate:"gtfield=Normal"`
	High     float64 `yaml:"high" json:"high" default:"30" validate:"gtfield=Elevated"`
}

// Weights are the per-indicator base weights used by the composite aggregator.
type Weights struct {
	Unemployment float64 `yaml:"unemployment" json:"unemployment" default:"1.0" validate:"gte=0"`
	CPIDomestic  float64 `yaml:"cpi_domestic" json:"cpi_domestic" default:"1.0" validate:"gte=0"`
	CPIForeign   float64 `yaml:"cpi_foreign" json:"cpi_foreign" default:"1.0" validate:"gte=0"`
	Volatility   float64 `yaml:"volatility" json:"volatility" default:"1.0" validate:"gte=0"`
	GDP          float64 `yaml:"gdp" json:"gdp" default:"1.0" validate:"gte=0"`
	YieldCurve   float64 `yaml:"yield_curve" json:"yield_curve" default:"0.8" validate:"gte=0"`
	CreditSpread float64 `yaml:"credit_spread" json:"credit_spread" default:"0.8" validate:"gte=0"`
}

// For returns the configured weight of ind, or 0 for unknown indicators.
func (w Weights) For(ind Indicator) float64 {
	switch ind {
	case IndicatorUnemployment:
		return w.Unemployment
	case IndicatorCPIDomestic:
		return w.CPIDomestic
	case IndicatorCPIForeign:
		return w.CPIForeign
	case IndicatorVolatility:
		return w.Volatility
	case IndicatorGDP:
		return w.GDP
	case IndicatorYieldCurve:
		return w.YieldCurve
	case IndicatorCreditSpread:
		return w.CreditSpread
	default:
		return 0
	}
}

type RebalanceParams struct {
	MinThreshold          float64 `yaml:"min_threshold" json:"min_threshold" default:"0.005" validate:"gte=0"`
	MaxSingleMove         float64 `yaml:"max_single_move" json:"max_single_move" default:"0.10" validate:"gte=0"`
	VolatilityDampening   bool    `yaml:"volatility_dampening" json:"volatility_dampening" default:"true"`
	BalanceReconciliation bool    `yaml:"balance_reconciliation" json:"balance_reconciliation" default:"true"`
}

var engineValidate = validator.New()

// DefaultEngineConfig returns the documented defaults.
func DefaultEngineConfig() EngineConfig {
	var c EngineConfig
	_ = defaults.Set(&c)
	return c
}

// Validate checks ranges and threshold ordering.
func (c EngineConfig) Validate() error {
	if err := engineValidate.Struct(c); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	return nil
}
