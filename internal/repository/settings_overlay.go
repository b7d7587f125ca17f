package repository

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"MacroTilt/internal/domain/models"
)

// ErrUnknownSetting is returned for a key that does not address an engine field.
var ErrUnknownSetting = errors.New("unknown engine setting")

// settingFields addresses every overridable field of cfg by its dotted key.
func settingFields(cfg *models.EngineConfig) map[string]interface{} {
	th := &cfg.Thresholds
	w := &cfg.Weights
	r := &cfg.Rebalance
	f := map[string]interface{}{
		"thresholds.unemployment.very_low":  &th.Unemployment.VeryLow,
		"thresholds.unemployment.low":       &th.Unemployment.Low,
		"thresholds.unemployment.high":      &th.Unemployment.High,
		"thresholds.unemployment.very_high": &th.Unemployment.VeryHigh,
		"thresholds.volatility.low":         &th.Volatility.Low,
		"thresholds.volatility.normal":      &th.Volatility.Normal,
		"thresholds.volatility.elevated":    &th.Volatility.Elevated,
		"thresholds.volatility.high":        &th.Volatility.High,
		"weights.unemployment":              &w.Unemployment,
		"weights.cpi_domestic":              &w.CPIDomestic,
		"weights.cpi_foreign":               &w.CPIForeign,
		"weights.volatility":                &w.Volatility,
		"weights.gdp":                       &w.GDP,
		"weights.yield_curve":               &w.YieldCurve,
		"weights.credit_spread":             &w.CreditSpread,
		"trend_periods":                     &cfg.TrendPeriods,
		"rebalance.min_threshold":           &r.MinThreshold,
		"rebalance.max_single_move":         &r.MaxSingleMove,
		"rebalance.volatility_dampening":    &r.VolatilityDampening,
		"rebalance.balance_reconciliation":  &r.BalanceReconciliation,
	}
	for name, cpi := range map[string]*models.CPIThresholds{
		"cpi_domestic": &th.CPIDomestic,
		"cpi_foreign":  &th.CPIForeign,
	} {
		f["thresholds."+name+".very_low"] = &cpi.VeryLow
		f["thresholds."+name+".target"] = &cpi.Target
		f["thresholds."+name+".tolerance"] = &cpi.Tolerance
		f["thresholds."+name+".high"] = &cpi.High
	}
	return f
}

// SettingKeys lists every accepted key, sorted.
func SettingKeys() []string {
	var cfg models.EngineConfig
	keys := make([]string, 0, 32)
	for k := range settingFields(&cfg) {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ApplySetting parses value into the field addressed by key.
func ApplySetting(cfg *models.EngineConfig, key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	field, ok := settingFields(cfg)[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	switch p := field.(type) {
	case *float64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
		*p = v
	case *int:
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
		*p = v
	case *bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
		*p = v
	}
	return nil
}
