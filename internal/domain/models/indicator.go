package models

import "time"

// Indicator identifies one macro or market series used as model input.
type Indicator string

const (
	IndicatorUnemployment Indicator = "unemployment"
	IndicatorCPIDomestic  Indicator = "cpi_domestic"
	IndicatorCPIForeign   Indicator = "cpi_foreign"
	IndicatorVolatility   Indicator = "volatility"
	IndicatorGDP          Indicator = "gdp"
	IndicatorYieldCurve   Indicator = "yield_curve"
	IndicatorCreditSpread Indicator = "credit_spread"
)

// AllIndicators lists every indicator in a stable order.
var AllIndicators = []Indicator{
	IndicatorUnemployment,
	IndicatorCPIDomestic,
	IndicatorCPIForeign,
	IndicatorVolatility,
	IndicatorGDP,
	IndicatorYieldCurve,
	IndicatorCreditSpread,
}

// IsValid reports whether ind is a known indicator.
func (ind Indicator) IsValid() bool {
	for _, k := range AllIndicators {
		if k == ind {
			return true
		}
	}
	return false
}

// Reading is the typed result of acquiring one indicator value.
// OK=false means no usable data, which is distinct from a zero value.
type Reading struct {
	Value float64   `json:"value" msgpack:"value"`
	Text  string    `json:"text,omitempty" msgpack:"text"`
	AsOf  time.Time `json:"as_of" msgpack:"as_of"`
	OK    bool      `json:"ok" msgpack:"ok"`
}

// NewReading returns an available numeric reading.
func NewReading(v float64, asOf time.Time) Reading {
	return Reading{Value: v, AsOf: asOf, OK: true}
}

// NoReading returns an unavailable reading.
func NoReading() Reading { return Reading{} }

// Series is an ordered history, oldest to newest. Missing points are absent, not interpolated.
type Series []float64

// IndicatorData bundles the current reading with its recent history.
type IndicatorData struct {
	Indicator Indicator `json:"indicator" msgpack:"indicator"`
	Reading   Reading   `json:"reading" msgpack:"reading"`
	History   Series    `json:"history,omitempty" msgpack:"history"`
}

// Snapshot holds all indicator data for a single invocation.
type Snapshot map[Indicator]IndicatorData

// Get returns data for ind; a missing key yields an unavailable reading.
func (s Snapshot) Get(ind Indicator) IndicatorData {
	if d, ok := s[ind]; ok {
		return d
	}
	return IndicatorData{Indicator: ind}
}

// IndicatorStatus is the health projection of one reading.
type IndicatorStatus struct {
	Indicator Indicator  `json:"indicator"`
	OK        bool       `json:"ok"`
	AsOf      *time.Time `json:"as_of,omitempty"`
	Points    int        `json:"history_points"`
}
