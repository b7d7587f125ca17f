package models

import (
	"fmt"
	"sort"
	"strings"
)

// AssetClass decides whether an asset follows or opposes the risk-appetite signal.
type AssetClass string

const (
	ClassGrowth    AssetClass = "Growth"
	ClassDefensive AssetClass = "Defensive"
)

// ParseAssetClass parses a class name case-insensitively.
func ParseAssetClass(s string) (AssetClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "growth":
		return ClassGrowth, nil
	case "defensive":
		return ClassDefensive, nil
	default:
		return "", fmt.Errorf("unknown asset class %q", s)
	}
}

// Region selects which indicator blend an asset is scored against.
type Region string

const (
	RegionUS       Region = "US"
	RegionDomestic Region = "Domestic"
	RegionGlobal   Region = "Global"
)

// ParseRegion parses a region name case-insensitively. Empty input maps to Global.
func ParseRegion(s string) (Region, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "us", "usa":
		return RegionUS, nil
	case "domestic":
		return RegionDomestic, nil
	case "global", "":
		return RegionGlobal, nil
	default:
		return "", fmt.Errorf("unknown region %q", s)
	}
}

// DefaultSensitivity is used when an asset does not specify one.
const DefaultSensitivity = 1.0

// Asset is one ticker's allocation and metadata, immutable for a rebalancing call.
type Asset struct {
	Ticker      string     `json:"ticker"`
	Allocation  float64    `json:"allocation"`
	Class       AssetClass `json:"asset_class"`
	Region      Region     `json:"region"`
	Sensitivity float64    `json:"sensitivity"`
}

// EffectiveSensitivity returns Sensitivity, or the default when it is not positive.
func (a Asset) EffectiveSensitivity() float64 {
	if a.Sensitivity <= 0 {
		return DefaultSensitivity
	}
	return a.Sensitivity
}

// IsDefensive reports whether the asset is in the defensive bucket.
func (a Asset) IsDefensive() bool { return a.Class == ClassDefensive }

// Universe is the full set of assets keyed by ticker.
type Universe map[string]Asset

// NewUniverse indexes assets by ticker. Later duplicates win.
func NewUniverse(assets []Asset) Universe {
	u := make(Universe, len(assets))
	for _, a := range assets {
		u[a.Ticker] = a
	}
	return u
}

// Tickers returns tickers sorted alphabetically.
func (u Universe) Tickers() []string {
	out := make([]string, 0, len(u))
	for t := range u {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
