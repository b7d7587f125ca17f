package models

import "time"

// Score is a bounded favourability rating plus a human-readable audit trail.
type Score struct {
	Value       float64 `json:"value"`
	Description string  `json:"description"`
}

// NoDataScore is the neutral score used for absent readings.
func NoDataScore() Score { return Score{Value: 0, Description: "No data"} }

// IndicatorScore is one indicator's contribution to an evaluation.
type IndicatorScore struct {
	Indicator Indicator `json:"indicator"`
	Trend     float64   `json:"trend"`
	Score     Score     `json:"score"`
}

// AssetEvaluation is the per-asset slice of an evaluation.
type AssetEvaluation struct {
	Asset              Asset   `json:"asset"`
	Composite          float64 `json:"composite"`
	RawDelta           float64 `json:"raw_delta"`
	Delta              float64 `json:"delta"`
	Proposed           float64 `json:"proposed"`
	ProposedNormalized float64 `json:"proposed_normalized"`
}

// Evaluation is the read-only audit dump of one engine run over the full universe.
type Evaluation struct {
	Config      EngineConfig                 `json:"config"`
	Indicators  map[Indicator]IndicatorScore `json:"indicators"`
	Assets      map[string]AssetEvaluation   `json:"assets"`
	NetBefore   float64                      `json:"net_before"`
	NetAfter    float64                      `json:"net_after"`
	SumProposed float64                      `json:"sum_proposed"`
	EvaluatedAt time.Time                    `json:"evaluated_at"`
}

// Directive strings returned to callers.
const DirectiveHold = "Hold"

// Recommendation is the final signal for one requested ticker.
type Recommendation struct {
	ID            string    `json:"id"`
	Ticker        string    `json:"ticker"`
	Directive     string    `json:"directive"`
	FinalDelta    float64   `json:"final_delta"`
	OldAllocation float64   `json:"old_allocation"`
	NewAllocation float64   `json:"new_allocation"`
	EvaluatedAt   time.Time `json:"evaluated_at"`
}
