package engine

import (
	"fmt"
	"time"

	"MacroTilt/internal/domain/models"
	"MacroTilt/internal/services/allocation"
	"MacroTilt/internal/services/scoring"
)

// Engine runs the scoring and rebalancing pipeline. It holds no per-call state and is safe
// for concurrent use.
type Engine struct {
	table scoring.RegionTable
	now   func() time.Time
}

type Option func(*Engine)

// WithRegionTable overrides the region blend used by the composite aggregator.
func WithRegionTable(t scoring.RegionTable) Option {
	return func(e *Engine) {
		if t != nil {
			e.table = t
		}
	}
}

// WithClock sets the time source stamped on evaluations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{table: scoring.DefaultRegionTable, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate scores every indicator and computes reconciled, renormalized allocations for the
// whole universe.
func (e *Engine) Evaluate(cfg models.EngineConfig, snap models.Snapshot, assets []models.Asset) models.Evaluation {
	ev := models.Evaluation{
		Config:      cfg,
		Indicators:  make(map[models.Indicator]models.IndicatorScore, len(models.AllIndicators)),
		Assets:      make(map[string]models.AssetEvaluation, len(assets)),
		EvaluatedAt: e.now().UTC(),
	}

	scores := make(map[models.Indicator]models.Score, len(models.AllIndicators))
	for _, ind := range models.AllIndicators {
		s := scoring.ScoreIndicator(snap.Get(ind), cfg)
		ev.Indicators[ind] = s
		scores[ind] = s.Score
	}
	volScore := scores[models.IndicatorVolatility].Value

	u := models.NewUniverse(assets)
	raw := make(map[string]float64, len(u))
	composites := make(map[string]float64, len(u))
	tickers := u.Tickers()
	for _, t := range tickers {
		a := u[t]
		c := scoring.RegionalScore(a.Region, scores, cfg.Weights, e.table)
		composites[t] = c
		raw[t] = allocation.RawDelta(a, c, volScore, cfg.Rebalance)
	}

	deltas := raw
	ev.NetBefore = allocation.Net(u, raw)
	if cfg.Rebalance.BalanceReconciliation {
		deltas, ev.NetBefore = allocation.Reconcile(u, raw)
	}
	ev.NetAfter = allocation.Net(u, deltas)

	proposed, sum := allocation.Proposed(u, deltas)
	ev.SumProposed = sum
	for _, t := range tickers {
		a := u[t]
		ae := models.AssetEvaluation{
			Asset:     a,
			Composite: composites[t],
			RawDelta:  raw[t],
			Delta:     deltas[t],
			Proposed:  proposed[t],
		}
		if sum > 0 {
			ae.ProposedNormalized = proposed[t] / sum
		}
		ev.Assets[t] = ae
	}
	return ev
}

// Recommend derives the directive for ticker from a completed evaluation.
func (e *Engine) Recommend(ev models.Evaluation, ticker string) (models.Recommendation, error) {
	u := make(models.Universe, len(ev.Assets))
	proposed := make(map[string]float64, len(ev.Assets))
	for t, ae := range ev.Assets {
		u[t] = ae.Asset
		proposed[t] = ae.Proposed
	}
	fd, err := allocation.FinalDelta(u, proposed, ev.SumProposed, ticker)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("recommend %s: %w", ticker, err)
	}
	ae := ev.Assets[ticker]
	return models.Recommendation{
		Ticker:        ticker,
		Directive:     allocation.Directive(fd, ev.Config.Rebalance.MinThreshold),
		FinalDelta:    fd,
		OldAllocation: ae.Asset.Allocation,
		NewAllocation: ae.ProposedNormalized,
		EvaluatedAt:   ev.EvaluatedAt,
	}, nil
}

// Signal evaluates the universe and returns the recommendation for ticker.
func (e *Engine) Signal(cfg models.EngineConfig, snap models.Snapshot, assets []models.Asset, ticker string) (models.Recommendation, error) {
	return e.Recommend(e.Evaluate(cfg, snap, assets), ticker)
}
