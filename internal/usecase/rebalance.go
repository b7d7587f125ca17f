package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"MacroTilt/internal/domain/models"
	domrepo "MacroTilt/internal/domain/repository"
	"MacroTilt/internal/services/engine"
	"MacroTilt/pkg/logger"
)

// RebalanceUseCase gathers the inputs of one engine invocation and runs it.
type RebalanceUseCase struct {
	engine    *engine.Engine
	snapshots domrepo.SnapshotSource
	settings  domrepo.SettingsStore
	assets    domrepo.AssetStore
	publisher domrepo.RecommendationPublisher
	metrics   domrepo.Metrics
	log       *logger.Logger
	newID     func() string
}

func NewRebalanceUseCase(
	eng *engine.Engine,
	snapshots domrepo.SnapshotSource,
	settings domrepo.SettingsStore,
	assets domrepo.AssetStore,
	publisher domrepo.RecommendationPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *RebalanceUseCase {
	return &RebalanceUseCase{
		engine:    eng,
		snapshots: snapshots,
		settings:  settings,
		assets:    assets,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		newID:     func() string { return uuid.NewString() },
	}
}

type inputs struct {
	cfg    models.EngineConfig
	assets []models.Asset
	snap   models.Snapshot
}

func (uc *RebalanceUseCase) load(ctx context.Context) (*inputs, error) {
	cfg, err := uc.settings.LoadEngineConfig(ctx)
	if err != nil {
		uc.metrics.RecordError("settings")
		uc.log.Warn("engine settings unavailable, using defaults", logger.Error(err))
		cfg = models.DefaultEngineConfig()
	}
	assets, err := uc.assets.ListAssets(ctx)
	if err != nil {
		uc.metrics.RecordError("assets")
		return nil, fmt.Errorf("load assets: %w", err)
	}
	return &inputs{cfg: cfg, assets: assets, snap: uc.snapshots.Snapshot(ctx)}, nil
}

// Evaluate returns the full audit dump of one engine run.
func (uc *RebalanceUseCase) Evaluate(ctx context.Context) (*models.Evaluation, error) {
	start := time.Now()
	in, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	ev := uc.engine.Evaluate(in.cfg, in.snap, in.assets)
	uc.metrics.RecordLatency("evaluate", time.Since(start).Seconds())
	return &ev, nil
}

// Signal returns the recommendation for ticker and publishes it downstream.
func (uc *RebalanceUseCase) Signal(ctx context.Context, ticker string) (*models.Recommendation, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("ticker required")
	}
	ev, err := uc.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := uc.engine.Recommend(*ev, ticker)
	if err != nil {
		uc.metrics.RecordError("recommend")
		return nil, err
	}
	rec.ID = uc.newID()
	uc.metrics.RecordDirective(rec.Ticker, rec.Directive)

	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, &rec); err != nil {
			uc.metrics.RecordError("publish")
			uc.log.Warn("publish recommendation failed",
				logger.String("ticker", ticker),
				logger.Error(err))
		}
	}
	return &rec, nil
}

// SignalMany evaluates once and returns one recommendation per ticker. Tickers that cannot be
// priced are reported in the error map. Nothing is published.
func (uc *RebalanceUseCase) SignalMany(ctx context.Context, tickers []string) (map[string]models.Recommendation, map[string]error, error) {
	ev, err := uc.Evaluate(ctx)
	if err != nil {
		return nil, nil, err
	}
	recs := make(map[string]models.Recommendation, len(tickers))
	errs := map[string]error{}
	for _, t := range tickers {
		t = NormalizeTicker(t)
		rec, err := uc.engine.Recommend(*ev, t)
		if err != nil {
			errs[t] = err
			continue
		}
		rec.ID = uc.newID()
		recs[t] = rec
	}
	return recs, errs, nil
}

// Health reports per-indicator availability from a fresh snapshot.
func (uc *RebalanceUseCase) Health(ctx context.Context) []models.IndicatorStatus {
	return IndicatorHealth(uc.snapshots.Snapshot(ctx))
}

func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
