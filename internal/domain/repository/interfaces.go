package repository

import (
	"context"

	"MacroTilt/internal/domain/models"
)

// IndicatorFetcher acquires one indicator's reading and history from an external source.
// Implementations may fail; callers turn failures into unavailable readings.
type IndicatorFetcher interface {
	Fetch(ctx context.Context, ind models.Indicator) (models.IndicatorData, error)
}

// SnapshotSource supplies a complete, well-formed snapshot and never fails.
type SnapshotSource interface {
	Snapshot(ctx context.Context) models.Snapshot
}

// SettingsStore supplies the engine configuration for one invocation.
type SettingsStore interface {
	LoadEngineConfig(ctx context.Context) (models.EngineConfig, error)
}

// AssetStore supplies current allocations and asset metadata.
type AssetStore interface {
	ListAssets(ctx context.Context) ([]models.Asset, error)
}

// RecommendationPublisher emits computed recommendations downstream.
type RecommendationPublisher interface {
	Publish(ctx context.Context, rec *models.Recommendation) error
	Close() error
}

type Metrics interface {
	RecordFetch(indicator string, ok bool, seconds float64)
	RecordCache(hit bool)
	RecordDirective(ticker, directive string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
