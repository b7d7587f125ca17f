package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroTilt/internal/domain/models"
	domrepo "MacroTilt/internal/domain/repository"
	"MacroTilt/internal/services/engine"
	"MacroTilt/pkg/logger"
	"MacroTilt/pkg/metrics"
)

func benignFetcher() *fakeFetcher {
	f := newFakeFetcher()
	f.set(models.IndicatorUnemployment, 3.0)
	f.set(models.IndicatorCPIDomestic, 2.0)
	f.set(models.IndicatorVolatility, 12)
	f.set(models.IndicatorYieldCurve, 1.0)
	f.set(models.IndicatorCreditSpread, 0.8)
	return f
}

var testAssets = []models.Asset{
	{Ticker: "SPY", Allocation: 0.6, Class: models.ClassGrowth, Region: models.RegionUS},
	{Ticker: "TLT", Allocation: 0.4, Class: models.ClassDefensive, Region: models.RegionUS},
}

func newUseCase(f *fakeFetcher, s fakeSettings, a fakeAssets, p *fakePublisher) *RebalanceUseCase {
	log := logger.Nop()
	collector := NewSnapshotCollector(f, metrics.Nop{}, log, time.Second)
	var pub domrepo.RecommendationPublisher
	if p != nil {
		pub = p
	}
	uc := NewRebalanceUseCase(engine.New(), collector, s, a, pub, metrics.Nop{}, log)
	uc.newID = func() string { return "id-1" }
	return uc
}

func TestSignalPublishes(t *testing.T) {
	pub := &fakePublisher{}
	uc := newUseCase(benignFetcher(), fakeSettings{cfg: models.DefaultEngineConfig()}, fakeAssets{assets: testAssets}, pub)

	rec, err := uc.Signal(context.Background(), " spy ")
	require.NoError(t, err)
	assert.Equal(t, "SPY", rec.Ticker)
	assert.Equal(t, "Increase 4.17%", rec.Directive)
	assert.Equal(t, "id-1", rec.ID)
	require.Len(t, pub.recs, 1)
	assert.Equal(t, *rec, pub.recs[0])
}

func TestSignalPublishFailureIsNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	uc := newUseCase(benignFetcher(), fakeSettings{cfg: models.DefaultEngineConfig()}, fakeAssets{assets: testAssets}, pub)

	rec, err := uc.Signal(context.Background(), "TLT")
	require.NoError(t, err)
	assert.Equal(t, "Decrease 6.25%", rec.Directive)
}

func TestSignalSettingsFallback(t *testing.T) {
	uc := newUseCase(benignFetcher(), fakeSettings{err: errStore}, fakeAssets{assets: testAssets}, nil)
	rec, err := uc.Signal(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, "Increase 4.17%", rec.Directive)
}

func TestSignalErrors(t *testing.T) {
	uc := newUseCase(benignFetcher(), fakeSettings{cfg: models.DefaultEngineConfig()}, fakeAssets{assets: testAssets}, nil)

	_, err := uc.Signal(context.Background(), "QQQ")
	assert.True(t, errors.Is(err, models.ErrUnknownTicker))

	_, err = uc.Signal(context.Background(), "")
	assert.Error(t, err)

	uc = newUseCase(benignFetcher(), fakeSettings{cfg: models.DefaultEngineConfig()}, fakeAssets{err: errStore}, nil)
	_, err = uc.Signal(context.Background(), "SPY")
	assert.True(t, errors.Is(err, errStore))
}

func TestSignalAllFetchesFailHolds(t *testing.T) {
	f := newFakeFetcher()
	for _, ind := range models.AllIndicators {
		f.errs[ind] = errors.New("timeout")
	}
	uc := newUseCase(f, fakeSettings{cfg: models.DefaultEngineConfig()}, fakeAssets{assets: testAssets}, nil)
	rec, err := uc.Signal(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, models.DirectiveHold, rec.Directive)
}

func TestSignalMany(t *testing.T) {
	uc := newUseCase(benignFetcher(), fakeSettings{cfg: models.DefaultEngineConfig()}, fakeAssets{assets: testAssets}, nil)
	recs, errs, err := uc.SignalMany(context.Background(), []string{"spy", "TLT", "XYZ"})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, "Decrease 6.25%", recs["TLT"].Directive)
	assert.True(t, errors.Is(errs["XYZ"], models.ErrUnknownTicker))
}

func TestEvaluateAndHealth(t *testing.T) {
	uc := newUseCase(benignFetcher(), fakeSettings{cfg: models.DefaultEngineConfig()}, fakeAssets{assets: testAssets}, nil)
	ev, err := uc.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Len(t, ev.Assets, 2)
	assert.InDelta(t, 0, ev.NetAfter, 1e-6)

	health := uc.Health(context.Background())
	require.Len(t, health, len(models.AllIndicators))
	byInd := map[models.Indicator]models.IndicatorStatus{}
	for _, h := range health {
		byInd[h.Indicator] = h
	}
	assert.True(t, byInd[models.IndicatorUnemployment].OK)
	require.NotNil(t, byInd[models.IndicatorUnemployment].AsOf)
	assert.False(t, byInd[models.IndicatorGDP].OK)
	assert.Nil(t, byInd[models.IndicatorGDP].AsOf)
}
