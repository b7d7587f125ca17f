package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"MacroTilt/internal/domain/models"
)

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	mu    sync.Mutex
	data  map[models.Indicator]models.IndicatorData
	errs  map[models.Indicator]error
	block map[models.Indicator]bool
	calls map[models.Indicator]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		data:  map[models.Indicator]models.IndicatorData{},
		errs:  map[models.Indicator]error{},
		block: map[models.Indicator]bool{},
		calls: map[models.Indicator]int{},
	}
}

func (f *fakeFetcher) set(ind models.Indicator, v float64, hist ...float64) {
	f.data[ind] = models.IndicatorData{Indicator: ind, Reading: models.NewReading(v, testNow), History: hist}
}

func (f *fakeFetcher) Fetch(ctx context.Context, ind models.Indicator) (models.IndicatorData, error) {
	f.mu.Lock()
	f.calls[ind]++
	block := f.block[ind]
	err := f.errs[ind]
	d, ok := f.data[ind]
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return models.IndicatorData{}, ctx.Err()
	}
	if err != nil {
		return models.IndicatorData{}, err
	}
	if !ok {
		return models.IndicatorData{Indicator: ind}, nil
	}
	return d, nil
}

func (f *fakeFetcher) Refresh(ctx context.Context, ind models.Indicator) (models.IndicatorData, error) {
	return f.Fetch(ctx, ind)
}

type fakeSettings struct {
	cfg models.EngineConfig
	err error
}

func (s fakeSettings) LoadEngineConfig(context.Context) (models.EngineConfig, error) {
	return s.cfg, s.err
}

type fakeAssets struct {
	assets []models.Asset
	err    error
}

func (a fakeAssets) ListAssets(context.Context) ([]models.Asset, error) {
	return a.assets, a.err
}

type fakePublisher struct {
	mu   sync.Mutex
	recs []models.Recommendation
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, rec *models.Recommendation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.recs = append(p.recs, *rec)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

var errStore = errors.New("store down")
