package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroTilt/internal/domain/models"
	"MacroTilt/pkg/logger"
	"MacroTilt/pkg/metrics"
)

func TestKafkaRequestsHandler(t *testing.T) {
	pub := &fakePublisher{}
	uc := newUseCase(benignFetcher(), fakeSettings{cfg: models.DefaultEngineConfig()}, fakeAssets{assets: testAssets}, pub)
	h := NewKafkaRequestsHandler("rebalance.requests", uc, metrics.Nop{}, logger.Nop())
	ctx := context.Background()

	assert.Equal(t, "rebalance.requests", h.Topic())
	require.NoError(t, h.Handle(ctx, []byte(`{"ticker":"spy"}`)))
	require.Len(t, pub.recs, 1)
	assert.Equal(t, "SPY", pub.recs[0].Ticker)

	// dropped, not retried
	assert.NoError(t, h.Handle(ctx, []byte(`not json`)))
	assert.NoError(t, h.Handle(ctx, []byte(`{"ticker":"QQQ"}`)))
	assert.NoError(t, h.Handle(ctx, []byte(`{}`)))
	assert.Len(t, pub.recs, 1)
}

func TestKafkaRequestsHandlerRetriesStoreFailure(t *testing.T) {
	uc := newUseCase(benignFetcher(), fakeSettings{cfg: models.DefaultEngineConfig()}, fakeAssets{err: errStore}, nil)
	h := NewKafkaRequestsHandler("rebalance.requests", uc, metrics.Nop{}, logger.Nop())
	err := h.Handle(context.Background(), []byte(`{"ticker":"SPY"}`))
	assert.True(t, errors.Is(err, errStore))
}

func TestKafkaRequestsHandlerDropsDegenerateAllocation(t *testing.T) {
	// a benign macro pushes defensive assets down; with no move cap they are sized to zero
	cfg := models.DefaultEngineConfig()
	cfg.Rebalance.MaxSingleMove = 0
	assets := []models.Asset{
		{Ticker: "TLT", Allocation: 0.5, Class: models.ClassDefensive, Region: models.RegionUS, Sensitivity: 100},
		{Ticker: "GLD", Allocation: 0.5, Class: models.ClassDefensive, Region: models.RegionUS, Sensitivity: 100},
	}
	pub := &fakePublisher{}
	uc := newUseCase(benignFetcher(), fakeSettings{cfg: cfg}, fakeAssets{assets: assets}, pub)

	_, err := uc.Signal(context.Background(), "TLT")
	require.True(t, errors.Is(err, models.ErrDegenerateAllocation))

	h := NewKafkaRequestsHandler("rebalance.requests", uc, metrics.Nop{}, logger.Nop())
	assert.NoError(t, h.Handle(context.Background(), []byte(`{"ticker":"TLT"}`)))
	assert.Empty(t, pub.recs)
}
