package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroTilt/internal/domain/models"
	"MacroTilt/pkg/logger"
	"MacroTilt/pkg/metrics"
)

func TestSnapshotDegradesFailures(t *testing.T) {
	f := newFakeFetcher()
	f.set(models.IndicatorUnemployment, 4.0, 3.9, 4.0)
	f.errs[models.IndicatorGDP] = errors.New("upstream 500")

	c := NewSnapshotCollector(f, metrics.Nop{}, logger.Nop(), time.Second)
	snap := c.Snapshot(context.Background())

	require.Len(t, snap, len(models.AllIndicators))
	assert.True(t, snap[models.IndicatorUnemployment].Reading.OK)
	assert.Equal(t, models.Series{3.9, 4.0}, snap[models.IndicatorUnemployment].History)
	assert.False(t, snap[models.IndicatorGDP].Reading.OK)
	assert.Equal(t, models.IndicatorGDP, snap[models.IndicatorGDP].Indicator)
	for _, ind := range models.AllIndicators {
		assert.Equal(t, 1, f.calls[ind], string(ind))
	}
}

func TestSnapshotTimeout(t *testing.T) {
	f := newFakeFetcher()
	f.set(models.IndicatorVolatility, 18)
	f.block[models.IndicatorCreditSpread] = true

	c := NewSnapshotCollector(f, metrics.Nop{}, logger.Nop(), 50*time.Millisecond)
	start := time.Now()
	snap := c.Snapshot(context.Background())

	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, snap[models.IndicatorVolatility].Reading.OK)
	assert.False(t, snap[models.IndicatorCreditSpread].Reading.OK)
}

func TestCacheWarmer(t *testing.T) {
	f := newFakeFetcher()
	f.errs[models.IndicatorGDP] = errors.New("down")
	w := NewCacheWarmer(f, nil, time.Second, logger.Nop())
	assert.Equal(t, len(models.AllIndicators)-1, w.Run(context.Background()))
}

type heldLock struct{ held bool }

func (l *heldLock) TryLock(context.Context, string, time.Duration) (bool, error) {
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *heldLock) Unlock(context.Context, string) error {
	l.held = false
	return nil
}

func TestCacheWarmerLock(t *testing.T) {
	f := newFakeFetcher()
	lock := &heldLock{held: true}
	w := NewCacheWarmer(f, lock, time.Second, logger.Nop())

	assert.Equal(t, 0, w.Run(context.Background()))
	assert.Empty(t, f.calls)

	lock.held = false
	assert.Equal(t, len(models.AllIndicators), w.Run(context.Background()))
	assert.False(t, lock.held)
}
